// Package recommend contains the recommendation pipelines and the queue
// dispatcher. Each pipeline is a small stateless struct over the catalog
// Service interface; all state lives in the inputs passed per call. This
// file implements the popularity-filtered top-track listing.

package recommend

import (
	"context"
	"strings"

	"Groove-Guide-Go/pkg/catalog"
	"Groove-Guide-Go/pkg/metrics"
)

// The pipelines all operate over the same fixed window of the user's top
// tracks from the short time range.
const (
	topTrackWindow = 20
	topTrackRange  = "short"
)

// TrackRow is one rendered row of the filtered top-track listing. TrackID
// is the bare catalog id derived from the track URI.
type TrackRow struct {
	Name       string
	Artist     string
	Popularity int
	Genres     string
	TrackID    string
}

// TopTrackFilter fetches the user's top tracks and filters them by a
// minimum popularity, enriching each surviving track with its primary
// artist's genres.
type TopTrackFilter struct {
	Catalog catalog.Service
	Metrics *metrics.Metrics
}

// Recommend returns the filtered rows in the provider's top-track order.
// Filtering is monotonic: raising the threshold never adds tracks. The
// genre lookup is one call per qualifying track, not batched, so each row
// reflects exactly that track's primary artist.
func (f TopTrackFilter) Recommend(ctx context.Context, minPopularity int) ([]TrackRow, error) {
	defer f.Metrics.TimePipeline("top_tracks")()
	if minPopularity < 0 {
		minPopularity = 0
	}
	tracks, err := f.Catalog.TopTracks(ctx, topTrackWindow, topTrackRange)
	if err != nil {
		return nil, err
	}
	rows := make([]TrackRow, 0, len(tracks))
	for _, t := range tracks {
		if t.Popularity < minPopularity {
			continue
		}
		artist, err := f.Catalog.GetArtist(ctx, t.ArtistID)
		if err != nil {
			return nil, err
		}
		rows = append(rows, TrackRow{
			Name:       t.Name,
			Artist:     t.ArtistName,
			Popularity: t.Popularity,
			Genres:     strings.Join(artist.Genres, ", "),
			TrackID:    catalog.BareID(t.URI),
		})
	}
	return rows, nil
}
