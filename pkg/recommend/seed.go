// Seed recommendation pipeline: resolve a free-text song name to a single
// seed track and expand it into catalog recommendations.

package recommend

import (
	"context"
	"strings"

	"Groove-Guide-Go/pkg/catalog"
	"Groove-Guide-Go/pkg/metrics"
)

const (
	seedRecommendationLimit = 10
	seedGenreLimit          = 2
)

// SeedRecommender turns a song name into up to ten recommended tracks.
// Genre enrichment goes through the application-scoped client rather than
// the user's: it keeps those calls off the user's token and rate budget
// and works even when the user token has narrower scope.
type SeedRecommender struct {
	User    catalog.Service
	App     catalog.Service
	Metrics *metrics.Metrics
}

// Recommend searches for exactly one best match of songName and requests
// recommendations seeded on it. An empty name after trimming fails
// validation before any catalog call; a search with no match reports the
// original input back. Each result carries its artist's first two genres,
// truncated silently when fewer exist, and its bare catalog id.
func (s SeedRecommender) Recommend(ctx context.Context, songName string) ([]catalog.EnrichedTrack, error) {
	defer s.Metrics.TimePipeline("seed")()
	name := strings.TrimSpace(songName)
	if name == "" {
		return nil, &catalog.ValidationError{Reason: "empty song name"}
	}
	matches, err := s.User.SearchTracks(ctx, name, 1)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, &catalog.NotFoundError{Query: name}
	}
	seedID := catalog.BareID(matches[0].URI)

	recs, err := s.User.Recommendations(ctx, seedID, seedRecommendationLimit)
	if err != nil {
		return nil, err
	}
	enriched := make([]catalog.EnrichedTrack, 0, len(recs))
	for _, t := range recs {
		artist, err := s.App.GetArtist(ctx, t.ArtistID)
		if err != nil {
			return nil, err
		}
		genres := artist.Genres
		if len(genres) > seedGenreLimit {
			genres = genres[:seedGenreLimit]
		}
		et := catalog.EnrichedTrack{Track: t, Genres: strings.Join(genres, ", ")}
		et.ID = catalog.BareID(t.URI)
		enriched = append(enriched, et)
	}
	return enriched, nil
}
