// Genre aggregation pipeline: derive the user's top genres from the
// artists behind their top tracks, then fetch representative tracks per
// genre.

package recommend

import (
	"context"
	"fmt"
	"sort"

	"Groove-Guide-Go/pkg/catalog"
	"Groove-Guide-Go/pkg/metrics"
)

const (
	topGenreCount  = 5
	tracksPerGenre = 5
)

// GenreAggregator derives the top genres of a user's listening and tags
// representative search results with the genre that produced them.
type GenreAggregator struct {
	Catalog catalog.Service
	Metrics *metrics.Metrics
}

// Recommend returns the concatenated per-genre track groups and the
// ordered list of selected genres. Distinct primary-artist ids are
// deduplicated before the batch fetch; the genre population counts one
// increment per genre per artist regardless of how many tracks share that
// artist.
func (g GenreAggregator) Recommend(ctx context.Context) ([]catalog.EnrichedTrack, []string, error) {
	defer g.Metrics.TimePipeline("genres")()
	tracks, err := g.Catalog.TopTracks(ctx, topTrackWindow, topTrackRange)
	if err != nil {
		return nil, nil, err
	}
	seen := make(map[string]struct{}, len(tracks))
	var artistIDs []string
	for _, t := range tracks {
		if t.ArtistID == "" {
			continue
		}
		if _, ok := seen[t.ArtistID]; ok {
			continue
		}
		seen[t.ArtistID] = struct{}{}
		artistIDs = append(artistIDs, t.ArtistID)
	}
	if len(artistIDs) == 0 {
		return nil, nil, nil
	}
	artists, err := g.Catalog.GetArtists(ctx, artistIDs)
	if err != nil {
		return nil, nil, err
	}

	var topGenres []string
	for i, gc := range AggregateGenres(artists) {
		if i == topGenreCount {
			break
		}
		topGenres = append(topGenres, gc.Genre)
	}

	var recommended []catalog.EnrichedTrack
	for _, genre := range topGenres {
		results, err := g.Catalog.SearchTracks(ctx, fmt.Sprintf("genre:%q", genre), tracksPerGenre)
		if err != nil {
			return nil, nil, err
		}
		for _, t := range results {
			recommended = append(recommended, catalog.EnrichedTrack{Track: t, Genre: genre})
		}
	}
	return recommended, topGenres, nil
}

// AggregateGenres builds the genre population from a set of artists: one
// count per genre per artist. The result is ordered by count descending
// with ties kept in the order genres were first encountered while scanning
// the artists in their given order.
func AggregateGenres(artists []catalog.Artist) []catalog.GenreCount {
	counts := make(map[string]int)
	var order []string
	for _, a := range artists {
		for _, genre := range a.Genres {
			if _, ok := counts[genre]; !ok {
				order = append(order, genre)
			}
			counts[genre]++
		}
	}
	population := make([]catalog.GenreCount, len(order))
	for i, genre := range order {
		population[i] = catalog.GenreCount{Genre: genre, Count: counts[genre]}
	}
	sort.SliceStable(population, func(i, j int) bool {
		return population[i].Count > population[j].Count
	})
	return population
}
