package recommend

import (
	"context"

	"Groove-Guide-Go/pkg/catalog"
)

// fakeCatalog implements catalog.Service in memory and records the calls
// the pipelines make so tests can assert on call sets and order.
type fakeCatalog struct {
	topTracks []catalog.Track
	topErr    error

	artists     map[string]catalog.Artist
	artistErr   error
	artistCalls []string
	batchCalls  [][]string

	searchResults map[string][]catalog.Track
	searchCalls   []string
	searchErr     error

	recs     []catalog.Track
	recErr   error
	recSeed  string
	recLimit int

	enqueuedURI  string
	enqueueCalls int
	enqueueErr   error
}

var _ catalog.Service = (*fakeCatalog)(nil)

func (f *fakeCatalog) SearchTracks(_ context.Context, query string, limit int) ([]catalog.Track, error) {
	f.searchCalls = append(f.searchCalls, query)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	results := f.searchResults[query]
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (f *fakeCatalog) GetArtist(_ context.Context, id string) (catalog.Artist, error) {
	f.artistCalls = append(f.artistCalls, id)
	if f.artistErr != nil {
		return catalog.Artist{}, f.artistErr
	}
	if a, ok := f.artists[id]; ok {
		return a, nil
	}
	return catalog.Artist{ID: id}, nil
}

func (f *fakeCatalog) GetArtists(_ context.Context, ids []string) ([]catalog.Artist, error) {
	f.batchCalls = append(f.batchCalls, ids)
	if f.artistErr != nil {
		return nil, f.artistErr
	}
	out := make([]catalog.Artist, len(ids))
	for i, id := range ids {
		if a, ok := f.artists[id]; ok {
			out[i] = a
		} else {
			out[i] = catalog.Artist{ID: id}
		}
	}
	return out, nil
}

func (f *fakeCatalog) TopTracks(_ context.Context, limit int, timeRange string) ([]catalog.Track, error) {
	return f.topTracks, f.topErr
}

func (f *fakeCatalog) Recommendations(_ context.Context, seedTrackID string, limit int) ([]catalog.Track, error) {
	f.recSeed = seedTrackID
	f.recLimit = limit
	return f.recs, f.recErr
}

func (f *fakeCatalog) Enqueue(_ context.Context, trackURI string) error {
	f.enqueueCalls++
	f.enqueuedURI = trackURI
	return f.enqueueErr
}

func mkTrack(id, name, artistID, artistName string, popularity int) catalog.Track {
	return catalog.Track{
		ID:         id,
		Name:       name,
		ArtistID:   artistID,
		ArtistName: artistName,
		Popularity: popularity,
		URI:        "spotify:track:" + id,
	}
}

// threeTopTracks is the fixture shared by the filter tests: popularities
// 80, 40 and 60 so a threshold of 50 keeps the first and third track.
func threeTopTracks() []catalog.Track {
	return []catalog.Track{
		mkTrack("t1", "First", "a1", "Artist One", 80),
		mkTrack("t2", "Second", "a2", "Artist Two", 40),
		mkTrack("t3", "Third", "a3", "Artist Three", 60),
	}
}
