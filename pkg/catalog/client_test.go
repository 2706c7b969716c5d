package catalog

import (
	"context"
	"errors"
	"testing"

	spotify "github.com/zmb3/spotify"
)

// fakeAPI implements the api interface so the client can be exercised
// without network access.
type fakeAPI struct {
	searchQuery  string
	searchResult *spotify.SearchResult
	artists      []*spotify.FullArtist
	topTracks    *spotify.FullTrackPage
	recs         *spotify.Recommendations
	fullTracks   []*spotify.FullTrack
	queuedID     spotify.ID
	queueCalled  bool
	err          error
}

func (f *fakeAPI) SearchOpt(query string, t spotify.SearchType, opt *spotify.Options) (*spotify.SearchResult, error) {
	f.searchQuery = query
	return f.searchResult, f.err
}

func (f *fakeAPI) GetArtist(id spotify.ID) (*spotify.FullArtist, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, a := range f.artists {
		if a != nil && a.ID == id {
			return a, nil
		}
	}
	return nil, errors.New("unknown artist")
}

func (f *fakeAPI) GetArtists(ids ...spotify.ID) ([]*spotify.FullArtist, error) {
	return f.artists, f.err
}

func (f *fakeAPI) CurrentUsersTopTracksOpt(opt *spotify.Options) (*spotify.FullTrackPage, error) {
	return f.topTracks, f.err
}

func (f *fakeAPI) GetRecommendations(seeds spotify.Seeds, attrs *spotify.TrackAttributes, opt *spotify.Options) (*spotify.Recommendations, error) {
	return f.recs, f.err
}

func (f *fakeAPI) GetTracks(ids ...spotify.ID) ([]*spotify.FullTrack, error) {
	return f.fullTracks, f.err
}

func (f *fakeAPI) QueueSong(trackID spotify.ID) error {
	f.queueCalled = true
	f.queuedID = trackID
	return f.err
}

func fullTrack(id, name, artistID, artistName string, popularity int) spotify.FullTrack {
	ft := spotify.FullTrack{Popularity: popularity}
	ft.ID = spotify.ID(id)
	ft.Name = name
	ft.URI = spotify.URI("spotify:track:" + id)
	ft.Artists = []spotify.SimpleArtist{{ID: spotify.ID(artistID), Name: artistName}}
	return ft
}

func TestBareID(t *testing.T) {
	cases := []struct{ uri, want string }{
		{"spotify:track:abc123", "abc123"},
		{"spotify:artist:xyz", "xyz"},
		{"noseparator", "noseparator"},
	}
	for _, c := range cases {
		if got := BareID(c.uri); got != c.want {
			t.Errorf("BareID(%q) = %q, want %q", c.uri, got, c.want)
		}
	}
}

func TestSearchTracksEmptyIsNotAnError(t *testing.T) {
	fa := &fakeAPI{searchResult: &spotify.SearchResult{}}
	c := &Client{client: fa}

	tracks, err := c.SearchTracks(context.Background(), "nothing", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tracks) != 0 {
		t.Errorf("expected no tracks, got %d", len(tracks))
	}
}

func TestSearchTracksMapsFields(t *testing.T) {
	sr := &spotify.SearchResult{Tracks: &spotify.FullTrackPage{
		Tracks: []spotify.FullTrack{fullTrack("t1", "Song", "a1", "Artist", 73)},
	}}
	fa := &fakeAPI{searchResult: sr}
	c := &Client{client: fa}

	tracks, err := c.SearchTracks(context.Background(), "song", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tracks) != 1 {
		t.Fatalf("expected 1 track, got %d", len(tracks))
	}
	got := tracks[0]
	if got.ID != "t1" || got.Name != "Song" || got.ArtistID != "a1" || got.ArtistName != "Artist" || got.Popularity != 73 || got.URI != "spotify:track:t1" {
		t.Errorf("unexpected track: %+v", got)
	}
}

func TestAuthErrorTakesPrecedence(t *testing.T) {
	fa := &fakeAPI{err: spotify.Error{Message: "token expired", Status: 401}}
	c := &Client{client: fa}

	_, err := c.SearchTracks(context.Background(), "q", 1)
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}

	fa.err = spotify.Error{Message: "rate limited", Status: 429}
	_, err = c.SearchTracks(context.Background(), "q", 1)
	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
}

func TestGetArtistsIncompleteResponseFails(t *testing.T) {
	fa := &fakeAPI{artists: []*spotify.FullArtist{nil}}
	c := &Client{client: fa}

	_, err := c.GetArtists(context.Background(), []string{"a1"})
	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("expected UpstreamError for missing artist, got %v", err)
	}

	fa.artists = nil
	_, err = c.GetArtists(context.Background(), []string{"a1", "a2"})
	if !errors.As(err, &upErr) {
		t.Fatalf("expected UpstreamError for count mismatch, got %v", err)
	}
}

func TestGetArtistsMapsGenres(t *testing.T) {
	a := &spotify.FullArtist{Genres: []string{"pop", "rock"}}
	a.ID = "a1"
	fa := &fakeAPI{artists: []*spotify.FullArtist{a}}
	c := &Client{client: fa}

	got, err := c.GetArtists(context.Background(), []string{"a1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a1" || len(got[0].Genres) != 2 {
		t.Errorf("unexpected artists: %+v", got)
	}
}

func TestTopTracksPreservesOrder(t *testing.T) {
	page := &spotify.FullTrackPage{Tracks: []spotify.FullTrack{
		fullTrack("t1", "One", "a1", "A", 80),
		fullTrack("t2", "Two", "a2", "B", 40),
		fullTrack("t3", "Three", "a3", "C", 60),
	}}
	c := &Client{client: &fakeAPI{topTracks: page}}

	tracks, err := c.TopTracks(context.Background(), 20, "short")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tracks) != 3 || tracks[0].ID != "t1" || tracks[1].ID != "t2" || tracks[2].ID != "t3" {
		t.Errorf("order not preserved: %+v", tracks)
	}
}

// TestRecommendationsHydratesPopularity verifies the batched track lookup
// that backfills popularity onto recommendation results.
func TestRecommendationsHydratesPopularity(t *testing.T) {
	var st1, st2 spotify.SimpleTrack
	st1.ID, st1.Name, st1.URI = "r1", "Rec One", "spotify:track:r1"
	st2.ID, st2.Name, st2.URI = "r2", "Rec Two", "spotify:track:r2"
	full1 := fullTrack("r1", "Rec One", "a1", "A", 55)
	full2 := fullTrack("r2", "Rec Two", "a2", "B", 66)
	fa := &fakeAPI{
		recs:       &spotify.Recommendations{Tracks: []spotify.SimpleTrack{st1, st2}},
		fullTracks: []*spotify.FullTrack{&full2, &full1},
	}
	c := &Client{client: fa}

	tracks, err := c.Recommendations(context.Background(), "seed", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(tracks))
	}
	// Recommendation order wins even though the hydration response came
	// back in a different order.
	if tracks[0].ID != "r1" || tracks[0].Popularity != 55 {
		t.Errorf("unexpected first track: %+v", tracks[0])
	}
	if tracks[1].ID != "r2" || tracks[1].Popularity != 66 {
		t.Errorf("unexpected second track: %+v", tracks[1])
	}
}

func TestEnqueueRequiresFullURI(t *testing.T) {
	fa := &fakeAPI{}
	c := &Client{client: fa}

	err := c.Enqueue(context.Background(), "abc123")
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError for bare id, got %v", err)
	}
	if fa.queueCalled {
		t.Error("queue call attempted for invalid URI")
	}

	if err := c.Enqueue(context.Background(), "spotify:track:abc123"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fa.queuedID != "abc123" {
		t.Errorf("queued id = %q, want abc123", fa.queuedID)
	}
}

func TestEnqueueClassifiesProviderRejection(t *testing.T) {
	fa := &fakeAPI{err: spotify.Error{Message: "no active device", Status: 404}}
	c := &Client{client: fa}

	err := c.Enqueue(context.Background(), "spotify:track:abc123")
	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
}
