// Client implementation over the official Spotify client library. The
// wrapped library predates context support, so cancellation is checked
// explicitly before each call. Errors are classified into the package
// taxonomy: authorization rejections become AuthError so callers can force
// re-authentication, everything else becomes UpstreamError.

package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	spotify "github.com/zmb3/spotify"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"Groove-Guide-Go/pkg/metrics"
)

var log = logrus.WithField("component", "catalog")

// Service exposes the catalog operations the pipelines depend on. Both the
// application-scoped and the user-scoped client satisfy it, as do the test
// fakes in dependent packages.
type Service interface {
	// SearchTracks runs a free-text track search. An empty result is not
	// an error; the returned slice is simply empty.
	SearchTracks(ctx context.Context, query string, limit int) ([]Track, error)

	// GetArtist fetches a single artist with its genre tags.
	GetArtist(ctx context.Context, id string) (Artist, error)

	// GetArtists batch-fetches artists. Every requested id must be
	// represented exactly once in the response or the call fails.
	GetArtists(ctx context.Context, ids []string) ([]Artist, error)

	// TopTracks returns the current user's top tracks over the given time
	// range, in the provider's own relevance order.
	TopTracks(ctx context.Context, limit int, timeRange string) ([]Track, error)

	// Recommendations returns up to limit tracks related to the seed
	// track id (bare id form, not a URI).
	Recommendations(ctx context.Context, seedTrackID string, limit int) ([]Track, error)

	// Enqueue adds a track to the user's playback queue. The provider
	// requires the full spotify:track:<id> URI here.
	Enqueue(ctx context.Context, trackURI string) error
}

// api is the subset of the spotify.Client used by this package. It allows
// the concrete client to be replaced in tests.
type api interface {
	SearchOpt(query string, t spotify.SearchType, opt *spotify.Options) (*spotify.SearchResult, error)
	GetArtist(id spotify.ID) (*spotify.FullArtist, error)
	GetArtists(ids ...spotify.ID) ([]*spotify.FullArtist, error)
	CurrentUsersTopTracksOpt(opt *spotify.Options) (*spotify.FullTrackPage, error)
	GetRecommendations(seeds spotify.Seeds, attrs *spotify.TrackAttributes, opt *spotify.Options) (*spotify.Recommendations, error)
	GetTracks(ids ...spotify.ID) ([]*spotify.FullTrack, error)
	QueueSong(trackID spotify.ID) error
}

// Client wraps the official Spotify client behind the Service interface.
type Client struct {
	client  api
	metrics *metrics.Metrics
}

var _ Service = (*Client)(nil)

// NewAppClient authenticates with the client credentials flow and returns a
// client carrying no user identity. It is used for enrichment calls that
// must stay off the user's token and rate budget.
func NewAppClient(clientID, clientSecret string, m *metrics.Metrics) (*Client, error) {
	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotify.TokenURL,
	}
	token, err := config.Token(context.Background())
	if err != nil {
		return nil, fmt.Errorf("client credentials token: %w", err)
	}
	c := spotify.Authenticator{}.NewClient(token)
	return &Client{client: &c, metrics: m}, nil
}

// NewUserClient builds a client acting as the user who owns token. The
// authenticator supplies the OAuth configuration used to mint the
// underlying HTTP client.
func NewUserClient(auth spotify.Authenticator, token *oauth2.Token, m *metrics.Metrics) *Client {
	c := auth.NewClient(token)
	return &Client{client: &c, metrics: m}
}

// classify maps a library error onto the package taxonomy. Authorization
// rejections take precedence over the generic upstream case.
func classify(op string, err error) error {
	var se spotify.Error
	if errors.As(err, &se) && (se.Status == http.StatusUnauthorized || se.Status == http.StatusForbidden) {
		return &AuthError{Reason: se.Message}
	}
	return &UpstreamError{Op: op, Err: err}
}

func (c *Client) observe(op string, err error) {
	c.metrics.ObserveCatalog(op, err)
}

// SearchTracks implements Service. No matches yields an empty slice and a
// nil error so callers can distinguish "nothing found" from "call failed".
func (c *Client) SearchTracks(ctx context.Context, query string, limit int) ([]Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	results, err := c.client.SearchOpt(query, spotify.SearchTypeTrack, &spotify.Options{Limit: &limit})
	c.observe("search_tracks", err)
	if err != nil {
		return nil, classify("search tracks", err)
	}
	if results.Tracks == nil {
		return nil, nil
	}
	tracks := make([]Track, 0, len(results.Tracks.Tracks))
	for _, ft := range results.Tracks.Tracks {
		tracks = append(tracks, fromFullTrack(ft))
	}
	return tracks, nil
}

// GetArtist implements Service.
func (c *Client) GetArtist(ctx context.Context, id string) (Artist, error) {
	if err := ctx.Err(); err != nil {
		return Artist{}, err
	}
	fa, err := c.client.GetArtist(spotify.ID(id))
	c.observe("get_artist", err)
	if err != nil {
		return Artist{}, classify("get artist", err)
	}
	return Artist{ID: string(fa.ID), Genres: fa.Genres}, nil
}

// GetArtists implements Service. The provider returns a nil entry for an
// unknown id; that, or a count mismatch, fails the whole call so callers
// never aggregate over a silently incomplete population.
func (c *Client) GetArtists(ctx context.Context, ids []string) ([]Artist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	spotifyIDs := make([]spotify.ID, len(ids))
	for i, id := range ids {
		spotifyIDs[i] = spotify.ID(id)
	}
	fas, err := c.client.GetArtists(spotifyIDs...)
	c.observe("get_artists", err)
	if err != nil {
		return nil, classify("get artists", err)
	}
	if len(fas) != len(ids) {
		return nil, &UpstreamError{Op: "get artists", Err: fmt.Errorf("requested %d artists, got %d", len(ids), len(fas))}
	}
	artists := make([]Artist, len(fas))
	for i, fa := range fas {
		if fa == nil {
			return nil, &UpstreamError{Op: "get artists", Err: fmt.Errorf("artist %s missing from response", ids[i])}
		}
		artists[i] = Artist{ID: string(fa.ID), Genres: fa.Genres}
	}
	return artists, nil
}

// TopTracks implements Service. The provider's relevance order is
// preserved; downstream filtering must not reorder it.
func (c *Client) TopTracks(ctx context.Context, limit int, timeRange string) ([]Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	page, err := c.client.CurrentUsersTopTracksOpt(&spotify.Options{Limit: &limit, Timerange: &timeRange})
	c.observe("top_tracks", err)
	if err != nil {
		return nil, classify("top tracks", err)
	}
	tracks := make([]Track, 0, len(page.Tracks))
	for _, ft := range page.Tracks {
		tracks = append(tracks, fromFullTrack(ft))
	}
	return tracks, nil
}

// Recommendations implements Service. The library models recommendation
// results without a popularity field, so results are hydrated with one
// batched track lookup before being returned.
func (c *Client) Recommendations(ctx context.Context, seedTrackID string, limit int) ([]Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	seeds := spotify.Seeds{Tracks: []spotify.ID{spotify.ID(seedTrackID)}}
	recs, err := c.client.GetRecommendations(seeds, nil, &spotify.Options{Limit: &limit})
	c.observe("recommendations", err)
	if err != nil {
		return nil, classify("recommendations", err)
	}
	if len(recs.Tracks) == 0 {
		return nil, nil
	}
	ids := make([]spotify.ID, len(recs.Tracks))
	for i, st := range recs.Tracks {
		ids[i] = st.ID
	}
	full, err := c.client.GetTracks(ids...)
	c.observe("get_tracks", err)
	if err != nil {
		return nil, classify("recommendation tracks", err)
	}
	byID := make(map[spotify.ID]*spotify.FullTrack, len(full))
	for _, ft := range full {
		if ft != nil {
			byID[ft.ID] = ft
		}
	}
	tracks := make([]Track, 0, len(recs.Tracks))
	for _, st := range recs.Tracks {
		if ft, ok := byID[st.ID]; ok {
			tracks = append(tracks, fromFullTrack(*ft))
			continue
		}
		tracks = append(tracks, fromFullTrack(spotify.FullTrack{SimpleTrack: st}))
	}
	return tracks, nil
}

// Enqueue implements Service. The queue endpoint is the one place the full
// URI form is mandatory, so bare ids are rejected before any network call.
func (c *Client) Enqueue(ctx context.Context, trackURI string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !strings.HasPrefix(trackURI, "spotify:track:") {
		return &ValidationError{Reason: fmt.Sprintf("queue requires a full track URI, got %q", trackURI)}
	}
	err := c.client.QueueSong(spotify.ID(BareID(trackURI)))
	c.observe("enqueue", err)
	if err != nil {
		log.WithError(err).Warn("queue dispatch rejected")
		return classify("enqueue", err)
	}
	return nil
}

func fromFullTrack(ft spotify.FullTrack) Track {
	t := Track{
		ID:         string(ft.ID),
		Name:       ft.Name,
		Popularity: ft.Popularity,
		URI:        string(ft.URI),
	}
	if len(ft.Artists) > 0 {
		t.ArtistID = string(ft.Artists[0].ID)
		t.ArtistName = ft.Artists[0].Name
	}
	return t
}
