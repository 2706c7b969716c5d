// Package session owns the OAuth authorization-code lifecycle for one user
// session: building the consent URL, exchanging the one-time code, serving
// the current token with an explicit refresh when it has expired, and
// clearing state. All pipeline access is gated on ValidToken; a missing or
// unrefreshable token surfaces as a catalog.AuthError which handlers turn
// into a redirect to the login step.

package session

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	spotify "github.com/zmb3/spotify"
	"golang.org/x/oauth2"

	"Groove-Guide-Go/pkg/catalog"
)

var log = logrus.WithField("component", "session")

// Authenticator is the provider surface the manager needs. The concrete
// implementation wraps the Spotify authenticator; tests substitute fakes.
type Authenticator interface {
	// AuthURLWithDialog builds the authorization URL, forcing the consent
	// dialog so a new login always re-approves scopes.
	AuthURLWithDialog(state string) string

	// Exchange trades a one-time authorization code for a token.
	Exchange(code string) (*oauth2.Token, error)

	// Refresh obtains a fresh token using the refresh token carried by tok.
	Refresh(tok *oauth2.Token) (*oauth2.Token, error)
}

// SpotifyAuthenticator adapts the library authenticator to the interface
// above. Refresh goes through the library's token source, which performs
// the refresh grant when the supplied token has expired.
type SpotifyAuthenticator struct {
	Auth spotify.Authenticator
}

func (a SpotifyAuthenticator) AuthURLWithDialog(state string) string {
	return a.Auth.AuthURLWithDialog(state)
}

func (a SpotifyAuthenticator) Exchange(code string) (*oauth2.Token, error) {
	return a.Auth.Exchange(code)
}

func (a SpotifyAuthenticator) Refresh(tok *oauth2.Token) (*oauth2.Token, error) {
	client := a.Auth.NewClient(tok)
	return client.Token()
}

// Store persists the token for each session. Get returns (nil, nil) when
// the session has no token; that is the unauthenticated state, not an
// error.
type Store interface {
	Get(ctx context.Context, sessionID string) (*oauth2.Token, error)
	Save(ctx context.Context, sessionID string, tok *oauth2.Token) error
	Delete(ctx context.Context, sessionID string) error
}

// Manager drives the session token state machine:
//
//	Unauthenticated -> AuthURL -> pending callback -> Exchange -> Authenticated
//	Authenticated -> (expiry, refresh ok) -> Authenticated
//	Authenticated -> (expiry, refresh fail) -> Unauthenticated
//
// Token access and refresh for one session is a critical section: a refresh
// racing a read could hand one caller a stale token, so each session is
// serialized with its own mutex.
type Manager struct {
	auth  Authenticator
	store Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager wires an authenticator and a token store into a Manager.
func NewManager(auth Authenticator, store Store) *Manager {
	return &Manager{auth: auth, store: store, locks: make(map[string]*sync.Mutex)}
}

func (m *Manager) sessionLock(sessionID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[sessionID] = l
	}
	return l
}

// AuthURL returns the provider authorization URL for the given CSRF state.
// It has no side effects on session state.
func (m *Manager) AuthURL(state string) string {
	return m.auth.AuthURLWithDialog(state)
}

// Exchange trades the callback code for a token. Any pre-existing token for
// the session is discarded first so a new login always starts from a clean
// state. A provider rejection of the code surfaces as an AuthError.
func (m *Manager) Exchange(ctx context.Context, sessionID, code string) (*oauth2.Token, error) {
	l := m.sessionLock(sessionID)
	l.Lock()
	defer l.Unlock()

	if err := m.store.Delete(ctx, sessionID); err != nil {
		return nil, &catalog.UpstreamError{Op: "session reset", Err: err}
	}
	tok, err := m.auth.Exchange(code)
	if err != nil {
		log.WithError(err).Warn("authorization code rejected")
		return nil, &catalog.AuthError{Reason: "authorization code rejected"}
	}
	if err := m.store.Save(ctx, sessionID, tok); err != nil {
		return nil, &catalog.UpstreamError{Op: "session store", Err: err}
	}
	return tok, nil
}

// ValidToken returns the session's token, refreshing it first when it has
// expired. A session without a token, or one whose refresh fails, yields an
// AuthError; on refresh failure the stale state is cleared so the caller
// restarts the flow from scratch.
func (m *Manager) ValidToken(ctx context.Context, sessionID string) (*oauth2.Token, error) {
	l := m.sessionLock(sessionID)
	l.Lock()
	defer l.Unlock()

	tok, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return nil, &catalog.UpstreamError{Op: "session store", Err: err}
	}
	if tok == nil {
		return nil, &catalog.AuthError{Reason: "no session token"}
	}
	if tok.Valid() {
		return tok, nil
	}
	fresh, err := m.auth.Refresh(tok)
	if err != nil {
		log.WithError(err).Warn("token refresh failed, clearing session")
		if derr := m.store.Delete(ctx, sessionID); derr != nil {
			log.WithError(derr).Error("clear session after failed refresh")
		}
		return nil, &catalog.AuthError{Reason: "token refresh failed"}
	}
	if err := m.store.Save(ctx, sessionID, fresh); err != nil {
		return nil, &catalog.UpstreamError{Op: "session store", Err: err}
	}
	return fresh, nil
}

// Clear discards the stored token, returning the session to the
// unauthenticated state.
func (m *Manager) Clear(ctx context.Context, sessionID string) error {
	l := m.sessionLock(sessionID)
	l.Lock()
	defer l.Unlock()
	return m.store.Delete(ctx, sessionID)
}
