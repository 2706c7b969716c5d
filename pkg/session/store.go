// In-memory Store implementation. This is the default: the original system
// deliberately discards token state across restarts, so durability is
// opt-in via the SQLite store in pkg/db.

package session

import (
	"context"
	"sync"

	"golang.org/x/oauth2"
)

// MemoryStore keeps session tokens in a map guarded by a mutex. Tokens are
// copied on the way in and out so callers cannot mutate shared state.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]oauth2.Token
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory token store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]oauth2.Token)}
}

// Get returns the token for sessionID, or (nil, nil) when absent.
func (s *MemoryStore) Get(_ context.Context, sessionID string) (*oauth2.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tok, ok := s.tokens[sessionID]
	if !ok {
		return nil, nil
	}
	copied := tok
	return &copied, nil
}

// Save stores a copy of tok for sessionID, replacing any existing value.
func (s *MemoryStore) Save(_ context.Context, sessionID string, tok *oauth2.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[sessionID] = *tok
	return nil
}

// Delete removes the token for sessionID. Deleting an absent session is a
// no-op.
func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, sessionID)
	return nil
}
