// Package db provides the optional durable session store backed by SQLite.
// It implements session.Store with one row per session holding the
// serialized OAuth token. The package is intentionally small; callers open
// a single DB with New and reuse it for all operations.

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/oauth2"
)

// DB wraps a sql.DB connection and exposes the session token helpers.
type DB struct {
	*sql.DB
}

// New opens the SQLite database located at path, creating the schema when
// the file does not exist yet.
func New(path string) (*DB, error) {
	d, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := d.Exec(`CREATE TABLE IF NOT EXISTS sessions (session_id TEXT PRIMARY KEY, token TEXT NOT NULL)`); err != nil {
		d.Close()
		return nil, fmt.Errorf("init db: %w", err)
	}
	return &DB{d}, nil
}

// Save persists the token for sessionID. An existing token for the same
// session is replaced, so a new login overwrites the old state.
func (db *DB) Save(ctx context.Context, sessionID string, tok *oauth2.Token) error {
	b, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `INSERT INTO sessions(session_id, token) VALUES(?, ?) ON CONFLICT(session_id) DO UPDATE SET token=excluded.token`, sessionID, string(b))
	return err
}

// Get retrieves the token stored for sessionID. A session without a token
// returns (nil, nil); that is the unauthenticated state, not a failure.
func (db *DB) Get(ctx context.Context, sessionID string) (*oauth2.Token, error) {
	var data string
	err := db.QueryRowContext(ctx, `SELECT token FROM sessions WHERE session_id=?`, sessionID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal([]byte(data), &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

// Delete removes the token for sessionID. Deleting an absent session is a
// no-op.
func (db *DB) Delete(ctx context.Context, sessionID string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id=?`, sessionID)
	return err
}
