// Authentication endpoints and signed-cookie helpers. The login flow
// mirrors the provider's authorization-code dance: GET / sends the user to
// the consent page with a signed state cookie, and /callback exchanges the
// returned code through the session manager. Cookie values are HMAC-signed
// so they cannot be forged client-side.

package handlers

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const (
	sessionCookie = "session_id"
	stateCookie   = "oauth_state"
)

// signValue appends an HMAC signature to value using the format
// value|signature. The signature is base64 URL encoded so it can live in a
// cookie.
func signValue(value string, key []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(value))
	return value + "|" + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// verifyValue checks the signature appended by signValue and returns the
// original value when it matches.
func verifyValue(signed string, key []byte) (string, bool) {
	parts := strings.Split(signed, "|")
	if len(parts) != 2 {
		return "", false
	}
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(parts[0]))
	sig, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil || !hmac.Equal(mac.Sum(nil), sig) {
		return "", false
	}
	return parts[0], true
}

// sessionID returns the verified session identifier from the request
// cookie, or an empty string when the cookie is missing or tampered with.
func (app *Application) sessionID(r *http.Request) string {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	if v, ok := verifyValue(c.Value, app.SignKey); ok {
		return v
	}
	return ""
}

// ensureSession returns the request's session identifier, minting and
// setting a fresh one when none exists yet.
func (app *Application) ensureSession(w http.ResponseWriter, r *http.Request) string {
	if sid := app.sessionID(r); sid != "" {
		return sid
	}
	sid := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    signValue(sid, app.SignKey),
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return sid
}

// Login begins the OAuth flow: it guarantees a session cookie, stores a
// random signed state value and redirects to the provider's authorization
// URL with the consent dialog forced.
func (app *Application) Login(w http.ResponseWriter, r *http.Request) {
	app.ensureSession(w, r)
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		http.Error(w, "failed to generate state", http.StatusInternalServerError)
		return
	}
	state := base64.RawURLEncoding.EncodeToString(b)
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    signValue(state, app.SignKey),
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, app.Sessions.AuthURL(state), http.StatusFound)
}

// OAuthCallback completes the flow. After verifying the state cookie the
// one-time code is exchanged through the session manager, which resets any
// previous token for the session before storing the new one.
func (app *Application) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(stateCookie)
	if err != nil {
		http.Error(w, "state mismatch", http.StatusBadRequest)
		return
	}
	state, ok := verifyValue(c.Value, app.SignKey)
	if !ok || r.URL.Query().Get("state") != state {
		http.Error(w, "state mismatch", http.StatusBadRequest)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Path: "/", MaxAge: -1})

	sid := app.ensureSession(w, r)
	if _, err := app.Sessions.Exchange(r.Context(), sid, r.URL.Query().Get("code")); err != nil {
		log.WithError(err).Warn("code exchange failed")
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/home", http.StatusFound)
}
