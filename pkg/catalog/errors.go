// Error taxonomy shared across the application. Handlers branch on these
// with errors.As: AuthError forces re-authentication, ValidationError and
// NotFoundError become inline messages, UpstreamError is a hard failure.

package catalog

import "fmt"

// AuthError reports a missing, expired or rejected token. Callers must
// translate it into a redirect to the authorization step rather than a
// generic failure.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("not authenticated: %s", e.Reason)
}

// ValidationError reports malformed user input. The surrounding request
// still succeeds, with an empty result set and an inline message.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

// NotFoundError reports a search that matched nothing. Query preserves the
// original input so messages can echo it back.
type NotFoundError struct {
	Query string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no matches found for %q", e.Query)
}

// UpstreamError reports a network failure or a non-2xx provider response
// that is not an authorization rejection.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
