// Queue dispatcher: the one component that never lets an error escape.
// Every failure is normalized into a returned outcome so the HTTP layer
// only maps outcomes to status codes.

package recommend

import (
	"context"
	"errors"

	"Groove-Guide-Go/pkg/catalog"
)

// QueueStatus classifies the result of a dispatch attempt.
type QueueStatus int

const (
	StatusQueued QueueStatus = iota
	StatusUnauthenticated
	StatusFailed
)

// QueueOutcome is the value returned by Dispatch. Message carries the
// provider's failure detail when Status is not StatusQueued.
type QueueOutcome struct {
	Status  QueueStatus
	Message string
}

// QueueDispatcher forwards a single validated track reference to the
// provider's playback queue. Catalog is nil when the session holds no
// valid token; in that case no network call is attempted.
type QueueDispatcher struct {
	Catalog catalog.Service
}

// Dispatch enqueues trackURI, which must already be the full provider URI
// form. It always returns an outcome, never an error: authorization
// rejections become StatusUnauthenticated, everything else StatusFailed
// with the underlying message.
func (d QueueDispatcher) Dispatch(ctx context.Context, trackURI string) QueueOutcome {
	if d.Catalog == nil {
		return QueueOutcome{Status: StatusUnauthenticated, Message: "no authenticated session"}
	}
	err := d.Catalog.Enqueue(ctx, trackURI)
	if err == nil {
		return QueueOutcome{Status: StatusQueued}
	}
	var authErr *catalog.AuthError
	if errors.As(err, &authErr) {
		return QueueOutcome{Status: StatusUnauthenticated, Message: authErr.Reason}
	}
	return QueueOutcome{Status: StatusFailed, Message: err.Error()}
}
