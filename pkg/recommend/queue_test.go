package recommend

import (
	"context"
	"errors"
	"strings"
	"testing"

	"Groove-Guide-Go/pkg/catalog"
)

func TestDispatchWithoutSession(t *testing.T) {
	d := QueueDispatcher{}

	outcome := d.Dispatch(context.Background(), "spotify:track:abc")
	if outcome.Status != StatusUnauthenticated {
		t.Fatalf("expected unauthenticated outcome, got %+v", outcome)
	}
}

func TestDispatchSuccess(t *testing.T) {
	fc := &fakeCatalog{}
	d := QueueDispatcher{Catalog: fc}

	outcome := d.Dispatch(context.Background(), "spotify:track:abc")
	if outcome.Status != StatusQueued {
		t.Fatalf("expected queued outcome, got %+v", outcome)
	}
	if fc.enqueuedURI != "spotify:track:abc" {
		t.Errorf("enqueued %q, want the full URI", fc.enqueuedURI)
	}
}

func TestDispatchProviderRejection(t *testing.T) {
	fc := &fakeCatalog{enqueueErr: &catalog.UpstreamError{Op: "enqueue", Err: errors.New("no active device")}}
	d := QueueDispatcher{Catalog: fc}

	outcome := d.Dispatch(context.Background(), "spotify:track:abc")
	if outcome.Status != StatusFailed {
		t.Fatalf("expected failed outcome, got %+v", outcome)
	}
	if !strings.Contains(outcome.Message, "no active device") {
		t.Errorf("outcome message %q should carry the provider detail", outcome.Message)
	}
}

func TestDispatchAuthRejection(t *testing.T) {
	fc := &fakeCatalog{enqueueErr: &catalog.AuthError{Reason: "token revoked"}}
	d := QueueDispatcher{Catalog: fc}

	outcome := d.Dispatch(context.Background(), "spotify:track:abc")
	if outcome.Status != StatusUnauthenticated {
		t.Fatalf("expected unauthenticated outcome, got %+v", outcome)
	}
}
