package scan

import (
	"context"
	"testing"
	"time"

	"github.com/pickpackhq/pickpack-backend/pkg/enums"
	pkgerrors "github.com/pickpackhq/pickpack-backend/pkg/errors"
)

func TestSessionResolvesPushedScans(t *testing.T) {
	order := scanOrder(2, "4006381333931")
	svc := &stubScanService{order: order}
	resolver := newTestResolver(t, svc, newStubDeduper())

	session, err := NewSession(resolver, order.ID, scanActor())
	if err != nil {
		t.Fatalf("session constructor failed: %v", err)
	}
	session.Start(context.Background())
	defer session.Stop()

	if err := session.Push("4006381333931"); err != nil {
		t.Fatalf("push failed: %v", err)
	}

	select {
	case result := <-session.Results():
		if result.Outcome != enums.ScanOutcomePicked {
			t.Fatalf("expected picked, got %s", result.Outcome)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for scan result")
	}
}

func TestSessionReportsFailedResolveAsRejectedFrame(t *testing.T) {
	order := scanOrder(2, "4006381333931")
	svc := &stubScanService{
		order:   order,
		pickErr: pkgerrors.New(pkgerrors.CodeDependency, "db down"),
	}
	resolver := newTestResolver(t, svc, newStubDeduper())

	session, err := NewSession(resolver, order.ID, scanActor())
	if err != nil {
		t.Fatalf("session constructor failed: %v", err)
	}
	session.Start(context.Background())
	defer session.Stop()

	if err := session.Push("4006381333931"); err != nil {
		t.Fatalf("push failed: %v", err)
	}

	select {
	case result := <-session.Results():
		if result.Outcome != enums.ScanOutcomeRejected {
			t.Fatalf("expected rejected, got %s", result.Outcome)
		}
		if result.Code != pkgerrors.CodeDependency {
			t.Fatalf("expected dependency code, got %s", result.Code)
		}
		if result.Error == "" || result.Error == "db down" {
			t.Fatalf("frame must carry the public message, got %q", result.Error)
		}
		if result.Barcode != "4006381333931" {
			t.Fatalf("frame must echo the barcode, got %q", result.Barcode)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for rejected frame")
	}
}

func TestSessionStopHaltsConsumption(t *testing.T) {
	order := scanOrder(5, "4006381333931")
	svc := &stubScanService{order: order}
	resolver := newTestResolver(t, svc, newStubDeduper())

	session, err := NewSession(resolver, order.ID, scanActor())
	if err != nil {
		t.Fatalf("session constructor failed: %v", err)
	}
	session.Start(context.Background())
	session.Stop()

	if err := session.Push("4006381333931"); err != ErrSessionStopped {
		t.Fatalf("expected ErrSessionStopped, got %v", err)
	}
	if len(svc.picks) != 0 {
		t.Fatalf("no scan may be consumed after stop")
	}

	// The results channel closes once the consumer exits.
	select {
	case _, open := <-session.Results():
		if open {
			t.Fatal("expected closed results channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for results channel close")
	}
}

func TestSessionStopIsIdempotent(t *testing.T) {
	order := scanOrder(1, "4006381333931")
	resolver := newTestResolver(t, &stubScanService{order: order}, newStubDeduper())

	session, err := NewSession(resolver, order.ID, scanActor())
	if err != nil {
		t.Fatalf("session constructor failed: %v", err)
	}
	session.Start(context.Background())
	session.Stop()
	session.Stop()
}

func TestSessionRejectsFloodBeyondBuffer(t *testing.T) {
	order := scanOrder(1, "4006381333931")
	resolver := newTestResolver(t, &stubScanService{order: order}, newStubDeduper())

	session, err := NewSession(resolver, order.ID, scanActor())
	if err != nil {
		t.Fatalf("session constructor failed: %v", err)
	}
	// Deliberately not started: nothing consumes, so the buffer fills.
	session.ctx, session.cancel = context.WithCancel(context.Background())

	busy := 0
	for i := 0; i < sessionBuffer+8; i++ {
		if err := session.Push("4006381333931"); err == ErrSessionBusy {
			busy++
		}
	}
	if busy != 8 {
		t.Fatalf("expected 8 rejected pushes, got %d", busy)
	}
}
