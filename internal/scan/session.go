package scan

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/pickpackhq/pickpack-backend/internal/fulfillment"
)

// sessionBuffer bounds how many decoded values can queue up between the
// scanner feed and the resolver before pushes start failing.
const sessionBuffer = 32

// ErrSessionStopped reports a push into a session that no longer consumes.
var ErrSessionStopped = errors.New("scan session stopped")

// ErrSessionBusy reports a full buffer; the caller drops the read and the
// picker simply scans again.
var ErrSessionBusy = errors.New("scan session buffer full")

// Session consumes a stream of decoded barcodes for one order until stopped.
// Stopping halts consumption of queued values; a resolve already in flight
// runs to completion and its result is still delivered.
type Session struct {
	resolver *Resolver
	orderID  uuid.UUID
	actor    fulfillment.Actor

	scans   chan string
	results chan Result

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewSession builds a session bound to one order and actor. Start must be
// called before pushing scans.
func NewSession(resolver *Resolver, orderID uuid.UUID, actor fulfillment.Actor) (*Session, error) {
	if resolver == nil {
		return nil, errors.New("scan: resolver is required")
	}
	if orderID == uuid.Nil {
		return nil, errors.New("scan: order id is required")
	}
	return &Session{
		resolver: resolver,
		orderID:  orderID,
		actor:    actor,
		scans:    make(chan string, sessionBuffer),
		results:  make(chan Result, sessionBuffer),
		done:     make(chan struct{}),
	}, nil
}

// Start launches the consumer. The parent context bounds the whole session;
// Stop only halts consumption, so in-flight work detaches from the cancel.
func (s *Session) Start(ctx context.Context) {
	s.ctx, s.cancel = context.WithCancel(ctx)

	go func() {
		defer close(s.done)
		defer close(s.results)
		for {
			select {
			case <-s.ctx.Done():
				return
			case barcode := <-s.scans:
				resolveCtx := context.WithoutCancel(s.ctx)
				resolved, err := s.resolver.Resolve(resolveCtx, s.orderID, barcode, s.actor)
				var result Result
				if err != nil {
					// A failed pick still owes the device a frame; without
					// one the picker cannot tell a lost scan from a refusal.
					result = rejectedResult(barcode, err)
				} else {
					result = *resolved
				}
				select {
				case s.results <- result:
				case <-s.ctx.Done():
					// Deliver the in-flight result even after stop.
					select {
					case s.results <- result:
					default:
					}
					return
				}
			}
		}
	}()
}

// Push queues one decoded value. It never blocks the scanner feed.
func (s *Session) Push(barcode string) error {
	if s.ctx == nil {
		return ErrSessionStopped
	}
	select {
	case <-s.ctx.Done():
		return ErrSessionStopped
	default:
	}
	select {
	case s.scans <- barcode:
		return nil
	default:
		return ErrSessionBusy
	}
}

// Results streams resolved scans. The channel closes once the session stops
// and any in-flight resolve has finished.
func (s *Session) Results() <-chan Result {
	return s.results
}

// Stop halts consumption and waits for the in-flight resolve, if any.
func (s *Session) Stop() {
	s.once.Do(func() {
		if s.cancel == nil {
			return
		}
		s.cancel()
		<-s.done
	})
}
