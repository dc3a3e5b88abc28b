package event

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Handler consumes one event. Returning an error marks the event as failed
// for telemetry purposes only; the dispatcher never propagates it.
type Handler interface {
	Handle(ctx context.Context, evt Event) error
}

// maxSeenKeys bounds the dedup window. Keys are evicted oldest-first.
const maxSeenKeys = 4096

// Dispatcher routes events by kind to at most one registered handler.
//
// It is populated once at process start and never mutated afterwards.
// Events for kinds with no handler are silently dropped; that is explicit
// policy, not an error. Handler failures, panics included, are logged and
// discarded so that the audit side channel can never invalidate the business
// operation that already committed.
type Dispatcher struct {
	handlers map[Kind]Handler
	log      logrus.FieldLogger

	mu        sync.Mutex
	seen      map[string]struct{}
	seenOrder []string
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher(log logrus.FieldLogger) *Dispatcher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Dispatcher{
		handlers: make(map[Kind]Handler),
		log:      log,
		seen:     make(map[string]struct{}),
	}
}

// Register binds a handler to an event kind. Call during wiring only; a
// second registration for the same kind replaces the first.
func (d *Dispatcher) Register(kind Kind, h Handler) {
	d.handlers[kind] = h
}

// Dispatch delivers each event to its handler. It never returns an error:
// by the time events reach the dispatcher the mutation has committed, and
// nothing that happens here may alter that outcome.
func (d *Dispatcher) Dispatch(ctx context.Context, events ...Event) {
	for _, evt := range events {
		if d.alreadySeen(evt) {
			d.log.WithFields(logrus.Fields{
				"event_id":  evt.ID,
				"kind":      evt.Kind,
				"dedup_key": evt.DedupKey,
			}).Debug("dropping duplicate event")
			continue
		}
		h, ok := d.handlers[evt.Kind]
		if !ok {
			continue
		}
		d.safeDispatch(ctx, h, evt)
	}
}

// alreadySeen records and checks the event's dedup key. Events without a key
// keep the original at-least-once behavior.
func (d *Dispatcher) alreadySeen(evt Event) bool {
	if evt.DedupKey == "" {
		return false
	}
	key := evt.DedupKey + "|" + string(evt.Kind) + "|" + evt.EntityID
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.seen[key]; ok {
		return true
	}
	d.seen[key] = struct{}{}
	d.seenOrder = append(d.seenOrder, key)
	if len(d.seenOrder) > maxSeenKeys {
		evict := d.seenOrder[0]
		d.seenOrder = d.seenOrder[1:]
		delete(d.seen, evict)
	}
	return false
}

// safeDispatch invokes the handler and converts any failure into telemetry.
func (d *Dispatcher) safeDispatch(ctx context.Context, h Handler, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			d.log.WithFields(logrus.Fields{
				"event_id": evt.ID,
				"kind":     evt.Kind,
				"panic":    r,
			}).Error("event handler panicked")
		}
	}()
	if err := h.Handle(ctx, evt); err != nil {
		d.log.WithFields(logrus.Fields{
			"event_id": evt.ID,
			"kind":     evt.Kind,
		}).WithError(err).Error("event handler failed")
	}
}
