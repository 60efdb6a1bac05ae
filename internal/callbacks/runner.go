package callbacks

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/rs/zerolog"
)

// Runner holds registered callbacks and dispatches events to them in
// registration order.
//
// Add and Trigger may be called concurrently. The lock only guards the
// slice; callbacks are invoked outside of it, so a slow hook never blocks
// registration or other triggers.
type Runner struct {
	mu        sync.RWMutex
	callbacks []Callback
	log       zerolog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger used to record callback faults.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Runner) { r.log = l }
}

func NewRunner(opts ...Option) *Runner {
	r := &Runner{log: zerolog.Nop()}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Add appends callbacks to the end of the sequence, keeping their order.
// Duplicates are allowed and are invoked once per registration. Nil values
// are skipped.
func (r *Runner) Add(cbs ...Callback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cb := range cbs {
		if cb == nil {
			continue
		}
		r.callbacks = append(r.callbacks, cb)
	}
}

// Len returns the number of registrations.
func (r *Runner) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.callbacks)
}

// Callbacks returns a copy of the registered callbacks in order.
func (r *Runner) Callbacks() []Callback {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Callback, len(r.callbacks))
	copy(out, r.callbacks)
	return out
}

// Trigger invokes the hook for event on every registered callback.
//
// A panic raised by a callback is recovered, logged and counted; it never
// reaches the caller and never stops the remaining callbacks. The only
// error returned is an UnknownEventError, reported before any callback runs.
func (r *Runner) Trigger(ctx context.Context, event EventName, args Args) error {
	hook, ok := hooks[event]
	if !ok {
		return &UnknownEventError{Name: event}
	}
	// Appends never touch elements below the current length, so the
	// snapshot stays valid after the lock is released.
	r.mu.RLock()
	cbs := r.callbacks
	r.mu.RUnlock()
	if len(cbs) == 0 {
		return nil
	}
	triggersTotal.WithLabelValues(string(event)).Inc()
	for _, cb := range cbs {
		r.invoke(ctx, cb, event, hook, args)
	}
	return nil
}

// invoke is the single fault boundary for every hook call.
func (r *Runner) invoke(ctx context.Context, cb Callback, event EventName, hook hookFunc, args Args) {
	defer func() {
		if v := recover(); v != nil {
			name := NameOf(cb)
			faultsTotal.WithLabelValues(string(event), name).Inc()
			ev := r.log.Error().
				Str("callback", name).
				Str("event", string(event))
			if err, ok := v.(error); ok {
				ev = ev.AnErr("panic", err)
			} else {
				ev = ev.Interface("panic", v)
			}
			ev.Bytes("stack", debug.Stack()).Msg("callback failed")
		}
	}()
	hook(cb, ctx, args)
}

// NameOf returns the identity used for cb in logs and metrics: its Name()
// when it implements Namer, otherwise its dynamic type.
func NameOf(cb Callback) (name string) {
	defer func() {
		if recover() != nil {
			name = fmt.Sprintf("%T", cb)
		}
	}()
	if n, ok := cb.(Namer); ok {
		if s := n.Name(); s != "" {
			return s
		}
	}
	return fmt.Sprintf("%T", cb)
}
