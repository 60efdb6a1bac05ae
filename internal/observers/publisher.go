package observers

import (
	"context"
	"time"

	"hookd/internal/callbacks"
)

// Event is the flattened form of a triggered callback event.
type Event struct {
	Name      callbacks.EventName `json:"name"`
	RequestID string              `json:"request_id,omitempty"`
	Time      time.Time           `json:"time"`
	Fields    map[string]any      `json:"fields,omitempty"`
}

// EventPublisher receives events. Implementations should be lightweight and
// non-blocking.
type EventPublisher interface {
	Publish(Event)
}

// Publisher forwards every callback event to an EventPublisher.
type Publisher struct {
	callbacks.Func
	name string
	pub  EventPublisher
	now  func() time.Time
}

// NewPublisher wraps pub. A nil pub drops events.
func NewPublisher(pub EventPublisher) *Publisher {
	if pub == nil {
		pub = noopPublisher{}
	}
	p := &Publisher{name: "publisher", pub: pub, now: time.Now}
	p.Func = p.handle
	return p
}

func (p *Publisher) Name() string { return p.name }

// Named sets the identity reported in logs, metrics and the catalog.
func (p *Publisher) Named(name string) *Publisher {
	p.name = name
	return p
}

func (p *Publisher) handle(_ context.Context, event callbacks.EventName, args callbacks.Args) {
	e := Event{Name: event, RequestID: args.RequestID(), Time: p.now()}
	if len(args) > 0 {
		// copy so later mutation by the pipeline does not leak into stored events
		e.Fields = make(map[string]any, len(args))
		for k, v := range args {
			switch k {
			case callbacks.KeyRequestID, callbacks.KeyRouter, callbacks.KeyAPI:
				continue
			case callbacks.KeyErr:
				if err, ok := v.(error); ok && err != nil {
					v = err.Error()
				}
			}
			e.Fields[k] = v
		}
	}
	p.pub.Publish(e)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
