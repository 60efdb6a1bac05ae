package callbacks

import (
	"context"
	"time"
)

// Args carries the event-specific context passed to a hook. Keys are
// documented per event below; hooks must tolerate missing keys.
//
//	Before/AfterSetup           KeyAPI; After adds KeyErr, KeyDuration
//	BeforeDecodeRequest         KeyRequestID, KeyRequest
//	AfterDecodeRequest          KeyRequestID, KeyInput, KeyErr, KeyDuration
//	BeforePredict               KeyRequestID, KeyInput
//	AfterPredict                KeyRequestID, KeyOutput, KeyErr, KeyDuration
//	BeforeEncodeResponse        KeyRequestID, KeyOutput
//	AfterEncodeResponse         KeyRequestID, KeyResponse, KeyErr, KeyDuration
//	Before/AfterServerRegister  KeyRouter; After adds KeyRoutes
type Args map[string]any

const (
	KeyAPI       = "api"
	KeyRequestID = "request_id"
	KeyRequest   = "request"
	KeyInput     = "input"
	KeyOutput    = "output"
	KeyResponse  = "response"
	KeyErr       = "err"
	KeyDuration  = "duration"
	KeyRouter    = "router"
	KeyRoutes    = "routes"
)

// String returns the string value at key, or "" when absent or not a string.
func (a Args) String(key string) string {
	s, _ := a[key].(string)
	return s
}

// Err returns the error stored under KeyErr, if any.
func (a Args) Err() error {
	err, _ := a[KeyErr].(error)
	return err
}

// Duration returns the stage duration stored under KeyDuration.
func (a Args) Duration() (time.Duration, bool) {
	d, ok := a[KeyDuration].(time.Duration)
	return d, ok
}

// RequestID is shorthand for a.String(KeyRequestID).
func (a Args) RequestID() string { return a.String(KeyRequestID) }

// Callback observes pipeline lifecycle events. Hooks are notified, never
// consulted: they return nothing and cannot alter the pipeline. A panic
// inside a hook is recovered by the Runner.
//
// Implementations embed Base and override only the hooks they need.
type Callback interface {
	OnBeforeSetup(ctx context.Context, args Args)
	OnAfterSetup(ctx context.Context, args Args)
	OnBeforeDecodeRequest(ctx context.Context, args Args)
	OnAfterDecodeRequest(ctx context.Context, args Args)
	OnBeforeEncodeResponse(ctx context.Context, args Args)
	OnAfterEncodeResponse(ctx context.Context, args Args)
	OnBeforePredict(ctx context.Context, args Args)
	OnAfterPredict(ctx context.Context, args Args)
	OnBeforeServerRegister(ctx context.Context, args Args)
	OnAfterServerRegister(ctx context.Context, args Args)
}

// Namer lets a callback choose the identity used in fault records.
type Namer interface {
	Name() string
}

// Base implements every hook as a no-op.
type Base struct{}

func (Base) OnBeforeSetup(context.Context, Args)          {}
func (Base) OnAfterSetup(context.Context, Args)           {}
func (Base) OnBeforeDecodeRequest(context.Context, Args)  {}
func (Base) OnAfterDecodeRequest(context.Context, Args)   {}
func (Base) OnBeforeEncodeResponse(context.Context, Args) {}
func (Base) OnAfterEncodeResponse(context.Context, Args)  {}
func (Base) OnBeforePredict(context.Context, Args)        {}
func (Base) OnAfterPredict(context.Context, Args)         {}
func (Base) OnBeforeServerRegister(context.Context, Args) {}
func (Base) OnAfterServerRegister(context.Context, Args)  {}

// NoopCallback does nothing. It is always safe to register.
type NoopCallback struct{ Base }

func (NoopCallback) Name() string { return "noop" }

var _ Callback = NoopCallback{}

// Func adapts a single function to every hook, like http.HandlerFunc.
type Func func(ctx context.Context, event EventName, args Args)

func (f Func) OnBeforeSetup(ctx context.Context, a Args) { f(ctx, BeforeSetup, a) }
func (f Func) OnAfterSetup(ctx context.Context, a Args)  { f(ctx, AfterSetup, a) }
func (f Func) OnBeforeDecodeRequest(ctx context.Context, a Args) {
	f(ctx, BeforeDecodeRequest, a)
}
func (f Func) OnAfterDecodeRequest(ctx context.Context, a Args) { f(ctx, AfterDecodeRequest, a) }
func (f Func) OnBeforeEncodeResponse(ctx context.Context, a Args) {
	f(ctx, BeforeEncodeResponse, a)
}
func (f Func) OnAfterEncodeResponse(ctx context.Context, a Args) {
	f(ctx, AfterEncodeResponse, a)
}
func (f Func) OnBeforePredict(ctx context.Context, a Args) { f(ctx, BeforePredict, a) }
func (f Func) OnAfterPredict(ctx context.Context, a Args)  { f(ctx, AfterPredict, a) }
func (f Func) OnBeforeServerRegister(ctx context.Context, a Args) {
	f(ctx, BeforeServerRegister, a)
}
func (f Func) OnAfterServerRegister(ctx context.Context, a Args) {
	f(ctx, AfterServerRegister, a)
}
