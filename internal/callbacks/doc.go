// Package callbacks is the lifecycle event registry of the serving pipeline.
//
// The catalog (events.go) names ten before/after moments around setup,
// request decoding, prediction, response encoding and server registration.
// A Callback implements one hook per event; embedding Base makes every hook
// a no-op so implementations override only what they observe. A Runner
// dispatches a triggered event to every registered callback in registration
// order and recovers panics so one failing callback never affects the
// others or the caller.
package callbacks
