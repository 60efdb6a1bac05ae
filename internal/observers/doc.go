// Package observers provides ready-made callbacks for the serving pipeline.
// Each type embeds a callbacks.Func rather than callbacks.Base, so it
// receives every event through a single handler. Name() of a built callback
// matches the name Build accepts for it:
//
//   - logger.go: structured event log (zerolog).
//   - metrics.go: Prometheus counters and stage latency histograms.
//   - tracer.go: OpenTelemetry spans around request stages and setup.
//   - publisher.go: forwards events to an EventPublisher sink.
//   - memory.go: in-memory EventPublisher used by tests and /debug/events.
//   - build.go: constructs callbacks by name from configuration.
package observers
