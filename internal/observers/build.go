package observers

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"hookd/internal/callbacks"
)

// Deps carries the shared collaborators observers may need.
type Deps struct {
	Logger         zerolog.Logger
	TracerProvider trace.TracerProvider
	// Memory backs the "recorder" observer. Build allocates one when nil.
	Memory *MemoryPublisher
}

// Names lists the observers Build understands.
func Names() []string { return []string{"log", "metrics", "trace", "recorder", "noop"} }

// Build returns callbacks in the order of names. Unknown names are an error.
func Build(names []string, deps *Deps) ([]callbacks.Callback, error) {
	if deps == nil {
		deps = &Deps{Logger: zerolog.Nop()}
	}
	out := make([]callbacks.Callback, 0, len(names))
	for _, n := range names {
		switch strings.ToLower(strings.TrimSpace(n)) {
		case "log":
			out = append(out, NewLogger(deps.Logger))
		case "metrics":
			out = append(out, NewMetrics())
		case "trace":
			out = append(out, NewTracer(deps.TracerProvider))
		case "recorder":
			if deps.Memory == nil {
				deps.Memory = NewMemoryPublisher(defaultMemoryLimit)
			}
			out = append(out, NewPublisher(deps.Memory).Named("recorder"))
		case "noop":
			out = append(out, callbacks.NoopCallback{})
		case "":
		default:
			return nil, fmt.Errorf("unknown callback %q (known: %s)", n, strings.Join(Names(), ", "))
		}
	}
	return out, nil
}

const defaultMemoryLimit = 1024
