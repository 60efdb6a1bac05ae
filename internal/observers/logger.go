package observers

import (
	"context"

	"github.com/rs/zerolog"

	"hookd/internal/callbacks"
)

// Logger writes one structured record per event. Failed stages are logged
// at warn level, everything else at debug.
type Logger struct {
	callbacks.Func
	log zerolog.Logger
}

func NewLogger(l zerolog.Logger) *Logger {
	lg := &Logger{log: l}
	lg.Func = lg.handle
	return lg
}

func (l *Logger) Name() string { return "log" }

func (l *Logger) handle(_ context.Context, event callbacks.EventName, args callbacks.Args) {
	var z *zerolog.Event
	if err := args.Err(); err != nil {
		z = l.log.Warn().Err(err)
	} else {
		z = l.log.Debug()
	}
	if !z.Enabled() {
		return
	}
	z = z.Str("event", event.Short()).Str("stage", event.Stage())
	if rid := args.RequestID(); rid != "" {
		z = z.Str("request_id", rid)
	}
	if d, ok := args.Duration(); ok {
		z = z.Dur("dur", d)
	}
	if routes, ok := args[callbacks.KeyRoutes].([]string); ok {
		z = z.Strs("routes", routes)
	}
	z.Msg("pipeline event")
}
