package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"hookd/internal/callbacks"
	"hookd/internal/config"
	"hookd/internal/httpapi"
	"hookd/internal/observers"
	"hookd/internal/pipeline"
)

// newLogger builds the process logger from config.
func newLogger(cfg config.Config, w io.Writer) zerolog.Logger {
	if strings.EqualFold(cfg.LogFormat, "console") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || cfg.LogLevel == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Str("svc", "hookd").Logger()
}

// buildServer wires callbacks, pipeline and HTTP handler. It runs the
// pipeline setup, so the returned handler is ready to serve.
func buildServer(ctx context.Context, cfg config.Config, log zerolog.Logger) (http.Handler, *pipeline.Pipeline, error) {
	deps := &observers.Deps{Logger: log.With().Str("component", "callbacks").Logger()}
	if cfg.EventLogSize > 0 {
		deps.Memory = observers.NewMemoryPublisher(cfg.EventLogSize)
	}
	cbs, err := observers.Build(cfg.Callbacks, deps)
	if err != nil {
		return nil, nil, err
	}
	runner := callbacks.NewRunner(callbacks.WithLogger(log))
	runner.Add(cbs...)

	p := pipeline.New(&pipeline.EchoAPI{Upper: cfg.Upper}, runner, log)
	if err := p.Setup(ctx); err != nil {
		return nil, nil, fmt.Errorf("setup: %w", err)
	}

	httpapi.SetLogger(log)
	httpapi.SetBaseContext(ctx)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetPredictTimeoutSeconds(cfg.PredictTimeoutSeconds)
	httpapi.SetDefaultLogLevel(cfg.RequestLog)
	httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSOrigins, cfg.CORSMethods, cfg.CORSHeaders)
	if containsName(cfg.Callbacks, "recorder") {
		httpapi.SetEventLog(deps.Memory)
	} else {
		httpapi.SetEventLog(nil)
	}
	return httpapi.NewMux(p), p, nil
}

func containsName(names []string, want string) bool {
	for _, n := range names {
		if strings.EqualFold(strings.TrimSpace(n), want) {
			return true
		}
	}
	return false
}

func serve(ctx context.Context, cfg config.Config, logOut io.Writer) error {
	log := newLogger(cfg, logOut)
	h, _, err := buildServer(ctx, cfg, log)
	if err != nil {
		return err
	}
	srv := &http.Server{Addr: cfg.Addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	log.Info().Str("addr", cfg.Addr).Strs("callbacks", cfg.Callbacks).Msg("hookd listening")
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	timeout := time.Duration(cfg.ShutdownTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	sctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown error")
		return err
	}
	log.Info().Msg("hookd stopped")
	return nil
}
