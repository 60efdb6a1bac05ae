package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hookd/internal/callbacks"
	"hookd/internal/observers"
	"hookd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
// *pipeline.Pipeline satisfies it.
type Service interface {
	Run(ctx context.Context, requestID string, body []byte) (any, string, error)
	Ready() bool
	RegisterServer(ctx context.Context, router any, register func() []string)
	Runner() *callbacks.Runner
}

// eventLog backs GET /debug/events when set.
var eventLog *observers.MemoryPublisher

// SetEventLog exposes recorded callback events at /debug/events.
func SetEventLog(m *observers.MemoryPublisher) { eventLog = m }

// NewMux builds the HTTP handler. Route registration is reported to the
// service's callbacks through the server-register events.
func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			MaxAge:         300,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	svc.RegisterServer(serverBaseCtx, r, func() []string {
		mountRoutes(r, svc)
		return routesOf(r)
	})
	return r
}

func mountRoutes(r chi.Router, svc Service) {
	r.Post("/predict", predictHandler(svc))

	r.Get("/events/catalog", func(w http.ResponseWriter, r *http.Request) {
		resp := types.CatalogResponse{}
		for _, e := range callbacks.Events() {
			resp.Events = append(resp.Events, string(e))
		}
		for _, cb := range svc.Runner().Callbacks() {
			resp.Callbacks = append(resp.Callbacks, callbacks.NameOf(cb))
		}
		writeJSON(w, http.StatusOK, resp)
	})

	if eventLog != nil {
		r.Get("/debug/events", func(w http.ResponseWriter, r *http.Request) {
			evts := eventLog.Events()
			resp := types.EventsResponse{Events: make([]types.EventRecord, 0, len(evts))}
			for _, e := range evts {
				resp.Events = append(resp.Events, types.EventRecord{
					Name:       string(e.Name),
					RequestID:  e.RequestID,
					TimeUnixMs: e.Time.UnixMilli(),
					Fields:     e.Fields,
				})
			}
			writeJSON(w, http.StatusOK, resp)
		})
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
}

// predictHandler runs one request through the pipeline.
//
// @Summary      Run a prediction
// @Tags         predict
// @Accept       json
// @Produce      json
// @Param        request  body      types.PredictRequest  true  "Prediction input"
// @Success      200      {object}  types.PredictResponse
// @Failure      400      {object}  types.ErrorResponse
// @Failure      413      {object}  types.ErrorResponse
// @Failure      415      {object}  types.ErrorResponse
// @Failure      500      {object}  types.ErrorResponse
// @Failure      503      {object}  types.ErrorResponse
// @Router       /predict [post]
func predictHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
		if !svc.Ready() {
			writeJSONError(w, http.StatusServiceUnavailable, "server is not ready")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		body, err := io.ReadAll(r.Body)
		if err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				writeJSONError(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			writeJSONError(w, http.StatusBadRequest, "failed to read body")
			return
		}

		lvl := requestLogLevel(r)
		start := time.Now()
		// Join server base context with request context so shutdown cancels work too.
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		if predictTimeout > 0 {
			var tcancel context.CancelFunc
			ctx, tcancel = context.WithTimeout(ctx, time.Duration(predictTimeout)*time.Second)
			defer tcancel()
		}

		resp, rid, err := svc.Run(ctx, middleware.GetReqID(r.Context()), body)
		if rid != "" {
			w.Header().Set("X-Request-Id", rid)
		}
		if err != nil {
			// If context was canceled (client disconnect), just return.
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			status := statusOf(err)
			if errors.Is(err, context.DeadlineExceeded) {
				status = http.StatusGatewayTimeout
			}
			writeJSONError(w, status, err.Error())
			logPredictEnd(r, lvl, status, start, err)
			return
		}

		out := io.Writer(w)
		if lvl >= LevelDebug {
			out = io.MultiWriter(w, &loggingLineWriter{})
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(out).Encode(resp)
		logPredictEnd(r, lvl, http.StatusOK, start, nil)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && zlog != nil {
		zlog.Error().Err(err).Msg("encode response")
	}
}

// routesOf lists "METHOD /pattern" for every mounted route, sorted.
func routesOf(r chi.Routes) []string {
	var out []string
	_ = chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		out = append(out, method+" "+route)
		return nil
	})
	sort.Strings(out)
	return out
}
