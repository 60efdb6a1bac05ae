package observers

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"hookd/internal/callbacks"
)

const (
	tracerName  = "hookd"
	requestSpan = "request"
)

// Tracer opens a span on every Before* event and ends it on the matching
// After* event. Request stages are paired by request id and nested under a
// per-request span that ends with the response, or with the first failed
// stage. Setup and server registration get standalone spans.
type Tracer struct {
	callbacks.Func
	t trace.Tracer

	mu       sync.Mutex
	spans    map[string]trace.Span
	requests map[string]context.Context
}

// NewTracer uses tp, or the global provider when tp is nil.
func NewTracer(tp trace.TracerProvider) *Tracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	t := &Tracer{
		t:        tp.Tracer(tracerName),
		spans:    make(map[string]trace.Span),
		requests: make(map[string]context.Context),
	}
	t.Func = t.handle
	return t
}

func (t *Tracer) Name() string { return "trace" }

// Open returns the number of spans started but not yet ended, request spans
// included.
func (t *Tracer) Open() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.spans) + len(t.requests)
}

func isRequestStage(stage string) bool {
	switch stage {
	case "decode_request", "predict", "encode_response":
		return true
	}
	return false
}

func (t *Tracer) handle(ctx context.Context, event callbacks.EventName, args callbacks.Args) {
	stage := event.Stage()
	rid := args.RequestID()
	key := stage
	if rid != "" {
		key = stage + "/" + rid
	}
	nested := rid != "" && isRequestStage(stage)

	if event.IsBefore() {
		attrs := []attribute.KeyValue{attribute.String("hookd.stage", stage)}
		if rid != "" {
			attrs = append(attrs, attribute.String("hookd.request_id", rid))
		}
		t.mu.Lock()
		defer t.mu.Unlock()
		parent := ctx
		if nested {
			parent = t.requestContext(ctx, rid)
		}
		_, span := t.t.Start(parent, stage, trace.WithAttributes(attrs...))
		if prev, ok := t.spans[key]; ok {
			prev.End()
		}
		t.spans[key] = span
		return
	}

	err := args.Err()
	t.mu.Lock()
	span, ok := t.spans[key]
	delete(t.spans, key)
	var req trace.Span
	if nested && (err != nil || event == callbacks.AfterEncodeResponse) {
		if rctx, ok := t.requests[rid]; ok {
			req = trace.SpanFromContext(rctx)
			delete(t.requests, rid)
		}
	}
	t.mu.Unlock()
	if ok {
		endSpan(span, err)
	}
	if req != nil {
		endSpan(req, err)
	}
}

// requestContext returns the context carrying the request span for rid,
// starting one under ctx on first use. t.mu must be held.
func (t *Tracer) requestContext(ctx context.Context, rid string) context.Context {
	if rctx, ok := t.requests[rid]; ok {
		return rctx
	}
	rctx, _ := t.t.Start(ctx, requestSpan,
		trace.WithAttributes(attribute.String("hookd.request_id", rid)))
	t.requests[rid] = rctx
	return rctx
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
