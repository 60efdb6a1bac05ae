package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"hookd/internal/callbacks"
	"hookd/internal/observers"
	"hookd/internal/pipeline"
	"hookd/pkg/types"
)

// newTestServer returns a ready pipeline with a recorder attached.
func newTestServer(t *testing.T, extra ...callbacks.Callback) (http.Handler, *observers.MemoryPublisher) {
	t.Helper()
	mem := observers.NewMemoryPublisher(0)
	r := callbacks.NewRunner()
	r.Add(observers.NewPublisher(mem).Named("recorder"))
	r.Add(extra...)
	p := pipeline.New(&pipeline.EchoAPI{Upper: true}, r, zerolog.Nop())
	if err := p.Setup(context.Background()); err != nil {
		t.Fatalf("setup: %v", err)
	}
	SetEventLog(mem)
	t.Cleanup(func() { SetEventLog(nil) })
	return NewMux(p), mem
}

func postJSON(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestPredict_OK(t *testing.T) {
	h, mem := newTestServer(t)
	mem.Reset()
	w := postJSON(h, `{"input":"hello"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var resp types.PredictResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if resp.Output != "HELLO" || resp.RequestID == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if got := w.Header().Get("X-Request-Id"); got != resp.RequestID {
		t.Fatalf("X-Request-Id=%q, body id=%q", got, resp.RequestID)
	}
	if n := len(mem.Events()); n != 6 {
		t.Fatalf("expected 6 request events, got %d", n)
	}
}

func TestPredict_UsesIncomingRequestID(t *testing.T) {
	h, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(`{"input":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", "abc-123")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-Id"); got != "abc-123" {
		t.Fatalf("X-Request-Id=%q", got)
	}
}

func TestPredict_RequiresJSONContentType(t *testing.T) {
	h, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(`{"input":"x"}`))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestPredict_DecodeErrorIs400(t *testing.T) {
	h, _ := newTestServer(t)
	for _, body := range []string{`{not json`, `{"input":""}`} {
		w := postJSON(h, body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %q: status=%d", body, w.Code)
		}
		var er types.ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil || er.Code != http.StatusBadRequest {
			t.Fatalf("unexpected error payload: %s", w.Body.String())
		}
	}
}

func TestPredict_BodyTooLarge(t *testing.T) {
	h, _ := newTestServer(t)
	SetMaxBodyBytes(16)
	defer SetMaxBodyBytes(0)
	w := postJSON(h, `{"input":"`+strings.Repeat("a", 64)+`"}`)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestPredict_NotReady(t *testing.T) {
	p := pipeline.New(&pipeline.EchoAPI{}, nil, zerolog.Nop())
	h := NewMux(p)
	w := postJSON(h, `{"input":"x"}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", w.Code)
	}
}

type explodingCallback struct{ callbacks.Base }

func (explodingCallback) OnAfterPredict(context.Context, callbacks.Args) { panic("kaboom") }

func TestPredict_CallbackPanicIsIsolated(t *testing.T) {
	h, _ := newTestServer(t, explodingCallback{})
	w := postJSON(h, `{"input":"still works"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "STILL WORKS") {
		t.Fatalf("body=%s", w.Body.String())
	}
}

func TestNewMux_TriggersServerRegisterEvents(t *testing.T) {
	_, mem := newTestServer(t)
	var before, after *observers.Event
	for _, e := range mem.Events() {
		e := e
		switch e.Name {
		case callbacks.BeforeServerRegister:
			before = &e
		case callbacks.AfterServerRegister:
			after = &e
		}
	}
	if before == nil || after == nil {
		t.Fatalf("server register events missing: %+v", mem.Events())
	}
	routes, _ := after.Fields[callbacks.KeyRoutes].([]string)
	found := false
	for _, rt := range routes {
		if rt == "POST /predict" {
			found = true
		}
	}
	if !found {
		t.Fatalf("routes missing POST /predict: %v", routes)
	}
}

func TestCatalogHandler(t *testing.T) {
	h, _ := newTestServer(t, callbacks.NoopCallback{})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events/catalog", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var resp types.CatalogResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(resp.Events) != 10 {
		t.Fatalf("events=%v", resp.Events)
	}
	if len(resp.Callbacks) != 2 || resp.Callbacks[0] != "recorder" || resp.Callbacks[1] != "noop" {
		t.Fatalf("callbacks=%v", resp.Callbacks)
	}
}

func TestDebugEventsHandler(t *testing.T) {
	h, _ := newTestServer(t)
	_ = postJSON(h, `{"input":"x"}`)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/events", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var resp types.EventsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	last := resp.Events[len(resp.Events)-1]
	if last.Name != string(callbacks.AfterEncodeResponse) || last.RequestID == "" {
		t.Fatalf("unexpected last event: %+v", last)
	}
}

func TestDebugEvents_NotMountedWithoutLog(t *testing.T) {
	SetEventLog(nil)
	p := pipeline.New(&pipeline.EchoAPI{}, nil, zerolog.Nop())
	h := NewMux(p)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/events", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestReadyz(t *testing.T) {
	h, _ := newTestServer(t)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestReadyz_NotReady(t *testing.T) {
	h := NewMux(pipeline.New(&pipeline.EchoAPI{}, nil, zerolog.Nop()))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "loading") {
		t.Fatalf("body=%q", w.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	h, _ := newTestServer(t)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("status=%d body=%q", w.Code, w.Body.String())
	}
}

func TestCORS_Enabled(t *testing.T) {
	SetCORSOptions(true, []string{"https://example.com"}, []string{"GET", "POST"}, []string{"Content-Type"})
	defer SetCORSOptions(false, nil, nil, nil)
	h, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/predict", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://example.com" {
		t.Fatalf("Access-Control-Allow-Origin=%q", got)
	}
}

func TestPredict_DebugLogsResponseBody(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	defer func() { zlog = nil }()
	h, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/predict?log=debug", strings.NewReader(`{"input":"trace me"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	out := buf.String()
	if !strings.Contains(out, "TRACE ME") || !strings.Contains(out, "predict end") {
		t.Fatalf("debug log missing body or end record: %q", out)
	}
}
