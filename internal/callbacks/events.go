package callbacks

import (
	"context"
	"strings"
)

// EventName identifies a point in the serving pipeline's lifecycle.
// The value equals the logical name of the Callback hook it maps to.
type EventName string

const (
	BeforeSetup          EventName = "on_before_setup"
	AfterSetup           EventName = "on_after_setup"
	BeforeDecodeRequest  EventName = "on_before_decode_request"
	AfterDecodeRequest   EventName = "on_after_decode_request"
	BeforeEncodeResponse EventName = "on_before_encode_response"
	AfterEncodeResponse  EventName = "on_after_encode_response"
	BeforePredict        EventName = "on_before_predict"
	AfterPredict         EventName = "on_after_predict"
	BeforeServerRegister EventName = "on_before_server_register"
	AfterServerRegister  EventName = "on_after_server_register"
)

var catalog = [...]EventName{
	BeforeSetup,
	AfterSetup,
	BeforeDecodeRequest,
	AfterDecodeRequest,
	BeforeEncodeResponse,
	AfterEncodeResponse,
	BeforePredict,
	AfterPredict,
	BeforeServerRegister,
	AfterServerRegister,
}

type hookFunc func(Callback, context.Context, Args)

// hooks binds every catalog entry to its Callback method.
var hooks = map[EventName]hookFunc{
	BeforeSetup:          Callback.OnBeforeSetup,
	AfterSetup:           Callback.OnAfterSetup,
	BeforeDecodeRequest:  Callback.OnBeforeDecodeRequest,
	AfterDecodeRequest:   Callback.OnAfterDecodeRequest,
	BeforeEncodeResponse: Callback.OnBeforeEncodeResponse,
	AfterEncodeResponse:  Callback.OnAfterEncodeResponse,
	BeforePredict:        Callback.OnBeforePredict,
	AfterPredict:         Callback.OnAfterPredict,
	BeforeServerRegister: Callback.OnBeforeServerRegister,
	AfterServerRegister:  Callback.OnAfterServerRegister,
}

// Events returns every event in catalog order.
func Events() []EventName {
	out := make([]EventName, len(catalog))
	copy(out, catalog[:])
	return out
}

// Valid reports whether e belongs to the catalog.
func (e EventName) Valid() bool {
	_, ok := hooks[e]
	return ok
}

// Short returns the name without the "on_" prefix, e.g. "before_predict".
func (e EventName) Short() string { return strings.TrimPrefix(string(e), "on_") }

func (e EventName) String() string { return string(e) }

// ParseEvent accepts either the full value ("on_before_predict") or the
// short form ("before_predict").
func ParseEvent(s string) (EventName, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	e := EventName(s)
	if !strings.HasPrefix(s, "on_") {
		e = EventName("on_" + s)
	}
	if !e.Valid() {
		return "", &UnknownEventError{Name: EventName(s)}
	}
	return e, nil
}

// Stage returns the pipeline phase of e ("setup", "predict", ...).
func (e EventName) Stage() string {
	s := e.Short()
	if rest, ok := strings.CutPrefix(s, "before_"); ok {
		return rest
	}
	rest, _ := strings.CutPrefix(s, "after_")
	return rest
}

// IsBefore reports whether e opens a phase.
func (e EventName) IsBefore() bool { return strings.HasPrefix(string(e), "on_before_") }
