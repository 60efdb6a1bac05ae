package types

// PredictRequest is the payload accepted by POST /predict.
type PredictRequest struct {
	// Input text passed to the model.
	// example: hello world
	Input string `json:"input" example:"hello world"`
	// Optional free-form parameters forwarded to the API implementation.
	Params map[string]any `json:"params,omitempty"`
}

// PredictResponse is returned by POST /predict.
type PredictResponse struct {
	// Request identifier, echoed from X-Request-Id or generated.
	// example: 3f0e8c1e-5b7e-4bb2-9f5d-2a3f7d1b6c11
	RequestID string `json:"request_id" example:"3f0e8c1e-5b7e-4bb2-9f5d-2a3f7d1b6c11"`
	// Model output.
	// example: HELLO WORLD
	Output string `json:"output" example:"HELLO WORLD"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// EventRecord is one entry of GET /debug/events.
type EventRecord struct {
	// example: on_after_predict
	Name string `json:"name" example:"on_after_predict"`
	// example: 3f0e8c1e-5b7e-4bb2-9f5d-2a3f7d1b6c11
	RequestID string `json:"request_id,omitempty"`
	// Event time in unix milliseconds.
	// example: 1700000000000
	TimeUnixMs int64          `json:"time_unix_ms" example:"1700000000000"`
	Fields     map[string]any `json:"fields,omitempty"`
}

// EventsResponse is returned by GET /debug/events.
type EventsResponse struct {
	Events []EventRecord `json:"events"`
}

// CatalogResponse is returned by GET /events/catalog.
type CatalogResponse struct {
	// Lifecycle events callbacks can observe.
	// example: ["on_before_setup","on_after_setup"]
	Events []string `json:"events"`
	// Registered callbacks in invocation order.
	// example: ["log","metrics"]
	Callbacks []string `json:"callbacks"`
}
