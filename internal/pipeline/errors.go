package pipeline

import (
	"errors"
	"net/http"
)

// Stage names reported in StageError.
const (
	StageSetup   = "setup"
	StageDecode  = "decode_request"
	StagePredict = "predict"
	StageEncode  = "encode_response"
)

// StageError wraps an API failure with the stage it happened in.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return e.Stage + ": " + e.Err.Error() }

func (e *StageError) Unwrap() error { return e.Err }

// StatusCode maps the failure to an HTTP status: decode failures are the
// client's fault, anything else is a server error. An underlying error
// carrying its own status wins.
func (e *StageError) StatusCode() int {
	var sc interface{ StatusCode() int }
	if errors.As(e.Err, &sc) {
		return sc.StatusCode()
	}
	if e.Stage == StageDecode {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// IsStage reports whether err is a StageError for stage.
func IsStage(err error, stage string) bool {
	var se *StageError
	return errors.As(err, &se) && se.Stage == stage
}
