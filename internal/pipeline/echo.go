package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"hookd/pkg/types"
)

// EchoAPI returns the request input, optionally upper-cased. It stands in
// for a real model when running the server without one.
type EchoAPI struct {
	Upper bool
}

var errEmptyInput = errors.New("input is required")

func (a *EchoAPI) Setup(ctx context.Context) error { return ctx.Err() }

func (a *EchoAPI) DecodeRequest(_ context.Context, body []byte) (any, error) {
	var req types.PredictRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	if strings.TrimSpace(req.Input) == "" {
		return nil, errEmptyInput
	}
	return req, nil
}

func (a *EchoAPI) Predict(ctx context.Context, input any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	req, ok := input.(types.PredictRequest)
	if !ok {
		return nil, fmt.Errorf("unexpected input type %T", input)
	}
	if a.Upper {
		return strings.ToUpper(req.Input), nil
	}
	return req.Input, nil
}

func (a *EchoAPI) EncodeResponse(ctx context.Context, output any) (any, error) {
	s, ok := output.(string)
	if !ok {
		return nil, fmt.Errorf("unexpected output type %T", output)
	}
	return types.PredictResponse{RequestID: RequestIDFromContext(ctx), Output: s}, nil
}
