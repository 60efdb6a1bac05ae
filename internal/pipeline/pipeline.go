package pipeline

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"hookd/internal/callbacks"
)

// API is implemented by the model being served. The pipeline calls the
// methods in order DecodeRequest, Predict, EncodeResponse for each request,
// after a single Setup.
type API interface {
	Setup(ctx context.Context) error
	DecodeRequest(ctx context.Context, body []byte) (any, error)
	Predict(ctx context.Context, input any) (any, error)
	EncodeResponse(ctx context.Context, output any) (any, error)
}

// Pipeline drives an API and notifies registered callbacks around every
// stage. Callbacks observe only; their failures never affect a request.
type Pipeline struct {
	api    API
	runner *callbacks.Runner
	log    zerolog.Logger
	ready  atomic.Bool
}

func New(api API, runner *callbacks.Runner, log zerolog.Logger) *Pipeline {
	if runner == nil {
		runner = callbacks.NewRunner()
	}
	return &Pipeline{api: api, runner: runner, log: log}
}

// Runner exposes the callback runner so hosts can register observers.
func (p *Pipeline) Runner() *callbacks.Runner { return p.runner }

// Ready reports whether Setup completed successfully.
func (p *Pipeline) Ready() bool { return p.ready.Load() }

// Setup runs api.Setup between BeforeSetup and AfterSetup.
func (p *Pipeline) Setup(ctx context.Context) error {
	p.trigger(ctx, callbacks.BeforeSetup, callbacks.Args{callbacks.KeyAPI: p.api})
	start := time.Now()
	err := p.api.Setup(ctx)
	after := callbacks.Args{callbacks.KeyAPI: p.api, callbacks.KeyDuration: time.Since(start)}
	if err != nil {
		after[callbacks.KeyErr] = err
	}
	p.trigger(ctx, callbacks.AfterSetup, after)
	if err != nil {
		return &StageError{Stage: StageSetup, Err: err}
	}
	p.ready.Store(true)
	return nil
}

// RegisterServer wraps route registration with the server-register events.
// register returns the routes it mounted.
func (p *Pipeline) RegisterServer(ctx context.Context, router any, register func() []string) {
	p.trigger(ctx, callbacks.BeforeServerRegister, callbacks.Args{callbacks.KeyRouter: router})
	routes := register()
	p.trigger(ctx, callbacks.AfterServerRegister, callbacks.Args{
		callbacks.KeyRouter: router,
		callbacks.KeyRoutes: routes,
	})
}

// Run processes one request body. An empty requestID is replaced with a
// fresh UUID; the id in use is returned and is also available to the API
// through RequestIDFromContext.
func (p *Pipeline) Run(ctx context.Context, requestID string, body []byte) (any, string, error) {
	if requestID == "" {
		requestID = uuid.New().String()
	}
	ctx = WithRequestID(ctx, requestID)

	p.trigger(ctx, callbacks.BeforeDecodeRequest, callbacks.Args{
		callbacks.KeyRequestID: requestID,
		callbacks.KeyRequest:   body,
	})
	start := time.Now()
	input, err := p.api.DecodeRequest(ctx, body)
	p.trigger(ctx, callbacks.AfterDecodeRequest, stageArgs(requestID, callbacks.KeyInput, input, start, err))
	if err != nil {
		return nil, requestID, &StageError{Stage: StageDecode, Err: err}
	}

	p.trigger(ctx, callbacks.BeforePredict, callbacks.Args{
		callbacks.KeyRequestID: requestID,
		callbacks.KeyInput:     input,
	})
	start = time.Now()
	output, err := p.api.Predict(ctx, input)
	p.trigger(ctx, callbacks.AfterPredict, stageArgs(requestID, callbacks.KeyOutput, output, start, err))
	if err != nil {
		return nil, requestID, &StageError{Stage: StagePredict, Err: err}
	}

	p.trigger(ctx, callbacks.BeforeEncodeResponse, callbacks.Args{
		callbacks.KeyRequestID: requestID,
		callbacks.KeyOutput:    output,
	})
	start = time.Now()
	resp, err := p.api.EncodeResponse(ctx, output)
	p.trigger(ctx, callbacks.AfterEncodeResponse, stageArgs(requestID, callbacks.KeyResponse, resp, start, err))
	if err != nil {
		return nil, requestID, &StageError{Stage: StageEncode, Err: err}
	}
	return resp, requestID, nil
}

func stageArgs(requestID, key string, value any, start time.Time, err error) callbacks.Args {
	a := callbacks.Args{
		callbacks.KeyRequestID: requestID,
		callbacks.KeyDuration:  time.Since(start),
	}
	if err != nil {
		a[callbacks.KeyErr] = err
	} else {
		a[key] = value
	}
	return a
}

func (p *Pipeline) trigger(ctx context.Context, event callbacks.EventName, args callbacks.Args) {
	if err := p.runner.Trigger(ctx, event, args); err != nil {
		p.log.Error().Err(err).Str("event", string(event)).Msg("trigger")
	}
}
