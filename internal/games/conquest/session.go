package conquest

import (
	"context"
	"errors"
	"strings"
)

// Request is the input of a level generation.
type Request struct {
	Content string // study text the level is built from
	User    string // account charged for the generation, if any
	Seed    int64  // seed for deterministic backends
}

// Generator produces a level from study content. Implementations may block
// for a long time and must honour ctx cancellation.
type Generator interface {
	Name() string
	Generate(ctx context.Context, req Request) (*Level, error)
}

// Generate runs one generation. Empty content fails with ErrMissingContent
// before the generator is called. Any other failure is returned as a
// *GenerationError. There is no retry here.
func Generate(ctx context.Context, gen Generator, req Request) (*Level, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, ErrMissingContent
	}
	if gen == nil {
		return nil, &GenerationError{Message: "No level generator is configured."}
	}

	level, err := gen.Generate(ctx, req)
	if err != nil {
		return nil, normalizeGenerationError(err)
	}
	if err := CheckGenerated(level); err != nil {
		return nil, err
	}
	return level, nil
}

// CheckGenerated reports a missing or malformed generator result as a
// *GenerationError.
func CheckGenerated(level *Level) error {
	if level == nil {
		return &GenerationError{Message: "The level generator returned no level."}
	}
	if err := level.Validate(); err != nil {
		return &GenerationError{
			Message: "The generated level is malformed: " + err.Error(),
			Err:     err,
		}
	}
	return nil
}

func normalizeGenerationError(err error) error {
	var genErr *GenerationError
	switch {
	case errors.As(err, &genErr):
		return genErr
	case errors.Is(err, ErrMissingContent):
		return err
	case errors.Is(err, ErrInsufficientCredits):
		return &GenerationError{InsufficientCredits: true, Message: "Insufficient tokens", Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &GenerationError{Message: "The AI Level Designer took too long to respond.", Err: err}
	case errors.Is(err, context.Canceled):
		return &GenerationError{Message: "Level generation was cancelled.", Err: err}
	default:
		return &GenerationError{Message: err.Error(), Err: err}
	}
}

// Start feeds the outcome of a generation into a pending engine.
func (e *Engine) Start(level *Level, genErr error) error {
	if genErr != nil {
		return e.Fail(genErr)
	}
	return e.Load(level)
}
