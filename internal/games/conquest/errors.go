package conquest

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingContent is returned when there is no study text to build a level from.
	ErrMissingContent = errors.New("conquest: no study content supplied")

	// ErrInsufficientCredits marks a generation refused because the user is out of tokens.
	ErrInsufficientCredits = errors.New("conquest: insufficient tokens")

	// ErrIllegalTransition is returned when an operation is not allowed in the current phase.
	ErrIllegalTransition = errors.New("conquest: illegal state transition")
)

// GenerationError is a terminal failure to obtain a playable level.
type GenerationError struct {
	// InsufficientCredits is set when the user ran out of tokens, so the
	// caller can render a top-up call-to-action instead of a generic message.
	InsufficientCredits bool
	Message             string
	Err                 error
}

func (e *GenerationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "An unknown error occurred while building your game."
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// illegal builds an ErrIllegalTransition describing the rejected request.
func illegal(op string, from Phase) error {
	return fmt.Errorf("%w: %s while %s", ErrIllegalTransition, op, from)
}
