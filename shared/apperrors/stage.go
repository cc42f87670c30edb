package apperrors

import (
	"errors"
	"fmt"
)

// Effect describes what a failed orchestration may have left behind.
type Effect string

const (
	// EffectNone: the request was rejected and nothing was applied.
	EffectNone Effect = "none"
	// EffectUnknown: the failing call itself may or may not have mutated
	// state (timeout or upstream error on a mutating call); nothing earlier
	// was committed.
	EffectUnknown Effect = "unknown"
	// EffectPartial: at least one earlier mutation is committed and was not
	// undone.
	EffectPartial Effect = "partial"
)

// StageError is returned by the deposit and transfer orchestrators. It keeps
// the classification of the underlying failure reachable through Unwrap.
type StageError struct {
	Operation string
	Stage     int
	Step      string
	Effect    Effect
	Err       error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed at stage %d (%s, effect=%s): %v", e.Operation, e.Stage, e.Step, e.Effect, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Rejected reports whether the caller can rely on nothing having happened.
func (e *StageError) Rejected() bool { return e.Effect == EffectNone }

// ClassifyEffect decides the effect of err at a stage. mutating says whether
// the failing call itself writes; committed says whether an earlier stage
// already wrote.
func ClassifyEffect(err error, mutating, committed bool) Effect {
	switch {
	case committed:
		return EffectPartial
	case mutating && errors.Is(err, ErrDependencyFailure):
		return EffectUnknown
	default:
		return EffectNone
	}
}

// AsStageError unwraps err to a *StageError if there is one.
func AsStageError(err error) (*StageError, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
