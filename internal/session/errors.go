package session

import (
	"errors"
	"fmt"

	"github.com/akorchak/lingopad/internal/fsm"
)

// StageError wraps a failure with the pipeline stage it occurred in, so
// callers and indicators can report where a session died.
type StageError struct {
	Stage fsm.State
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func failAt(stage fsm.State, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}

// FailedStage extracts the stage from a session error, or empty when the
// error carries no stage.
func FailedStage(err error) fsm.State {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage
	}
	return ""
}
