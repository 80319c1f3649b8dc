package pipeline

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnsupportedType = errors.New("pipeline: unsupported content type")
	ErrEmptyUpload     = errors.New("pipeline: upload has no content")
)

// StageError tags a failure with the stage it occurred in. Later stages
// never run after one is returned.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}

// FailedStage extracts the stage a pipeline error occurred in.
func FailedStage(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}

func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnsupportedType), errors.Is(err, ErrEmptyUpload):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}
