package collect

import (
	"errors"
	"fmt"
)

// Sentinel errors for the per-target failure taxonomy. All of them are
// caught at the target boundary inside the Engine and converted into a
// FAILED snapshot; none abort the run.
var (
	// ErrUnresolved means every search stage returned zero results.
	ErrUnresolved = errors.New("identifier unresolved")

	// ErrEmptyParse means no selector candidate matched for any metric the
	// platform declares.
	ErrEmptyParse = errors.New("no declared metric parsed")
)

// FailureKind classifies a target failure for snapshot messages and metrics.
type FailureKind string

// Failure kinds.
const (
	FailureResolution    FailureKind = "resolution"
	FailureFetch         FailureKind = "fetch"
	FailureParse         FailureKind = "parse"
	FailureNormalization FailureKind = "normalization"
)

// TargetError wraps a failure with its kind and the track it belongs to.
type TargetError struct {
	Kind     FailureKind
	TrackKey string
	Err      error
}

func (e *TargetError) Error() string {
	return fmt.Sprintf("%s failure for %s: %v", e.Kind, e.TrackKey, e.Err)
}

func (e *TargetError) Unwrap() error { return e.Err }

func newTargetError(kind FailureKind, trackKey string, err error) *TargetError {
	return &TargetError{Kind: kind, TrackKey: trackKey, Err: err}
}
