package classifier

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Registration-time errors.
	ErrInvalidWeight = errors.New("invalid classifier weight")
	ErrDuplicateName = errors.New("duplicate classifier name")
	ErrInvalidLevel  = errors.New("invalid classifier level")
	ErrNilClassifier = errors.New("nil classifier")

	// Call-time errors. Any of them aborts the whole Rank call.
	ErrNoApplicableClassifiers = errors.New("no applicable classifiers")
	ErrScoreOutOfRange         = errors.New("classifier score out of range")
	ErrClassifierFailure       = errors.New("classifier failure")
	ErrInvalidThreshold        = errors.New("invalid mismatch threshold")
)

// Error describes a registration or ranking failure. Kind is one of the
// sentinel errors above; Err is the underlying cause, if any.
type Error struct {
	Kind       error
	Classifier string
	Level      Level
	Score      float64
	Err        error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.Error())
	if e.Classifier != "" {
		fmt.Fprintf(&sb, " (classifier %q)", e.Classifier)
	}
	if errors.Is(e.Kind, ErrScoreOutOfRange) {
		fmt.Fprintf(&sb, ": score %v", e.Score)
	}
	if errors.Is(e.Kind, ErrNoApplicableClassifiers) {
		fmt.Fprintf(&sb, " at level %s", e.Level)
	}
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	return sb.String()
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
