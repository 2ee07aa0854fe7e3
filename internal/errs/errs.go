// Package errs classifies pipeline failures so the CLI can report which stage
// failed and exit non-zero without retrying.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies the stage at which a run failed.
type Kind int

const (
	KindUnknown Kind = iota
	// KindConfig: the run cannot start (metafile absent, bad layout file, missing font).
	KindConfig
	// KindValidation: a script item is incomplete or references missing media.
	KindValidation
	// KindMediaProbe: a media file exists but cannot be probed or decoded.
	KindMediaProbe
	// KindRender: the final muxing/encoding step failed.
	KindRender
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindValidation:
		return "validation"
	case KindMediaProbe:
		return "media_probe"
	case KindRender:
		return "render"
	default:
		return "unknown"
	}
}

// Error wraps an underlying failure with its Kind and the operation that produced it.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New wraps err. A nil err yields nil.
func New(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Config, MediaProbe and Render are shorthands for New.
func Config(op string, err error) error     { return New(KindConfig, op, err) }
func MediaProbe(op string, err error) error { return New(KindMediaProbe, op, err) }
func Render(op string, err error) error     { return New(KindRender, op, err) }

// KindOf returns the Kind of the outermost *Error in the chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var v *ValidationError
	if errors.As(err, &v) {
		return KindValidation
	}
	return KindUnknown
}

// ExitCode maps a run error to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch KindOf(err) {
	case KindConfig:
		return 2
	case KindValidation:
		return 3
	case KindMediaProbe:
		return 4
	case KindRender:
		return 5
	default:
		return 1
	}
}

// Issue is one problem found while validating a script item.
type Issue struct {
	Index  int    // item index, -1 for script-level issues
	Field  string // json field name
	Path   string // offending path, if any
	Reason string
}

func (i Issue) String() string {
	var b strings.Builder
	if i.Index >= 0 {
		fmt.Fprintf(&b, "item %d: ", i.Index)
	}
	b.WriteString(i.Field)
	b.WriteString(" ")
	b.WriteString(i.Reason)
	if i.Path != "" {
		fmt.Fprintf(&b, " (%s)", i.Path)
	}
	return b.String()
}

// ValidationError reports every issue found in a script.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.String())
	}
	return fmt.Sprintf("validation: %d issue(s): %s", len(e.Issues), strings.Join(parts, "; "))
}
