package session

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownKeyword = errors.New("session: unknown machine keyword")
	ErrUnknownSize    = errors.New("session: unknown size")
	ErrNoSizeOption   = errors.New("session: item has no size option")
	ErrStaleResponse  = errors.New("session: stale fetch response")
)

// Reason names one failed completion precondition.
type Reason string

const (
	ReasonMissingProjectNumber Reason = "missing_project_number"
	ReasonMissingKeyword       Reason = "missing_keyword"
	ReasonItemsNotLoaded       Reason = "items_not_loaded"
	ReasonNoItemsSelected      Reason = "no_items_selected"
)

// ValidationMessage is the combined notice shown when completion is refused.
const ValidationMessage = "Please enter a project number, select a machine, and configure items before completing."

// ValidationError reports every precondition CompleteConfiguration found unmet.
type ValidationError struct {
	Reasons []Reason
}

func (e *ValidationError) Error() string {
	return ValidationMessage
}

// Has reports whether r is among the failed preconditions.
func (e *ValidationError) Has(r Reason) bool {
	for _, got := range e.Reasons {
		if got == r {
			return true
		}
	}
	return false
}

// Detail lists the failed preconditions, e.g. "missing_project_number, no_items_selected".
func (e *ValidationError) Detail() string {
	parts := make([]string, len(e.Reasons))
	for i, r := range e.Reasons {
		parts[i] = string(r)
	}
	return strings.Join(parts, ", ")
}

// IndexError is a contract violation: an operation got an index outside its list.
type IndexError struct {
	Op    string
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("session: %s: index %d out of range [0,%d)", e.Op, e.Index, e.Len)
}

// UnknownKeywordError carries the closest known keyword, if one is near enough.
type UnknownKeywordError struct {
	Input      string
	Suggestion Keyword
}

func (e *UnknownKeywordError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown machine %q (did you mean %q?)", e.Input, e.Suggestion)
	}
	return fmt.Sprintf("unknown machine %q", e.Input)
}

func (e *UnknownKeywordError) Unwrap() error { return ErrUnknownKeyword }
