package core

import "fmt"

// NotFoundError reports a lookup of a merchant or rule that does not exist.
type NotFoundError struct {
	Resource string // "merchant", "rule"
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.Key)
}

// ValidationError reports malformed caller input (threshold, quantity,
// product name). Raised before any state change.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// DataUnavailableError reports a failed read through the data access facade.
// Retry policy belongs to the caller, not the core.
type DataUnavailableError struct {
	Source string // the dataset that failed, e.g. "order_lines"
	Err    error
}

func (e *DataUnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s data unavailable", e.Source)
	}
	return fmt.Sprintf("%s data unavailable: %v", e.Source, e.Err)
}

func (e *DataUnavailableError) Unwrap() error { return e.Err }
