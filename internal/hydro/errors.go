package hydro

import "fmt"

// InvalidRequestError reports malformed or missing caller input. It is never
// retried and surfaces to callers as-is.
type InvalidRequestError struct {
	Msg string
}

func (e *InvalidRequestError) Error() string { return e.Msg }

// StationNotFoundError reports that a station could not be resolved: the
// decoded source is unknown, its connector is inactive, or the provider
// confirmed the station does not exist.
type StationNotFoundError struct {
	StationID string
	Reason    string
}

func (e *StationNotFoundError) Error() string {
	if e.StationID == "" {
		return e.Reason
	}
	return fmt.Sprintf("station %s not found: %s", e.StationID, e.Reason)
}

// UnsupportedOperationError reports that a connector does not implement a
// capability.
type UnsupportedOperationError struct {
	Source    string
	Operation string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("%s does not support %s", e.Source, e.Operation)
}

// Unsupported is the default behavior for optional connector capabilities.
func Unsupported(source, operation string) error {
	return &UnsupportedOperationError{Source: source, Operation: operation}
}

// DataSourceError wraps any upstream transport, parsing, or unexpected
// failure with the provider it came from.
type DataSourceError struct {
	Source string
	Err    error
}

func (e *DataSourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *DataSourceError) Unwrap() error { return e.Err }
