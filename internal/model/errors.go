package model

import "errors"

// ValidationError marks a file rejected before any network call (bad type
// or size). It never reaches a collaborator.
type ValidationError struct {
	FileName string
	Msg      string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// NetworkError marks a collaborator that was unreachable or answered with a
// non-success response.
type NetworkError struct {
	Collaborator string
	Err          error
}

func (e *NetworkError) Error() string {
	return e.Collaborator + ": " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// DataError marks a collaborator response that arrived but was malformed,
// such as an extraction reply missing coordinates.
type DataError struct {
	Collaborator string
	Msg          string
}

func (e *DataError) Error() string {
	return e.Collaborator + ": " + e.Msg
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNetwork reports whether err is a NetworkError.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsData reports whether err is a DataError.
func IsData(err error) bool {
	var de *DataError
	return errors.As(err, &de)
}
