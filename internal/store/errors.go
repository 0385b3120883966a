package store

import (
	"errors"
	"fmt"
)

// ErrUnavailable indicates the dataset has not been loaded yet (or the
// database is missing). Callers can retry after running a load.
var ErrUnavailable = errors.New("dataset not loaded")

// InvalidArgumentError reports a malformed query parameter. It names the
// offending parameter so callers can surface it directly.
type InvalidArgumentError struct {
	Param  string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Param, e.Reason)
}

func invalidArg(param, reason string) error {
	return &InvalidArgumentError{Param: param, Reason: reason}
}

// IsInvalidArgument reports whether err is an InvalidArgumentError.
func IsInvalidArgument(err error) bool {
	var ia *InvalidArgumentError
	return errors.As(err, &ia)
}
