package dialogue

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned for an utterance that is empty after trimming.
var ErrInvalidInput = errors.New("text is required")

var errEmptyRanking = errors.New("classifier returned no labels")

// AdapterError reports a failed or contract-violating extraction adapter call.
type AdapterError struct {
	Op  string
	Err error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}
