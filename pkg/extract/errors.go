package extract

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingParameter matches every *MissingParameterError.
var ErrMissingParameter = errors.New("extract: missing parameter")

// Parameter identifies which side of a tool call was missing.
type Parameter string

const (
	ParameterField Parameter = "field"
	ParameterValue Parameter = "value"
)

// MissingParameterError reports a payload lacking a usable field reference or
// value under every accepted key.
type MissingParameterError struct {
	Parameter Parameter
	Keys      []string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("missing parameter: %s (expected one of %s)", e.Parameter, strings.Join(e.Keys, ", "))
}

// Is lets errors.Is match ErrMissingParameter.
func (e *MissingParameterError) Is(target error) bool {
	return target == ErrMissingParameter
}
