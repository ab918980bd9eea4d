package search

import (
	"errors"
	"fmt"
)

// ErrSearchConfiguration is returned when search options are unusable.
var ErrSearchConfiguration = errors.New("invalid search configuration")

// ConfigurationError names the offending option. It matches
// ErrSearchConfiguration.
type ConfigurationError struct {
	Field string
	Value int
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid search configuration: %s=%d", e.Field, e.Value)
}

// Is makes errors.Is(err, ErrSearchConfiguration) hold.
func (e *ConfigurationError) Is(target error) bool { return target == ErrSearchConfiguration }
