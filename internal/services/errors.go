package services

import (
	"errors"
	"fmt"
)

var (
	ErrLocationNotFound = errors.New("location not found")
	ErrNoStoredLocation = errors.New("no stored location")
)

// DataError reports an upstream value the lookup tables do not cover. It is
// fatal to the command rather than rendered.
type DataError struct {
	Field string
	Value interface{}
}

func (e *DataError) Error() string {
	return fmt.Sprintf("unexpected value %v for field %s", e.Value, e.Field)
}

// ConfigMissingError is returned when a required API key is unset.
type ConfigMissingError struct {
	Key string
}

func (e *ConfigMissingError) Error() string {
	return fmt.Sprintf("%s is not configured", e.Key)
}
