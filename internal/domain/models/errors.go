package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind labels a cycle outcome for logs, metrics and events.
type ErrorKind string

const (
	KindOK              ErrorKind = "ok"
	KindNetworkTimeout  ErrorKind = "network_timeout"
	KindFetch           ErrorKind = "fetch"
	KindMissingField    ErrorKind = "missing_field"
	KindInvalidOdds     ErrorKind = "invalid_odds"
	KindDegenerateRange ErrorKind = "degenerate_range"
	KindInvalidValue    ErrorKind = "invalid_value"
	KindActuator        ErrorKind = "actuator"
	KindCanceled        ErrorKind = "canceled"
	KindUnknown         ErrorKind = "unknown"
)

// ErrNonFiniteValue is returned when a NaN or infinite value reaches the mapper.
var ErrNonFiniteValue = errors.New("value is not finite")

// NetworkTimeoutError means connectivity never came up within the retry budget.
type NetworkTimeoutError struct {
	Attempts int
	Interval time.Duration
	Err      error
}

func (e *NetworkTimeoutError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("network not available after %d attempts every %s: %v", e.Attempts, e.Interval, e.Err)
	}
	return fmt.Sprintf("network not available after %d attempts every %s", e.Attempts, e.Interval)
}

func (e *NetworkTimeoutError) Unwrap() error { return e.Err }

// FetchError wraps an HTTP or JSON decode failure.
type FetchError struct {
	Source string
	URL    string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s (%s): %v", e.Source, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// MissingFieldError means the response parsed but an expected key, index or outcome was absent.
type MissingFieldError struct {
	Source string
	Field  string
}

func (e *MissingFieldError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("missing field %q", e.Field)
	}
	return fmt.Sprintf("%s: missing field %q", e.Source, e.Field)
}

// InvalidOddsError rejects odds that are not strictly positive and finite.
type InvalidOddsError struct {
	Outcome string
	Odds    float64
}

func (e *InvalidOddsError) Error() string {
	if e.Outcome == "" {
		return "no odds to normalize"
	}
	return fmt.Sprintf("invalid odds %v for outcome %q", e.Odds, e.Outcome)
}

// DegenerateRangeError rejects a mapping window of zero width.
type DegenerateRangeError struct {
	Name string
	Min  float64
	Max  float64
}

func (e *DegenerateRangeError) Error() string {
	return fmt.Sprintf("degenerate %s range [%v, %v]", e.Name, e.Min, e.Max)
}

// ActuatorError wraps a failed PWM write.
type ActuatorError struct {
	Duty uint16
	Err  error
}

func (e *ActuatorError) Error() string {
	return fmt.Sprintf("actuator write duty=%d: %v", e.Duty, e.Err)
}

func (e *ActuatorError) Unwrap() error { return e.Err }

// Classify maps an error to its ErrorKind.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindOK
	}
	var (
		netErr  *NetworkTimeoutError
		missErr *MissingFieldError
		oddsErr *InvalidOddsError
		rngErr  *DegenerateRangeError
		actErr  *ActuatorError
		fetErr  *FetchError
	)
	switch {
	case errors.As(err, &netErr):
		return KindNetworkTimeout
	case errors.As(err, &missErr):
		return KindMissingField
	case errors.As(err, &oddsErr):
		return KindInvalidOdds
	case errors.As(err, &rngErr):
		return KindDegenerateRange
	case errors.Is(err, ErrNonFiniteValue):
		return KindInvalidValue
	case errors.As(err, &actErr):
		return KindActuator
	case errors.As(err, &fetErr):
		return KindFetch
	default:
		return KindUnknown
	}
}
