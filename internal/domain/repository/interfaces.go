package repository

import (
	"context"

	"DialMeter/internal/domain/models"
)

// SignalSource fetches one reading from a remote endpoint.
type SignalSource interface {
	Name() string
	Fetch(ctx context.Context) (*models.Reading, error)
}

// PWM is a single pulse-width channel. Duty is a 16-bit fraction of the period.
type PWM interface {
	SetDuty(duty uint16) error
	Close() error
}

// StatusIndicator is the binary LED that brackets each cycle.
type StatusIndicator interface {
	On() error
	Off() error
	Close() error
}

// Prober checks whether the network is reachable.
type Prober interface {
	Probe(ctx context.Context) error
}

// Publisher emits dial events to an external bus.
type Publisher interface {
	Publish(ctx context.Context, e *models.DialEvent) error
	Close() error
}

type Metrics interface {
	RecordCycle(source string, outcome models.ErrorKind)
	RecordError(kind string)
	RecordReading(source string, value float64)
	RecordCommand(source string, angle float64, duty uint16)
	RecordLatency(op string, seconds float64)
}
