package servo

import (
	"fmt"
	"math"

	"DialMeter/internal/domain/models"
	"DialMeter/internal/domain/repository"
	"DialMeter/pkg/mathx"

	"github.com/benbjohnson/clock"
)

const (
	DefaultFrequencyHz = 50
	MaxFrequencyHz     = 450
)

// Calibration bounds the 16-bit duty for the physical 0 and 180 degree stops.
type Calibration struct {
	MinDuty uint16
	MaxDuty uint16
}

// Known calibrations for the two dial builds.
var (
	CalibrationCarbon   = Calibration{MinDuty: 2201, MaxDuty: 8080}
	CalibrationElection = Calibration{MinDuty: 1750, MaxDuty: 8550}
)

// Validate requires MinDuty < MaxDuty.
func (c Calibration) Validate() error {
	if c.MinDuty >= c.MaxDuty {
		return fmt.Errorf("servo calibration: min_duty %d must be below max_duty %d", c.MinDuty, c.MaxDuty)
	}
	return nil
}

// DutyFor computes the duty for angle without touching hardware.
// The angle is clamped to [0,180] and the duty rounded to the nearest integer.
func (c Calibration) DutyFor(angle float64) uint16 {
	if math.IsNaN(angle) {
		angle = 0
	}
	a := mathx.Clamp(angle, 0, 180)
	d := mathx.Lerp(float64(c.MinDuty), float64(c.MaxDuty), a/180)
	return uint16(mathx.Clamp(math.Round(d), float64(c.MinDuty), float64(c.MaxDuty)))
}

// Option configures Actuator.
type Option func(*Actuator)

// Actuator turns angles into duty writes on a single PWM channel.
type Actuator struct {
	pwm   repository.PWM
	cal   Calibration
	clock clock.Clock
	last  *models.ActuatorCommand
}

// NewActuator validates the calibration and wraps pwm.
func NewActuator(pwm repository.PWM, cal Calibration, opts ...Option) (*Actuator, error) {
	if pwm == nil {
		return nil, fmt.Errorf("servo: pwm is required")
	}
	if err := cal.Validate(); err != nil {
		return nil, err
	}
	a := &Actuator{pwm: pwm, cal: cal, clock: clock.New()}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Calibration returns the duty bounds in use.
func (a *Actuator) Calibration() Calibration { return a.cal }

// Move clamps angle, converts it to a duty and writes it immediately.
func (a *Actuator) Move(angle float64) (*models.ActuatorCommand, error) {
	if math.IsNaN(angle) || math.IsInf(angle, 0) {
		return nil, models.ErrNonFiniteValue
	}
	angle = mathx.Clamp(angle, 0, 180)
	duty := a.cal.DutyFor(angle)
	if err := a.pwm.SetDuty(duty); err != nil {
		return nil, &models.ActuatorError{Duty: duty, Err: err}
	}
	cmd := &models.ActuatorCommand{Angle: angle, Duty: duty}
	a.last = cmd
	return cmd, nil
}

// Last returns the most recent successful command, or nil.
func (a *Actuator) Last() *models.ActuatorCommand { return a.last }

// Close releases the PWM channel.
func (a *Actuator) Close() error { return a.pwm.Close() }

// WithClock replaces the clock used for sweep delays.
func WithClock(c clock.Clock) Option {
	return func(a *Actuator) {
		a.clock = c
	}
}
