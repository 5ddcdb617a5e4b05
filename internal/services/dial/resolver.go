package dial

import (
	"fmt"

	"DialMeter/internal/domain/models"
)

// Resolver turns a Reading into the single percentage the mapper consumes.
type Resolver struct {
	target string
}

// NewResolver creates a resolver. target names the outcome followed for odds readings.
func NewResolver(target string) *Resolver {
	return &Resolver{target: target}
}

// Target returns the tracked outcome name.
func (r *Resolver) Target() string { return r.target }

// Resolve returns the dial value and, for odds readings, the normalized probabilities.
func (r *Resolver) Resolve(reading *models.Reading) (float64, map[string]float64, error) {
	if reading == nil {
		return 0, nil, fmt.Errorf("nil reading")
	}
	switch reading.Kind {
	case models.KindPercentage:
		return reading.Percentage, nil, nil
	case models.KindOdds:
		probs, err := NormalizeOdds(reading.Odds)
		if err != nil {
			return 0, nil, err
		}
		v, ok := probs[r.target]
		if !ok {
			return 0, probs, &models.MissingFieldError{Source: reading.Source, Field: "outcome " + r.target}
		}
		return v, probs, nil
	default:
		return 0, nil, fmt.Errorf("unknown reading kind %q", reading.Kind)
	}
}
