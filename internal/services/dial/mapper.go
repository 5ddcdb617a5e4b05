package dial

import (
	"fmt"
	"math"

	"DialMeter/internal/domain/models"
	"DialMeter/pkg/mathx"
)

const (
	AngleMin = 0.0
	AngleMax = 180.0
)

// Policy selects how a percentage becomes a dial angle.
type Policy string

const (
	// PolicyLinear: angle = (1 - v/(maxDeg-minDeg)) * 180.
	PolicyLinear Policy = "linear"
	// PolicyWindowed: clamp to [minProb,maxProb], stretch to [dialMin,dialMax], invert.
	PolicyWindowed Policy = "windowed"
	// PolicyProportional: angle = 180 * v / 100.
	PolicyProportional Policy = "proportional"
)

// MapperOption configures Mapper.
type MapperOption func(*MappingConfig)

// MappingConfig holds the parameters of every policy; only the selected one is used.
type MappingConfig struct {
	Policy  Policy
	MinDeg  float64
	MaxDeg  float64
	MinProb float64
	MaxProb float64
	DialMin float64
	DialMax float64
}

// DefaultMappingConfig is the windowed election-odds setup.
func DefaultMappingConfig() MappingConfig {
	return MappingConfig{
		Policy:  PolicyWindowed,
		MinDeg:  0,
		MaxDeg:  110,
		MinProb: 45,
		MaxProb: 55,
		DialMin: AngleMin,
		DialMax: AngleMax,
	}
}

// Mapper converts a resolved percentage into a clamped angle.
type Mapper struct {
	cfg MappingConfig
}

// NewMapper validates the configuration for the selected policy.
func NewMapper(opts ...MapperOption) (*Mapper, error) {
	cfg := DefaultMappingConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	switch cfg.Policy {
	case PolicyLinear:
		if cfg.MaxDeg == cfg.MinDeg {
			return nil, &models.DegenerateRangeError{Name: "degree", Min: cfg.MinDeg, Max: cfg.MaxDeg}
		}
	case PolicyWindowed:
		if cfg.MaxProb == cfg.MinProb {
			return nil, &models.DegenerateRangeError{Name: "probability", Min: cfg.MinProb, Max: cfg.MaxProb}
		}
	case PolicyProportional:
	default:
		return nil, fmt.Errorf("unknown mapping policy %q", cfg.Policy)
	}
	return &Mapper{cfg: cfg}, nil
}

// Config returns a copy of the mapping configuration.
func (m *Mapper) Config() MappingConfig { return m.cfg }

// Policy returns the selected policy.
func (m *Mapper) Policy() Policy { return m.cfg.Policy }

// Angle maps v with the configured policy.
func (m *Mapper) Angle(v float64) (float64, error) {
	return m.AngleWith(m.cfg.Policy, v)
}

// AngleWith maps v with an explicit policy, reusing the configured bounds.
func (m *Mapper) AngleWith(p Policy, v float64) (float64, error) {
	switch p {
	case PolicyLinear:
		return LinearAngle(v, m.cfg.MinDeg, m.cfg.MaxDeg)
	case PolicyWindowed:
		return WindowedAngle(v, m.cfg.MinProb, m.cfg.MaxProb, m.cfg.DialMin, m.cfg.DialMax)
	case PolicyProportional:
		return ProportionalAngle(v)
	default:
		return 0, fmt.Errorf("unknown mapping policy %q", p)
	}
}

// LinearAngle computes (1 - v/(maxDeg-minDeg)) * 180, clamped to [0,180].
// The value is divided by the range width, not offset by minDeg.
func LinearAngle(v, minDeg, maxDeg float64) (float64, error) {
	if err := checkFinite(v); err != nil {
		return 0, err
	}
	width := maxDeg - minDeg
	if width == 0 {
		return 0, &models.DegenerateRangeError{Name: "degree", Min: minDeg, Max: maxDeg}
	}
	pct := v / width
	return clampAngle((1 - pct) * AngleMax), nil
}

// WindowedAngle clamps chance to [minProb,maxProb], maps it onto
// [dialMin,dialMax] and inverts so that a higher chance points lower.
func WindowedAngle(chance, minProb, maxProb, dialMin, dialMax float64) (float64, error) {
	if err := checkFinite(chance); err != nil {
		return 0, err
	}
	if maxProb == minProb {
		return 0, &models.DegenerateRangeError{Name: "probability", Min: minProb, Max: maxProb}
	}
	c := mathx.Clamp(chance, minProb, maxProb)
	t := (c - minProb) / (maxProb - minProb)
	mapped := mathx.Lerp(dialMin, dialMax, t)
	return clampAngle(AngleMax - mapped), nil
}

// ProportionalAngle maps 0..100 onto 0..180.
func ProportionalAngle(pct float64) (float64, error) {
	if err := checkFinite(pct); err != nil {
		return 0, err
	}
	return clampAngle(AngleMax * pct / 100), nil
}

func clampAngle(a float64) float64 {
	return mathx.Clamp(a, AngleMin, AngleMax)
}

func checkFinite(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return models.ErrNonFiniteValue
	}
	return nil
}

// WithPolicy selects the mapping policy.
func WithPolicy(p Policy) MapperOption {
	return func(c *MappingConfig) {
		c.Policy = p
	}
}

// WithDegreeRange sets the linear policy bounds.
func WithDegreeRange(minDeg, maxDeg float64) MapperOption {
	return func(c *MappingConfig) {
		c.MinDeg = minDeg
		c.MaxDeg = maxDeg
	}
}

// WithProbabilityWindow sets the windowed policy input bounds.
func WithProbabilityWindow(minProb, maxProb float64) MapperOption {
	return func(c *MappingConfig) {
		c.MinProb = minProb
		c.MaxProb = maxProb
	}
}

// WithDialRange sets the windowed policy output bounds.
func WithDialRange(dialMin, dialMax float64) MapperOption {
	return func(c *MappingConfig) {
		c.DialMin = dialMin
		c.DialMax = dialMax
	}
}
