package servo

import (
	"context"
	"fmt"
	"time"
)

// SweepMode selects how coarsely the startup sweep traverses the dial.
type SweepMode string

const (
	// SweepFull walks 180 -> 0 -> 180 in one-degree steps.
	SweepFull SweepMode = "full"
	// SweepSteps walks the same path in a fixed number of coarse steps.
	SweepSteps SweepMode = "steps"
)

// SweepConfig describes the startup self-test traversal.
type SweepConfig struct {
	Mode  SweepMode
	Steps int
	Delay time.Duration
}

// SweepAngles returns the angle sequence for cfg.
func SweepAngles(cfg SweepConfig) ([]float64, error) {
	steps := 180
	switch cfg.Mode {
	case SweepFull, "":
	case SweepSteps:
		if cfg.Steps < 1 {
			return nil, fmt.Errorf("sweep: steps must be positive, got %d", cfg.Steps)
		}
		steps = cfg.Steps
	default:
		return nil, fmt.Errorf("sweep: unknown mode %q", cfg.Mode)
	}

	out := make([]float64, 0, 2*steps+1)
	for i := 0; i <= steps; i++ {
		out = append(out, 180-float64(i)*180/float64(steps))
	}
	for i := 1; i <= steps; i++ {
		out = append(out, float64(i)*180/float64(steps))
	}
	return out, nil
}

// Sweep drives the servo through the full range so a miscalibrated dial is visible at boot.
func (a *Actuator) Sweep(ctx context.Context, cfg SweepConfig) error {
	angles, err := SweepAngles(cfg)
	if err != nil {
		return err
	}
	for _, angle := range angles {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := a.Move(angle); err != nil {
			return fmt.Errorf("sweep at %v: %w", angle, err)
		}
		if cfg.Delay <= 0 {
			continue
		}
		t := a.clock.Timer(cfg.Delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return nil
}
