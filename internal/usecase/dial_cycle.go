package usecase

import (
	"context"
	"errors"

	"DialMeter/internal/domain/models"
	drepo "DialMeter/internal/domain/repository"
	"DialMeter/internal/services/dial"
	applogger "DialMeter/pkg/logger"

	"github.com/benbjohnson/clock"
)

// Actuator moves the dial to an angle.
type Actuator interface {
	Move(angle float64) (*models.ActuatorCommand, error)
}

// DialCycle runs one fetch, resolve, map and move pass with the LED lit.
type DialCycle struct {
	source    drepo.SignalSource
	resolver  *dial.Resolver
	mapper    *dial.Mapper
	actuator  Actuator
	indicator drepo.StatusIndicator
	publisher drepo.Publisher
	metrics   drepo.Metrics
	board     *DialBoard
	logger    *applogger.Logger
	clock     clock.Clock
}

// NewDialCycle creates a new DialCycle instance.
func NewDialCycle(
	source drepo.SignalSource,
	resolver *dial.Resolver,
	mapper *dial.Mapper,
	actuator Actuator,
	indicator drepo.StatusIndicator,
	publisher drepo.Publisher,
	metrics drepo.Metrics,
	board *DialBoard,
	logger *applogger.Logger,
	clk clock.Clock,
) *DialCycle {
	if logger == nil {
		logger = applogger.NewNop()
	}
	if clk == nil {
		clk = clock.New()
	}
	return &DialCycle{
		source:    source,
		resolver:  resolver,
		mapper:    mapper,
		actuator:  actuator,
		indicator: indicator,
		publisher: publisher,
		metrics:   metrics,
		board:     board,
		logger:    logger,
		clock:     clk,
	}
}

// Source returns the name of the signal source.
func (c *DialCycle) Source() string { return c.source.Name() }

// Run never returns an error: failures are reported in the result, and the
// dial keeps its previous position.
func (c *DialCycle) Run(ctx context.Context) models.CycleResult {
	res := models.CycleResult{StartedAt: c.clock.Now()}

	if err := c.indicator.On(); err != nil {
		c.logger.Warn("status indicator on failed", applogger.Error(err))
	}
	defer func() {
		if err := c.indicator.Off(); err != nil {
			c.logger.Warn("status indicator off failed", applogger.Error(err))
		}
	}()

	c.execute(ctx, &res)
	res.Duration = c.clock.Since(res.StartedAt)
	c.finish(ctx, &res)
	return res
}

func (c *DialCycle) execute(ctx context.Context, res *models.CycleResult) {
	fetchStart := c.clock.Now()
	reading, err := c.source.Fetch(ctx)
	c.metrics.RecordLatency("fetch", c.clock.Since(fetchStart).Seconds())
	if err != nil {
		c.fail(ctx, res, err)
		return
	}
	res.Reading = reading

	value, probs, err := c.resolver.Resolve(reading)
	res.Probabilities = probs
	if err != nil {
		c.fail(ctx, res, err)
		return
	}
	res.Value = value
	c.metrics.RecordReading(c.source.Name(), value)

	angle, err := c.mapper.Angle(value)
	if err != nil {
		c.fail(ctx, res, err)
		return
	}

	cmd, err := c.actuator.Move(angle)
	if err != nil {
		c.fail(ctx, res, err)
		return
	}
	res.Command = cmd
	res.Kind = models.KindOK
}

func (c *DialCycle) fail(ctx context.Context, res *models.CycleResult, err error) {
	res.Err = err
	res.Kind = models.Classify(err)
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		res.Kind = models.KindCanceled
	}
}

func (c *DialCycle) finish(ctx context.Context, res *models.CycleResult) {
	source := c.source.Name()
	c.metrics.RecordCycle(source, res.Kind)
	c.metrics.RecordLatency("cycle", res.Duration.Seconds())
	c.board.Apply(*res, c.clock.Now())

	evt := &models.DialEvent{
		Source:    source,
		Outcome:   res.Kind,
		Value:     res.Value,
		Timestamp: c.clock.Now().Unix(),
	}

	if res.OK() {
		c.metrics.RecordCommand(source, res.Command.Angle, res.Command.Duty)
		evt.Angle = res.Command.Angle
		evt.Duty = res.Command.Duty
		fields := []applogger.Field{
			applogger.String("source", source),
			applogger.Float64("value", res.Value),
			applogger.Float64("angle", res.Command.Angle),
			applogger.Int("duty", int(res.Command.Duty)),
			applogger.Bool("cached", res.Reading.Cached),
			applogger.Duration("duration_ms", res.Duration),
		}
		for name, p := range res.Probabilities {
			fields = append(fields, applogger.Float64("prob."+name, p))
		}
		c.logger.Info("dial updated", fields...)
	} else {
		c.metrics.RecordError(string(res.Kind))
		evt.Error = res.Err.Error()
		c.logger.Error("cycle skipped, dial unchanged",
			applogger.String("source", source),
			applogger.String("kind", string(res.Kind)),
			applogger.Error(res.Err),
		)
	}

	if res.Kind == models.KindCanceled {
		return
	}
	if err := c.publisher.Publish(ctx, evt); err != nil {
		c.metrics.RecordError("publish")
		c.logger.Warn("dial event publish failed", applogger.Error(err))
	}
}
