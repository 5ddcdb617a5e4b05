package di

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"DialMeter/internal/domain/repository"
	"DialMeter/internal/handler/api"
	internalrepo "DialMeter/internal/repository"
	"DialMeter/internal/service/cache"
	"DialMeter/internal/service/carbon"
	"DialMeter/internal/service/hw"
	"DialMeter/internal/service/network"
	"DialMeter/internal/service/odds"
	"DialMeter/internal/service/ratelimit"
	"DialMeter/internal/service/servo"
	"DialMeter/internal/services/dial"
	"DialMeter/internal/usecase"
	"DialMeter/pkg/config"
	xhttp "DialMeter/pkg/http"
	pkgkafka "DialMeter/pkg/kafka"
	applogger "DialMeter/pkg/logger"
	"DialMeter/pkg/metrics"
	"DialMeter/pkg/server"
)

// ProvideLogger creates the application logger from the logger section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logger.Level,
		Format: cfg.Logger.Format,
		Output: cfg.Logger.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideHTTPClient creates the outbound client used by the signal sources.
func ProvideHTTPClient(cfg *config.Config) *xhttp.Client {
	timeout := cfg.Carbon.Timeout
	if cfg.Source.Kind == odds.Name {
		timeout = cfg.Odds.Timeout
	}
	return xhttp.NewClient(
		xhttp.WithTimeout(timeout),
		xhttp.WithUserAgent("dialmeter/1.0"),
	)
}

// ProvideReadingCache returns nil when caching is disabled.
func ProvideReadingCache(cfg *config.Config) (cache.BytesCache, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	if !cfg.Cache.Redis.Enabled {
		return cache.NewTTLCache(), nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
		Prefix:   cfg.Cache.Redis.Prefix,
	})
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return rc, nil
}

// ProvideSignalSource selects the configured source and wraps it in the cache if any.
func ProvideSignalSource(cfg *config.Config, hc *xhttp.Client, c cache.BytesCache, l *applogger.Logger) (repository.SignalSource, error) {
	var src repository.SignalSource
	switch cfg.Source.Kind {
	case carbon.Name:
		src = carbon.New(hc, cfg.Carbon.URL, cfg.Carbon.GreenFuels)
	case odds.Name:
		src = odds.New(hc, odds.Config{
			BaseURL: cfg.Odds.BaseURL,
			APIKey:  cfg.Odds.APIKey,
			Sport:   cfg.Odds.Sport,
			Regions: cfg.Odds.Regions,
			Tracked: cfg.Odds.Tracked,
		})
	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.Source.Kind)
	}
	if c == nil {
		return src, nil
	}
	return cache.NewCachedSource(src, c, cfg.Cache.TTL, l), nil
}

// ProvideMapper builds the value-to-angle mapper from the mapping section.
func ProvideMapper(cfg *config.Config) (*dial.Mapper, error) {
	m := cfg.Mapping
	mapper, err := dial.NewMapper(
		dial.WithPolicy(dial.Policy(cfg.MappingPolicy())),
		dial.WithDegreeRange(m.MinDeg, m.MaxDeg),
		dial.WithProbabilityWindow(m.MinProb, m.MaxProb),
		dial.WithDialRange(m.DialMin, m.DialMax),
	)
	if err != nil {
		return nil, fmt.Errorf("mapper: %w", err)
	}
	return mapper, nil
}

// ProvideResolver follows the configured outcome. Percentage readings ignore it.
func ProvideResolver(cfg *config.Config) *dial.Resolver {
	return dial.NewResolver(cfg.Odds.Target)
}

// ProvideCalibration returns the duty endpoints for the servo section.
func ProvideCalibration(cfg *config.Config) servo.Calibration {
	return servo.Calibration{MinDuty: cfg.Servo.MinDuty, MaxDuty: cfg.Servo.MaxDuty}
}

// ProvidePWM opens the servo channel. The fake driver records writes in memory.
func ProvidePWM(cfg *config.Config) (repository.PWM, error) {
	if cfg.Servo.Driver == "fake" {
		return hw.NewFakePWM(), nil
	}
	pwm, err := hw.NewPeriphPWM(cfg.Servo.Pin, cfg.Servo.FrequencyHz)
	if err != nil {
		return nil, fmt.Errorf("servo pwm: %w", err)
	}
	return pwm, nil
}

// ProvideActuator creates the servo actuator.
func ProvideActuator(pwm repository.PWM, cal servo.Calibration) (*servo.Actuator, error) {
	return servo.NewActuator(pwm, cal)
}

// ProvideIndicator opens the status LED, or a no-op one when disabled.
func ProvideIndicator(cfg *config.Config) (repository.StatusIndicator, error) {
	switch cfg.LED.Driver {
	case "periph":
		led, err := hw.NewPeriphLED(cfg.LED.Pin)
		if err != nil {
			return nil, fmt.Errorf("status led: %w", err)
		}
		return led, nil
	case "fake":
		return hw.NewFakeLED(), nil
	default:
		return hw.NoopLED{}, nil
	}
}

// ProvideProber probes the source host unless an explicit address is configured.
func ProvideProber(cfg *config.Config) (repository.Prober, error) {
	if !cfg.Network.Enabled {
		return network.AlwaysUp{}, nil
	}
	addr := cfg.Network.ProbeAddr
	if addr == "" {
		raw := cfg.Carbon.URL
		if cfg.Source.Kind == odds.Name {
			raw = cfg.Odds.BaseURL
		}
		var err error
		if addr, err = probeAddr(raw); err != nil {
			return nil, err
		}
	}
	return network.NewTCPProber(addr, cfg.Network.DialTimeout), nil
}

func probeAddr(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("probe address from %q: %w", raw, err)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("probe address from %q: no host", raw)
	}
	port := u.Port()
	if port == "" {
		port = "443"
		if u.Scheme == "http" {
			port = "80"
		}
	}
	return net.JoinHostPort(u.Hostname(), port), nil
}

// ProvideWaiter creates the startup network waiter.
func ProvideWaiter(cfg *config.Config, p repository.Prober, l *applogger.Logger) *network.Waiter {
	return network.NewWaiter(p,
		network.WithAttempts(cfg.Network.Attempts),
		network.WithInterval(cfg.Network.Interval),
		network.WithLogger(l),
	)
}

// ProvidePublisher returns a Kafka publisher when enabled, otherwise a no-op.
func ProvidePublisher(cfg *config.Config) (repository.Publisher, error) {
	if !cfg.Kafka.Enabled {
		return internalrepo.NewNoopPublisher(), nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideBoard creates the shared dial state.
func ProvideBoard(cfg *config.Config) *usecase.DialBoard {
	return usecase.NewDialBoard(cfg.Source.Kind)
}

// ProvideDialCycle assembles one poll cycle.
func ProvideDialCycle(
	src repository.SignalSource,
	resolver *dial.Resolver,
	mapper *dial.Mapper,
	act *servo.Actuator,
	led repository.StatusIndicator,
	pub repository.Publisher,
	m repository.Metrics,
	board *usecase.DialBoard,
	l *applogger.Logger,
) *usecase.DialCycle {
	return usecase.NewDialCycle(src, resolver, mapper, act, led, pub, m, board, l, nil)
}

// ProvidePoller creates the poll loop.
func ProvidePoller(cfg *config.Config, cycle *usecase.DialCycle, l *applogger.Logger) *usecase.Poller {
	return usecase.NewPoller(cycle, cfg.Poll.Interval, cfg.Poll.RunOnce, nil, l)
}

// ProvideDialHandler creates the status API handler.
func ProvideDialHandler(
	cfg *config.Config,
	l *applogger.Logger,
	board *usecase.DialBoard,
	mapper *dial.Mapper,
	resolver *dial.Resolver,
	cal servo.Calibration,
	waiter *network.Waiter,
) *api.DialEchoHandler {
	return api.NewDialEchoHandler(l, board, mapper, resolver, cal, waiter, ratelimit.New(), cfg.Server.PreviewRPS)
}

// ProvideHTTPServer returns nil when the status API is disabled.
func ProvideHTTPServer(cfg *config.Config, h *api.DialEchoHandler, l *applogger.Logger) *xhttp.Server {
	if !cfg.Server.Enabled {
		return nil
	}
	return xhttp.NewServer(h,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(l),
	)
}

// ProvideApp creates the application.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	waiter *network.Waiter,
	act *servo.Actuator,
	poller *usecase.Poller,
	srv *xhttp.Server,
	led repository.StatusIndicator,
	pub repository.Publisher,
	c cache.BytesCache,
) *server.App {
	opts := []server.Option{
		server.WithLogger(l),
		server.WithCloser("publisher", pub),
		server.WithCloser("status led", led),
		server.WithCloser("servo", act),
	}
	if cfg.Network.Enabled {
		opts = append(opts, server.WithNetworkWait(waiter))
	}
	if cfg.Sweep.Enabled {
		opts = append(opts, server.WithSweep(servo.SweepConfig{
			Mode:  servo.SweepMode(cfg.Sweep.Mode),
			Steps: cfg.Sweep.Steps,
			Delay: cfg.Sweep.Delay,
		}), server.WithIndicator(led))
	}
	if srv != nil {
		opts = append(opts, server.WithHTTPServer(srv))
	}
	if c != nil {
		opts = append(opts, server.WithCloser("reading cache", c))
	}
	return server.New(act, poller, opts...)
}
