package di

import (
	"testing"

	"DialMeter/internal/service/cache"
	"DialMeter/internal/service/hw"
	"DialMeter/internal/service/network"
	"DialMeter/pkg/config"
)

func testConfig(t *testing.T, doc string) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return cfg
}

func TestProbeAddr(t *testing.T) {
	cases := map[string]string{
		"https://api.carbonintensity.org.uk/generation": "api.carbonintensity.org.uk:443",
		"http://localhost:8081/odds":                    "localhost:8081",
		"http://example.org":                            "example.org:80",
	}
	for raw, want := range cases {
		got, err := probeAddr(raw)
		if err != nil || got != want {
			t.Fatalf("%s: expected %s, got %s (%v)", raw, want, got, err)
		}
	}
	if _, err := probeAddr("/relative"); err == nil {
		t.Fatalf("expected error for url without host")
	}
}

func TestProvideProberDisabled(t *testing.T) {
	cfg := testConfig(t, "network:\n  enabled: false\n")
	p, err := ProvideProber(cfg)
	if err != nil {
		t.Fatalf("prober: %v", err)
	}
	if _, ok := p.(network.AlwaysUp); !ok {
		t.Fatalf("expected AlwaysUp, got %T", p)
	}
}

func TestProvideSignalSourceWrapsCache(t *testing.T) {
	cfg := testConfig(t, "cache:\n  enabled: true\n")
	c, err := ProvideReadingCache(cfg)
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	if _, ok := c.(*cache.TTLCache); !ok {
		t.Fatalf("expected in-memory cache, got %T", c)
	}
	src, err := ProvideSignalSource(cfg, ProvideHTTPClient(cfg), c, nil)
	if err != nil {
		t.Fatalf("source: %v", err)
	}
	if _, ok := src.(*cache.CachedSource); !ok {
		t.Fatalf("expected cached source, got %T", src)
	}
	if src.Name() != "carbon" {
		t.Fatalf("unexpected source %s", src.Name())
	}
}

func TestProvideMapperFollowsSource(t *testing.T) {
	cfg := testConfig(t, "source:\n  kind: odds\n")
	m, err := ProvideMapper(cfg)
	if err != nil {
		t.Fatalf("mapper: %v", err)
	}
	if m.Policy() != "windowed" {
		t.Fatalf("expected windowed policy for odds, got %s", m.Policy())
	}
}

func TestProvideFakeHardware(t *testing.T) {
	cfg := testConfig(t, "servo:\n  driver: fake\nled:\n  driver: fake\n")
	pwm, err := ProvidePWM(cfg)
	if err != nil {
		t.Fatalf("pwm: %v", err)
	}
	act, err := ProvideActuator(pwm, ProvideCalibration(cfg))
	if err != nil {
		t.Fatalf("actuator: %v", err)
	}
	if _, err := act.Move(180); err != nil {
		t.Fatalf("move: %v", err)
	}
	if last, ok := pwm.(*hw.FakePWM).Last(); !ok || last != 8080 {
		t.Fatalf("unexpected duty %d", last)
	}
	led, err := ProvideIndicator(cfg)
	if err != nil {
		t.Fatalf("led: %v", err)
	}
	if _, ok := led.(*hw.FakeLED); !ok {
		t.Fatalf("expected fake led, got %T", led)
	}
}
