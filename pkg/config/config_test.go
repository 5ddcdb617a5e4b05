package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseAppliesDefaults(t *testing.T) {
	c, err := Parse([]byte("source:\n  kind: carbon\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("expected defaults to validate: %v", err)
	}
	if c.Poll.Interval != 300*time.Second || c.Network.Attempts != 15 || c.Network.Interval != time.Second {
		t.Fatalf("unexpected defaults %+v %+v", c.Poll, c.Network)
	}
	if c.Servo.MinDuty != 2201 || c.Servo.MaxDuty != 8080 || c.Servo.FrequencyHz != 50 {
		t.Fatalf("unexpected servo defaults %+v", c.Servo)
	}
	if len(c.Carbon.GreenFuels) != 4 || c.MappingPolicy() != "linear" {
		t.Fatalf("unexpected carbon defaults %v %s", c.Carbon.GreenFuels, c.MappingPolicy())
	}
}

func TestYAMLOverridesDefaults(t *testing.T) {
	c, err := Parse([]byte("sweep:\n  enabled: false\ncarbon:\n  green_fuels: [wind]\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Sweep.Enabled {
		t.Fatalf("expected sweep disabled")
	}
	if len(c.Carbon.GreenFuels) != 1 || c.Carbon.GreenFuels[0] != "wind" {
		t.Fatalf("unexpected fuels %v", c.Carbon.GreenFuels)
	}
}

func TestValidateRejectsBadCalibration(t *testing.T) {
	c, _ := Parse([]byte("servo:\n  min_duty: 8000\n  max_duty: 2000\n"))
	if err := c.Validate(); err == nil {
		t.Fatalf("expected calibration error")
	}
	c, _ = Parse([]byte("mapping:\n  min_prob: 50\n  max_prob: 50\n"))
	if err := c.Validate(); err == nil {
		t.Fatalf("expected window error")
	}
	c, _ = Parse([]byte("servo:\n  frequency_hz: 1000\n"))
	if err := c.Validate(); err == nil {
		t.Fatalf("expected frequency error")
	}
}

func TestOddsRequiresAPIKey(t *testing.T) {
	c, _ := Parse([]byte("source:\n  kind: odds\n"))
	if err := c.Validate(); err == nil || !strings.Contains(err.Error(), "api_key") {
		t.Fatalf("expected api key error, got %v", err)
	}
	c.ApplyEnv(func(k string) string {
		if k == "ODDS_API_KEY" {
			return "secret"
		}
		return ""
	})
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.MappingPolicy() != "windowed" {
		t.Fatalf("expected windowed policy for odds, got %s", c.MappingPolicy())
	}
}

func TestKafkaBrokersRequiredWhenEnabled(t *testing.T) {
	c, _ := Parse([]byte("kafka:\n  enabled: true\n"))
	if err := c.Validate(); err == nil {
		t.Fatalf("expected brokers error")
	}
	c.ApplyEnv(func(k string) string {
		if k == "KAFKA_BROKERS" {
			return "a:9092, b:9092"
		}
		return ""
	})
	if len(c.Kafka.Brokers) != 2 || c.Kafka.Brokers[1] != "b:9092" {
		t.Fatalf("unexpected brokers %v", c.Kafka.Brokers)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadSampleConfigs(t *testing.T) {
	for _, name := range []string{"config.yaml", "election.yaml"} {
		path := filepath.Join("..", "..", "config", name)
		if _, err := os.Stat(path); err != nil {
			t.Skipf("sample config not found: %v", err)
		}
		c, err := read(path)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		c.Odds.APIKey = "k"
		if err := c.Validate(); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
	}
}
