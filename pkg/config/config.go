package config

import (
	"fmt"
	"os"
	"time"

	"DialMeter/pkg/util"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"production" validate:"required"`
	Source      struct {
		Kind string `yaml:"kind" default:"carbon" validate:"oneof=carbon odds"`
	} `yaml:"source"`
	Carbon struct {
		URL        string        `yaml:"url" default:"https://api.carbonintensity.org.uk/generation" validate:"url"`
		GreenFuels []string      `yaml:"green_fuels" default:"[\"solar\",\"nuclear\",\"wind\",\"hydro\"]" validate:"min=1,dive,required"`
		Timeout    time.Duration `yaml:"timeout" default:"10s"`
	} `yaml:"carbon"`
	Odds struct {
		BaseURL string        `yaml:"base_url" default:"https://api.the-odds-api.com" validate:"url"`
		APIKey  string        `yaml:"api_key"`
		Sport   string        `yaml:"sport" default:"politics_us_presidential_election_winner" validate:"required"`
		Regions string        `yaml:"regions" default:"us"`
		Tracked []string      `yaml:"tracked" default:"[\"Kamala Harris\",\"Donald Trump\"]"`
		Target  string        `yaml:"target" default:"Donald Trump" validate:"required"`
		Timeout time.Duration `yaml:"timeout" default:"10s"`
	} `yaml:"odds"`
	Mapping struct {
		// Policy defaults by source: linear for carbon, windowed for odds.
		Policy  string  `yaml:"policy" validate:"omitempty,oneof=linear windowed proportional"`
		MinDeg  float64 `yaml:"min_deg" default:"0"`
		MaxDeg  float64 `yaml:"max_deg" default:"110" validate:"nefield=MinDeg"`
		MinProb float64 `yaml:"min_prob" default:"45" validate:"gte=0,lte=100"`
		MaxProb float64 `yaml:"max_prob" default:"55" validate:"gtfield=MinProb,lte=100"`
		DialMin float64 `yaml:"dial_min" default:"0" validate:"gte=0,lte=180"`
		DialMax float64 `yaml:"dial_max" default:"180" validate:"gte=0,lte=180"`
	} `yaml:"mapping"`
	Servo struct {
		Driver      string `yaml:"driver" default:"periph" validate:"oneof=periph fake"`
		Pin         string `yaml:"pin" default:"GPIO18"`
		FrequencyHz int    `yaml:"frequency_hz" default:"50" validate:"min=1,max=450"`
		MinDuty     uint16 `yaml:"min_duty" default:"2201" validate:"gt=0"`
		MaxDuty     uint16 `yaml:"max_duty" default:"8080" validate:"gtfield=MinDuty"`
	} `yaml:"servo"`
	Sweep struct {
		Enabled bool          `yaml:"enabled" default:"true"`
		Mode    string        `yaml:"mode" default:"full" validate:"oneof=full steps"`
		Steps   int           `yaml:"steps" default:"18" validate:"min=1,max=180"`
		Delay   time.Duration `yaml:"delay" default:"10ms"`
	} `yaml:"sweep"`
	LED struct {
		Driver string `yaml:"driver" default:"none" validate:"oneof=periph fake none"`
		Pin    string `yaml:"pin" default:"GPIO25"`
	} `yaml:"led"`
	Network struct {
		Enabled bool `yaml:"enabled" default:"true"`
		// ProbeAddr defaults to the source host on port 443.
		ProbeAddr   string        `yaml:"probe_addr"`
		Attempts    int           `yaml:"attempts" default:"15" validate:"min=1"`
		Interval    time.Duration `yaml:"interval" default:"1s"`
		DialTimeout time.Duration `yaml:"dial_timeout" default:"2s"`
	} `yaml:"network"`
	Poll struct {
		Interval time.Duration `yaml:"interval" default:"300s" validate:"gte=1s"`
		RunOnce  bool          `yaml:"run_once"`
	} `yaml:"poll"`
	Server struct {
		Enabled         bool          `yaml:"enabled" default:"true"`
		Port            int           `yaml:"port" default:"8080" validate:"min=1,max=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		PreviewRPS      float64       `yaml:"preview_rps" default:"5"`
	} `yaml:"server"`
	Cache struct {
		Enabled bool          `yaml:"enabled"`
		TTL     time.Duration `yaml:"ttl" default:"60s"`
		Redis   struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix" default:"dialmeter"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers" validate:"required_if=Enabled true"`
		Topic        string   `yaml:"topic" default:"dial-events"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" default:"gzip" validate:"oneof=gzip snappy lz4 zstd"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"1s"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"1"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	Logger struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"logger"`
}

var validate = validator.New()

// Parse applies defaults, then the YAML document on top of them.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &c, nil
}

// Load reads, parses and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML, overrides with environment variables, then validates.
func LoadWithEnv(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}
	c.ApplyEnv(os.Getenv)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func read(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// ApplyEnv overrides fields from the environment. Secrets belong here, not in YAML.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("ODDS_API_KEY"); v != "" {
		c.Odds.APIKey = v
	}
	if v := getenv("DIAL_SOURCE"); v != "" {
		c.Source.Kind = v
	}
	if v := getenv("HTTP_PORT"); v != "" {
		c.Server.Port = util.ParseIntDefault(v, c.Server.Port)
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Logger.Level = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = util.SplitList(v)
	}
	if v := getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
}

// Validate checks struct tags and the rules that span sections.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Source.Kind == "odds" && c.Odds.APIKey == "" {
		return fmt.Errorf("odds.api_key is required for source odds (set ODDS_API_KEY)")
	}
	if c.Servo.Driver == "periph" && c.Servo.Pin == "" {
		return fmt.Errorf("servo.pin is required for the periph driver")
	}
	if c.LED.Driver == "periph" && c.LED.Pin == "" {
		return fmt.Errorf("led.pin is required for the periph driver")
	}
	return nil
}

// MappingPolicy returns the configured policy, or the source's natural one.
func (c *Config) MappingPolicy() string {
	if c.Mapping.Policy != "" {
		return c.Mapping.Policy
	}
	if c.Source.Kind == "odds" {
		return "windowed"
	}
	return "linear"
}
