package config

import (
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like
// "2s" or "250ms".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return errors.Wrapf(err, "invalid duration %q", value.Value)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Locking struct {
		WaitTimeout Duration `yaml:"wait_timeout"`
	} `yaml:"locking"`
	Reports struct {
		Timezone string `yaml:"timezone"`
	} `yaml:"reports"`
	Tracing struct {
		Enabled        bool   `yaml:"enabled"`
		JaegerEndpoint string `yaml:"jaeger_endpoint"`
	} `yaml:"tracing"`
	Redis struct {
		Enabled bool   `yaml:"enabled"`
		Addrs   string `yaml:"addrs"`
	} `yaml:"redis"`
	Kafka struct {
		Enabled bool   `yaml:"enabled"`
		Brokers string `yaml:"brokers"`
		Topic   string `yaml:"topic"`
	} `yaml:"kafka"`
	Database struct {
		Enabled bool   `yaml:"enabled"`
		DSN     string `yaml:"dsn"`
	} `yaml:"database"`
}

// Default returns a config that runs the service standalone: no file,
// no external infrastructure.
func Default() Config {
	var c Config
	c.Server.Port = 8080
	c.Locking.WaitTimeout = Duration(2 * time.Second)
	c.Reports.Timezone = "UTC"
	c.Tracing.JaegerEndpoint = "http://localhost:14268/api/traces"
	c.Redis.Addrs = "localhost:6379"
	c.Kafka.Brokers = "localhost:9092"
	c.Kafka.Topic = "pos-settlements"
	return c
}

// Load reads the YAML file at path (skipped when empty) and applies
// environment overrides on top of the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrapf(err, "failed to read config %s", path)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, errors.Wrapf(err, "failed to parse config %s", path)
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv("POS_PORT"); ok {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v, ok := os.LookupEnv("POS_TIMEZONE"); ok {
		cfg.Reports.Timezone = v
	}
	if v, ok := os.LookupEnv("JAEGER_ENDPOINT"); ok {
		cfg.Tracing.JaegerEndpoint = v
		cfg.Tracing.Enabled = true
	}
	if v, ok := os.LookupEnv("REDIS_ADDRS"); ok {
		cfg.Redis.Addrs = v
		cfg.Redis.Enabled = true
	}
	if v, ok := os.LookupEnv("KAFKA_BROKERS"); ok {
		cfg.Kafka.Brokers = v
		cfg.Kafka.Enabled = true
	}
	if v, ok := os.LookupEnv("MYSQL_DSN"); ok {
		cfg.Database.DSN = v
		cfg.Database.Enabled = true
	}
}

// ReportLocation resolves the configured report timezone.
func (c Config) ReportLocation() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Reports.Timezone)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid report timezone %q", c.Reports.Timezone)
	}
	return loc, nil
}
