package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"SqueezeScan/internal/engine"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		AlertTopic   string   `yaml:"alert_topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	MarketData struct {
		BaseURL        string        `yaml:"base_url"`
		SymbolSuffix   string        `yaml:"symbol_suffix"` // exchange suffix appended to symbols, e.g. ".NS"
		Timeout        time.Duration `yaml:"timeout"`
		RequestsPerSec float64       `yaml:"requests_per_sec"`
		Burst          float64       `yaml:"burst"`
		CacheTTL       struct {
			Short time.Duration `yaml:"short"` // 6mo, 1y
			Long  time.Duration `yaml:"long"`  // 2y and beyond
		} `yaml:"cache_ttl"`
	} `yaml:"market_data"`
	Scanner struct {
		Symbols       []string      `yaml:"symbols"`
		Period        string        `yaml:"period"`
		Workers       int           `yaml:"workers"`
		MinDataPoints int           `yaml:"min_data_points"`
		ResultTTL     time.Duration `yaml:"result_ttl"`
		QueueName     string        `yaml:"queue_name"`
	} `yaml:"scanner"`
	Engine engine.Config `yaml:"engine"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Scanner.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("MARKET_DATA_URL"); v != "" {
		c.MarketData.BaseURL = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.MarketData.BaseURL == "" {
		return fmt.Errorf("market_data.base_url is required")
	}
	if len(c.Scanner.Symbols) == 0 {
		return fmt.Errorf("scanner.symbols cannot be empty")
	}
	if c.Scanner.Workers < 0 {
		return fmt.Errorf("scanner.workers cannot be negative")
	}
	switch c.Scanner.Period {
	case "", "6mo", "1y", "2y", "5y", "max":
	default:
		return fmt.Errorf("scanner.period must be one of 6mo/1y/2y/5y/max, got '%s'", c.Scanner.Period)
	}
	return nil
}
