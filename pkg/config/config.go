package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"

	"PriceCast/pkg/util"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Log         struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Server struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8080"`
		CORS            bool          `yaml:"cors" default:"true"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"60s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Data struct {
		Source      string   `yaml:"source" default:"csv"` // csv | clickhouse
		CSVPath     string   `yaml:"csv_path" default:"stock_data.csv"`
		ForecastDir string   `yaml:"forecast_dir" default:"results"`
		Tickers     []string `yaml:"tickers"` // load only these; empty loads all
	} `yaml:"data"`
	Model struct {
		PredictionDays  int     `yaml:"prediction_days" default:"30"`
		TestFraction    float64 `yaml:"test_fraction" default:"0.2"`
		Seed            int64   `yaml:"seed" default:"42"`
		Trees           int     `yaml:"n_trees" default:"100"`
		MaxDepth        int     `yaml:"max_depth"`
		MinSamplesSplit int     `yaml:"min_samples_split" default:"2"`
		MinSamplesLeaf  int     `yaml:"min_samples_leaf" default:"1"`
		MaxFeatures     int     `yaml:"max_features"`
		Workers         int     `yaml:"workers" default:"4"`
		TrainOnStartup  bool    `yaml:"train_on_startup" default:"true"`
	} `yaml:"model"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"pricecast"`
		Table            string        `yaml:"table" default:"daily_ohlcv"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic" default:"pricecast.events"`
		RequiredAcks int           `yaml:"required_acks" default:"-1"`
		Compression  string        `yaml:"compression" default:"gzip"`
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
		Async        bool          `yaml:"async"`
	} `yaml:"kafka"`
	Redis struct {
		Enabled  bool          `yaml:"enabled"`
		Addr     string        `yaml:"addr" default:"localhost:6379"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		TTL      time.Duration `yaml:"ttl" default:"5m"`
	} `yaml:"redis"`
}

// Default returns a configuration populated only from struct defaults.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	return &c, nil
}

// Load reads and parses a YAML configuration file on top of the defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML bytes on top of the defaults and validates the result.
func Parse(b []byte) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML (or defaults when path is empty) and overrides
// with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	var (
		c   *Config
		err error
	)
	if path == "" {
		c, err = Default()
	} else {
		c, err = Load(path)
	}
	if err != nil {
		return nil, err
	}

	c.applyEnv(os.Getenv)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("PRICECAST_ENV"); v != "" {
		c.Environment = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := getenv("DATA_SOURCE"); v != "" {
		c.Data.Source = v
	}
	if v := getenv("DATA_CSV_PATH"); v != "" {
		c.Data.CSVPath = v
	}
	if v := getenv("DATA_TICKERS"); v != "" {
		c.Data.Tickers = util.SplitList(v)
	}
	if v := getenv("PREDICTION_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Model.PredictionDays = n
		}
	}
	if v := getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Data.Source {
	case "csv":
		if c.Data.CSVPath == "" {
			return fmt.Errorf("data.csv_path is required for csv source")
		}
	case "clickhouse":
		if c.ClickHouse.Host == "" {
			return fmt.Errorf("clickhouse.host is required for clickhouse source")
		}
	default:
		return fmt.Errorf("data.source must be 'csv' or 'clickhouse', got '%s'", c.Data.Source)
	}
	if c.Model.PredictionDays < 1 {
		return fmt.Errorf("model.prediction_days must be >= 1, got %d", c.Model.PredictionDays)
	}
	if c.Model.TestFraction <= 0 || c.Model.TestFraction >= 1 {
		return fmt.Errorf("model.test_fraction must be in (0, 1), got %v", c.Model.TestFraction)
	}
	if c.Model.Trees < 1 {
		return fmt.Errorf("model.n_trees must be >= 1, got %d", c.Model.Trees)
	}
	if c.Model.MinSamplesSplit < 2 {
		return fmt.Errorf("model.min_samples_split must be >= 2, got %d", c.Model.MinSamplesSplit)
	}
	if c.Model.MinSamplesLeaf < 1 {
		return fmt.Errorf("model.min_samples_leaf must be >= 1, got %d", c.Model.MinSamplesLeaf)
	}
	return nil
}
