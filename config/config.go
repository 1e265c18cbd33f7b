package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configFileEnvName = "STOREFRONT_CONFIG_FILE"
	envPrefix         = "STOREFRONT"
)

const (
	SourceFile  = "file"
	SourceHTTP  = "http"
	SourceSQL   = "sql"
	SourceFixed = "fixed"
)

var ErrInvalidConfig = errors.New("invalid config")

type catalog struct {
	Source      string `mapstructure:"source"`
	File        string `mapstructure:"file"`
	URL         string `mapstructure:"url"`
	MaxAttempts int    `mapstructure:"max_attempts"`
}

type goldPrice struct {
	Source          string        `mapstructure:"source"`
	URL             string        `mapstructure:"url"`
	FixedRate       float64       `mapstructure:"fixed_rate"`
	FallbackRate    float64       `mapstructure:"fallback_rate"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	FetchTimeout    time.Duration `mapstructure:"fetch_timeout"`
}

type tlsFiles struct {
	CA   string `mapstructure:"ca"`
	Cert string `mapstructure:"cert"`
	Key  string `mapstructure:"key"`
}

type broker struct {
	SeedBrokers        []string      `mapstructure:"seed_brokers"`
	SchemaRegistryURLs []string      `mapstructure:"schema_registry_urls"`
	ActivityTopic      string        `mapstructure:"activity_topic"`
	QueueCapacity      int           `mapstructure:"queue_capacity"`
	PublishTimeout     time.Duration `mapstructure:"publish_timeout"`
	TLS                tlsFiles      `mapstructure:"tls"`
}

type Config struct {
	LogLevel        string        `mapstructure:"log_level"`
	HTTPServerAddr  string        `mapstructure:"http_server_addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	SQLDB           string        `mapstructure:"sql_db"`
	Catalog         catalog       `mapstructure:"catalog"`
	GoldPrice       goldPrice     `mapstructure:"gold_price"`
	Broker          broker        `mapstructure:"broker"`
}

var defaults = map[string]any{
	"log_level":                   "info",
	"http_server_addr":            ":8080",
	"shutdown_timeout":            "5s",
	"sql_db":                      "",
	"catalog.source":              SourceFile,
	"catalog.file":                "data/products.json",
	"catalog.url":                 "",
	"catalog.max_attempts":        3,
	"gold_price.source":           SourceFixed,
	"gold_price.url":              "",
	"gold_price.fixed_rate":       65.0,
	"gold_price.fallback_rate":    65.0,
	"gold_price.refresh_interval": "5m",
	"gold_price.fetch_timeout":    "10s",
	"broker.seed_brokers":         []string{},
	"broker.schema_registry_urls": []string{},
	"broker.activity_topic":       "storefront-activity",
	"broker.queue_capacity":       256,
	"broker.publish_timeout":      "5s",
	"broker.tls.ca":               "",
	"broker.tls.cert":             "",
	"broker.tls.key":              "",
}

// Load reads .env, then the config file and STOREFRONT_* variables.
//
// Exits the process when the config is unusable.
func Load() Config {
	_ = godotenv.Load()

	cfg, err := LoadFile(getConfigFilepath())
	if err != nil {
		die(err)
	}
	return cfg
}

// LoadFile reads the YAML config at path over the defaults. An empty path
// uses the defaults and environment only.
func LoadFile(path string) (Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.UnmarshalExact(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getConfigFilepath() string {
	cmdLine := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	arg := cmdLine.String("config", "", "config file")
	_ = cmdLine.Parse(os.Args[1:])
	env, ok := os.LookupEnv(configFileEnvName)
	if ok {
		return env
	}
	return *arg
}

func die(err error) {
	fmt.Printf("failed to load config file: %v\n", err)
	os.Exit(2)
}

// Validate reports every problem found at once.
func (c Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(
			"%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...),
		))
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		invalid("log_level %q", c.LogLevel)
	}

	switch c.Catalog.Source {
	case SourceFile:
		if c.Catalog.File == "" {
			invalid("catalog.file is required for source %q", SourceFile)
		}
	case SourceHTTP:
		if c.Catalog.URL == "" {
			invalid("catalog.url is required for source %q", SourceHTTP)
		}
	case SourceSQL:
		if c.SQLDB == "" {
			invalid("sql_db is required for catalog source %q", SourceSQL)
		}
	default:
		invalid("catalog.source %q", c.Catalog.Source)
	}

	switch c.GoldPrice.Source {
	case SourceHTTP:
		if c.GoldPrice.URL == "" {
			invalid("gold_price.url is required for source %q", SourceHTTP)
		}
	case SourceFixed:
		if c.GoldPrice.FixedRate <= 0 {
			invalid("gold_price.fixed_rate must be positive")
		}
	default:
		invalid("gold_price.source %q", c.GoldPrice.Source)
	}

	if c.GoldPrice.FallbackRate <= 0 {
		invalid("gold_price.fallback_rate must be positive")
	}

	if c.ShutdownTimeout <= 0 {
		invalid("shutdown_timeout must be positive")
	}

	if len(c.Broker.SeedBrokers) != 0 && c.Broker.ActivityTopic == "" {
		invalid("broker.activity_topic is required with seed brokers")
	}
	if c.Broker.QueueCapacity <= 0 {
		invalid("broker.queue_capacity must be positive")
	}
	if c.Broker.PublishTimeout <= 0 {
		invalid("broker.publish_timeout must be positive")
	}

	return errors.Join(errs...)
}

// SlogLevel returns the parsed log level. Info is used for an invalid one.
func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func (c Config) Print() {
	tamplate := `
	General:
	LogLevel=%q
	HTTPServerAddr=%q
	ShutdownTimeout=%s
	SQLDB=%q

	Catalog:
	Source=%q
	File=%q
	URL=%q
	MaxAttempts=%d

	GoldPrice:
	Source=%q
	URL=%q
	FixedRate=%v
	FallbackRate=%v
	RefreshInterval=%s
	FetchTimeout=%s

	BrokerConfig:
	SeedBrokers=%q
	SchemaRegistryURLs=%q
	ActivityTopic=%q
	QueueCapacity=%d
	PublishTimeout=%s
	TLS=%t

`
	fmt.Println("Loaded config:")
	fmt.Printf(
		strings.TrimLeft(tamplate, "\n"),
		c.LogLevel,
		c.HTTPServerAddr,
		c.ShutdownTimeout,
		maskDSN(c.SQLDB),
		c.Catalog.Source,
		c.Catalog.File,
		c.Catalog.URL,
		c.Catalog.MaxAttempts,
		c.GoldPrice.Source,
		c.GoldPrice.URL,
		c.GoldPrice.FixedRate,
		c.GoldPrice.FallbackRate,
		c.GoldPrice.RefreshInterval,
		c.GoldPrice.FetchTimeout,
		c.Broker.SeedBrokers,
		c.Broker.SchemaRegistryURLs,
		c.Broker.ActivityTopic,
		c.Broker.QueueCapacity,
		c.Broker.PublishTimeout,
		c.Broker.TLS.CA != "",
	)
}

// maskDSN hides the password of a URL style DSN.
func maskDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	if at == -1 {
		return dsn
	}
	userinfo := dsn[:at]
	colon := strings.LastIndex(userinfo, ":")
	if colon == -1 || colon < strings.Index(userinfo, "//") {
		return dsn
	}
	return userinfo[:colon+1] + "***" + dsn[at:]
}
