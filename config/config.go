package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/fxrisk/market"
	"github.com/rustyeddy/fxrisk/pkg/logger"
	"github.com/rustyeddy/fxrisk/risk"
	"github.com/rustyeddy/fxrisk/volatility"
)

// Environment variables that override file values.
const (
	EnvFeedProvider = "FXVAR_FEED_PROVIDER"
	EnvOandaToken   = "OANDA_TOKEN"
	EnvLogLevel     = "FXVAR_LOG_LEVEL"
	EnvJournalPath  = "FXVAR_JOURNAL_PATH"
)

const dateLayout = "2006-01-02"

// Config is the complete fxvar configuration.
type Config struct {
	Instrument string        `json:"instrument" yaml:"instrument" default:"USD_MAD" validate:"required"`
	Feed       FeedConfig    `json:"feed" yaml:"feed"`
	History    HistoryConfig `json:"history" yaml:"history"`
	Model      ModelConfig   `json:"model" yaml:"model"`
	VaR        VaRConfig     `json:"var" yaml:"var"`
	Journal    JournalConfig `json:"journal" yaml:"journal"`
	Log        LogConfig     `json:"log" yaml:"log"`
	Server     ServerConfig  `json:"server" yaml:"server"`
}

// FeedConfig selects and configures the market-data vendor.
type FeedConfig struct {
	Provider string        `json:"provider" yaml:"provider" default:"yahoo" validate:"oneof=yahoo oanda replay"`
	Timeout  time.Duration `json:"timeout" yaml:"timeout" default:"15s" validate:"gt=0"`

	Yahoo struct {
		BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" default:"https://query1.finance.yahoo.com" validate:"omitempty,url"`
	} `json:"yahoo" yaml:"yahoo"`

	Oanda struct {
		Environment string `json:"environment" yaml:"environment" default:"practice" validate:"oneof=practice live"`
		BaseURL     string `json:"base_url,omitempty" yaml:"base_url,omitempty" validate:"omitempty,url"`
		Token       string `json:"-" yaml:"token,omitempty"`
	} `json:"oanda" yaml:"oanda"`

	Replay struct {
		Path string `json:"path,omitempty" yaml:"path,omitempty"`
	} `json:"replay" yaml:"replay"`
}

// HistoryConfig is the daily-history window. Start and End are fixed by
// default; RelativeYears > 0 replaces them with the trailing N years.
type HistoryConfig struct {
	Start           string `json:"start" yaml:"start" default:"2020-01-01" validate:"required,datetime=2006-01-02"`
	End             string `json:"end" yaml:"end" default:"2025-01-01" validate:"required,datetime=2006-01-02"`
	RelativeYears   int    `json:"relative_years,omitempty" yaml:"relative_years,omitempty" validate:"gte=0,lte=30"`
	MinObservations int    `json:"min_observations" yaml:"min_observations" default:"250" validate:"gte=250"`
}

type ModelConfig struct {
	Method         string  `json:"method" yaml:"method" default:"nelder-mead" validate:"oneof=nelder-mead bfgs"`
	MaxEvaluations int     `json:"max_evaluations" yaml:"max_evaluations" default:"50000" validate:"gte=100"`
	Tolerance      float64 `json:"tolerance" yaml:"tolerance" default:"1e-9" validate:"gt=0"`
}

type VaRConfig struct {
	Confidence       float64     `json:"confidence" yaml:"confidence" default:"0.95" validate:"gt=0.5,lt=1"`
	StressConfidence float64     `json:"stress_confidence" yaml:"stress_confidence" default:"0.99" validate:"gt=0.5,lt=1"`
	Clamp            ClampConfig `json:"clamp" yaml:"clamp"`
}

// ClampConfig is the plausibility band on daily VaR, in percent.
type ClampConfig struct {
	Enabled        bool    `json:"enabled" yaml:"enabled" default:"true"`
	MinDailyVaRPct float64 `json:"min_daily_var_pct" yaml:"min_daily_var_pct" default:"0.4" validate:"gt=0"`
	MaxDailyVaRPct float64 `json:"max_daily_var_pct" yaml:"max_daily_var_pct" default:"0.6" validate:"gt=0"`
	Quantile       float64 `json:"quantile" yaml:"quantile" default:"2.015" validate:"gt=0"`
}

type JournalConfig struct {
	Type    string `json:"type" yaml:"type" default:"sqlite" validate:"oneof=sqlite csv none"`
	DBPath  string `json:"db_path,omitempty" yaml:"db_path,omitempty" default:"./fxvar.db"`
	CSVPath string `json:"csv_path,omitempty" yaml:"csv_path,omitempty" default:"./assessments.csv"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
	Format string `json:"format" yaml:"format" default:"console" validate:"oneof=json console"`
	Output string `json:"output" yaml:"output" default:"stderr"`
}

type ServerConfig struct {
	Addr            string        `json:"addr" yaml:"addr" default:":8080" validate:"required"`
	ReadTimeout     time.Duration `json:"read_timeout" yaml:"read_timeout" default:"10s"`
	WriteTimeout    time.Duration `json:"write_timeout" yaml:"write_timeout" default:"60s"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" default:"10s"`
}

var validate = validator.New()

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		// only fails on a malformed default tag
		panic(err)
	}
	return cfg
}

// Load reads path when it is not empty, otherwise starts from Default.
func Load(path string) (*Config, error) {
	if path != "" {
		return LoadFromFile(path)
	}
	cfg := Default()
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a file. Keys missing from the file
// keep their defaults; environment overrides are applied before validation.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg = Default()
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", errors.Join(err, jerr))
		}
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes YAML for .yaml/.yml paths and JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// ApplyEnv overrides file values from the environment.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvFeedProvider)); v != "" {
		c.Feed.Provider = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvOandaToken)); v != "" {
		c.Feed.Oanda.Token = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.Log.Level = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvJournalPath)); v != "" {
		switch c.Journal.Type {
		case "csv":
			c.Journal.CSVPath = v
		default:
			c.Journal.DBPath = v
		}
	}
}

// Validate runs the field rules and then the checks that span fields.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return err
	}

	if _, ok := market.Instruments[c.Instrument]; !ok {
		return fmt.Errorf("unknown instrument: %s", c.Instrument)
	}

	start, _ := time.Parse(dateLayout, c.History.Start)
	end, _ := time.Parse(dateLayout, c.History.End)
	if !start.Before(end) {
		return fmt.Errorf("history.start %s must be before history.end %s", c.History.Start, c.History.End)
	}

	if c.VaR.StressConfidence < c.VaR.Confidence {
		return fmt.Errorf("var.stress_confidence must be at least var.confidence")
	}
	if err := c.Band().Validate(); err != nil {
		return fmt.Errorf("var.clamp: %w", err)
	}

	switch c.Feed.Provider {
	case "oanda":
		if c.Feed.Oanda.Token == "" {
			return fmt.Errorf("feed.oanda.token or %s required for the oanda feed", EnvOandaToken)
		}
	case "replay":
		if c.Feed.Replay.Path == "" {
			return fmt.Errorf("feed.replay.path required for the replay feed")
		}
	}

	if c.Journal.Type == "sqlite" && c.Journal.DBPath == "" {
		return fmt.Errorf("journal.db_path required for sqlite journal")
	}
	if c.Journal.Type == "csv" && c.Journal.CSVPath == "" {
		return fmt.Errorf("journal.csv_path required for csv journal")
	}
	return nil
}

// InstrumentMeta returns the configured instrument.
func (c *Config) InstrumentMeta() market.InstrumentMeta {
	return market.Instruments[c.Instrument]
}

// JournalPath is the path for the configured journal type.
func (c *Config) JournalPath() string {
	if c.Journal.Type == "csv" {
		return c.Journal.CSVPath
	}
	return c.Journal.DBPath
}

// Band builds the clamp band.
func (c *Config) Band() risk.Band {
	return risk.Band{
		MinDailyVaR: market.Percent(c.VaR.Clamp.MinDailyVaRPct),
		MaxDailyVaR: market.Percent(c.VaR.Clamp.MaxDailyVaRPct),
		Quantile:    c.VaR.Clamp.Quantile,
	}
}

// Policy builds the risk policy.
func (c *Config) Policy() risk.Policy {
	return risk.Policy{
		Confidence:       c.VaR.Confidence,
		StressConfidence: c.VaR.StressConfidence,
		Band:             c.Band(),
		ClampEnabled:     c.VaR.Clamp.Enabled,
		Fit: volatility.Options{
			Method:         volatility.Method(c.Model.Method),
			MaxEvaluations: c.Model.MaxEvaluations,
			Tolerance:      c.Model.Tolerance,
		},
	}
}

// Window returns the history window. now is only used when
// history.relative_years is set.
func (c *Config) Window(now time.Time) market.Window {
	if c.History.RelativeYears > 0 {
		w := market.TrailingWindow(now, c.History.RelativeYears)
		w.MinObservations = c.History.MinObservations
		return w
	}
	start, _ := time.Parse(dateLayout, c.History.Start)
	end, _ := time.Parse(dateLayout, c.History.End)
	return market.Window{Start: start, End: end, MinObservations: c.History.MinObservations}
}

// Logger builds the logger config.
func (c *Config) Logger() *logger.Config {
	return &logger.Config{
		Level:  c.Log.Level,
		Format: c.Log.Format,
		Output: c.Log.Output,
	}
}
