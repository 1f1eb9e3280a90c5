package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	blockrec "github.com/arran4/golang-blockrec"
	"github.com/arran4/golang-blockrec/internal/atomicfile"
)

const (
	defaultCalendarPath = "calendar.ics"
	defaultProductID    = "blockrec"
	defaultLogLevel     = "info"
	defaultSearchDays   = 4
)

// PolicyConfig overrides the parse policies of one schema. Empty values keep
// the schema's own policy.
type PolicyConfig struct {
	// Unrecognized is "warn" or "reject".
	Unrecognized string `yaml:"unrecognized,omitempty" json:"unrecognized,omitempty"`
	// Lines is "lenient" or "strict".
	Lines string `yaml:"lines,omitempty" json:"lines,omitempty"`
}

// Config is the top-level application configuration.
type Config struct {
	// CalendarPath is the booking calendar file.
	CalendarPath string `yaml:"calendar_path" json:"calendar_path"`

	// ProductID names the service in the PRODID of new calendars.
	ProductID string `yaml:"product_id" json:"product_id"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// SearchDays is how many free days "available" lists by default.
	SearchDays int `yaml:"search_days" json:"search_days"`

	Records PolicyConfig `yaml:"records" json:"records"`
	Events  PolicyConfig `yaml:"events" json:"events"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		CalendarPath: defaultCalendarPath,
		ProductID:    defaultProductID,
		LogLevel:     defaultLogLevel,
		SearchDays:   defaultSearchDays,
	}
}

// Normalize fills in missing/zero values with defaults so that
// partially-filled configs still behave correctly. Unknown policy names are
// cleared.
func (c *Config) Normalize() {
	if c.CalendarPath == "" {
		c.CalendarPath = defaultCalendarPath
	}
	if c.ProductID == "" {
		c.ProductID = defaultProductID
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		c.LogLevel = defaultLogLevel
	}
	if c.SearchDays <= 0 {
		c.SearchDays = defaultSearchDays
	}
	c.Records.normalize()
	c.Events.normalize()
}

func (p *PolicyConfig) normalize() {
	p.Unrecognized = strings.ToLower(strings.TrimSpace(p.Unrecognized))
	if _, ok := unrecognizedPolicies[p.Unrecognized]; !ok {
		p.Unrecognized = ""
	}
	p.Lines = strings.ToLower(strings.TrimSpace(p.Lines))
	if _, ok := linePolicies[p.Lines]; !ok {
		p.Lines = ""
	}
}

var (
	unrecognizedPolicies = map[string]blockrec.UnrecognizedPolicy{
		"":       blockrec.UnrecognizedDefault,
		"warn":   blockrec.UnrecognizedWarn,
		"reject": blockrec.UnrecognizedReject,
	}
	linePolicies = map[string]blockrec.LinePolicy{
		"":        blockrec.LinesDefault,
		"lenient": blockrec.LinesLenient,
		"strict":  blockrec.LinesStrict,
	}
)

// Ops returns the parse options for this policy, ready to pass to the
// blockrec Parse functions.
func (p PolicyConfig) Ops() []any {
	var ops []any
	if u := unrecognizedPolicies[p.Unrecognized]; u != blockrec.UnrecognizedDefault {
		ops = append(ops, u)
	}
	if l := linePolicies[p.Lines]; l != blockrec.LinesDefault {
		ops = append(ops, l)
	}
	return ops
}

// Level maps LogLevel to a slog level.
func (c *Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Load reads configuration from the given YAML path. A missing file yields
// the defaults; nothing is written.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the configuration to path atomically with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return atomicfile.WriteFile(path, data, 0o600)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
