package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"picket/internal/classify"
)

// Config is the fully resolved picket configuration.
type Config struct {
	// Interval is the poll cadence. Always positive.
	Interval time.Duration
	// Backoff widens the sleep after consecutive fetch failures. The
	// regular cadence stays the default; backoff is opt-in.
	Backoff bool
	// StatsEvery is the cadence of the periodic summary line; zero disables it.
	StatsEvery time.Duration
	// Color selects the renderer color mode: auto, always or never.
	Color string
	// LogLevel is the diagnostic log level (zerolog level name).
	LogLevel string
	// Source selects and parameterizes the event source adapter.
	Source SourceConfig
	// Rules is the classification table, never nil.
	Rules *classify.RuleSet
}

// SourceConfig selects one adapter and carries every adapter's options; only
// the selected adapter reads its section.
type SourceConfig struct {
	Type   string
	JSONL  JSONLConfig
	SQLite SQLiteConfig
	API    APIConfig
}

// JSONLConfig configures the JSON-lines file source.
type JSONLConfig struct {
	// Path of the append-only .jsonl file.
	Path string
	// Follow watches the file and nudges the monitor on writes instead of
	// always waiting out the poll interval.
	Follow bool
}

// SQLiteConfig configures the SQLite table source.
type SQLiteConfig struct {
	Path           string
	Table          string
	TSColumn       string
	CategoryColumn string
	MessageColumn  string
	// Limit caps rows per fetch; zero means no cap.
	Limit int
}

// APIConfig configures the HTTP polling source.
type APIConfig struct {
	// Endpoint is the host:port (or full URL) of the log API.
	Endpoint string
	// Path is the query path on the endpoint.
	Path string
	// Timeout bounds one fetch request.
	Timeout time.Duration
}

const (
	defaultConfigPath = "~/.config/picket/config.toml"
	defaultInterval   = 2 * time.Second
	defaultAPIPath    = "/events"
	defaultAPITimeout = 5 * time.Second
	defaultTable      = "events"
	defaultTSColumn   = "ts"
	defaultCategory   = "category"
	defaultMessage    = "message"
)

// raw mirrors the TOML file. Durations travel as strings and are parsed
// during resolution.
type raw struct {
	Interval   string `toml:"interval"`
	Backoff    bool   `toml:"backoff"`
	StatsEvery string `toml:"stats_every"`

	Source struct {
		Type  string `toml:"type"`
		JSONL struct {
			Path   string `toml:"path"`
			Follow bool   `toml:"follow"`
		} `toml:"jsonl"`
		SQLite struct {
			Path           string `toml:"path"`
			Table          string `toml:"table"`
			TSColumn       string `toml:"ts_column"`
			CategoryColumn string `toml:"category_column"`
			MessageColumn  string `toml:"message_column"`
			Limit          int    `toml:"limit"`
		} `toml:"sqlite"`
		API struct {
			Endpoint string `toml:"endpoint"`
			Path     string `toml:"path"`
			Timeout  string `toml:"timeout"`
		} `toml:"api"`
	} `toml:"source"`

	Classify rawClassify `toml:"classify"`

	Output struct {
		Color string `toml:"color"`
	} `toml:"output"`

	Log struct {
		Level string `toml:"level"`
	} `toml:"log"`
}

type rawClassify struct {
	RulesPath string    `toml:"rules_path"`
	Rule      []rawRule `toml:"rule"`
	Default   *rawRule  `toml:"default"`
}

type rawRule struct {
	Category int    `toml:"category"`
	Label    string `toml:"label"`
	Emphasis string `toml:"emphasis"`
}

// Load locates and parses the picket config, falling back to defaults when
// the file is missing. A present-but-broken file is a startup error.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	var r raw
	file, err := os.Open(resolved)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("open config: %w", err)
		}
		// Missing config file: run on defaults.
	} else {
		defer file.Close()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(bytes, &r); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	return resolve(r)
}

func resolve(r raw) (Config, error) {
	cfg := Config{
		Backoff:  r.Backoff,
		Color:    "auto",
		LogLevel: "info",
	}

	var err error
	if cfg.Interval, err = parseDuration(r.Interval, defaultInterval); err != nil {
		return Config{}, fmt.Errorf("interval: %w", err)
	}
	if cfg.Interval <= 0 {
		return Config{}, fmt.Errorf("interval must be positive, got %v", cfg.Interval)
	}
	if cfg.StatsEvery, err = parseDuration(r.StatsEvery, 0); err != nil {
		return Config{}, fmt.Errorf("stats_every: %w", err)
	}
	if cfg.StatsEvery < 0 {
		return Config{}, fmt.Errorf("stats_every must not be negative, got %v", cfg.StatsEvery)
	}

	if color := strings.TrimSpace(strings.ToLower(r.Output.Color)); color != "" {
		switch color {
		case "auto", "always", "never":
			cfg.Color = color
		default:
			return Config{}, fmt.Errorf("output.color must be auto, always or never, got %q", r.Output.Color)
		}
	}

	if level := strings.TrimSpace(strings.ToLower(r.Log.Level)); level != "" {
		cfg.LogLevel = level
	}

	cfg.Source, err = resolveSource(r)
	if err != nil {
		return Config{}, err
	}

	cfg.Rules, err = resolveRules(r.Classify)
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func resolveSource(r raw) (SourceConfig, error) {
	src := SourceConfig{
		Type: strings.TrimSpace(strings.ToLower(r.Source.Type)),
		JSONL: JSONLConfig{
			Path:   strings.TrimSpace(r.Source.JSONL.Path),
			Follow: r.Source.JSONL.Follow,
		},
		SQLite: SQLiteConfig{
			Path:           strings.TrimSpace(r.Source.SQLite.Path),
			Table:          fallback(r.Source.SQLite.Table, defaultTable),
			TSColumn:       fallback(r.Source.SQLite.TSColumn, defaultTSColumn),
			CategoryColumn: fallback(r.Source.SQLite.CategoryColumn, defaultCategory),
			MessageColumn:  fallback(r.Source.SQLite.MessageColumn, defaultMessage),
			Limit:          r.Source.SQLite.Limit,
		},
		API: APIConfig{
			Endpoint: strings.TrimSpace(r.Source.API.Endpoint),
			Path:     fallback(r.Source.API.Path, defaultAPIPath),
		},
	}
	if src.Type == "" {
		src.Type = "jsonl"
	}
	if src.SQLite.Limit < 0 {
		return SourceConfig{}, fmt.Errorf("source.sqlite.limit must not be negative, got %d", src.SQLite.Limit)
	}

	timeout, err := parseDuration(r.Source.API.Timeout, defaultAPITimeout)
	if err != nil {
		return SourceConfig{}, fmt.Errorf("source.api.timeout: %w", err)
	}
	if timeout <= 0 {
		return SourceConfig{}, fmt.Errorf("source.api.timeout must be positive, got %v", timeout)
	}
	src.API.Timeout = timeout

	if src.JSONL.Path != "" {
		if src.JSONL.Path, err = expandPath(src.JSONL.Path); err != nil {
			return SourceConfig{}, fmt.Errorf("source.jsonl.path: %w", err)
		}
	}
	if src.SQLite.Path != "" {
		if src.SQLite.Path, err = expandPath(src.SQLite.Path); err != nil {
			return SourceConfig{}, fmt.Errorf("source.sqlite.path: %w", err)
		}
	}

	return src, nil
}

func resolveRules(rc rawClassify) (*classify.RuleSet, error) {
	if path := strings.TrimSpace(rc.RulesPath); path != "" {
		return LoadRuleFile(path)
	}
	return buildRules(rc)
}

// LoadRuleFile parses a standalone rule table. The file uses the same shape
// as the [classify] section: [[rule]] entries plus one [default].
func LoadRuleFile(path string) (*classify.RuleSet, error) {
	resolved, err := expandPath(path)
	if err != nil {
		return nil, fmt.Errorf("rules path: %w", err)
	}
	bytes, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	var rc rawClassify
	if err := toml.Unmarshal(bytes, &rc); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	if strings.TrimSpace(rc.RulesPath) != "" {
		return nil, fmt.Errorf("rules file must not set rules_path")
	}
	return buildRules(rc)
}

func buildRules(rc rawClassify) (*classify.RuleSet, error) {
	if len(rc.Rule) == 0 && rc.Default == nil {
		return classify.Default(), nil
	}
	if rc.Default == nil {
		return nil, fmt.Errorf("rule table needs a [default] entry")
	}

	fallbackEmphasis, err := classify.ParseEmphasis(rc.Default.Emphasis)
	if err != nil {
		return nil, fmt.Errorf("default rule: %w", err)
	}
	fallbackRule := classify.Rule{
		Label:    strings.TrimSpace(rc.Default.Label),
		Emphasis: fallbackEmphasis,
	}

	rules := make([]classify.Rule, 0, len(rc.Rule))
	for _, rr := range rc.Rule {
		emphasis, err := classify.ParseEmphasis(rr.Emphasis)
		if err != nil {
			return nil, fmt.Errorf("rule for category %d: %w", rr.Category, err)
		}
		rules = append(rules, classify.Rule{
			Category: rr.Category,
			Label:    strings.TrimSpace(rr.Label),
			Emphasis: emphasis,
		})
	}

	rs, err := classify.NewRuleSet(rules, fallbackRule)
	if err != nil {
		return nil, fmt.Errorf("rule table: %w", err)
	}
	return rs, nil
}

func parseDuration(value string, def time.Duration) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return def, nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", value, err)
	}
	return d, nil
}

func fallback(value, def string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return def
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
