package core

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the entire badgetrace configuration.
type Config struct {
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Collector CollectorConfig `yaml:"collector"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// Duration wraps time.Duration so YAML configs can use "4h" / "90m"
// notation.
type Duration time.Duration

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// TravelTimeEntry is one configured location pair. An entry with no
// min_travel falls back to default_min_travel.
type TravelTimeEntry struct {
	From      string   `yaml:"from"`
	To        string   `yaml:"to"`
	MinTravel Duration `yaml:"min_travel"`
}

// BusinessHours is the configurable boundary between business-hours and
// off-hours swipes, as "HH:MM" wall-clock times.
type BusinessHours struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// AnalysisConfig holds the detector thresholds and the travel matrix.
// It is immutable once validated and is passed explicitly into each
// detector, never held as ambient global state.
type AnalysisConfig struct {
	SkipInvalid           bool              `yaml:"skip_invalid"`
	CuriousUserThreshold  int               `yaml:"curious_user_threshold"`
	OffHoursFraction      float64           `yaml:"off_hours_fraction_threshold"`
	HighTrafficPercentile float64           `yaml:"high_traffic_percentile"`
	LowTrafficPercentile  float64           `yaml:"low_traffic_percentile"`
	BusinessHours         BusinessHours     `yaml:"business_hours"`
	DefaultMinTravel      Duration          `yaml:"default_min_travel"`
	TravelTimes           []TravelTimeEntry `yaml:"travel_time_matrix"`

	matrix   *TravelTimeMatrix
	startMin int
	endMin   int
}

// CollectorConfig holds the NATS swipe collector settings.
type CollectorConfig struct {
	Enabled  bool   `yaml:"enabled"`
	URL      string `yaml:"url"`
	Embedded bool   `yaml:"embedded"`
	Port     int    `yaml:"port"`
	DataDir  string `yaml:"data_dir"`
	Subject  string `yaml:"subject"`
	Output   string `yaml:"output"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns a Config with sane defaults — zero-config works
// out of the box.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			SkipInvalid:           false,
			CuriousUserThreshold:  3,
			OffHoursFraction:      0.2,
			HighTrafficPercentile: 0.75,
			LowTrafficPercentile:  0.1,
			BusinessHours:         BusinessHours{Start: "07:00", End: "19:00"},
			DefaultMinTravel:      Duration(4 * time.Hour),
		},
		Collector: CollectorConfig{
			Enabled:  false,
			URL:      "nats://127.0.0.1:4222",
			Embedded: true,
			Port:     4222,
			DataDir:  "./data/nats",
			Subject:  "badge.swipes",
			Output:   "./data/events.jsonl",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from a YAML file, falling back to
// defaults, and validates the result.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig writes the configuration to a YAML file.
func SaveConfig(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks all analysis thresholds, parses the business-hours
// boundary, and builds the travel matrix. Invalid values are fatal here,
// never deferred into analysis.
func (c *Config) Validate() error {
	return c.Analysis.Validate()
}

// Validate checks thresholds, parses business hours, and builds the
// travel matrix from the configured entries.
func (a *AnalysisConfig) Validate() error {
	if a.CuriousUserThreshold < 1 {
		return fmt.Errorf("%w: curious_user_threshold must be >= 1, got %d",
			ErrConfig, a.CuriousUserThreshold)
	}
	for name, v := range map[string]float64{
		"off_hours_fraction_threshold": a.OffHoursFraction,
		"high_traffic_percentile":      a.HighTrafficPercentile,
		"low_traffic_percentile":       a.LowTrafficPercentile,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: %s must be within [0,1], got %v", ErrConfig, name, v)
		}
	}
	if a.DefaultMinTravel < 0 {
		return fmt.Errorf("%w: default_min_travel must not be negative", ErrConfig)
	}

	start, err := parseWallClock(a.BusinessHours.Start)
	if err != nil {
		return fmt.Errorf("%w: business_hours.start: %v", ErrConfig, err)
	}
	end, err := parseWallClock(a.BusinessHours.End)
	if err != nil {
		return fmt.Errorf("%w: business_hours.end: %v", ErrConfig, err)
	}
	if start >= end {
		return fmt.Errorf("%w: business_hours start %q must be before end %q",
			ErrConfig, a.BusinessHours.Start, a.BusinessHours.End)
	}
	a.startMin, a.endMin = start, end

	matrix := NewTravelTimeMatrix()
	for _, entry := range a.TravelTimes {
		d := time.Duration(entry.MinTravel)
		if d == 0 && entry.From != entry.To {
			d = time.Duration(a.DefaultMinTravel)
		}
		if err := matrix.Set(entry.From, entry.To, d); err != nil {
			return err
		}
	}
	a.matrix = matrix
	return nil
}

// Matrix returns the travel-time matrix built by Validate.
func (a *AnalysisConfig) Matrix() *TravelTimeMatrix {
	if a.matrix == nil {
		return NewTravelTimeMatrix()
	}
	return a.matrix
}

// InBusinessHours reports whether a timestamp's wall-clock time falls
// inside the configured business-hours window.
func (a *AnalysisConfig) InBusinessHours(t time.Time) bool {
	min := t.Hour()*60 + t.Minute()
	return min >= a.startMin && min < a.endMin
}

func parseWallClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid wall-clock time %q (want HH:MM)", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// LogLevel returns the normalized log level string.
func (c *Config) LogLevel() string {
	return strings.ToLower(c.Logging.Level)
}
