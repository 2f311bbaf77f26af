// Package config loads reference run definitions from YAML.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/signalsfoundry/ephemref/core"
	"github.com/signalsfoundry/ephemref/internal/dataset"
	"github.com/signalsfoundry/ephemref/model"
	"github.com/signalsfoundry/ephemref/timectrl"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	Generator string         `yaml:"generator"`
	Bodies    []string       `yaml:"bodies"`
	Workers   int            `yaml:"workers"`
	Moments   []MomentConfig `yaml:"moments"`
	Sweep     *SweepConfig   `yaml:"sweep"`
}

// MomentConfig is either an explicit Julian Day (UT) or a civil date, clock
// time and UTC offset. Local mean time is an offset like "+00:40".
type MomentConfig struct {
	Description string             `yaml:"description"`
	JD          *float64           `yaml:"jd"`
	Date        string             `yaml:"date"`       // YYYY-MM-DD, proleptic Gregorian
	Time        string             `yaml:"time"`       // HH:MM[:SS[.fff]]
	UTCOffset   string             `yaml:"utc_offset"` // ±HH:MM or decimal hours
	Location    *model.GeoLocation `yaml:"location"`
}

// SweepConfig expands into Count UT moments spaced by Step from Start.
type SweepConfig struct {
	Description string             `yaml:"description"`
	Start       time.Time          `yaml:"start"`
	Step        string             `yaml:"step"`
	Count       int                `yaml:"count"`
	Location    *model.GeoLocation `yaml:"location"`
}

// Load reads, defaults and validates a config file.
func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if c.Generator == "" {
		c.Generator = dataset.DefaultGenerator
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads a config but does not validate it.
// Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

// Parse decodes YAML without validation.
func Parse(raw []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &c, nil
}

// Validate checks the structure of the config. Calendar errors inside a
// moment are not fatal here: they surface per moment from Entries.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if _, err := c.BodyList(); err != nil {
		return fmt.Errorf("bodies: %w", err)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if len(c.Moments) == 0 && c.Sweep == nil {
		return errors.New("at least one moment or a sweep is required")
	}
	for i, m := range c.Moments {
		if err := m.validate(); err != nil {
			return fmt.Errorf("moments[%d] (%s): %w", i, m.Description, err)
		}
	}
	if c.Sweep != nil {
		if _, err := c.Sweep.schedule(); err != nil {
			return fmt.Errorf("sweep: %w", err)
		}
		if c.Sweep.Location != nil {
			if err := c.Sweep.Location.Validate(); err != nil {
				return fmt.Errorf("sweep: %w", err)
			}
		}
	}
	return nil
}

// BodyList resolves the configured bodies, defaulting to the ten planets.
func (c *Config) BodyList() ([]model.Body, error) {
	if len(c.Bodies) == 0 {
		return append([]model.Body(nil), model.Planets...), nil
	}
	return model.ParseBodies(c.Bodies)
}

// Entries expands moments and the sweep into dataset entries, in order. A
// moment that fails to construct still yields an entry, carrying the error,
// so the build reports it alongside the others.
func (c *Config) Entries() []dataset.Entry {
	out := make([]dataset.Entry, 0, len(c.Moments))
	for _, mc := range c.Moments {
		m, err := mc.Moment()
		out = append(out, dataset.Entry{
			Description: mc.Description,
			Moment:      m,
			Location:    mc.Location,
			Err:         err,
		})
	}

	if c.Sweep == nil {
		return out
	}
	sched, err := c.Sweep.schedule()
	if err != nil {
		return append(out, dataset.Entry{Description: c.Sweep.Description, Err: err})
	}
	prefix := c.Sweep.Description
	if prefix == "" {
		prefix = "sweep"
	}
	_ = sched.Each(func(i int, t time.Time) error {
		m, err := core.MomentFromTime(t)
		out = append(out, dataset.Entry{
			Description: fmt.Sprintf("%s #%d %s", prefix, i+1, t.Format(time.RFC3339)),
			Moment:      m,
			Location:    c.Sweep.Location,
			Err:         err,
		})
		return nil
	})
	return out
}

func (m MomentConfig) validate() error {
	hasJD := m.JD != nil
	hasDate := m.Date != ""
	switch {
	case hasJD && hasDate:
		return errors.New("set either jd or date, not both")
	case !hasJD && !hasDate:
		return errors.New("jd or date is required")
	case hasJD && (m.Time != "" || m.UTCOffset != ""):
		return errors.New("time and utc_offset only apply to date")
	}
	if m.Location != nil {
		if err := m.Location.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Moment constructs the configured moment.
func (m MomentConfig) Moment() (core.Moment, error) {
	if err := m.validate(); err != nil {
		return core.Moment{}, fmt.Errorf("%w: %v", core.ErrInvalidMoment, err)
	}
	if m.JD != nil {
		return core.MomentFromJulianDay(*m.JD)
	}

	year, month, day, err := ParseDate(m.Date)
	if err != nil {
		return core.Moment{}, err
	}
	hour := 0.0
	if m.Time != "" {
		if hour, err = ParseClock(m.Time); err != nil {
			return core.Moment{}, err
		}
	}
	offset := 0.0
	if m.UTCOffset != "" {
		if offset, err = ParseUTCOffset(m.UTCOffset); err != nil {
			return core.Moment{}, err
		}
	}
	return core.NewMoment(year, month, day, hour, offset)
}

func (s *SweepConfig) schedule() (timectrl.Schedule, error) {
	step := time.Duration(0)
	if s.Step != "" {
		d, err := time.ParseDuration(s.Step)
		if err != nil {
			return timectrl.Schedule{}, fmt.Errorf("step: %w", err)
		}
		step = d
	}
	sched := timectrl.Schedule{Start: s.Start, Tick: step, Count: s.Count}
	if err := sched.Validate(); err != nil {
		return timectrl.Schedule{}, err
	}
	return sched, nil
}

var dateRE = regexp.MustCompile(`^(-?\d{1,4})-(\d{1,2})-(\d{1,2})$`)

// ParseDate parses YYYY-MM-DD, allowing astronomical (signed) years. Only the
// shape is checked; calendar validity is left to core.
func ParseDate(s string) (year, month, day int, err error) {
	parts := dateRE.FindStringSubmatch(strings.TrimSpace(s))
	if parts == nil {
		return 0, 0, 0, fmt.Errorf("%w: date %q is not YYYY-MM-DD", core.ErrInvalidMoment, s)
	}
	year, _ = strconv.Atoi(parts[1])
	month, _ = strconv.Atoi(parts[2])
	day, _ = strconv.Atoi(parts[3])
	return year, month, day, nil
}

// ParseClock parses HH:MM, HH:MM:SS or HH:MM:SS.fff into fractional hours.
func ParseClock(s string) (float64, error) {
	fields := strings.Split(strings.TrimSpace(s), ":")
	if len(fields) < 2 || len(fields) > 3 {
		return 0, fmt.Errorf("%w: time %q is not HH:MM[:SS]", core.ErrInvalidMoment, s)
	}
	h, err1 := strconv.Atoi(fields[0])
	m, err2 := strconv.Atoi(fields[1])
	sec := 0.0
	var err3 error
	if len(fields) == 3 {
		sec, err3 = strconv.ParseFloat(fields[2], 64)
	}
	if err := errors.Join(err1, err2, err3); err != nil {
		return 0, fmt.Errorf("%w: time %q: %v", core.ErrInvalidMoment, s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 || sec < 0 || sec >= 60 || math.IsNaN(sec) {
		return 0, fmt.Errorf("%w: time %q out of range", core.ErrInvalidMoment, s)
	}
	return float64(h) + float64(m)/60 + sec/3600, nil
}

// ParseUTCOffset parses "±HH:MM" or signed decimal hours ("+0.6667").
func ParseUTCOffset(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "Z") || strings.EqualFold(s, "UTC") {
		return 0, nil
	}
	if !strings.Contains(s, ":") {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: utc offset %q", core.ErrInvalidMoment, s)
		}
		return v, nil
	}

	sign := 1.0
	switch s[0] {
	case '-':
		sign = -1
		s = s[1:]
	case '+':
		s = s[1:]
	}
	hh, mm, ok := strings.Cut(s, ":")
	h, err1 := strconv.Atoi(hh)
	m, err2 := strconv.Atoi(mm)
	if !ok || err1 != nil || err2 != nil || h < 0 || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: utc offset %q is not ±HH:MM", core.ErrInvalidMoment, s)
	}
	return sign * (float64(h) + float64(m)/60), nil
}
