package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Telegram holds the delivery channel credentials. Leaving them empty makes
// the daemon log reminders instead of sending them.
type Telegram struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chat_id"`
}

// Config is the daemon configuration.
type Config struct {
	// Listen is the HTTP listen address for the ingest/status API.
	Listen string `yaml:"listen"`

	// DatabaseURL selects the Postgres-backed store. Empty means the state
	// lives in process memory and does not survive a restart.
	DatabaseURL string `yaml:"database_url"`

	// LeadMinutes is how long before an event's start the trigger window is
	// centered.
	LeadMinutes float64 `yaml:"lead_minutes"`

	// ToleranceMinutes is the half-width of the trigger window. It is
	// raised to half the tick interval if configured lower, since a
	// narrower window can fall between two ticks entirely.
	ToleranceMinutes float64 `yaml:"tolerance_minutes"`

	// RadiusKm is the proximity threshold.
	RadiusKm float64 `yaml:"radius_km"`

	// DedupWindow is how long a sent reminder suppresses re-notification.
	DedupWindow time.Duration `yaml:"dedup_window"`

	// Retention is how long ledger records are kept before pruning.
	Retention time.Duration `yaml:"retention"`

	// TickInterval is the target tick period for the interval driver.
	TickInterval time.Duration `yaml:"tick_interval"`

	// TickCron, when set, replaces the interval driver with a cron
	// schedule (e.g. "* * * * *").
	TickCron string `yaml:"tick_cron"`

	// TickTimeout bounds one whole evaluation pass.
	TickTimeout time.Duration `yaml:"tick_timeout"`

	// LocationTimeout bounds a single location fetch; on timeout the tick
	// proceeds with no known position.
	LocationTimeout time.Duration `yaml:"location_timeout"`

	// LocationMaxAge is how long a reported position stays usable.
	LocationMaxAge time.Duration `yaml:"location_max_age"`

	Telegram Telegram `yaml:"telegram"`
}

func Default() *Config {
	return &Config{
		Listen:           "127.0.0.1:8090",
		LeadMinutes:      60,
		ToleranceMinutes: 0.5,
		RadiusKm:         1,
		DedupWindow:      24 * time.Hour,
		Retention:        7 * 24 * time.Hour,
		TickInterval:     60 * time.Second,
		TickTimeout:      30 * time.Second,
		LocationTimeout:  5 * time.Second,
		LocationMaxAge:   5 * time.Minute,
	}
}

// Normalize fills in zero values and enforces the tolerance floor so a
// partially filled config still behaves.
func (c *Config) Normalize() {
	def := Default()

	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.LeadMinutes <= 0 {
		c.LeadMinutes = def.LeadMinutes
	}
	if c.RadiusKm <= 0 {
		c.RadiusKm = def.RadiusKm
	}
	if c.DedupWindow <= 0 {
		c.DedupWindow = def.DedupWindow
	}
	if c.Retention <= 0 {
		c.Retention = def.Retention
	}
	if c.TickInterval <= 0 {
		c.TickInterval = def.TickInterval
	}
	if c.TickTimeout <= 0 {
		c.TickTimeout = def.TickTimeout
	}
	if c.LocationTimeout <= 0 {
		c.LocationTimeout = def.LocationTimeout
	}
	if c.LocationMaxAge <= 0 {
		c.LocationMaxAge = def.LocationMaxAge
	}

	// A window narrower than half the tick interval can fall entirely
	// between two consecutive ticks.
	minTolerance := c.TickInterval.Minutes() / 2
	if c.ToleranceMinutes < minTolerance {
		c.ToleranceMinutes = minTolerance
	}
}

func (c *Config) Lead() time.Duration {
	return time.Duration(c.LeadMinutes * float64(time.Minute))
}

func (c *Config) Tolerance() time.Duration {
	return time.Duration(c.ToleranceMinutes * float64(time.Minute))
}

// Load reads a YAML config. A missing path yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		cfg := Default()
		cfg.Normalize()
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed reading config %q", path)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "failed parsing config %q", path)
	}
	cfg.Normalize()

	return &cfg, nil
}
