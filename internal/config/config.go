package config

import (
	"os"

	"github.com/ghQQ/capturectl/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel = "info"

	defaultSignalHz      = 1000
	defaultCounterTop    = 0xFFFF
	defaultClockMHz      = 19
	defaultPrescale      = 0
	defaultReloadAdjust  = 2
	defaultPollTimeoutMS = 5000
	defaultWindow        = 5
	defaultTelemetryDB   = "/var/lib/capturectl/telemetry.db"
)

type Config struct {
	SignalHz      uint32 `mapstructure:"signal_hz"`
	CounterTop    uint32 `mapstructure:"counter_top"`
	ClockMHz      uint32 `mapstructure:"clock_mhz"`
	Prescale      uint32 `mapstructure:"prescale"`
	ReloadAdjust  uint32 `mapstructure:"reload_adjust"`
	PollTimeoutMS int    `mapstructure:"poll_timeout_ms"`
	Window        int    `mapstructure:"window"`
	Monitor       bool   `mapstructure:"monitor"`
	AmpTable      bool   `mapstructure:"amp_table"`
	LogLevel      string `mapstructure:"log_level"`
	Telemetry     bool   `mapstructure:"telemetry"`
	TelemetryDB   string `mapstructure:"database"`
}

// Load reads configuration from the TOML config file, CAPTURECTL_*
// environment variables and command line flags, in ascending order of
// precedence.
func Load() (*Config, error) {
	errFactory := errors.New()

	v := viper.New()
	setDefaults(v)

	fs := pflag.NewFlagSet("capturectl", pflag.ContinueOnError)
	fs.Uint32("signal-hz", defaultSignalHz, "Frequency of the simulated input signal in Hz")
	fs.Uint32("counter-top", defaultCounterTop, "Counter wraparound value")
	fs.Uint32("clock-mhz", defaultClockMHz, "Counter input clock in MHz")
	fs.Uint32("prescale", defaultPrescale, "Counter prescaler exponent")
	fs.Uint32("reload-adjust", defaultReloadAdjust, "Reload timing adjustment in ticks")
	fs.Int("poll-timeout-ms", defaultPollTimeoutMS, "Maximum wait for a capture event in ms (0 disables)")
	fs.Int("window", defaultWindow, "Rolling window size for averaged measurements")
	fs.Bool("monitor", false, "Only log measurements, do not record telemetry")
	fs.Bool("amp-table", false, "Log the amplifier configuration table at startup")
	fs.String("log-level", DefaultLogLevel, "Log level (debug, info, warning, error)")
	fs.Bool("telemetry", false, "Enable telemetry recording")
	fs.String("database", defaultTelemetryDB, "Path to the telemetry database")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	for key, flag := range map[string]string{
		"signal_hz":       "signal-hz",
		"counter_top":     "counter-top",
		"clock_mhz":       "clock-mhz",
		"prescale":        "prescale",
		"reload_adjust":   "reload-adjust",
		"poll_timeout_ms": "poll-timeout-ms",
		"window":          "window",
		"monitor":         "monitor",
		"amp_table":       "amp-table",
		"log_level":       "log-level",
		"telemetry":       "telemetry",
		"database":        "database",
	} {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return nil, errFactory.Wrap(errors.ErrBindFlags, err)
		}
	}

	if path := os.Getenv("CAPTURECTL_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("capturectl")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	v.SetEnvPrefix("CAPTURECTL")
	v.AutomaticEnv()

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("signal_hz", defaultSignalHz)
	v.SetDefault("counter_top", defaultCounterTop)
	v.SetDefault("clock_mhz", defaultClockMHz)
	v.SetDefault("prescale", defaultPrescale)
	v.SetDefault("reload_adjust", defaultReloadAdjust)
	v.SetDefault("poll_timeout_ms", defaultPollTimeoutMS)
	v.SetDefault("window", defaultWindow)
	v.SetDefault("monitor", false)
	v.SetDefault("amp_table", false)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("telemetry", false)
	v.SetDefault("database", defaultTelemetryDB)
}

// Validate checks the loaded configuration for values the daemon
// cannot start with.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if !LogLevel(c.LogLevel).IsValid() {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}
	if c.SignalHz == 0 {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "signal_hz must be non-zero")
	}
	if c.CounterTop == 0 {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "counter_top must be non-zero")
	}
	if c.ClockMHz == 0 {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "clock_mhz must be non-zero")
	}
	if c.Window < 1 {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "window must be at least 1")
	}
	if c.PollTimeoutMS < 0 {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "poll_timeout_ms must not be negative")
	}
	if c.Telemetry && c.TelemetryDB == "" {
		return errFactory.WithMessage(errors.ErrMissingConfig, "telemetry enabled without a database path")
	}

	return nil
}
