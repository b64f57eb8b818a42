// Package config loads daemon settings from configs/config.yml and
// PRESSBOT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "PRESSBOT"

type Device struct {
	Driver        string        `mapstructure:"driver"`
	Chip          string        `mapstructure:"chip"`
	ActuatorPin   int           `mapstructure:"actuator_pin"`
	IndicatorPin  int           `mapstructure:"indicator_pin"`
	ActiveLow     bool          `mapstructure:"active_low"`
	StartupPress  bool          `mapstructure:"startup_press"`
	PressDuration time.Duration `mapstructure:"press_duration"`
	ResetHold     time.Duration `mapstructure:"reset_hold"`
	ResetGap      time.Duration `mapstructure:"reset_gap"`
}

type Transport struct {
	Kind    string `mapstructure:"kind"`
	Channel int    `mapstructure:"channel"`
	Backlog int    `mapstructure:"backlog"`
	Address string `mapstructure:"address"`
	Mode    string `mapstructure:"mode"`
}

type Advertise struct {
	Backend   string        `mapstructure:"backend"`
	Name      string        `mapstructure:"name"`
	Policy    string        `mapstructure:"policy"`
	Backoff   time.Duration `mapstructure:"backoff"`
	Interface string        `mapstructure:"interface"`
}

type Protocol struct {
	TrimSpace       bool `mapstructure:"trim_space"`
	CaseInsensitive bool `mapstructure:"case_insensitive"`
	Ack             bool `mapstructure:"ack"`
}

type Session struct {
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
}

type Log struct {
	Level string `mapstructure:"level"`
	Dir   string `mapstructure:"dir"`
}

type DB struct {
	Path string `mapstructure:"path"`
}

type HTTP struct {
	Enabled    bool          `mapstructure:"enabled"`
	Port       string        `mapstructure:"port"`
	SigningKey string        `mapstructure:"signing_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
	StateEvery time.Duration `mapstructure:"state_every"`
}

type Config struct {
	Device    Device    `mapstructure:"device"`
	Transport Transport `mapstructure:"transport"`
	Advertise Advertise `mapstructure:"advertise"`
	Protocol  Protocol  `mapstructure:"protocol"`
	Session   Session   `mapstructure:"session"`
	Log       Log       `mapstructure:"log"`
	DB        DB        `mapstructure:"db"`
	HTTP      HTTP      `mapstructure:"http"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("device.driver", "gpiocdev")
	v.SetDefault("device.chip", "gpiochip0")
	v.SetDefault("device.actuator_pin", 17)
	v.SetDefault("device.indicator_pin", 27)
	v.SetDefault("device.active_low", false)
	v.SetDefault("device.startup_press", false)
	v.SetDefault("device.press_duration", time.Second)
	v.SetDefault("device.reset_hold", 7*time.Second)
	v.SetDefault("device.reset_gap", 500*time.Millisecond)

	v.SetDefault("transport.kind", "rfcomm")
	v.SetDefault("transport.channel", 0)
	v.SetDefault("transport.backlog", 1)
	v.SetDefault("transport.address", ":7300")
	v.SetDefault("transport.mode", "persistent")

	v.SetDefault("advertise.backend", "bluez")
	v.SetDefault("advertise.name", "Raspberry Pi")
	v.SetDefault("advertise.policy", "retry")
	v.SetDefault("advertise.backoff", time.Second)
	v.SetDefault("advertise.interface", "")

	v.SetDefault("protocol.trim_space", false)
	v.SetDefault("protocol.case_insensitive", false)
	v.SetDefault("protocol.ack", false)

	v.SetDefault("session.read_timeout", time.Duration(0))

	v.SetDefault("log.level", "info")
	v.SetDefault("log.dir", "logs")

	v.SetDefault("db.path", "pressbot.db")

	v.SetDefault("http.enabled", false)
	v.SetDefault("http.port", "8080")
	v.SetDefault("http.signing_key", "")
	v.SetDefault("http.token_ttl", 12*time.Hour)
	v.SetDefault("http.state_every", 2*time.Second)
}

// Load reads path when given, otherwise configs/config.yml if present.
// Environment variables such as PRESSBOT_DEVICE_ACTUATOR_PIN override both.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("configs")
		v.SetConfigName("config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the daemon cannot start with.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(oneOf(c.Device.Driver, "gpiocdev", "sim"), "device.driver: unknown %q", c.Device.Driver)
	check(c.Device.ActuatorPin >= 0, "device.actuator_pin: must be >= 0")
	check(c.Device.IndicatorPin >= 0, "device.indicator_pin: must be >= 0")
	check(c.Device.ActuatorPin != c.Device.IndicatorPin, "device: actuator and indicator share pin %d", c.Device.ActuatorPin)
	check(c.Device.PressDuration > 0, "device.press_duration: must be positive")
	check(c.Device.ResetHold > 0, "device.reset_hold: must be positive")
	check(c.Device.ResetGap >= 0, "device.reset_gap: must not be negative")

	check(oneOf(c.Transport.Kind, "rfcomm", "tcp"), "transport.kind: unknown %q", c.Transport.Kind)
	check(oneOf(c.Transport.Mode, "persistent", "per_session"), "transport.mode: unknown %q", c.Transport.Mode)
	check(c.Transport.Channel >= 0 && c.Transport.Channel <= 30, "transport.channel: %d out of range 0-30", c.Transport.Channel)

	check(oneOf(c.Advertise.Backend, "bluez", "mdns", "none"), "advertise.backend: unknown %q", c.Advertise.Backend)
	check(oneOf(c.Advertise.Policy, "retry", "ignore"), "advertise.policy: unknown %q", c.Advertise.Policy)
	check(c.Advertise.Backoff > 0, "advertise.backoff: must be positive")
	check(!(c.Advertise.Backend == "bluez" && c.Transport.Kind == "tcp"), "advertise.backend: bluez cannot advertise a tcp endpoint")
	check(!(c.Advertise.Backend == "mdns" && c.Transport.Kind == "rfcomm"), "advertise.backend: mdns cannot advertise an rfcomm endpoint")

	check(c.Session.ReadTimeout >= 0, "session.read_timeout: must not be negative")
	check(oneOf(c.Log.Level, "debug", "info", "warn", "error"), "log.level: unknown %q", c.Log.Level)

	if c.HTTP.Enabled {
		check(c.HTTP.SigningKey != "", "http.signing_key: required when http.enabled")
		check(c.DB.Path != "", "db.path: required when http.enabled")
		check(c.HTTP.TokenTTL > 0, "http.token_ttl: must be positive")
	}
	return errors.Join(errs...)
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
