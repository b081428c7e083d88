// Package config loads the controller's application settings.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/anggasct/moore"
	"github.com/anggasct/moore/pkg/ports/gpio"
	"github.com/anggasct/moore/pkg/ports/serial"
)

// Backend names the IO port implementation
type Backend string

const (
	BackendSim    Backend = "sim"
	BackendGPIO   Backend = "gpio"
	BackendSerial Backend = "serial"
)

// Config is the top-level application config
type Config struct {
	// Tick is the timer base unit
	Tick time.Duration `yaml:"tick"`

	// Entry is the state the controller starts in
	Entry moore.StateID `yaml:"entry"`

	// TableFile optionally replaces the built-in transition table
	TableFile string `yaml:"table"`

	Backend Backend      `yaml:"backend"`
	GPIO    GPIOConfig   `yaml:"gpio"`
	Serial  SerialConfig `yaml:"serial"`
	Sim     SimConfig    `yaml:"sim"`
	Log     LogConfig    `yaml:"log"`
}

type GPIOConfig struct {
	Chip     string `yaml:"chip"`
	Vehicle  []int  `yaml:"vehicle,flow"`
	Walk     int    `yaml:"walk"`
	DontWalk int    `yaml:"dontWalk"`
	Sensors  []int  `yaml:"sensors,flow"`
}

type SerialConfig struct {
	Device      string `yaml:"device"`
	Baud        int    `yaml:"baud"`
	ReadTimeout int    `yaml:"readTimeout"`
}

type SimConfig struct {
	// Script is a list of raw sensor readings replayed before the live register
	Script []uint8 `yaml:"script,flow"`
	Render bool    `yaml:"render"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the config used when no file is given
func Default() *Config {
	pins := gpio.DefaultConfig()
	return &Config{
		Tick:    moore.DefaultTick,
		Entry:   moore.DefaultEntryState,
		Backend: BackendSim,
		GPIO: GPIOConfig{
			Chip:     pins.Chip,
			Vehicle:  pins.VehicleLines[:],
			Walk:     pins.WalkLine,
			DontWalk: pins.DontWalkLine,
			Sensors:  pins.SensorLines[:],
		},
		Serial: SerialConfig{
			Baud:        115200,
			ReadTimeout: 200,
		},
		Sim: SimConfig{Render: true},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads YAML over the defaults and validates the result
func Load(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, moore.NewConfigurationError("Config", err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads a config file
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field ranges and backend-specific settings.
// All problems are reported together.
func (c *Config) Validate() error {
	var errs []error
	bad := func(component, format string, args ...any) {
		errs = append(errs, moore.NewConfigurationError(component, fmt.Sprintf(format, args...)))
	}

	if c.Tick <= 0 {
		bad("Config", "tick must be positive, got %s", c.Tick)
	}
	if !c.Entry.Valid() {
		bad("Config", "entry state %d is not defined", uint8(c.Entry))
	}
	if _, err := c.SlogLevel(); err != nil {
		bad("Log", "%v", err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		bad("Log", "unknown format %q", c.Log.Format)
	}

	switch c.Backend {
	case BackendSim:
	case BackendGPIO:
		if c.GPIO.Chip == "" {
			bad("GPIO", "chip is required")
		}
		if len(c.GPIO.Vehicle) != 6 {
			bad("GPIO", "need 6 vehicle lines, got %d", len(c.GPIO.Vehicle))
		}
		if len(c.GPIO.Sensors) != 3 {
			bad("GPIO", "need 3 sensor lines, got %d", len(c.GPIO.Sensors))
		}
	case BackendSerial:
		if c.Serial.Device == "" {
			bad("Serial", "device is required")
		}
		if c.Serial.Baud <= 0 {
			bad("Serial", "baud must be positive, got %d", c.Serial.Baud)
		}
	default:
		bad("Config", "unknown backend %q", c.Backend)
	}
	return errors.Join(errs...)
}

// SlogLevel parses the log level
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.Log.Level))); err != nil {
		return 0, fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	return level, nil
}

// NewLogger builds a slog logger writing to w
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := c.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Table returns the configured table and entry state. A table file's own
// entry wins over Entry; a file without one keeps Entry.
func (c *Config) Table() (*moore.Table, moore.StateID, error) {
	if c.TableFile == "" {
		return moore.DefaultTable(), c.Entry, nil
	}
	table, entry, err := moore.LoadTableDocumentFile(c.TableFile)
	if err != nil {
		return nil, 0, err
	}
	if entry == nil {
		return table, c.Entry, nil
	}
	return table, *entry, nil
}

// GPIOPins converts the gpio section to port wiring
func (c *Config) GPIOPins() gpio.Config {
	pins := gpio.Config{
		Chip:         c.GPIO.Chip,
		WalkLine:     c.GPIO.Walk,
		DontWalkLine: c.GPIO.DontWalk,
	}
	copy(pins.VehicleLines[:], c.GPIO.Vehicle)
	copy(pins.SensorLines[:], c.GPIO.Sensors)
	return pins
}

// SerialPort converts the serial section to port settings
func (c *Config) SerialPort() *serial.Config {
	return &serial.Config{
		Device:      c.Serial.Device,
		Baud:        c.Serial.Baud,
		ReadTimeout: c.Serial.ReadTimeout,
	}
}
