package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/physic"
)

// Config — конфигурация ocxo-ctl
type Config struct {
	Device     DeviceConfig     `yaml:"device"`
	Oscillator OscillatorConfig `yaml:"oscillator"`
	Servo      ServoConfig      `yaml:"servo"`
	GNSS       GNSSConfig       `yaml:"gnss"`
}

// DeviceConfig — шина I2C и адрес генератора
type DeviceConfig struct {
	Bus     string `yaml:"bus"`     // имя шины periph, например "/dev/i2c-1"
	Address uint16 `yaml:"address"` // 0x50 по умолчанию
	Speed   string `yaml:"speed"`   // частота шины, например "400kHz"; пусто — не менять
}

// OscillatorConfig — параметры пересчёта частоты (только в памяти, в устройство не пишутся)
type OscillatorConfig struct {
	BaseFrequencyHz       float64 `yaml:"base_frequency_hz"`
	MaxFrequencyChangePPB float64 `yaml:"max_frequency_change_ppb"`
}

// ServoConfig — коэффициенты PI регулятора по смещению часов
type ServoConfig struct {
	Pk                   float64 `yaml:"pk"`
	Ik                   float64 `yaml:"ik"`
	MaxConsecutiveErrors int     `yaml:"max_consecutive_errors"`
}

// GNSSConfig — приёмник u-blox, источник смещения часов (UBX-NAV-CLOCK)
type GNSSConfig struct {
	Port              string `yaml:"port"`
	Baud              int    `yaml:"baud"`
	EnableNavClock    bool   `yaml:"enable_nav_clock"` // отправить CFG-MSG при запуске
	ReadTimeout       string `yaml:"read_timeout"`
	MaxTimeAccuracyNs uint32 `yaml:"max_time_accuracy_ns"` // 0 — не фильтровать
}

// Default возвращает конфиг по умолчанию
func Default() *Config {
	return &Config{
		Device: DeviceConfig{
			Bus:     "/dev/i2c-1",
			Address: 0x50,
		},
		Oscillator: OscillatorConfig{
			BaseFrequencyHz:       10_000_000,
			MaxFrequencyChangePPB: 800_000,
		},
		Servo: ServoConfig{
			Pk:                   0.5,
			Ik:                   0.1,
			MaxConsecutiveErrors: 10,
		},
		GNSS: GNSSConfig{
			Port:        "/dev/ttyACM0",
			Baud:        38400,
			ReadTimeout: "1500ms",
		},
	}
}

// Load читает конфиг из YAML
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(&c)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &c, nil
}

// Validate проверяет значения, которые нельзя подставить по умолчанию
func (c *Config) Validate() error {
	var errs []error
	if c.Oscillator.BaseFrequencyHz <= 0 {
		errs = append(errs, fmt.Errorf("oscillator.base_frequency_hz must be positive, got %v", c.Oscillator.BaseFrequencyHz))
	}
	if c.Oscillator.MaxFrequencyChangePPB <= 0 {
		errs = append(errs, fmt.Errorf("oscillator.max_frequency_change_ppb must be positive, got %v", c.Oscillator.MaxFrequencyChangePPB))
	}
	if c.Device.Address > 0x7F {
		errs = append(errs, fmt.Errorf("device.address 0x%X is not a 7-bit I2C address", c.Device.Address))
	}
	if _, err := c.Device.BusSpeed(); err != nil {
		errs = append(errs, err)
	}
	if c.Servo.MaxConsecutiveErrors < 0 {
		errs = append(errs, fmt.Errorf("servo.max_consecutive_errors must not be negative, got %d", c.Servo.MaxConsecutiveErrors))
	}
	if c.GNSS.Baud < 0 {
		errs = append(errs, fmt.Errorf("gnss.baud must be positive, got %d", c.GNSS.Baud))
	}
	if d, err := time.ParseDuration(c.GNSS.ReadTimeout); err != nil {
		errs = append(errs, fmt.Errorf("gnss.read_timeout: %w", err))
	} else if d <= 0 {
		errs = append(errs, fmt.Errorf("gnss.read_timeout must be positive, got %s", c.GNSS.ReadTimeout))
	}
	return errors.Join(errs...)
}

// BusSpeed парсит device.speed ("100kHz", "1MHz"); пустая строка — 0
func (d DeviceConfig) BusSpeed() (physic.Frequency, error) {
	if d.Speed == "" {
		return 0, nil
	}
	var f physic.Frequency
	if err := f.Set(d.Speed); err != nil {
		return 0, fmt.Errorf("device.speed %q: %w", d.Speed, err)
	}
	return f, nil
}

// ReadTimeoutDuration возвращает gnss.read_timeout; при ошибке — 1.5 с
func (g GNSSConfig) ReadTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(g.ReadTimeout)
	if err != nil || d <= 0 {
		return 1500 * time.Millisecond
	}
	return d
}

func applyDefaults(c *Config) {
	d := Default()
	if c.Device.Bus == "" {
		c.Device.Bus = d.Device.Bus
	}
	if c.Device.Address == 0 {
		c.Device.Address = d.Device.Address
	}
	if c.Oscillator.BaseFrequencyHz == 0 {
		c.Oscillator.BaseFrequencyHz = d.Oscillator.BaseFrequencyHz
	}
	if c.Oscillator.MaxFrequencyChangePPB == 0 {
		c.Oscillator.MaxFrequencyChangePPB = d.Oscillator.MaxFrequencyChangePPB
	}
	if c.Servo.Pk == 0 && c.Servo.Ik == 0 {
		c.Servo.Pk, c.Servo.Ik = d.Servo.Pk, d.Servo.Ik
	}
	if c.Servo.MaxConsecutiveErrors == 0 {
		c.Servo.MaxConsecutiveErrors = d.Servo.MaxConsecutiveErrors
	}
	if c.GNSS.Port == "" {
		c.GNSS.Port = d.GNSS.Port
	}
	if c.GNSS.Baud == 0 {
		c.GNSS.Baud = d.GNSS.Baud
	}
	if c.GNSS.ReadTimeout == "" {
		c.GNSS.ReadTimeout = d.GNSS.ReadTimeout
	}
}
