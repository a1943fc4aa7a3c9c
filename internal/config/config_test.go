package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"periph.io/x/conn/v3/physic"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ocxo-ctl.yml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	c, err := Load(writeConfig(t, "device:\n  bus: \"2\"\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Device.Bus != "2" {
		t.Errorf("bus = %q", c.Device.Bus)
	}
	if c.Device.Address != 0x50 {
		t.Errorf("address = 0x%X", c.Device.Address)
	}
	if c.Oscillator.BaseFrequencyHz != 10_000_000 || c.Oscillator.MaxFrequencyChangePPB != 800_000 {
		t.Errorf("oscillator = %+v", c.Oscillator)
	}
	if c.Servo.Pk != 0.5 || c.Servo.Ik != 0.1 || c.Servo.MaxConsecutiveErrors != 10 {
		t.Errorf("servo = %+v", c.Servo)
	}
	if c.GNSS.ReadTimeoutDuration() != 1500*time.Millisecond {
		t.Errorf("read timeout = %v", c.GNSS.ReadTimeoutDuration())
	}
}

func TestLoad_Full(t *testing.T) {
	body := `
device:
  bus: /dev/i2c-3
  address: 81
  speed: 400kHz
oscillator:
  base_frequency_hz: 19200000
  max_frequency_change_ppb: 50
servo:
  pk: 0.7
  ik: 0.05
  max_consecutive_errors: 3
gnss:
  port: /dev/ttyUSB1
  baud: 115200
  enable_nav_clock: true
  read_timeout: 2s
  max_time_accuracy_ns: 100
`
	c, err := Load(writeConfig(t, body))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Device.Address != 81 {
		t.Errorf("address = %d", c.Device.Address)
	}
	speed, err := c.Device.BusSpeed()
	if err != nil || speed != 400*physic.KiloHertz {
		t.Errorf("speed = %v, err = %v", speed, err)
	}
	if c.Oscillator.BaseFrequencyHz != 19_200_000 || c.Oscillator.MaxFrequencyChangePPB != 50 {
		t.Errorf("oscillator = %+v", c.Oscillator)
	}
	if c.Servo.Pk != 0.7 || c.Servo.Ik != 0.05 || c.Servo.MaxConsecutiveErrors != 3 {
		t.Errorf("servo = %+v", c.Servo)
	}
	if !c.GNSS.EnableNavClock || c.GNSS.Baud != 115200 || c.GNSS.MaxTimeAccuracyNs != 100 {
		t.Errorf("gnss = %+v", c.GNSS)
	}
	if c.GNSS.ReadTimeoutDuration() != 2*time.Second {
		t.Errorf("read timeout = %v", c.GNSS.ReadTimeoutDuration())
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad yaml", "device: [", "parse config"},
		{"negative base", "oscillator:\n  base_frequency_hz: -1\n", "base_frequency_hz"},
		{"bad address", "device:\n  address: 200\n", "7-bit"},
		{"bad speed", "device:\n  speed: fast\n", "device.speed"},
		{"bad timeout", "gnss:\n  read_timeout: soon\n", "read_timeout"},
		{"negative timeout", "gnss:\n  read_timeout: -1s\n", "read_timeout must be positive"},
		{"negative max errors", "servo:\n  max_consecutive_errors: -3\n", "max_consecutive_errors"},
		{"negative baud", "gnss:\n  baud: -9600\n", "gnss.baud"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("ожидали ошибку с %q, получили %v", tt.want, err)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "none.yml")); !os.IsNotExist(unwrapAll(err)) {
			t.Errorf("ожидали ErrNotExist, получили %v", err)
		}
	})
}

func unwrapAll(err error) error {
	for {
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return err
		}
		err = u.Unwrap()
	}
}

func TestDefault_Valid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("конфиг по умолчанию невалиден: %v", err)
	}
}
