package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shiwa/timecard-mini/ocxo-ctl/internal/config"
	"github.com/shiwa/timecard-mini/ocxo-ctl/internal/logger"
	"github.com/shiwa/timecard-mini/ocxo-ctl/internal/regbus"
	"github.com/shiwa/timecard-mini/ocxo-ctl/internal/sit5811"
)

const defaultConfigPath = "ocxo-ctl.yml"

var (
	configPath string
	busName    string
	address    uint16
	emulate    bool
	quiet      bool
	verbose    bool
	baseHz     float64

	// cfg заполняется в PersistentPreRunE
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "ocxo-ctl",
	Short: "SiT5811 OCXO control over I2C",
	Long: `ocxo-ctl reads and writes the SiT5811 frequency control registers and
disciplines the oscillator from the GNSS receiver clock bias (UBX-NAV-CLOCK).

Configuration is read from ocxo-ctl.yml (or --config); a missing default file is
not an error. Flags override the file.

With --emulate the commands run against an in-memory register file instead of
the I2C bus.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config (default ocxo-ctl.yml)")
	rootCmd.PersistentFlags().StringVar(&busName, "bus", "", "I2C bus name (overrides config)")
	rootCmd.PersistentFlags().Uint16Var(&address, "address", 0, "7-bit I2C address (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&emulate, "emulate", false, "use in-memory register emulator instead of I2C")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only errors")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every controller step")
	rootCmd.PersistentFlags().Float64Var(&baseHz, "base-hz", 0, "nominal oscillator frequency, Hz (overrides config)")
}

// Execute запускает корневую команду
func Execute() error {
	return rootCmd.Execute()
}

func setup(cmd *cobra.Command, args []string) error {
	logger.Quiet = quiet
	logger.Verbose = verbose

	c, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if c == nil {
		c = config.Default()
	}
	if busName != "" {
		c.Device.Bus = busName
	}
	if address != 0 {
		c.Device.Address = address
	}
	if baseHz != 0 {
		c.Oscillator.BaseFrequencyHz = baseHz
	}
	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c
	return nil
}

// loadConfig: отсутствие файла по умолчанию — не ошибка (nil, nil)
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = defaultConfigPath
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, nil
		}
	}
	return config.Load(path)
}

// openDevice открывает шину (или эмулятор), выполняет Begin и применяет параметры генератора.
// closeFn закрывает шину.
func openDevice() (dev *sit5811.Device, closeFn func() error, err error) {
	var bus regbus.Bus
	closeFn = func() error { return nil }
	if emulate {
		bus = regbus.NewEmulator()
		logger.Info("using register emulator")
	} else {
		speed, err := cfg.Device.BusSpeed()
		if err != nil {
			return nil, nil, err
		}
		b, err := regbus.OpenI2C(cfg.Device.Bus, cfg.Device.Address, speed)
		if err != nil {
			return nil, nil, err
		}
		bus, closeFn = b, b.Close
		logger.Info("opened %s", b)
	}

	dev = sit5811.New(bus)
	dev.SetBaseFrequencyHz(cfg.Oscillator.BaseFrequencyHz)
	dev.SetMaxFrequencyChangePPB(cfg.Oscillator.MaxFrequencyChangePPB)
	if err := dev.Begin(); err != nil {
		_ = closeFn()
		return nil, nil, fmt.Errorf("sit5811 at 0x%02X: %w", cfg.Device.Address, err)
	}
	return dev, closeFn, nil
}
