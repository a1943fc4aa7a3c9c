package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/shiwa/timecard-mini/ocxo-ctl/internal/logger"
	"github.com/shiwa/timecard-mini/ocxo-ctl/internal/ubx"
	"github.com/shiwa/timecard-mini/ocxo-ctl/pkg/discipline"
)

var (
	gnssPort       string
	gnssBaud       int
	enableNavClock bool
)

var disciplineCmd = &cobra.Command{
	Use:   "discipline",
	Short: "Steer the oscillator from UBX-NAV-CLOCK bias until SIGINT/SIGTERM",
	Long: `Reads the receiver clock bias from UBX-NAV-CLOCK messages and applies one PI
step per message. With --enable-nav-clock (or gnss.enable_nav_clock) the
receiver is first configured with CFG-MSG to output NAV-CLOCK every epoch.`,
	Args: cobra.NoArgs,
	RunE: runDiscipline,
}

func init() {
	disciplineCmd.Flags().StringVarP(&gnssPort, "port", "p", "", "GNSS serial port (overrides config)")
	disciplineCmd.Flags().IntVarP(&gnssBaud, "baud", "b", 0, "GNSS baud rate (overrides config)")
	disciplineCmd.Flags().BoolVar(&enableNavClock, "enable-nav-clock", false, "send CFG-MSG to enable NAV-CLOCK output")
	rootCmd.AddCommand(disciplineCmd)
}

func runDiscipline(cmd *cobra.Command, args []string) error {
	g := cfg.GNSS
	if gnssPort != "" {
		g.Port = gnssPort
	}
	if gnssBaud != 0 {
		g.Baud = gnssBaud
	}
	if enableNavClock {
		g.EnableNavClock = true
	}

	dev, closeFn, err := openDevice()
	if err != nil {
		return err
	}
	defer closeFn()

	port, err := ubx.Open(g.Port, g.Baud)
	if err != nil {
		return err
	}
	defer port.Close()

	timeout := g.ReadTimeoutDuration()
	if g.EnableNavClock {
		if err := port.EnableNavClock(1, timeout); err != nil {
			return err
		}
		logger.Info("NAV-CLOCK enabled on %s", g.Port)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, shutdownSignals...)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("получен сигнал %v, завершение...", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	logger.Info("discipline: %s @ %d baud, base %s", g.Port, g.Baud, toFrequency(dev.BaseFrequencyHz()))
	var stats discipline.Stats
	err = discipline.Run(ctx, dev, discipline.NewNavClockSource(port, timeout), discipline.Config{
		Pk:                   cfg.Servo.Pk,
		Ik:                   cfg.Servo.Ik,
		MaxConsecutiveErrors: cfg.Servo.MaxConsecutiveErrors,
		MaxTimeAccuracyNs:    g.MaxTimeAccuracyNs,
	}, &stats)
	logger.Info("steps=%d skipped=%d errors=%d word=%d", stats.Steps, stats.Skipped, stats.Errors, dev.FrequencyControlWord())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
