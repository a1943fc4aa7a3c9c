package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"periph.io/x/conn/v3/physic"

	"github.com/shiwa/timecard-mini/ocxo-ctl/internal/sit5811"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Read registers and print pull range, control word and frequency",
	Args:  cobra.NoArgs,
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	dev, closeFn, err := openDevice()
	if err != nil {
		return err
	}
	defer closeFn()
	printState(cmd.OutOrStdout(), dev.Snapshot())
	return nil
}

func printState(w io.Writer, s sit5811.State) {
	fmt.Fprintf(w, "Clip:               %d (0x%04X)\n", s.Clip, s.Clip)
	fmt.Fprintf(w, "Max pull available: %.3f ppm\n", s.MaxPullAvailable*1e6)
	fmt.Fprintf(w, "Control word:       %d\n", s.FrequencyControl)
	fmt.Fprintf(w, "Base frequency:     %s\n", toFrequency(s.BaseFrequencyHz))
	fmt.Fprintf(w, "Frequency:          %.6f Hz (%+.6f Hz)\n", s.FrequencyHz, s.FrequencyHz-s.BaseFrequencyHz)
	fmt.Fprintf(w, "Max change:         %g ppb\n", s.MaxFrequencyChangePPB)
}

// toFrequency — для вывода (physic.Frequency хранит мкГц)
func toFrequency(hz float64) physic.Frequency {
	return physic.Frequency(hz * float64(physic.Hertz))
}
