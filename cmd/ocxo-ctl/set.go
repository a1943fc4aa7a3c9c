package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var setFreqCmd = &cobra.Command{
	Use:   "set-freq <hz>",
	Short: "Set output frequency in Hz (clamped to the available pull range)",
	Args:  cobra.ExactArgs(1),
	RunE:  runSetFreq,
}

var setWordCmd = &cobra.Command{
	Use:   "set-word <word>",
	Short: "Write the 39-bit signed frequency control word (clamped)",
	Args:  cobra.ExactArgs(1),
	RunE:  runSetWord,
}

func init() {
	rootCmd.AddCommand(setFreqCmd, setWordCmd)
}

func runSetFreq(cmd *cobra.Command, args []string) error {
	hz, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("frequency %q: %w", args[0], err)
	}
	dev, closeFn, err := openDevice()
	if err != nil {
		return err
	}
	defer closeFn()
	if err := dev.SetFrequencyHz(hz); err != nil {
		return err
	}
	printState(cmd.OutOrStdout(), dev.Snapshot())
	return nil
}

func runSetWord(cmd *cobra.Command, args []string) error {
	word, err := strconv.ParseInt(args[0], 0, 64)
	if err != nil {
		return fmt.Errorf("control word %q: %w", args[0], err)
	}
	dev, closeFn, err := openDevice()
	if err != nil {
		return err
	}
	defer closeFn()
	if err := dev.SetFrequencyControlWord(word); err != nil {
		return err
	}
	printState(cmd.OutOrStdout(), dev.Snapshot())
	return nil
}
