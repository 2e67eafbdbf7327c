// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"
	"io"

	"github.com/Mehmet-Emre-Dogan/SoundWaveformInspect/internal/config"
	applog "github.com/Mehmet-Emre-Dogan/SoundWaveformInspect/internal/log"
	"github.com/Mehmet-Emre-Dogan/SoundWaveformInspect/pkg/build"

	"github.com/spf13/cobra"
)

// Command selects what main does after parsing.
type Command int

const (
	// CommandNone means help or version output was printed; nothing to run.
	CommandNone Command = iota
	// CommandInspect runs the capture pipeline with the given config file.
	CommandInspect
	// CommandDevices lists audio devices.
	CommandDevices
)

// Options is the parsed command line.
type Options struct {
	Command    Command
	ConfigPath string

	// Overrides applied on top of the config file. Empty or false keeps
	// the file value.
	LogLevel string
	Headless bool

	// devices subcommand.
	Plain     bool
	BlockTime float64
}

// ParseArgs parses args (without the program name). Help and version text
// is written to out.
func ParseArgs(args []string, out io.Writer) (*Options, error) {
	buildInfo := build.GetBuildFlags()
	options := &Options{}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name + " <config-file>",
		Short:         buildInfo.Description,
		Version:       buildInfo.Version,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			options.Command = CommandInspect
			options.ConfigPath = args[0]
			return nil
		},
	}
	rootCmd.SetVersionTemplate(buildInfo.String() + "\n")

	// Display help message
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	rootCmd.Flags().StringVarP(&options.LogLevel, "log-level", "L", "",
		"Override LogLevel from the config file (debug, info, warn, error)")
	rootCmd.Flags().BoolVar(&options.Headless, "headless", false,
		"Run without the terminal UI; needs a network transport or recording")

	// Devices command
	devicesCmd := &cobra.Command{
		Use:   "devices",
		Short: "List available audio devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if options.BlockTime <= 0 {
				return fmt.Errorf("--block-time must be positive, got %v", options.BlockTime)
			}
			options.Command = CommandDevices
			return nil
		},
	}
	devicesCmd.Flags().BoolVarP(&options.Plain, "plain", "p", false,
		"Print the list as text instead of opening the interactive list")
	devicesCmd.Flags().Float64VarP(&options.BlockTime, "block-time", "b", config.DefaultBlockTime,
		"Block duration in seconds used to preview the capture format")
	rootCmd.AddCommand(devicesCmd)

	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}

	return options, nil
}

// Apply writes the command-line overrides into cfg and validates the
// result.
func (o *Options) Apply(cfg *config.Config) error {
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	if o.Headless {
		cfg.Headless = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	applog.Debugf("CLI: Effective LogLevel=%s Headless=%v", cfg.LogLevel, cfg.Headless)
	return nil
}
