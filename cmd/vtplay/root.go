package main

import (
	"github.com/spf13/cobra"

	"vtimeline/internal/logger"
)

func newRootCommand() *cobra.Command {
	var logLevel string
	var logFormat string

	rootCmd := &cobra.Command{
		Use:           "vtplay",
		Short:         "Headless virtual timeline player",
		Long:          "vtplay drives the virtual timeline engine over a project file, either inspecting the derived segment list or playing it back against a simulated surface.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (error, warn, info, debug)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")

	newLogger := func() logger.Logger {
		return logger.New(logLevel, logFormat)
	}

	rootCmd.AddCommand(newInspectCommand())
	rootCmd.AddCommand(newPlayCommand(newLogger))

	return rootCmd
}
