package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/cwbudde/wavmeta"
	"github.com/cwbudde/wavmeta/internal/dupeaction"
)

func newRootCommand() *cobra.Command {
	ctx := newCommandContext()

	rootCmd := &cobra.Command{
		Use:           "wavmeta",
		Short:         "Broadcast WAV metadata tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&ctx.configFlag, "config", "c", "", "Configuration file path")
	flags.StringVar(&ctx.logLevelFlag, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&ctx.logFormatFlag, "log-format", "", "Log format (console, json)")

	rootCmd.AddCommand(newInfoCommand(ctx))
	rootCmd.AddCommand(newALECommand(ctx))
	rootCmd.AddCommand(newAAFCommand(ctx))
	rootCmd.AddCommand(newDupesCommand(ctx))

	return rootCmd
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, wavmeta.ErrMissingRoot), errors.Is(err, dupeaction.ErrConflictingActions):
		return exitUsage
	default:
		return 1
	}
}
