package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var envFileFlag string
	overrides := &flagOverrides{}

	ctx := newCommandContext(&configFlag, &envFileFlag, overrides)

	rootCmd := &cobra.Command{
		Use:   "autosub [flags] <video-or-audio>...",
		Short: "Generate (and translate) subtitles for audio and video files",
		Long: "autosub extracts audio, transcribes it with WhisperX, optionally translates\n" +
			"every line, and writes <name>.srt cue files with an optional burned-in video.",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig(cmd)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runSubtitles(cmd, ctx, args)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&envFileFlag, "env-file", "", "Load environment variables from this file (default .env)")
	overrides.register(rootCmd)

	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newCheckCommand(ctx))
	rootCmd.AddCommand(newCacheCommand(ctx))

	return rootCmd
}
