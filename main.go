package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hbomb79/Rhea/internal"
	"github.com/hbomb79/Rhea/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	flagConfig  string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "rhea",
	Short: "HTTP backend for fetching shared videos as MP4/MP3",
	Long: `Rhea accepts a media-sharing-site URL over HTTP, delegates extraction
and transcoding to the external yt-dlp tool and ffmpeg binary, and streams
the resulting file back to the caller.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Path to a YAML config file (default: environment only)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable verbose logging")
}

func run(cmd *cobra.Command, args []string) error {
	if flagVerbose {
		logger.SetMinLoggingLevel(logger.VERBOSE)
	}

	config := internal.RheaConfig{}
	if flagConfig != "" {
		if err := config.LoadFromFile(flagConfig); err != nil {
			return err
		}
	} else if err := config.LoadFromEnv(); err != nil {
		return err
	}

	rhea, err := internal.New(config)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return rhea.Run(ctx)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
