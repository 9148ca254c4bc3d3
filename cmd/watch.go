package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chordprep/core/dataset"
	"chordprep/logger"

	"github.com/spf13/cobra"
)

var watchQuiet time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild the dataset whenever the corpus changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		applyBuildFlags(cmd)
		cfg.Build.Progress = false

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		p, err := openPipeline(ctx)
		if err != nil {
			return err
		}
		defer p.Close()

		rebuild := func(ctx context.Context) error {
			res, err := p.builder.Run(ctx)
			if err != nil {
				return err
			}
			printBuild(res)
			return nil
		}
		if err := rebuild(ctx); err != nil {
			logger.Error("initial build failed", logger.ErrorField(err))
		}

		logger.Info("watching corpus",
			logger.String("audio", cfg.AudioPath()),
			logger.String("annotations", cfg.AnnotationPath()),
			logger.Duration("quiet", watchQuiet))
		err = dataset.NewWatcher(watchQuiet, cfg.AudioPath(), cfg.AnnotationPath()).Run(ctx, rebuild)
		if ctx.Err() != nil {
			return nil
		}
		return err
	},
}

func init() {
	addBuildFlags(watchCmd)
	watchCmd.Flags().DurationVar(&watchQuiet, "quiet", 2*time.Second, "time without changes before rebuilding")
	rootCmd.AddCommand(watchCmd)
}
