package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"chordprep/core/dataset"

	"github.com/spf13/cobra"
)

var (
	buildStrict     bool
	buildNoProgress bool
	buildRecord     bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build (or load from cache) the training dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		applyBuildFlags(cmd)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		p, err := openPipeline(ctx)
		if err != nil {
			return err
		}
		defer p.Close()

		res, err := p.builder.Run(ctx)
		if err != nil {
			return err
		}
		printBuild(res)
		return nil
	},
}

func init() {
	addBuildFlags(buildCmd)
	rootCmd.AddCommand(buildCmd)
}

func addBuildFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&buildStrict, "strict", false, "abort on the first failing track")
	cmd.Flags().BoolVar(&buildNoProgress, "no-progress", false, "do not draw the progress bar")
	cmd.Flags().BoolVar(&buildRecord, "record", false, "record per-track statistics in the catalog database")
}

func applyBuildFlags(cmd *cobra.Command) {
	if cmd.Flags().Changed("strict") {
		cfg.Build.Strict = buildStrict
	}
	if buildNoProgress {
		cfg.Build.Progress = false
	}
	if cmd.Flags().Changed("record") {
		cfg.Build.RecordCatalog = buildRecord
	}
}

func printBuild(res *dataset.Result) {
	ds := res.Dataset
	dim := 0
	if len(ds.Features) > 0 {
		dim = len(ds.Features[0])
	}
	source := "built"
	if res.Cached {
		source = "cache"
	}
	fmt.Printf("dataset %s (%s): %d examples, %d features, %d classes\n",
		res.Fingerprint, source, ds.Len(), dim, len(ds.Classes))
	for _, s := range res.Tracks {
		if s.Err != "" {
			fmt.Printf("  %-32s FAILED %s\n", s.TrackID, s.Err)
			continue
		}
		fmt.Printf("  %-32s tempo %.2f/s hop %d frames %d kept %d unlabeled %d unknown %d\n",
			s.TrackID, s.Tempo, s.HopLength, s.Frames, s.Kept, s.Unlabeled, s.Unknown)
	}
}
