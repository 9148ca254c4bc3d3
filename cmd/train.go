package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"chordprep/core/forest"
	"chordprep/core/train"
	"chordprep/storage"

	"github.com/spf13/cobra"
)

var (
	trainModelPath string
	trainTrees     int
	trainUpload    bool
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Build the dataset if needed and fit the random forest on it",
	RunE: func(cmd *cobra.Command, args []string) error {
		applyBuildFlags(cmd)
		if cmd.Flags().Changed("model") {
			cfg.Model.Path = trainModelPath
		}
		if cmd.Flags().Changed("trees") {
			cfg.Model.Trees = trainTrees
		}
		if cmd.Flags().Changed("upload") {
			cfg.Model.Upload = trainUpload
		}

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

		var up train.Uploader
		if cfg.Model.Upload {
			client, err := storage.NewMinioClient(ctx, cfg.Minio)
			if err != nil {
				return err
			}
			up = client
		}

		clf := forest.New(forest.Params{
			Trees:       cfg.Model.Trees,
			MaxDepth:    cfg.Model.MaxDepth,
			MinLeaf:     cfg.Model.MinLeaf,
			MaxFeatures: cfg.Model.MaxFeatures,
			Seed:        cfg.Model.Seed,
		})
		art, err := train.NewDriver(cfg.Model.Path, up).Train(ctx, res.Dataset, clf)
		if err != nil {
			return err
		}
		fmt.Printf("model saved to %s (%d classes, %d examples)\n", cfg.Model.Path, len(art.Classes), art.Examples)
		return nil
	},
}

func init() {
	addBuildFlags(trainCmd)
	trainCmd.Flags().StringVar(&trainModelPath, "model", "", "model artifact path")
	trainCmd.Flags().IntVar(&trainTrees, "trees", 0, "number of trees")
	trainCmd.Flags().BoolVar(&trainUpload, "upload", false, "also upload the model to MinIO")
	rootCmd.AddCommand(trainCmd)
}
