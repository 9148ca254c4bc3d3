package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chordprep/cache"
	"chordprep/storage"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the dataset cache",
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Describe the dataset cached for the current corpus and parameters",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		cfg.Build.RecordCatalog = false
		p, err := openPipeline(ctx)
		if err != nil {
			return err
		}
		defer p.Close()

		_, fp, err := p.builder.Fingerprint()
		if err != nil {
			return err
		}
		info, err := p.builder.Cache.Inspect(ctx, fp)
		if errors.Is(err, cache.ErrNotFound) {
			fmt.Printf("no dataset cached in %s for %s\n", p.store.Name(), fp)
			return nil
		}
		if err != nil {
			return err
		}

		state := "current"
		if info.Fingerprint != fp {
			state = "stale, current fingerprint is " + fp
		}
		fmt.Printf("store:       %s\n", info.Store)
		fmt.Printf("fingerprint: %s (%s)\n", info.Fingerprint, state)
		fmt.Printf("created:     %s\n", info.CreatedAt.Local().Format(time.RFC3339))
		fmt.Printf("examples:    %d\n", info.Examples)
		fmt.Printf("features:    %d\n", info.Dimensions)
		fmt.Printf("classes:     %d\n", info.Classes)
		fmt.Printf("size:        %s\n", storage.FormatSize(int64(info.Bytes)))
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the dataset cached for the current corpus and parameters",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		cfg.Build.RecordCatalog = false
		p, err := openPipeline(ctx)
		if err != nil {
			return err
		}
		defer p.Close()

		_, fp, err := p.builder.Fingerprint()
		if err != nil {
			return err
		}
		if err := p.builder.Cache.Clear(ctx, fp); err != nil {
			return err
		}
		fmt.Printf("cleared %s\n", p.store.Name())
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheInfoCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
