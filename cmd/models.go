package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"chordprep/storage"

	"github.com/spf13/cobra"
)

var modelsPrefix string

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List model and dataset artifacts stored in MinIO",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		client, err := storage.NewMinioClient(ctx, cfg.Minio)
		if err != nil {
			return err
		}
		objects, stats, err := client.ListObjects(ctx, modelsPrefix)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "OBJECT\tSIZE\tMODIFIED")
		for _, o := range objects {
			fmt.Fprintf(w, "%s\t%s\t%s\n", o.Key, storage.FormatSize(o.Size), o.LastModified.Local().Format(time.RFC3339))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Printf("%d objects, %s in %s/%s\n",
			stats.TotalObjects, storage.FormatSize(stats.TotalSize), client.Bucket(), modelsPrefix)
		return nil
	},
}

func init() {
	modelsCmd.Flags().StringVar(&modelsPrefix, "prefix", "models/", "object prefix to list")
	rootCmd.AddCommand(modelsCmd)
}
