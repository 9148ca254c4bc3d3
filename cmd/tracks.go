package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"chordprep/db"
	"chordprep/model"
	"chordprep/repository"

	"github.com/spf13/cobra"
)

var (
	tracksRun     string
	tracksHistory string
	tracksLimit   int
)

var tracksCmd = &cobra.Command{
	Use:   "tracks",
	Short: "List per-track statistics recorded in the catalog database",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		if err := db.ConnectGormDB(cfg); err != nil {
			return err
		}
		defer db.CloseGormDB()
		repo := repository.NewGormTrackRepository(db.GormDB)

		var recs []*model.TrackRecord
		var err error
		switch {
		case tracksHistory != "":
			recs, err = repo.History(ctx, tracksHistory, tracksLimit)
		default:
			run := tracksRun
			if run == "" {
				if run, err = repo.LatestRun(ctx); err != nil {
					return err
				}
				if run == "" {
					fmt.Println("no build recorded yet")
					return nil
				}
			}
			fmt.Printf("run %s\n", run)
			recs, err = repo.ListByRun(ctx, run)
		}
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TRACK\tTEMPO\tHOP\tFRAMES\tKEPT\tUNLABELED\tUNKNOWN\tMS\tERROR")
		for _, r := range recs {
			fmt.Fprintf(w, "%s\t%.2f\t%d\t%d\t%d\t%d\t%d\t%d\t%s\n",
				r.TrackID, r.Tempo, r.HopLength, r.Frames, r.Kept, r.Unlabeled, r.Unknown, r.ElapsedMs, r.Error)
		}
		return w.Flush()
	},
}

func init() {
	tracksCmd.Flags().StringVar(&tracksRun, "run", "", "build run id (defaults to the latest run)")
	tracksCmd.Flags().StringVar(&tracksHistory, "history", "", "show the recorded history of one track instead")
	tracksCmd.Flags().IntVar(&tracksLimit, "limit", 20, "maximum history entries")
	rootCmd.AddCommand(tracksCmd)
}
