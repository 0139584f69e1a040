package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/cricket-etl/internal/ingest"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show table counts and recent ingest runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		dbURL, _ := cmd.Flags().GetString("db-url")
		pool, err := storePool(ctx, dbURL)
		if err != nil {
			return err
		}
		defer pool.Close()

		for _, table := range []string{"matches", "innings", "ball_by_ball", "players"} {
			var count int64
			if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM cricket."+table).Scan(&count); err != nil {
				return eris.Wrapf(err, "status: count %s", table)
			}
			fmt.Printf("%-14s %d\n", table, count)
		}

		runs, err := ingest.NewRunLog(pool).Recent(ctx, 5)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("\nNo ingest runs recorded")
			return nil
		}

		fmt.Println("\nRecent runs:")
		for _, r := range runs {
			fmt.Printf("  %s  %-8s  loaded=%d skipped=%d failed=%d  %s\n",
				r.StartedAt.Format("2006-01-02 15:04:05"),
				r.Status, r.MatchesLoaded, r.MatchesSkipped, r.DocumentsFailed, r.ID)
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().String("db-url", "", "destination PostgreSQL URL (overrides config)")
	rootCmd.AddCommand(statusCmd)
}
