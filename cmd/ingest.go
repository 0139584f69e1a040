package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/cricket-etl/internal/ingest"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load match documents into the relational store",
	Long: `Walk every YAML match document in the data directory and load it into
the four relational tables (matches, innings, ball_by_ball, players).

Each match commits as one atomic transaction. A source file that was already
loaded is skipped via the matches.source_file uniqueness constraint; re-running
ingestion never duplicates or alters previously loaded matches. Use
--init-schema to drop and rebuild the schema for a full reload.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		dbURL, _ := cmd.Flags().GetString("db-url")
		dataDir, _ := cmd.Flags().GetString("data-dir")
		initSchema, _ := cmd.Flags().GetBool("init-schema")
		workers, _ := cmd.Flags().GetInt("workers")

		if dataDir == "" {
			dataDir = cfg.Ingest.DataDir
		}
		if workers <= 0 {
			workers = cfg.Ingest.Workers
		}

		pool, err := storePool(ctx, dbURL)
		if err != nil {
			return err
		}
		defer pool.Close()

		if initSchema {
			if err := ingest.Reset(ctx, pool); err != nil {
				return eris.Wrap(err, "ingest: reset schema")
			}
		} else if err := ingest.Migrate(ctx, pool); err != nil {
			return eris.Wrap(err, "ingest: migrate")
		}

		zap.L().Info("starting ingest",
			zap.String("data_dir", dataDir),
			zap.Int("workers", workers),
			zap.Bool("init_schema", initSchema),
		)

		engine := ingest.NewEngine(ingest.NewLoader(pool), ingest.NewRunLog(pool), workers)
		report, err := engine.Run(ctx, dataDir)
		if err != nil {
			return eris.Wrap(err, "ingest")
		}

		fmt.Printf("Loaded:  %d match(es), %d deliveries\n", report.Loaded, report.Deliveries)
		fmt.Printf("Skipped: %d (already present)\n", report.Skipped)
		fmt.Printf("Failed:  %d\n", report.Failed)
		for _, f := range report.Failures {
			fmt.Printf("  failed: %s\n", f)
		}

		if report.Failed > 0 {
			return eris.Errorf("ingest: %d document(s) failed", report.Failed)
		}
		return nil
	},
}

func init() {
	ingestCmd.Flags().String("db-url", "", "destination PostgreSQL URL (overrides config)")
	ingestCmd.Flags().String("data-dir", "", "directory of YAML match documents (overrides config)")
	ingestCmd.Flags().Bool("init-schema", false, "drop and recreate the cricket schema before loading")
	ingestCmd.Flags().Int("workers", 0, "parallel match workers (default from config)")
	rootCmd.AddCommand(ingestCmd)
}
