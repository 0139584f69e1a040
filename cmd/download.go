package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/cricket-etl/internal/fetcher"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Fetch a Cricsheet archive into the data directory",
	Long: `Download a Cricsheet zip archive (defaults to the IPL archive) and
extract its YAML match documents into the data directory, ready for ingest.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		archiveURL, _ := cmd.Flags().GetString("url")
		dataDir, _ := cmd.Flags().GetString("data-dir")

		if archiveURL == "" {
			archiveURL = cfg.Cricsheet.ArchiveURL
		}
		if dataDir == "" {
			dataDir = cfg.Ingest.DataDir
		}

		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return eris.Wrapf(err, "download: create data dir %s", dataDir)
		}

		f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			UserAgent: cfg.Cricsheet.UserAgent,
		})

		zipPath := filepath.Join(os.TempDir(), filepath.Base(archiveURL))
		zap.L().Info("downloading archive", zap.String("url", archiveURL))

		n, err := f.DownloadToFile(ctx, archiveURL, zipPath)
		if err != nil {
			return eris.Wrapf(err, "download: fetch %s", archiveURL)
		}
		defer os.Remove(zipPath) //nolint:errcheck

		extracted, err := fetcher.ExtractZIP(zipPath, dataDir, ".yaml")
		if err != nil {
			return eris.Wrap(err, "download: extract archive")
		}

		zap.L().Info("archive extracted",
			zap.Int64("bytes", n),
			zap.Int("documents", len(extracted)),
		)
		fmt.Printf("Extracted %d match document(s) to %s\n", len(extracted), dataDir)
		return nil
	},
}

func init() {
	downloadCmd.Flags().String("url", "", "archive URL (default from config)")
	downloadCmd.Flags().String("data-dir", "", "destination directory for match documents")
	rootCmd.AddCommand(downloadCmd)
}
