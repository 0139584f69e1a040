package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/cricket-etl/internal/ingest"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check loaded data against its consistency invariants",
	Long: `Run the pipeline's correctness properties as SQL checks against the
populated store: innings totals vs. delivery sums, derived-flag identities,
phase partitioning, and roster completeness. Exits non-zero on any violation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		dbURL, _ := cmd.Flags().GetString("db-url")
		pool, err := storePool(ctx, dbURL)
		if err != nil {
			return err
		}
		defer pool.Close()

		var violations int64
		for _, check := range ingest.ConsistencyChecks() {
			var n int64
			if err := pool.QueryRow(ctx, check.SQL).Scan(&n); err != nil {
				return eris.Wrapf(err, "verify: %s", check.Name)
			}
			marker := "ok"
			if n > 0 {
				marker = fmt.Sprintf("%d violation(s)", n)
				violations += n
			}
			fmt.Printf("%-28s %s\n", check.Name, marker)
		}

		if violations > 0 {
			return eris.Errorf("verify: %d total violation(s)", violations)
		}
		fmt.Println("\nAll consistency checks passed")
		return nil
	},
}

func init() {
	verifyCmd.Flags().String("db-url", "", "destination PostgreSQL URL (overrides config)")
	rootCmd.AddCommand(verifyCmd)
}
