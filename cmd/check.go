package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/ovsov/mphub/internal/check"
	"github.com/ovsov/mphub/internal/config"
	"github.com/ovsov/mphub/internal/db"
	"github.com/ovsov/mphub/internal/output"
	"github.com/ovsov/mphub/internal/vault"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:     "check",
	Short:   "Probe connections and record their health",
	GroupID: "core",
	RunE: func(cmd *cobra.Command, args []string) error {
		base := getBaseDir()

		database, err := db.Open(base)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer database.Close()

		v, err := vault.Load(base)
		if err != nil {
			output.Error("open vault: %v", err)
			return err
		}

		opts, err := filterOptions(cmd.Flags(), database)
		if err != nil {
			output.Error("%v", err)
			return err
		}

		timeoutSecs, _ := cmd.Flags().GetInt("timeout")
		if timeoutSecs <= 0 {
			timeoutSecs, err = config.GetCheckTimeoutSecs(base)
			if err != nil {
				timeoutSecs = config.DefaultCheckTimeoutSecs
			}
		}
		limit, _ := cmd.Flags().GetInt("limit")

		runner := &check.Runner{
			DB:      database,
			Vault:   v,
			Prober:  check.NewHTTPProber(nil),
			Timeout: time.Duration(timeoutSecs) * time.Second,
			Limit:   limit,
		}

		summary, err := runner.Run(context.Background(), opts)
		if err != nil {
			output.Error("check connections: %v", err)
			return err
		}

		for _, r := range summary.Results {
			fmt.Println(formatCheckResult(r))
		}
		fmt.Printf("Checked %d: %d healthy, %d broken, %d skipped in %s\n",
			summary.Checked, summary.Healthy, summary.Broken, summary.Skipped,
			time.Since(summary.StartedAt).Round(time.Millisecond))

		if summary.Broken > 0 {
			return fmt.Errorf("%d connection(s) broken", summary.Broken)
		}
		return nil
	},
}

// formatCheckResult renders one check outcome line
func formatCheckResult(r check.Result) string {
	v := r.Connection
	name := fmt.Sprintf("%s/%s %s", v.OrgCode, v.MarketplaceCode, v.Label)

	switch {
	case r.Skipped:
		return fmt.Sprintf("%-7s %-12s %s", "skip", v.ID, name)
	case r.Err != nil:
		return fmt.Sprintf("%-7s %-12s %s: %v", "broken", v.ID, name, r.Err)
	}
	return fmt.Sprintf("%-7s %-12s %s (%s)", "ok", v.ID, name, r.Duration.Round(time.Millisecond))
}

func init() {
	addConnFilterFlags(checkCmd.Flags())
	checkCmd.Flags().Int("timeout", 0, "Per-connection timeout in seconds (default from config)")
	checkCmd.Flags().Int("limit", 0, "Parallel probe limit")
	rootCmd.AddCommand(checkCmd)
}
