package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ovsov/mphub/internal/db"
	"github.com/ovsov/mphub/internal/models"
	"github.com/ovsov/mphub/internal/output"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

var connListCmd = &cobra.Command{
	Use:   "list",
	Short: "List connections",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.Open(getBaseDir())
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer database.Close()

		opts, err := filterOptions(cmd.Flags(), database)
		if err != nil {
			output.Error("%v", err)
			return err
		}

		views, err := database.ListConnectionViews(opts)
		if err != nil {
			output.Error("list connections: %v", err)
			return err
		}

		if len(views) == 0 {
			fmt.Println("No connections.")
			return nil
		}

		labelW := labelColumn(termWidth())
		fmt.Printf("%-12s  %-10s  %-10s  %-*s  %-8s  %-4s  %s\n",
			"ID", "ORG", "MP", labelW, "LABEL", "STATUS", "CRED", "CHECKED")
		for _, v := range views {
			cred := "-"
			if v.HasCredential {
				cred = "ok"
			}
			fmt.Printf("%-12s  %-10s  %-10s  %-*s  %-8s  %-4s  %s\n",
				v.ID,
				truncateCell(v.OrgCode, 10),
				truncateCell(v.MarketplaceCode, 10),
				labelW, truncateCell(v.Label, labelW),
				v.Status, cred, formatChecked(v.LastCheckedAt))
		}
		return nil
	},
}

// addConnFilterFlags registers the shared connection filter flags
func addConnFilterFlags(fs *pflag.FlagSet) {
	fs.String("org", "", "Filter by organization code")
	fs.String("mp", "", "Filter by marketplace code")
	fs.String("status", "", "Filter by status (comma separated)")
}

// filterOptions resolves the filter flags against the catalog
func filterOptions(fs *pflag.FlagSet, database *db.DB) (db.ListConnectionsOptions, error) {
	var opts db.ListConnectionsOptions

	if code, _ := fs.GetString("org"); code != "" {
		org, err := database.GetOrganizationByCode(code)
		if err != nil {
			return opts, err
		}
		opts.OrgID = org.ID
	}
	if code, _ := fs.GetString("mp"); code != "" {
		mp, err := database.GetMarketplaceByCode(code)
		if err != nil {
			return opts, err
		}
		opts.MarketplaceID = mp.ID
	}

	raw, _ := fs.GetString("status")
	statuses, err := parseStatusFilter(raw)
	if err != nil {
		return opts, err
	}
	opts.Status = statuses

	return opts, nil
}

// parseStatusFilter turns a comma separated status list into canonical
// statuses. Empty input means no filter.
func parseStatusFilter(input string) ([]models.Status, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}

	var statuses []models.Status
	for _, part := range strings.Split(input, ",") {
		s := models.NormalizeStatus(part)
		if !models.IsValidStatus(s) {
			return nil, fmt.Errorf("invalid status: %s", strings.TrimSpace(part))
		}
		statuses = append(statuses, s)
	}
	return statuses, nil
}

// termWidth returns the terminal width, or a sane default when stdout
// is not a terminal
func termWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 100
}

// labelColumn sizes the flexible label column for a given total width
func labelColumn(total int) int {
	// Fixed columns plus separators take 72 cells
	w := total - 72
	if w < 8 {
		return 8
	}
	if w > 24 {
		return 24
	}
	return w
}

// truncateCell shortens a cell to the column width
func truncateCell(s string, w int) string {
	r := []rune(s)
	if len(r) <= w {
		return s
	}
	if w <= 1 {
		return string(r[:w])
	}
	return string(r[:w-1]) + "…"
}

// formatChecked renders the last check time for table output
func formatChecked(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func init() {
	addConnFilterFlags(connListCmd.Flags())
	connCmd.AddCommand(connListCmd)
}
