package cmd

import (
	"fmt"

	"github.com/ovsov/mphub/internal/db"
	"github.com/ovsov/mphub/internal/output"
	"github.com/spf13/cobra"
)

var connTreeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Show connections grouped under their organizations",
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

		orgs, err := database.ListOrganizations()
		if err != nil {
			output.Error("list organizations: %v", err)
			return err
		}
		views, err := database.ListConnectionViews(opts)
		if err != nil {
			output.Error("list connections: %v", err)
			return err
		}

		if len(orgs) == 0 {
			fmt.Println("No organizations.")
			return nil
		}

		showIDs, _ := cmd.Flags().GetBool("ids")
		roots := output.BuildCatalogTree(orgs, views)
		for _, line := range output.RenderTreeLines(roots, output.TreeRenderOptions{
			ShowStatus: true,
			ShowIDs:    showIDs,
		}) {
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	addConnFilterFlags(connTreeCmd.Flags())
	connTreeCmd.Flags().Bool("ids", false, "Show row ids")
	connCmd.AddCommand(connTreeCmd)
}
