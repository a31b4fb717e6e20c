package cmd

import (
	"github.com/ovsov/mphub/internal/output"
	"github.com/ovsov/mphub/pkg/hub"
	"github.com/spf13/cobra"
)

var browseCmd = &cobra.Command{
	Use:     "browse",
	Aliases: []string{"b"},
	Short:   "Browse the connection catalog interactively",
	GroupID: "core",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := hub.Run(getBaseDir()); err != nil {
			output.Error("%v", err)
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}
