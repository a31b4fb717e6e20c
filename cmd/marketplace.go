package cmd

import (
	"fmt"

	"github.com/ovsov/mphub/internal/db"
	"github.com/ovsov/mphub/internal/models"
	"github.com/ovsov/mphub/internal/output"
	"github.com/spf13/cobra"
)

var mpCmd = &cobra.Command{
	Use:     "mp",
	Aliases: []string{"marketplace"},
	Short:   "Manage marketplaces",
	GroupID: "catalog",
}

var mpAddCmd = &cobra.Command{
	Use:   "add <code> <name>",
	Short: "Add a marketplace",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.Open(getBaseDir())
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer database.Close()

		region, _ := cmd.Flags().GetString("region")
		apiBase, _ := cmd.Flags().GetString("api-base")
		sandbox, _ := cmd.Flags().GetBool("sandbox")

		mp := models.Marketplace{
			Code:    args[0],
			Name:    args[1],
			Region:  region,
			APIBase: apiBase,
			Sandbox: sandbox,
		}
		if err := database.CreateMarketplace(&mp); err != nil {
			output.Error("add marketplace: %v", err)
			return err
		}

		output.Success("Added marketplace %s (%s)", mp.Code, mp.ID)
		return nil
	},
}

var mpListCmd = &cobra.Command{
	Use:   "list",
	Short: "List marketplaces",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.Open(getBaseDir())
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer database.Close()

		mps, err := database.ListMarketplaces()
		if err != nil {
			output.Error("list marketplaces: %v", err)
			return err
		}

		if len(mps) == 0 {
			fmt.Println("No marketplaces.")
			return nil
		}

		fmt.Printf("%-12s  %-10s  %-20s  %-8s  %s\n", "ID", "CODE", "NAME", "REGION", "API BASE")
		for _, mp := range mps {
			apiBase := mp.APIBase
			if mp.Sandbox {
				apiBase += " [sandbox]"
			}
			fmt.Printf("%-12s  %-10s  %-20s  %-8s  %s\n", mp.ID, mp.Code, mp.Name, mp.Region, apiBase)
		}
		return nil
	},
}

var mpRmCmd = &cobra.Command{
	Use:   "rm <code>",
	Short: "Remove a marketplace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.Open(getBaseDir())
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer database.Close()

		mp, err := database.GetMarketplaceByCode(args[0])
		if err != nil {
			output.Error("%v", err)
			return err
		}
		if err := database.DeleteMarketplace(mp.ID); err != nil {
			output.Error("remove marketplace: %v", err)
			return err
		}

		output.Success("Removed marketplace %s", mp.Code)
		return nil
	},
}

func init() {
	mpAddCmd.Flags().String("region", "", "Marketplace region code")
	mpAddCmd.Flags().String("api-base", "", "Base URL of the marketplace API")
	mpAddCmd.Flags().Bool("sandbox", false, "Mark as a sandbox environment")

	mpCmd.AddCommand(mpAddCmd)
	mpCmd.AddCommand(mpListCmd)
	mpCmd.AddCommand(mpRmCmd)
	rootCmd.AddCommand(mpCmd)
}
