package cmd

import (
	"fmt"

	"github.com/ovsov/mphub/internal/db"
	"github.com/ovsov/mphub/internal/models"
	"github.com/ovsov/mphub/internal/output"
	"github.com/spf13/cobra"
)

var orgCmd = &cobra.Command{
	Use:     "org",
	Short:   "Manage organizations",
	GroupID: "catalog",
}

var orgAddCmd = &cobra.Command{
	Use:   "add <code> <name>",
	Short: "Add an organization",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.Open(getBaseDir())
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer database.Close()

		notes, _ := cmd.Flags().GetString("notes")
		org := models.Organization{Code: args[0], Name: args[1], Notes: notes}
		if err := database.CreateOrganization(&org); err != nil {
			output.Error("add organization: %v", err)
			return err
		}

		output.Success("Added organization %s (%s)", org.Code, org.ID)
		return nil
	},
}

var orgListCmd = &cobra.Command{
	Use:   "list",
	Short: "List organizations",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.Open(getBaseDir())
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer database.Close()

		orgs, err := database.ListOrganizations()
		if err != nil {
			output.Error("list organizations: %v", err)
			return err
		}

		if len(orgs) == 0 {
			fmt.Println("No organizations.")
			return nil
		}

		fmt.Printf("%-12s  %-10s  %s\n", "ID", "CODE", "NAME")
		for _, org := range orgs {
			fmt.Printf("%-12s  %-10s  %s\n", org.ID, org.Code, org.Name)
		}
		return nil
	},
}

var orgRmCmd = &cobra.Command{
	Use:   "rm <code>",
	Short: "Remove an organization",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.Open(getBaseDir())
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer database.Close()

		org, err := database.GetOrganizationByCode(args[0])
		if err != nil {
			output.Error("%v", err)
			return err
		}
		if err := database.DeleteOrganization(org.ID); err != nil {
			output.Error("remove organization: %v", err)
			return err
		}

		output.Success("Removed organization %s", org.Code)
		return nil
	},
}

func init() {
	orgAddCmd.Flags().String("notes", "", "Free-form notes")

	orgCmd.AddCommand(orgAddCmd)
	orgCmd.AddCommand(orgListCmd)
	orgCmd.AddCommand(orgRmCmd)
	rootCmd.AddCommand(orgCmd)
}
