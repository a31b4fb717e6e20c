package cmd

import (
	"os"
	"path/filepath"

	"github.com/ovsov/mphub/internal/db"
	"github.com/ovsov/mphub/internal/output"
	"github.com/ovsov/mphub/internal/vault"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:     "init",
	Short:   "Create the catalog database and vault keyfile",
	GroupID: "system",
	RunE: func(cmd *cobra.Command, args []string) error {
		base := getBaseDir()

		existed := false
		if _, err := os.Stat(filepath.Join(base, ".mphub", "hub.db")); err == nil {
			existed = true
		}

		database, err := db.Initialize(base)
		if err != nil {
			output.Error("initialize catalog: %v", err)
			return err
		}
		defer database.Close()

		// Creates the keyfile on first use
		if _, err := vault.Load(base); err != nil {
			output.Error("initialize vault: %v", err)
			return err
		}

		if existed {
			output.Success("Catalog already initialized in %s", filepath.Join(base, ".mphub"))
			return nil
		}
		output.Success("Initialized catalog in %s", filepath.Join(base, ".mphub"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
