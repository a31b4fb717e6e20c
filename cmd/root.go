package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version string
	baseDir string
	dirFlag string
)

// SetVersion sets the version string
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

var rootCmd = &cobra.Command{
	Use:   "mphub",
	Short: "Marketplace connection hub",
	Long: `mphub - A local hub for marketplace API connections.

Keeps a catalog of organizations, marketplaces and the connections between
them, stores API credentials sealed in a local vault, and ships a terminal
browser for working the catalog interactively.`,
	// Commands report failures through output.Error already
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initBaseDir)

	rootCmd.PersistentFlags().StringVar(&dirFlag, "dir", "", "Base directory for the catalog (default: working directory)")

	rootCmd.AddGroup(
		&cobra.Group{ID: "core", Title: "Core Commands:"},
		&cobra.Group{ID: "catalog", Title: "Catalog Commands:"},
		&cobra.Group{ID: "system", Title: "System Commands:"},
	)
}

func initBaseDir() {
	if dirFlag != "" {
		baseDir = dirFlag
		return
	}
	var err error
	baseDir, err = os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot determine working directory: %v\n", err)
		os.Exit(1)
	}
}

// getBaseDir returns the base directory for the catalog
func getBaseDir() string {
	return baseDir
}
