package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/ovsov/mphub/internal/db"
	"github.com/ovsov/mphub/internal/models"
	"github.com/ovsov/mphub/internal/output"
	"github.com/ovsov/mphub/internal/vault"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var connCmd = &cobra.Command{
	Use:     "conn",
	Aliases: []string{"c"},
	Short:   "Manage marketplace connections",
	GroupID: "catalog",
}

var connAddCmd = &cobra.Command{
	Use:   "add <org-code> <mp-code>",
	Short: "Connect an organization to a marketplace",
	Args:  cobra.ExactArgs(2),
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
		mp, err := database.GetMarketplaceByCode(args[1])
		if err != nil {
			output.Error("%v", err)
			return err
		}

		label, _ := cmd.Flags().GetString("label")
		conn := models.Connection{OrgID: org.ID, MarketplaceID: mp.ID, Label: label}
		if err := database.CreateConnection(&conn); err != nil {
			output.Error("add connection: %v", err)
			return err
		}

		output.Success("Added connection %s (%s -> %s)", conn.ID, org.Code, mp.Code)
		return nil
	},
}

var connRmCmd = &cobra.Command{
	Use:   "rm <connection-id>",
	Short: "Remove a connection and its stored credential",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.Open(getBaseDir())
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer database.Close()

		if err := database.DeleteConnection(args[0]); err != nil {
			output.Error("remove connection: %v", err)
			return err
		}

		output.Success("Removed connection %s", args[0])
		return nil
	},
}

var connSetKeyCmd = &cobra.Command{
	Use:   "set-key <connection-id>",
	Short: "Store the API token for a connection in the vault",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.Open(getBaseDir())
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer database.Close()

		conn, err := database.GetConnection(args[0])
		if err != nil {
			output.Error("%v", err)
			return err
		}

		token, _ := cmd.Flags().GetString("token")
		if token == "" {
			token, err = readSecret("API token: ")
			if err != nil {
				output.Error("read token: %v", err)
				return err
			}
		}
		if token == "" {
			output.Error("empty token")
			return fmt.Errorf("empty token")
		}

		v, err := vault.Load(getBaseDir())
		if err != nil {
			output.Error("open vault: %v", err)
			return err
		}
		box, err := v.Seal([]byte(token))
		if err != nil {
			output.Error("seal token: %v", err)
			return err
		}
		if err := database.PutCredential(conn.ID, box); err != nil {
			output.Error("store credential: %v", err)
			return err
		}

		output.Success("Stored credential for %s", conn.ID)
		return nil
	},
}

var connSetStatusCmd = &cobra.Command{
	Use:   "set-status <connection-id> <status>",
	Short: "Set a connection status (active, paused, revoked, broken)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.Open(getBaseDir())
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer database.Close()

		status := models.NormalizeStatus(args[1])
		if err := database.UpdateConnectionStatus(args[0], status); err != nil {
			output.Error("set status: %v", err)
			return err
		}

		output.Success("Connection %s is now %s", args[0], status)
		return nil
	},
}

// readSecret reads a token without echo on a terminal, or a plain line
// when input is piped in
func readSecret(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(raw)), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func init() {
	connAddCmd.Flags().String("label", "primary", "Label distinguishing connections on the same pair")
	connSetKeyCmd.Flags().String("token", "", "API token (prompted for when omitted)")

	connCmd.AddCommand(connAddCmd)
	connCmd.AddCommand(connRmCmd)
	connCmd.AddCommand(connSetKeyCmd)
	connCmd.AddCommand(connSetStatusCmd)
	rootCmd.AddCommand(connCmd)
}
