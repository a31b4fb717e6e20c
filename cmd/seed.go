package cmd

import (
	"fmt"

	"github.com/ovsov/mphub/internal/db"
	"github.com/ovsov/mphub/internal/models"
	"github.com/ovsov/mphub/internal/output"
	"github.com/ovsov/mphub/internal/vault"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:     "seed",
	Short:   "Fill the catalog with demo data",
	GroupID: "system",
	RunE: func(cmd *cobra.Command, args []string) error {
		base := getBaseDir()

		database, err := db.Open(base)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer database.Close()

		existing, err := database.ListOrganizations()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		if len(existing) > 0 {
			fmt.Println("Catalog already has data; seed skipped.")
			return nil
		}

		v, err := vault.Load(base)
		if err != nil {
			output.Error("open vault: %v", err)
			return err
		}

		orgs, mps, conns, err := seedDemoCatalog(database, v)
		if err != nil {
			output.Error("seed catalog: %v", err)
			return err
		}

		output.Success("Seeded %d organizations, %d marketplaces, %d connections", orgs, mps, conns)
		return nil
	},
}

// seedDemoCatalog writes a small demo catalog: three organizations on
// four marketplaces, with mixed statuses and two stored credentials
func seedDemoCatalog(database *db.DB, v *vault.Vault) (int, int, int, error) {
	orgs := []models.Organization{
		{Code: "acme", Name: "Acme Trading", Notes: "Primary seller account"},
		{Code: "globex", Name: "Globex GmbH"},
		{Code: "initech", Name: "Initech LLC", Notes: "Sandbox experiments only"},
	}
	for i := range orgs {
		if err := database.CreateOrganization(&orgs[i]); err != nil {
			return 0, 0, 0, err
		}
	}

	mps := []models.Marketplace{
		{Code: "wb", Name: "Wildberries", Region: "RU", APIBase: "https://suppliers-api.wildberries.ru"},
		{Code: "ozon", Name: "Ozon", Region: "RU", APIBase: "https://api-seller.ozon.ru"},
		{Code: "amzn-de", Name: "Amazon DE", Region: "EU", APIBase: "https://sellingpartnerapi-eu.amazon.com"},
		{Code: "ebay-sb", Name: "eBay Sandbox", Region: "US", APIBase: "https://api.sandbox.ebay.com", Sandbox: true},
	}
	for i := range mps {
		if err := database.CreateMarketplace(&mps[i]); err != nil {
			return 0, 0, 0, err
		}
	}

	conns := []struct {
		org    int
		mp     int
		label  string
		status models.Status
		token  string
	}{
		{0, 0, "primary", models.StatusActive, "demo-wb-token"},
		{0, 2, "primary", models.StatusActive, "demo-amzn-token"},
		{1, 1, "primary", models.StatusPaused, ""},
		{1, 0, "outlet", models.StatusActive, ""},
		{2, 3, "testing", models.StatusBroken, ""},
	}
	for _, c := range conns {
		conn := models.Connection{
			OrgID:         orgs[c.org].ID,
			MarketplaceID: mps[c.mp].ID,
			Label:         c.label,
			Status:        c.status,
		}
		if err := database.CreateConnection(&conn); err != nil {
			return 0, 0, 0, err
		}
		if c.token == "" {
			continue
		}
		box, err := v.Seal([]byte(c.token))
		if err != nil {
			return 0, 0, 0, err
		}
		if err := database.PutCredential(conn.ID, box); err != nil {
			return 0, 0, 0, err
		}
	}

	return len(orgs), len(mps), len(conns), nil
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
