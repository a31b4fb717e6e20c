package check

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ovsov/mphub/internal/models"
)

// NewHTTPProber probes a connection by requesting its marketplace API
// base with the unsealed token as a bearer credential. A nil client
// falls back to http.DefaultClient. Auth rejections count as failures;
// any other response proves the marketplace reachable and the token
// accepted.
func NewHTTPProber(client *http.Client) Prober {
	if client == nil {
		client = http.DefaultClient
	}
	return func(ctx context.Context, conn models.ConnectionView, token []byte) error {
		if conn.APIBase == "" {
			return fmt.Errorf("marketplace %s has no API base", conn.MarketplaceCode)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, conn.APIBase, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+string(token))
		req.Header.Set("User-Agent", "mphub")

		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return fmt.Errorf("marketplace rejected credential: %s", resp.Status)
		case resp.StatusCode >= 500:
			return fmt.Errorf("marketplace unavailable: %s", resp.Status)
		}
		return nil
	}
}
