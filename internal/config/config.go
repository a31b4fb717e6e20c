package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/ovsov/mphub/internal/models"
)

const configFile = ".mphub/config.json"

// DefaultCheckTimeoutSecs is used when the config does not set one
const DefaultCheckTimeoutSecs = 5

// Load reads the config from disk
func Load(baseDir string) (*models.Config, error) {
	configPath := filepath.Join(baseDir, configFile)

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &models.Config{}, nil
		}
		return nil, err
	}

	var cfg models.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the config to disk
func Save(baseDir string, cfg *models.Config) error {
	configPath := filepath.Join(baseDir, configFile)

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

// SetLastOrg records the organization last chosen in a picker
func SetLastOrg(baseDir string, orgID string) error {
	cfg, err := Load(baseDir)
	if err != nil {
		return err
	}

	cfg.LastOrgID = orgID
	return Save(baseDir, cfg)
}

// GetLastOrg returns the organization last chosen in a picker
func GetLastOrg(baseDir string) (string, error) {
	cfg, err := Load(baseDir)
	if err != nil {
		return "", err
	}
	return cfg.LastOrgID, nil
}

// ClearLastOrg clears the remembered organization
func ClearLastOrg(baseDir string) error {
	return SetLastOrg(baseDir, "")
}

// SetLastMarketplace records the marketplace last chosen in a picker
func SetLastMarketplace(baseDir string, mpID string) error {
	cfg, err := Load(baseDir)
	if err != nil {
		return err
	}

	cfg.LastMarketplaceID = mpID
	return Save(baseDir, cfg)
}

// GetLastMarketplace returns the marketplace last chosen in a picker
func GetLastMarketplace(baseDir string) (string, error) {
	cfg, err := Load(baseDir)
	if err != nil {
		return "", err
	}
	return cfg.LastMarketplaceID, nil
}

// GetCheckTimeoutSecs returns the health check timeout, falling back to
// the default when unset
func GetCheckTimeoutSecs(baseDir string) (int, error) {
	cfg, err := Load(baseDir)
	if err != nil {
		return 0, err
	}
	if cfg.CheckTimeoutSecs <= 0 {
		return DefaultCheckTimeoutSecs, nil
	}
	return cfg.CheckTimeoutSecs, nil
}
