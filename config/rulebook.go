package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"xp-ledger/models"
)

// LoadRulebookDefaults reads a YAML rulebook used as the default for new users.
// An empty path returns nil, meaning the built-in defaults apply.
func LoadRulebookDefaults(path string) (*models.RulebookConfig, error) {
	if path == "" {
		return nil, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rulebook defaults: %w", err)
	}
	var rb models.RulebookConfig
	if err := yaml.Unmarshal(b, &rb); err != nil {
		return nil, fmt.Errorf("parse rulebook defaults: %w", err)
	}
	return &rb, nil
}
