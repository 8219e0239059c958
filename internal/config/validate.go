package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateOMDB(); err != nil {
		return err
	}
	if err := c.validateTTL(); err != nil {
		return err
	}
	if c.Paths.APIBind == "" {
		return errors.New("paths.api_bind must be set")
	}
	return nil
}

func (c *Config) validateOMDB() error {
	if c.OMDB.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/marquee/config.toml"
		}
		return fmt.Errorf("omdb.api_key is required. Set MARQUEE_OMDB_API_KEY or edit %s (create with 'marquee config init')", defaultPath)
	}
	if c.OMDB.BaseURL == "" {
		return errors.New("omdb.base_url must be set")
	}
	return nil
}

func (c *Config) validateTTL() error {
	if c.TTL.RecentWindowDays <= 0 {
		return errors.New("ttl.recent_window_days must be positive")
	}
	if c.TTL.SettledWindowDays <= c.TTL.RecentWindowDays {
		return errors.New("ttl.settled_window_days must be greater than ttl.recent_window_days")
	}
	if c.TTL.RecentTTLMinutes <= 0 || c.TTL.SettledTTLHours <= 0 || c.TTL.ArchiveTTLDays <= 0 {
		return errors.New("ttl durations must be positive")
	}
	return nil
}
