package config

import "fmt"

func validate(c *Config) error {
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be > 0")
	}
	if c.NavigationTimeout <= 0 {
		return fmt.Errorf("navigation timeout must be > 0")
	}
	if c.MaxConcurrentPages <= 0 {
		return fmt.Errorf("max concurrent pages must be > 0")
	}
	if c.HTTPMaxConnections <= 0 {
		return fmt.Errorf("http max connections must be > 0")
	}
	if c.DefaultPageLimit < 1 || c.DefaultPageLimit > c.MaxPages {
		return fmt.Errorf("default page limit must be between 1 and %d", c.MaxPages)
	}
	return nil
}
