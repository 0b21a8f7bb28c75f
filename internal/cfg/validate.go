package cfg

import "fmt"

// Validate sanity-checks a fully unmarshalled Config, rejecting
// out-of-range knobs before mounting starts.
func Validate(c *Config) error {
	if c.Vault.ShorteningThreshold <= 0 {
		return fmt.Errorf("cfg: shortening-threshold must be positive, got %d", c.Vault.ShorteningThreshold)
	}
	if c.Executor.Workers <= 0 {
		return fmt.Errorf("cfg: executor-workers must be positive, got %d", c.Executor.Workers)
	}
	if c.Executor.QueueCapacity <= 0 {
		return fmt.Errorf("cfg: executor-queue-capacity must be positive, got %d", c.Executor.QueueCapacity)
	}
	switch c.Executor.Policy {
	case "reject", "block", "spill":
	default:
		return fmt.Errorf("cfg: executor-saturation-policy must be one of reject, block, spill; got %q", c.Executor.Policy)
	}
	if c.Executor.MetadataTimeout <= 0 {
		return fmt.Errorf("cfg: executor-metadata-timeout must be positive, got %s", c.Executor.MetadataTimeout)
	}
	return nil
}
