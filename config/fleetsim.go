package config

import "time"

// FleetSimConfig contains specific configuration for the fleet simulator
type FleetSimConfig struct {
	BaseConfig

	// SeedHosts is the number of simulated hosts to seed
	SeedHosts int `envconfig:"SEED_HOSTS" default:"3"`

	// UpdatesPerHost is the number of seeded pending updates per host
	UpdatesPerHost int `envconfig:"UPDATES_PER_HOST" default:"4"`

	// CompletionDelay is how long an accepted job stays in flight before
	// the simulator resolves it
	CompletionDelay time.Duration `envconfig:"COMPLETION_DELAY" default:"3s"`

	// FailSubstring makes any job whose package contains the substring
	// resolve as failed; empty means all jobs succeed
	FailSubstring string `envconfig:"FAIL_SUBSTRING" default:""`
}

// Validate checks the fleet simulator configuration for required values
func (c *FleetSimConfig) Validate() error {
	if err := c.BaseConfig.Validate(); err != nil {
		return err
	}
	if c.SeedHosts < 0 {
		return NewConfigError("SEED_HOSTS must not be negative")
	}
	if c.CompletionDelay <= 0 {
		return NewConfigError("COMPLETION_DELAY must be greater than 0")
	}
	return nil
}

// LoadFleetSimConfig loads the configuration for the fleet simulator
func LoadFleetSimConfig() (*FleetSimConfig, error) {
	cfg := &FleetSimConfig{
		BaseConfig: BaseConfig{
			ServiceName: "fleetsim",
		},
	}
	if err := LoadAndValidate("FLEETSIM", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
