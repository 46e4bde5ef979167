package config

import "time"

// ConsoleConfig contains specific configuration for the console service
type ConsoleConfig struct {
	BaseConfig

	// FleetAPIURL is the base URL of the upstream fleet API
	FleetAPIURL string `envconfig:"FLEET_API_URL" required:"true"`

	// PollInterval is the result poller period while work is in flight
	PollInterval time.Duration `envconfig:"POLL_INTERVAL" default:"10s"`

	// SweepGrace is how long a resolved entry keeps its selection
	// membership before being swept
	SweepGrace time.Duration `envconfig:"SWEEP_GRACE" default:"5s"`

	// StalePendingAfter bounds how long an entry may stay pending without
	// a report before it is failed locally
	StalePendingAfter time.Duration `envconfig:"STALE_PENDING_AFTER" default:"30m"`

	// SummaryCacheTTL is the TTL of cached fleet summaries
	SummaryCacheTTL time.Duration `envconfig:"SUMMARY_CACHE_TTL" default:"30s"`

	// RabbitMQURL enables audit event publishing when set
	RabbitMQURL string `envconfig:"RABBITMQ_URL" default:""`

	// EventQueueName is the durable queue audit events are published to
	EventQueueName string `envconfig:"EVENT_QUEUE_NAME" default:"patchdeck-events"`

	// HistoryDBURL is the submission history database. Either a plain
	// SQLite path or the dbPath|primaryUrl|authToken embedded replica
	// form. Empty disables history.
	HistoryDBURL string `envconfig:"HISTORY_DB_URL" default:"patchdeck-history.db"`

	// HistoryLimit caps the rows returned by the history endpoint
	HistoryLimit int `envconfig:"HISTORY_LIMIT" default:"100"`
}

// Validate checks the console configuration for required values
func (c *ConsoleConfig) Validate() error {
	if err := c.BaseConfig.Validate(); err != nil {
		return err
	}
	if c.FleetAPIURL == "" {
		return NewConfigError("FLEET_API_URL is required")
	}
	if c.PollInterval <= 0 {
		return NewConfigError("POLL_INTERVAL must be greater than 0")
	}
	if c.SweepGrace <= 0 {
		return NewConfigError("SWEEP_GRACE must be greater than 0")
	}
	return nil
}

// LoadConsoleConfig loads the configuration for the console service
func LoadConsoleConfig() (*ConsoleConfig, error) {
	cfg := &ConsoleConfig{
		BaseConfig: BaseConfig{
			ServiceName: "console",
		},
	}
	if err := LoadAndValidate("CONSOLE", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
