package config

import "time"

type Relay struct {
	BatchSize   uint32        `env:"RELAY_BATCH_SIZE" envDefault:"100"`
	Interval    time.Duration `env:"RELAY_INTERVAL" envDefault:"1s"`
	Concurrency int           `env:"RELAY_CONCURRENCY" envDefault:"16"`

	// PurgeSchedule is a cron spec for deleting processed outbox messages
	// older than Retention. Empty disables purging.
	PurgeSchedule string        `env:"RELAY_PURGE_SCHEDULE" envDefault:"@every 1h"`
	Retention     time.Duration `env:"RELAY_RETENTION" envDefault:"168h"`
}
