package audit

import "time"

// Config controls audit behavior.
type Config struct {
	Enabled   bool
	LogDenied bool // Whether to record 401/403 responses

	// RetentionDays is how long events are kept; 0 keeps them forever.
	RetentionDays int
	// RetentionSchedule is a cron spec for the cleanup job.
	RetentionSchedule string
	// Location is the time zone the schedule is read in. Nil means UTC.
	Location *time.Location
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:           true,
		LogDenied:         true,
		RetentionDays:     365,
		RetentionSchedule: "30 2 * * *",
	}
}
