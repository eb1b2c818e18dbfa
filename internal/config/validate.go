package config

import (
	"fmt"
	"strings"
)

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	var problems []string

	if c.Queue.Concurrency < 1 {
		problems = append(problems, "queue.concurrency must be at least 1")
	}
	if c.Queue.PollInterval <= 0 {
		problems = append(problems, "queue.poll_interval must be a positive number of seconds")
	}
	if c.Queue.MaxAttempts < 1 {
		problems = append(problems, "queue.max_attempts must be at least 1")
	}
	if c.Queue.BackoffBase <= 0 {
		problems = append(problems, "queue.backoff_base must be a positive number of seconds")
	}
	if c.Queue.BackoffFactor < 1 {
		problems = append(problems, "queue.backoff_factor must be at least 1")
	}
	if c.Queue.BackoffJitter < 0 || c.Queue.BackoffJitter >= 1 {
		problems = append(problems, "queue.backoff_jitter must be in the range [0, 1)")
	}
	if c.Queue.StaleAfter <= 0 {
		problems = append(problems, "queue.stale_after must be a positive number of seconds")
	}
	if c.Queue.RetentionDays < 0 {
		problems = append(problems, "queue.retention_days must not be negative")
	}
	if strings.TrimSpace(c.Transcriber.Command) == "" {
		problems = append(problems, "transcriber.command must not be empty")
	}
	if c.Transcriber.Timeout <= 0 {
		problems = append(problems, "transcriber.timeout must be a positive number of seconds")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
