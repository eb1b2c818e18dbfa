package config

const (
	defaultScansDir       = "~/.local/share/gradr/scans"
	defaultTranscriptsDir = "~/.local/share/gradr/transcripts"
	defaultLogDir         = "~/.local/share/gradr/logs"
	defaultDataDir        = "~/.local/share/gradr"

	defaultQueueConcurrency   = 2
	defaultQueuePollInterval  = 5
	defaultQueueMaxAttempts   = 3
	defaultQueueBackoffBase   = 10
	defaultQueueBackoffFactor = 2.0
	defaultQueueBackoffJitter = 0.2
	defaultQueueStaleAfter    = 600
	defaultQueueRetentionDays = 30

	defaultTranscriberCommand = "gradr-transcribe"
	defaultTranscriberTimeout = 120

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ScansDir:       defaultScansDir,
			TranscriptsDir: defaultTranscriptsDir,
			LogDir:         defaultLogDir,
			DataDir:        defaultDataDir,
		},
		Queue: Queue{
			Concurrency:   defaultQueueConcurrency,
			PollInterval:  defaultQueuePollInterval,
			MaxAttempts:   defaultQueueMaxAttempts,
			BackoffBase:   defaultQueueBackoffBase,
			BackoffFactor: defaultQueueBackoffFactor,
			BackoffJitter: defaultQueueBackoffJitter,
			StaleAfter:    defaultQueueStaleAfter,
			RetentionDays: defaultQueueRetentionDays,
		},
		Transcriber: Transcriber{
			Command: defaultTranscriberCommand,
			Timeout: defaultTranscriberTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
