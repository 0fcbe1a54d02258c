package config

const (
	defaultStateDir              = "~/.local/share/tickteer"
	defaultLogDir                = "~/.local/share/tickteer/logs"
	defaultSourceBinary          = "bd"
	defaultIntervalSeconds       = 30
	defaultCommandTimeoutSeconds = 300
	defaultShell                 = "sh"
	defaultLockRetryIntervalMS   = 50
	defaultHistoryFile           = "history.db"
	defaultHistoryMaxEntries     = 1000
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

func defaultSourceArgs() []string {
	return []string{"ready", "--json"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Source: Source{
			Binary: defaultSourceBinary,
			Args:   defaultSourceArgs(),
		},
		Daemon: Daemon{
			IntervalSeconds:       defaultIntervalSeconds,
			CommandTimeoutSeconds: defaultCommandTimeoutSeconds,
			Shell:                 defaultShell,
			UseStdin:              true,
		},
		Lock: Lock{
			RetryIntervalMS: defaultLockRetryIntervalMS,
		},
		History: History{
			Enabled:    true,
			MaxEntries: defaultHistoryMaxEntries,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
