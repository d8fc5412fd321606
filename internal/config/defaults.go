package config

const (
	defaultConfigPath         = "~/.config/sous/config.toml"
	defaultListen             = "127.0.0.1:8080"
	defaultStorageBackend     = "sqlite"
	defaultSQLitePath         = "~/.local/share/sous/sous.db"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultVoice              = true
	defaultTickIntervalMillis = 1000
	defaultReportRetryDelay   = 2
	defaultReportTimeout      = 10
	defaultIdleTTLMinutes     = 60
	defaultNarrationLanguage  = "en-US"
	defaultNarrationRate      = 0.9
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Server: Server{
			Listen: defaultListen,
		},
		Storage: Storage{
			Backend: defaultStorageBackend,
			DSN:     defaultSQLitePath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Session: Session{
			VoiceDefault:            defaultVoice,
			TickIntervalMillis:      defaultTickIntervalMillis,
			ReportRetryDelaySeconds: defaultReportRetryDelay,
			ReportTimeoutSeconds:    defaultReportTimeout,
			IdleTTLMinutes:          defaultIdleTTLMinutes,
		},
		Narration: Narration{
			Language: defaultNarrationLanguage,
			Rate:     defaultNarrationRate,
		},
	}
}
