package config

const (
	defaultCacheDir              = "~/.local/share/marquee/cache"
	defaultLogDir                = "~/.local/share/marquee/logs"
	defaultAPIBind               = "127.0.0.1:7512"
	defaultOMDBBaseURL           = "https://www.omdbapi.com"
	defaultOMDBTimeoutSeconds    = 10
	defaultVerificationTolerance = 0.2
	defaultMinFragmentLength     = 2
	defaultRecentWindowDays      = 7
	defaultRecentTTLMinutes      = 60
	defaultSettledWindowDays     = 14
	defaultSettledTTLHours       = 24
	defaultArchiveTTLDays        = 30
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CacheDir: defaultCacheDir,
			LogDir:   defaultLogDir,
			APIBind:  defaultAPIBind,
		},
		OMDB: OMDB{
			BaseURL:        defaultOMDBBaseURL,
			TimeoutSeconds: defaultOMDBTimeoutSeconds,
		},
		Resolver: Resolver{
			VerificationTolerance: defaultVerificationTolerance,
			MinFragmentLength:     defaultMinFragmentLength,
		},
		TTL: TTL{
			RecentWindowDays:  defaultRecentWindowDays,
			RecentTTLMinutes:  defaultRecentTTLMinutes,
			SettledWindowDays: defaultSettledWindowDays,
			SettledTTLHours:   defaultSettledTTLHours,
			ArchiveTTLDays:    defaultArchiveTTLDays,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
