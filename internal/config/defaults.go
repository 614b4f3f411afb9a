package config

const (
	defaultDataDir        = "~/.local/share/transplant/data"
	defaultLogDir         = "~/.local/share/transplant/logs"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultPasswordLength = 12
	defaultCountry        = "United Kingdom"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Migration: Migration{
			PasswordLength: defaultPasswordLength,
			DefaultCountry: defaultCountry,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
