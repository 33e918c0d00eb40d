package config

const (
	defaultDataDir             = "~/.local/share/labeld"
	defaultLogDir              = "~/.local/share/labeld/logs"
	defaultAPIBind             = "127.0.0.1:7712"
	defaultLeaseTimeoutMinutes = 15
	defaultUploadsBasePath     = "/uploads"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Lease: Lease{
			TimeoutMinutes: defaultLeaseTimeoutMinutes,
		},
		Uploads: Uploads{
			BasePath: defaultUploadsBasePath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
