package config

const (
	defaultWorkers     = 4
	defaultMinSize     = 1
	defaultVideoFormat = "1080"
	defaultAudioFormat = "48khz"
	defaultALEFPS      = 24
	defaultAAFFPS      = 25
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"
	defaultConfigPath  = "~/.config/wavmeta/config.toml"
	projectConfigName  = "wavmeta.toml"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Scan: Scan{
			Extensions: []string{".wav"},
			Workers:    defaultWorkers,
			MinSize:    defaultMinSize,
		},
		ALE: ALE{
			VideoFormat: defaultVideoFormat,
			AudioFormat: defaultAudioFormat,
			FPS:         defaultALEFPS,
			Excluded: []string{
				"Origination Date",
				"Origination Time",
				"Sample Width",
				"Duration",
				"Channels",
			},
		},
		AAF: AAF{
			FPS: defaultAAFFPS,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
