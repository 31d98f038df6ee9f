package config

import "flag"

var (
	flagConfig        = flag.String("config", "", "Path to config file")
	flagDebug         = flag.Bool("debug", false, "Enable debug logging")
	flagLogFile       = flag.String("log-file", "", "Also write logs to this file")
	flagWindowed      = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen    = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth         = flag.Int("width", 0, "Window width")
	flagHeight        = flag.Int("height", 0, "Window height")
	flagFOV           = flag.Float64("fov", 0, "Camera field of view in degrees")
	flagNoOpaque      = flag.Bool("no-opaque", false, "Disable the opaque pass")
	flagNoTransparent = flag.Bool("no-transparent", false, "Disable the transparent pass")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the positional arguments left after flag parsing.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Upload.LogPlans = true
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if *flagWindowed {
		cfg.Window.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Window.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
	if *flagFOV > 0 {
		cfg.Camera.FOV = float32(*flagFOV)
	}
	if *flagNoOpaque {
		cfg.Scene.OpaqueMode = false
	}
	if *flagNoTransparent {
		cfg.Scene.TransparentMode = false
	}
}
