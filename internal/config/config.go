// Package config handles tool configuration loading and management.
package config

import (
	"github.com/Faultbox/nevk-scene/internal/engine/scene"
)

// Config holds all settings.
type Config struct {
	Scene   SceneConfig   `yaml:"scene"`
	Camera  CameraConfig  `yaml:"camera"`
	Window  WindowConfig  `yaml:"window"`
	Upload  UploadConfig  `yaml:"upload"`
	Capture CaptureConfig `yaml:"capture"`
	Logging LoggingConfig `yaml:"logging"`
}

// SceneConfig holds scene storage and render-pass settings.
type SceneConfig struct {
	VertexCapacity  int        `yaml:"vertex_capacity"` // initial, in vertices
	IndexCapacity   int        `yaml:"index_capacity"`  // initial, in indices
	OpaqueMode      bool       `yaml:"opaque_mode"`
	TransparentMode bool       `yaml:"transparent_mode"`
	LightPosition   [4]float32 `yaml:"light_position"`
	Path            string     `yaml:"path"` // scene file opened when none is given
}

// CameraConfig holds projection settings.
type CameraConfig struct {
	FOV  float32 `yaml:"fov"` // degrees
	Near float32 `yaml:"near"`
	Far  float32 `yaml:"far"`
}

// WindowConfig holds display settings for sceneview.
type WindowConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	FPSLimit   int  `yaml:"fps_limit"`
}

// UploadConfig holds GPU mirror settings.
type UploadConfig struct {
	LogPlans bool `yaml:"log_plans"` // log every non-empty upload plan
}

// CaptureConfig holds frame capture settings for sceneview.
type CaptureConfig struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"` // png or bmp
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	sc := scene.DefaultConfig()
	return &Config{
		Scene: SceneConfig{
			VertexCapacity:  sc.InitialVertexCapacity,
			IndexCapacity:   sc.InitialIndexCapacity,
			OpaqueMode:      true,
			TransparentMode: true,
			LightPosition:   sc.LightPosition,
		},
		Camera: CameraConfig{
			FOV:  sc.CameraFOV,
			Near: sc.CameraNear,
			Far:  sc.CameraFar,
		},
		Window: WindowConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			FPSLimit:   0,
		},
		Capture: CaptureConfig{
			Dir:    "captures",
			Format: "png",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// ToScene converts the settings into a scene configuration.
func (c *Config) ToScene() scene.Config {
	return scene.Config{
		InitialVertexCapacity: c.Scene.VertexCapacity,
		InitialIndexCapacity:  c.Scene.IndexCapacity,
		OpaqueMode:            c.Scene.OpaqueMode,
		TransparentMode:       c.Scene.TransparentMode,
		LightPosition:         c.Scene.LightPosition,
		CameraFOV:             c.Camera.FOV,
		CameraNear:            c.Camera.Near,
		CameraFar:             c.Camera.Far,
	}
}
