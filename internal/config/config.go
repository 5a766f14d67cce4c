// Package config handles editor configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
)

// ErrInvalidConfig is returned by Validate for out-of-range settings.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all editor settings. Camera and selection state are never
// stored here.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Camera  CameraConfig  `yaml:"camera"`
	Mesh    MeshConfig    `yaml:"mesh"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds viewer window settings.
type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	VSync  bool   `yaml:"vsync"`
}

// CameraConfig holds lens and input sensitivity settings.
type CameraConfig struct {
	FovDegrees   float32 `yaml:"fov_degrees"`
	Near         float32 `yaml:"near"`
	Far          float32 `yaml:"far"`
	ZoomSpeed    float32 `yaml:"zoom_speed"`
	RotateSpeedX float32 `yaml:"rotate_speed_x"`
	RotateSpeedY float32 `yaml:"rotate_speed_y"`
}

// MeshConfig holds VMesh load and save behavior.
type MeshConfig struct {
	// AllowMissingIndices accepts files that end right after the vertex block.
	AllowMissingIndices bool `yaml:"allow_missing_indices"`
	// BakeTranslationOnSave writes positions moved by the world translation.
	BakeTranslationOnSave bool    `yaml:"bake_translation_on_save"`
	NudgeStep             float32 `yaml:"nudge_step"`
	DefaultDir            string  `yaml:"default_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "N3VMesh Editor",
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Camera: CameraConfig{
			FovDegrees:   45,
			Near:         0.01,
			Far:          1000,
			ZoomSpeed:    0.1,
			RotateSpeedX: 0.01,
			RotateSpeedY: 0.01,
		},
		Mesh: MeshConfig{
			NudgeStep: 0.5,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// FovRadians returns the vertical field of view in radians.
func (c CameraConfig) FovRadians() float32 {
	return c.FovDegrees * math32.Pi / 180
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Window.Width, c.Window.Height)
	case c.Camera.FovDegrees <= 0 || c.Camera.FovDegrees >= 180:
		return fmt.Errorf("%w: fov_degrees %v not in (0, 180)", ErrInvalidConfig, c.Camera.FovDegrees)
	case c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near:
		return fmt.Errorf("%w: clip planes near=%v far=%v", ErrInvalidConfig, c.Camera.Near, c.Camera.Far)
	case c.Mesh.NudgeStep <= 0:
		return fmt.Errorf("%w: nudge_step %v must be positive", ErrInvalidConfig, c.Mesh.NudgeStep)
	}
	return nil
}
