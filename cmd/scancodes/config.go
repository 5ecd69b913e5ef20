package main

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/wudi/barkit/scan"
)

type fileConfig struct {
	Log      logConfig      `mapstructure:"log"`
	Pipeline pipelineConfig `mapstructure:"pipeline"`
}

type logConfig struct {
	Mode string `mapstructure:"mode"`
}

type pipelineConfig struct {
	DetectionScale  float64   `mapstructure:"detection_scale"`
	ROIScales       []float64 `mapstructure:"roi_scales"`
	FullPageScales  []float64 `mapstructure:"full_page_scales"`
	RotationDegrees float64   `mapstructure:"rotation_degrees"`
	MatrixPadding   float64   `mapstructure:"matrix_padding"`
	LinearPadding   float64   `mapstructure:"linear_padding"`
	UnionPadding    float64   `mapstructure:"union_padding"`
	MinROISize      int       `mapstructure:"min_roi_size"`
	DisableROI      bool      `mapstructure:"disable_roi"`
	DisableRotation bool      `mapstructure:"disable_rotation"`
}

// loadConfig reads an optional YAML config file, layered over defaults and
// SCANCODES_* environment variables.
func loadConfig(path string) (fileConfig, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("scancodes")
	// Nested keys map to env vars like SCANCODES_PIPELINE_DETECTION_SCALE.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return fileConfig{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg fileConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return fileConfig{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := scan.DefaultConfig()
	v.SetDefault("log.mode", "debug")
	v.SetDefault("pipeline.detection_scale", def.DetectionScale)
	v.SetDefault("pipeline.roi_scales", def.ROIScales)
	v.SetDefault("pipeline.full_page_scales", def.FullPageScales)
	v.SetDefault("pipeline.rotation_degrees", def.RotationDegrees)
	v.SetDefault("pipeline.matrix_padding", def.MatrixPadding)
	v.SetDefault("pipeline.linear_padding", def.LinearPadding)
	v.SetDefault("pipeline.union_padding", def.UnionPadding)
	v.SetDefault("pipeline.min_roi_size", def.MinROISize)
	v.SetDefault("pipeline.disable_roi", def.DisableROI)
	v.SetDefault("pipeline.disable_rotation", def.DisableRotation)
}

func (c pipelineConfig) scanConfig() scan.Config {
	return scan.Config{
		DetectionScale:  c.DetectionScale,
		ROIScales:       c.ROIScales,
		FullPageScales:  c.FullPageScales,
		RotationDegrees: c.RotationDegrees,
		MatrixPadding:   c.MatrixPadding,
		LinearPadding:   c.LinearPadding,
		UnionPadding:    c.UnionPadding,
		MinROISize:      c.MinROISize,
		DisableROI:      c.DisableROI,
		DisableRotation: c.DisableRotation,
	}
}
