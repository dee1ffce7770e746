// Package config loads the service configuration from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"server"`

	Audio struct {
		SampleRate    int    `yaml:"sample_rate"`
		RecordingsDir string `yaml:"recordings_dir"`
	} `yaml:"audio"`

	Diarize struct {
		WindowSeconds float64 `yaml:"window_seconds"`
		MaxSpeakers   int     `yaml:"max_speakers"`
	} `yaml:"diarize"`

	Whisper struct {
		Model    string `yaml:"model"`
		Language string `yaml:"language"`
	} `yaml:"whisper"`

	Embedder struct {
		URL            string `yaml:"url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"embedder"`

	LLM struct {
		URL            string `yaml:"url"`
		Model          string `yaml:"model"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"llm"`

	Storage struct {
		Database  string `yaml:"database"`
		ExportDir string `yaml:"export_dir"`
		TempDir   string `yaml:"temp_dir"`
	} `yaml:"storage"`

	Cleanup struct {
		IntervalMinutes int `yaml:"interval_minutes"`
		MaxAgeHours     int `yaml:"max_age_hours"`
	} `yaml:"cleanup"`

	Limits struct {
		MaxFileSizeMB int `yaml:"max_file_size_mb"`
	} `yaml:"limits"`
}

// Load reads and parses the config file, applying defaults for anything
// left unset.
func Load(path string) (*Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(file, config); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return config, nil
}

// Default returns a Config with working defaults for local use.
func Default() *Config {
	var c Config
	c.Server.Host = "0.0.0.0"
	c.Server.Port = 8080
	c.Audio.SampleRate = 44100
	c.Audio.RecordingsDir = "recordings"
	c.Diarize.WindowSeconds = 3
	c.Diarize.MaxSpeakers = 3
	c.Whisper.Model = "medium"
	c.Whisper.Language = "en"
	c.Embedder.URL = "http://localhost:8090/embed"
	c.Embedder.TimeoutSeconds = 60
	c.LLM.URL = "http://localhost:11434/api/generate"
	c.LLM.Model = "llama3:latest"
	c.LLM.TimeoutSeconds = 30
	c.Storage.Database = "meetings.db"
	c.Storage.ExportDir = "exports"
	c.Storage.TempDir = "temp"
	c.Cleanup.IntervalMinutes = 60
	c.Cleanup.MaxAgeHours = 24
	c.Limits.MaxFileSizeMB = 64
	return &c
}
