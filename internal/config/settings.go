package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultDailyList is the tasklist used for daily files unless overridden.
	DefaultDailyList = "Daily"

	// DefaultRequestsPerSecond is the default API rate limit.
	DefaultRequestsPerSecond = 5
)

// Settings is the parsed contents of config.yaml.
type Settings struct {
	// DirectoryPaths are directories whose *.md files each sync against a
	// tasklist named after the file.
	DirectoryPaths []string `yaml:"directory_paths"`

	// DailyPath is the directory whose *.md files sync as subtasks of a
	// per-file parent task in the daily list.
	DailyPath string `yaml:"daily_path"`

	// DailyList is the title of the daily tasklist.
	DailyList string `yaml:"daily_list"`

	// RequestsPerSecond limits outgoing API calls.
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// LoadSettings reads and validates config.yaml from the config directory.
func (c *Config) LoadSettings() (*Settings, error) {
	data, err := os.ReadFile(c.SettingsPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", SettingsFile, err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", SettingsFile, err)
	}

	if s.DailyList == "" {
		s.DailyList = DefaultDailyList
	}
	if s.RequestsPerSecond <= 0 {
		s.RequestsPerSecond = DefaultRequestsPerSecond
	}

	for i, p := range s.DirectoryPaths {
		s.DirectoryPaths[i] = expandPath(p)
	}
	s.DailyPath = expandPath(s.DailyPath)

	if len(s.DirectoryPaths) == 0 && s.DailyPath == "" {
		return nil, fmt.Errorf("%s: directory_paths or daily_path required", SettingsFile)
	}

	return &s, nil
}

// expandPath expands a leading ~ to the user's home directory.
func expandPath(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
