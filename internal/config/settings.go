package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// AppName is used for directory names and the User-Agent.
	AppName = "modtool"

	// Version is the release version reported to remote services.
	Version = "2.0.0"

	// Contact is the maintainer address sent with every request.
	Contact = "tallie@tallie.dev"

	// EnvGameDir overrides the game directory when set.
	EnvGameDir = "MODTOOL_GAME_DIR"
)

// UserAgent returns the User-Agent header sent with outbound requests.
func UserAgent() string {
	return fmt.Sprintf("Starkiller645/%s/%s (%s)", AppName, Version, Contact)
}

// Settings holds all configuration options.
type Settings struct {
	// Remote endpoints
	ManifestURL        string `json:"manifest_url" yaml:"manifest_url"`
	ForgeIndexURL      string `json:"forge_index_url" yaml:"forge_index_url"`
	FabricInstallerURL string `json:"fabric_installer_url" yaml:"fabric_installer_url"`

	// Runtime
	JavaPath string `json:"java_path" yaml:"java_path"`

	// Download settings
	MaxConcurrentDownloads int `json:"max_concurrent_downloads" yaml:"max_concurrent_downloads"`
	HTTPTimeoutSeconds     int `json:"http_timeout_seconds" yaml:"http_timeout_seconds"`

	// Directories, empty means the host default
	GameDir   string `json:"game_dir" yaml:"game_dir"`
	CacheDir  string `json:"cache_dir" yaml:"cache_dir"`
	ConfigDir string `json:"config_dir" yaml:"config_dir"`

	// Launcher settings
	RegisterLauncherProfile bool `json:"register_launcher_profile" yaml:"register_launcher_profile"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		ManifestURL:        "https://tallie.dev/modtool/manifest.json",
		ForgeIndexURL:      "https://tallie.dev/modtool/forge_versions.json",
		FabricInstallerURL: "https://maven.fabricmc.net/net/fabricmc/fabric-installer/0.11.0/fabric-installer-0.11.0.jar",

		JavaPath: "java",

		MaxConcurrentDownloads: 4,
		HTTPTimeoutSeconds:     60,

		RegisterLauncherProfile: true,
	}
}

// Load reads settings from a JSON or YAML file. A missing file yields
// the defaults. Files ending in .yaml or .yml are decoded as YAML.
func Load(path string) (*Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			settings.applyEnv()
			return settings, nil
		}
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, settings)
	default:
		err = json.Unmarshal(data, settings)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	settings.applyEnv()
	return settings, settings.Validate()
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate rejects settings the installer cannot run with.
func (s *Settings) Validate() error {
	if s.MaxConcurrentDownloads < 1 {
		return fmt.Errorf("max_concurrent_downloads must be at least 1, got %d", s.MaxConcurrentDownloads)
	}
	if s.HTTPTimeoutSeconds < 0 {
		return fmt.Errorf("http_timeout_seconds must not be negative, got %d", s.HTTPTimeoutSeconds)
	}
	if s.ManifestURL == "" {
		return fmt.Errorf("manifest_url must be set")
	}
	if s.JavaPath == "" {
		return fmt.Errorf("java_path must be set")
	}
	return nil
}

// HTTPTimeout returns the per-request timeout. Zero disables it.
func (s *Settings) HTTPTimeout() time.Duration {
	return time.Duration(s.HTTPTimeoutSeconds) * time.Second
}

func (s *Settings) applyEnv() {
	if v, ok := os.LookupEnv(EnvGameDir); ok && v != "" {
		s.GameDir = v
	}
}
