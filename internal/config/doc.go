// Package config provides configuration management for modtool.
//
// This package handles:
//   - Loading settings from JSON or YAML files
//   - Default configuration values
//   - Resolving the host directory layout (cache, config, game directory)
//
// # Default Settings
//
//	settings := config.DefaultSettings()
//	// Manifest from tallie.dev, 4 concurrent downloads, 60s HTTP timeout
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/config.yaml")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// The MODTOOL_GAME_DIR environment variable overrides game_dir.
//
// # Directory Layout
//
//	dirs, err := settings.Dirs()
//	dirs.Mods()             // ~/.minecraft/mods
//	dirs.Versions()         // ~/.minecraft/versions
//	dirs.LauncherProfiles() // ~/.minecraft/launcher_profiles.json
package config
