package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

// Dirs is the resolved filesystem layout for one run.
type Dirs struct {
	// Cache holds downloaded installer jars.
	Cache string

	// Config holds modtool's own settings and log file.
	Config string

	// Game is the game's base directory (".minecraft").
	Game string
}

// Mods is the directory mods are downloaded into.
func (d Dirs) Mods() string {
	return filepath.Join(d.Game, "mods")
}

// Versions is the directory loader installations are detected in.
func (d Dirs) Versions() string {
	return filepath.Join(d.Game, "versions")
}

// LauncherProfiles is the launcher's persisted configuration file.
func (d Dirs) LauncherProfiles() string {
	return filepath.Join(d.Game, "launcher_profiles.json")
}

// Dirs resolves the directory layout for the current host, honouring
// any directories set explicitly in the settings.
func (s *Settings) Dirs() (Dirs, error) {
	return s.resolveDirs(runtime.GOOS, os.Getenv)
}

func (s *Settings) resolveDirs(goos string, getenv func(string) string) (Dirs, error) {
	defaults, err := defaultDirs(goos, getenv)
	if err != nil && (s.CacheDir == "" || s.ConfigDir == "" || s.GameDir == "") {
		return Dirs{}, err
	}

	dirs := defaults
	if s.CacheDir != "" {
		dirs.Cache = s.CacheDir
	}
	if s.ConfigDir != "" {
		dirs.Config = s.ConfigDir
	}
	if s.GameDir != "" {
		dirs.Game = s.GameDir
	}
	return dirs, nil
}

// defaultDirs follows the launcher's conventions: %APPDATA% on Windows,
// the home directory everywhere else.
func defaultDirs(goos string, getenv func(string) string) (Dirs, error) {
	if goos == "windows" {
		appData := getenv("APPDATA")
		if appData == "" {
			return Dirs{}, errors.New("APPDATA is not set")
		}
		return Dirs{
			Cache:  filepath.Join(appData, AppName, "cache"),
			Config: filepath.Join(appData, AppName),
			Game:   filepath.Join(appData, ".minecraft"),
		}, nil
	}

	home := getenv("HOME")
	if home == "" {
		return Dirs{}, errors.New("HOME is not set")
	}
	return Dirs{
		Cache:  filepath.Join(home, ".cache", AppName),
		Config: filepath.Join(home, ".config", AppName),
		Game:   filepath.Join(home, ".minecraft"),
	}, nil
}

// Ensure creates the cache, config and mods directories.
func (d Dirs) Ensure() error {
	for _, dir := range []string{d.Cache, d.Config, d.Mods()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
