package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Starkiller645/modtool/internal/config"
	ioutils "github.com/Starkiller645/modtool/internal/io"
	"github.com/Starkiller645/modtool/internal/java"
	"github.com/Starkiller645/modtool/internal/model"
)

var (
	// ErrFetch wraps network failures while fetching the version index or
	// the installer jar.
	ErrFetch = errors.New("could not fetch loader installer")

	// ErrProcess wraps failures to launch the installer process.
	ErrProcess = errors.New("could not run loader installer")

	// ErrNoForgeBuild is returned when the Forge version index has no build
	// for the requested game version.
	ErrNoForgeBuild = errors.New("no forge build for game version")

	// ErrNoGameVersion is returned when Install is called without a game
	// version. An empty version would match any installed loader.
	ErrNoGameVersion = errors.New("game version is required")
)

// Result is the outcome of an installation attempt.
type Result struct {
	// Success is true when the loader is installed for the game version.
	Success bool

	// Label is the resolved loader version shown to the operator and used
	// as the launcher profile's version id.
	Label string

	// VersionID is the name of the installation directory under versions/.
	VersionID string

	// Installed is true when the installer ran during this attempt.
	Installed bool
}

// Fetcher is the subset of the HTTP client the installers use.
type Fetcher interface {
	GetJSON(ctx context.Context, url string, v any) error
	DownloadFile(ctx context.Context, url, destPath string, onProgress func(written, total int64)) (int64, error)
}

// Installer ensures a mod loader is installed for a game version.
type Installer interface {
	Kind() model.LoaderKind
	Install(ctx context.Context, gameVersion string) (Result, error)
}

// Deps are the collaborators shared by both installers.
type Deps struct {
	Dirs     config.Dirs
	Client   Fetcher
	Runner   java.Runner
	JavaPath string
	Logger   *slog.Logger
}

func (d Deps) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return d.Logger
}

// New returns the installer for kind configured from settings.
func New(kind model.LoaderKind, deps Deps, settings *config.Settings) (Installer, error) {
	switch kind {
	case model.LoaderFabric:
		return NewFabric(deps, settings.FabricInstallerURL), nil
	case model.LoaderForge:
		return NewForge(deps, settings.ForgeIndexURL, DefaultForgeMaven), nil
	}
	return nil, fmt.Errorf("unsupported loader %v", kind)
}

// detection is what a scan of the versions directory found.
type detection struct {
	found     bool
	versionID string
	label     string
}

// ensure runs the shared detect → install → detect flow. detect is
// called at most twice; install only when the first detect misses.
func ensure(ctx context.Context, deps Deps, detect func() (detection, error), install func(ctx context.Context) error) (Result, error) {
	log := deps.logger()

	d, err := detect()
	if err != nil {
		return Result{}, err
	}
	if d.found {
		log.Info("loader already installed", "version_id", d.versionID)
		if err := clearMods(deps); err != nil {
			return Result{}, err
		}
		return Result{Success: true, Label: d.label, VersionID: d.versionID}, nil
	}

	if err := install(ctx); err != nil {
		return Result{}, err
	}

	d, err = detect()
	if err != nil {
		return Result{}, err
	}
	if !d.found {
		log.Warn("loader not detected after running installer")
		return Result{Installed: true}, nil
	}

	if err := clearMods(deps); err != nil {
		return Result{}, err
	}
	log.Info("loader installed", "version_id", d.versionID)
	return Result{Success: true, Label: d.label, VersionID: d.versionID, Installed: true}, nil
}

// clearMods resets the mods directory before a fresh set is downloaded.
func clearMods(deps Deps) error {
	removed, skipped, err := ioutils.ClearDir(deps.Dirs.Mods())
	if err != nil {
		return fmt.Errorf("clearing mods directory: %w", err)
	}
	if skipped > 0 {
		deps.logger().Warn("some mods could not be removed", "removed", removed, "skipped", skipped)
	}
	return nil
}

// installedVersions lists entry names in the versions directory. A
// missing directory means nothing is installed yet.
func installedVersions(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading versions directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

// fetchInstaller downloads url into the cache directory and returns the
// local path. The jar is written under a temporary name and renamed once
// complete so an interrupted download is never executed.
func fetchInstaller(ctx context.Context, deps Deps, url string) (string, error) {
	name, err := ioutils.FileNameFromURL(url)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetch, err)
	}
	if err := ioutils.EnsureDir(deps.Dirs.Cache); err != nil {
		return "", fmt.Errorf("creating cache directory: %w", err)
	}

	dest := filepath.Join(deps.Dirs.Cache, name)
	part := dest + ".part"

	deps.logger().Info("downloading loader installer", "url", url, "dest", dest)
	if _, err := deps.Client.DownloadFile(ctx, url, part, nil); err != nil {
		os.Remove(part)
		return "", fmt.Errorf("%w: %v", ErrFetch, err)
	}
	if err := os.Rename(part, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// runInstaller spawns the installer jar with the Java runtime.
func runInstaller(ctx context.Context, deps Deps, args ...string) error {
	javaPath := deps.JavaPath
	if javaPath == "" {
		javaPath = "java"
	}

	out, err := deps.Runner.Run(ctx, javaPath, args...)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProcess, err)
	}
	deps.logger().Debug("installer finished", "exit_code", out.ExitCode, "stdout", out.Stdout)
	return nil
}
