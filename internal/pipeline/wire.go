package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Starkiller645/modtool/internal/config"
	"github.com/Starkiller645/modtool/internal/download"
	"github.com/Starkiller645/modtool/internal/http"
	"github.com/Starkiller645/modtool/internal/java"
	"github.com/Starkiller645/modtool/internal/launcher"
	"github.com/Starkiller645/modtool/internal/loader"
	"github.com/Starkiller645/modtool/internal/manifest"
	"github.com/Starkiller645/modtool/internal/model"
)

// Wire builds the production collaborators from settings and creates
// the host directories. onProgress receives the download engine's
// operator messages and may be nil.
func Wire(settings *config.Settings, logger *slog.Logger, onProgress func(download.ProgressEvent)) (Deps, config.Dirs, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	dirs, err := settings.Dirs()
	if err != nil {
		return Deps{}, config.Dirs{}, fmt.Errorf("resolving directories: %w", err)
	}
	if err := dirs.Ensure(); err != nil {
		return Deps{}, config.Dirs{}, fmt.Errorf("creating directories: %w", err)
	}

	client := http.NewClient(config.UserAgent(), settings.HTTPTimeout())
	runner := java.ExecRunner{}
	loaderDeps := loader.Deps{
		Dirs:     dirs,
		Client:   client,
		Runner:   runner,
		JavaPath: settings.JavaPath,
		Logger:   logger.With("component", "loader"),
	}

	deps := Deps{
		Manifest: ManifestFunc(func(ctx context.Context) (*model.Manifest, error) {
			return manifest.Fetch(ctx, client, settings.ManifestURL)
		}),
		Runtime: java.NewChecker(settings.JavaPath, runner, logger.With("component", "java")),
		Installers: func(kind model.LoaderKind) (loader.Installer, error) {
			return loader.New(kind, loaderDeps, settings)
		},
		NewDownloader: func(onEvent func(download.Event)) Downloader {
			return download.NewEngine(client, download.Options{
				MaxConcurrent: settings.MaxConcurrentDownloads,
				OnEvent:       onEvent,
				OnProgress:    onProgress,
				Logger:        logger.With("component", "download"),
			})
		},
		ModsDir:  dirs.Mods(),
		JavaArgs: launcher.HostJavaArgs,
		Icon:     launcher.Icon,
		Logger:   logger.With("component", "pipeline"),
	}
	if settings.RegisterLauncherProfile {
		deps.Registrar = launcher.NewWriter(dirs.LauncherProfiles(), logger.With("component", "launcher"))
	}

	logger.Debug("wired pipeline", "game_dir", dirs.Game, "cache_dir", dirs.Cache, "user_agent", client.UserAgent())
	return deps, dirs, nil
}
