package loader

import (
	"context"
	"fmt"
	"strings"

	"github.com/Starkiller645/modtool/internal/model"
)

// Fabric installs the Fabric loader with the official command line
// installer.
type Fabric struct {
	deps         Deps
	installerURL string
}

// NewFabric creates a Fabric installer that fetches the installer jar
// from installerURL.
func NewFabric(deps Deps, installerURL string) *Fabric {
	return &Fabric{deps: deps, installerURL: installerURL}
}

// Kind implements Installer.
func (f *Fabric) Kind() model.LoaderKind {
	return model.LoaderFabric
}

// Install implements Installer.
func (f *Fabric) Install(ctx context.Context, gameVersion string) (Result, error) {
	if strings.TrimSpace(gameVersion) == "" {
		return Result{}, ErrNoGameVersion
	}

	detect := func() (detection, error) {
		return f.detect(gameVersion)
	}

	install := func(ctx context.Context) error {
		jar, err := fetchInstaller(ctx, f.deps, f.installerURL)
		if err != nil {
			return err
		}
		return runInstaller(ctx, f.deps, fabricArgs(jar, gameVersion, f.deps.Dirs.Game)...)
	}

	return ensure(ctx, f.deps, detect, install)
}

func (f *Fabric) detect(gameVersion string) (detection, error) {
	names, err := installedVersions(f.deps.Dirs.Versions())
	if err != nil {
		return detection{}, err
	}

	var d detection
	for _, name := range names {
		if !strings.Contains(name, "fabric-loader") || !strings.Contains(name, gameVersion) {
			continue
		}
		d = detection{
			found:     true,
			versionID: name,
			label:     fmt.Sprintf("Fabric %s for Minecraft %s", fabricLoaderVersion(name), gameVersion),
		}
	}
	return d, nil
}

// fabricLoaderVersion extracts the loader version from an installation
// directory name such as "fabric-loader-0.14.22-1.20.1".
func fabricLoaderVersion(dirName string) string {
	fields := strings.Split(dirName, "-")
	if len(fields) > 2 {
		return fields[2]
	}
	return "unknown"
}

func fabricArgs(jar, gameVersion, gameDir string) []string {
	return []string{"-jar", jar, "client", "-mcversion", gameVersion, "-dir", gameDir}
}
