package loader

import (
	"context"
	"fmt"
	"strings"

	"github.com/Starkiller645/modtool/internal/model"
)

// DefaultForgeMaven is the Maven repository Forge installers are served from.
const DefaultForgeMaven = "https://maven.minecraftforge.net"

// ForgeVersion is one entry of the Forge version index.
type ForgeVersion struct {
	Minecraft string `json:"minecraft"`
	Forge     string `json:"forge"`
}

// Forge installs Minecraft Forge. The build for each game version is
// pinned by a remote index.
type Forge struct {
	deps     Deps
	indexURL string
	maven    string
}

// NewForge creates a Forge installer reading builds from indexURL and
// installers from the maven repository base URL.
func NewForge(deps Deps, indexURL, maven string) *Forge {
	return &Forge{deps: deps, indexURL: indexURL, maven: strings.TrimRight(maven, "/")}
}

// Kind implements Installer.
func (f *Forge) Kind() model.LoaderKind {
	return model.LoaderForge
}

// Install implements Installer.
func (f *Forge) Install(ctx context.Context, gameVersion string) (Result, error) {
	if strings.TrimSpace(gameVersion) == "" {
		return Result{}, ErrNoGameVersion
	}

	build, err := f.ResolveBuild(ctx, gameVersion)
	if err != nil {
		return Result{}, err
	}

	versionID := ForgeVersionID(gameVersion, build)
	detect := func() (detection, error) {
		return f.detect(versionID)
	}

	install := func(ctx context.Context) error {
		jar, err := fetchInstaller(ctx, f.deps, ForgeInstallerURL(f.maven, gameVersion, build))
		if err != nil {
			return err
		}
		// The Forge installer is interactive; the operator completes it.
		return runInstaller(ctx, f.deps, "-jar", jar)
	}

	return ensure(ctx, f.deps, detect, install)
}

// ResolveBuild looks up the Forge build pinned to gameVersion. An index
// without a usable entry yields ErrNoForgeBuild so that no malformed
// installer URL is ever requested. Later entries win.
func (f *Forge) ResolveBuild(ctx context.Context, gameVersion string) (string, error) {
	var index []ForgeVersion
	if err := f.deps.Client.GetJSON(ctx, f.indexURL, &index); err != nil {
		return "", fmt.Errorf("%w: version index: %v", ErrFetch, err)
	}

	var build string
	for _, v := range index {
		if v.Minecraft == gameVersion {
			build = strings.TrimSpace(v.Forge)
		}
	}
	if build == "" {
		return "", fmt.Errorf("%w %q", ErrNoForgeBuild, gameVersion)
	}
	return build, nil
}

func (f *Forge) detect(versionID string) (detection, error) {
	names, err := installedVersions(f.deps.Dirs.Versions())
	if err != nil {
		return detection{}, err
	}

	for _, name := range names {
		if name == versionID {
			return detection{found: true, versionID: versionID, label: versionID}, nil
		}
	}
	return detection{}, nil
}

// ForgeVersionID is the installation directory name for a Forge build,
// e.g. "1.19.2-forge-43.2.0".
func ForgeVersionID(gameVersion, build string) string {
	return fmt.Sprintf("%s-forge-%s", gameVersion, build)
}

// ForgeInstallerURL returns the installer jar URL for a Forge build.
func ForgeInstallerURL(maven, gameVersion, build string) string {
	return fmt.Sprintf("%s/net/minecraftforge/forge/%[2]s-%[3]s/forge-%[2]s-%[3]s-installer.jar", maven, gameVersion, build)
}
