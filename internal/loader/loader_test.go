package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Starkiller645/modtool/internal/config"
	"github.com/Starkiller645/modtool/internal/java"
	"github.com/Starkiller645/modtool/internal/model"
)

type fakeFetcher struct {
	index       []ForgeVersion
	indexErr    error
	downloadErr error
	indexCalls  int
	downloads   []string
}

func (f *fakeFetcher) GetJSON(ctx context.Context, url string, v any) error {
	f.indexCalls++
	if f.indexErr != nil {
		return f.indexErr
	}
	*(v.(*[]ForgeVersion)) = f.index
	return nil
}

func (f *fakeFetcher) DownloadFile(ctx context.Context, url, destPath string, onProgress func(written, total int64)) (int64, error) {
	f.downloads = append(f.downloads, url)
	if f.downloadErr != nil {
		return 0, f.downloadErr
	}
	return 4, os.WriteFile(destPath, []byte("jar!"), 0644)
}

// fakeRunner simulates an installer by creating createDir under versions/.
type fakeRunner struct {
	dirs      config.Dirs
	createDir string
	err       error
	calls     [][]string
}

func (r *fakeRunner) Run(ctx context.Context, name string, args ...string) (java.Output, error) {
	r.calls = append(r.calls, append([]string{name}, args...))
	if r.err != nil {
		return java.Output{}, r.err
	}
	if r.createDir != "" {
		if err := os.MkdirAll(filepath.Join(r.dirs.Versions(), r.createDir), 0755); err != nil {
			return java.Output{}, err
		}
	}
	return java.Output{Stdout: "done"}, nil
}

func testDirs(t *testing.T) config.Dirs {
	t.Helper()
	root := t.TempDir()
	dirs := config.Dirs{
		Cache:  filepath.Join(root, "cache"),
		Config: filepath.Join(root, "config"),
		Game:   filepath.Join(root, ".minecraft"),
	}
	if err := os.MkdirAll(dirs.Mods(), 0755); err != nil {
		t.Fatal(err)
	}
	return dirs
}

func addMods(t *testing.T, dirs config.Dirs, names ...string) {
	t.Helper()
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dirs.Mods(), n), []byte("old"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func addVersion(t *testing.T, dirs config.Dirs, name string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(dirs.Versions(), name), 0755); err != nil {
		t.Fatal(err)
	}
}

func modCount(t *testing.T, dirs config.Dirs) int {
	t.Helper()
	entries, err := os.ReadDir(dirs.Mods())
	if err != nil {
		t.Fatal(err)
	}
	return len(entries)
}

const fabricURL = "https://maven.example.com/fabric-installer-0.11.0.jar"

func TestFabric_AlreadyInstalled(t *testing.T) {
	dirs := testDirs(t)
	addVersion(t, dirs, "fabric-loader-0.14.22-1.20.1")
	addMods(t, dirs, "old-a.jar", "old-b.jar")

	fetcher := &fakeFetcher{}
	runner := &fakeRunner{dirs: dirs}
	f := NewFabric(Deps{Dirs: dirs, Client: fetcher, Runner: runner}, fabricURL)

	res, err := f.Install(context.Background(), "1.20.1")
	if err != nil {
		t.Fatalf("Install failed: %v", err)
	}

	if !res.Success || res.Installed {
		t.Errorf("Result = %+v, want success without install", res)
	}
	if res.Label != "Fabric 0.14.22 for Minecraft 1.20.1" {
		t.Errorf("Label = %q", res.Label)
	}
	if res.VersionID != "fabric-loader-0.14.22-1.20.1" {
		t.Errorf("VersionID = %q", res.VersionID)
	}
	if len(fetcher.downloads) != 0 || fetcher.indexCalls != 0 {
		t.Errorf("expected no network access, got downloads=%v index=%d", fetcher.downloads, fetcher.indexCalls)
	}
	if len(runner.calls) != 0 {
		t.Errorf("expected no process spawn, got %v", runner.calls)
	}
	if n := modCount(t, dirs); n != 0 {
		t.Errorf("mods directory has %d entries, want 0", n)
	}
}

func TestFabric_InstallsWhenMissing(t *testing.T) {
	dirs := testDirs(t)
	addMods(t, dirs, "old.jar")

	fetcher := &fakeFetcher{}
	runner := &fakeRunner{dirs: dirs, createDir: "fabric-loader-0.14.22-1.20.1"}
	f := NewFabric(Deps{Dirs: dirs, Client: fetcher, Runner: runner, JavaPath: "/usr/bin/java"}, fabricURL)

	res, err := f.Install(context.Background(), "1.20.1")
	if err != nil {
		t.Fatalf("Install failed: %v", err)
	}
	if !res.Success || !res.Installed {
		t.Errorf("Result = %+v, want installed success", res)
	}
	if res.Label != "Fabric 0.14.22 for Minecraft 1.20.1" {
		t.Errorf("Label = %q", res.Label)
	}

	if len(fetcher.downloads) != 1 || fetcher.downloads[0] != fabricURL {
		t.Errorf("downloads = %v, want [%s]", fetcher.downloads, fabricURL)
	}
	jar := filepath.Join(dirs.Cache, "fabric-installer-0.11.0.jar")
	if _, err := os.Stat(jar); err != nil {
		t.Errorf("installer not cached at %s: %v", jar, err)
	}

	want := []string{"/usr/bin/java", "-jar", jar, "client", "-mcversion", "1.20.1", "-dir", dirs.Game}
	if len(runner.calls) != 1 {
		t.Fatalf("calls = %v, want 1", runner.calls)
	}
	for i, arg := range want {
		if runner.calls[0][i] != arg {
			t.Errorf("arg[%d] = %q, want %q", i, runner.calls[0][i], arg)
		}
	}
	if n := modCount(t, dirs); n != 0 {
		t.Errorf("mods directory has %d entries, want 0", n)
	}
}

func TestFabric_NotDetectedAfterInstall(t *testing.T) {
	dirs := testDirs(t)
	addMods(t, dirs, "keep.jar")

	f := NewFabric(Deps{Dirs: dirs, Client: &fakeFetcher{}, Runner: &fakeRunner{dirs: dirs}}, fabricURL)
	res, err := f.Install(context.Background(), "1.20.1")
	if err != nil {
		t.Fatalf("Install error = %v, want nil", err)
	}
	if res.Success {
		t.Error("Success = true, want false when nothing was installed")
	}
	if n := modCount(t, dirs); n != 1 {
		t.Errorf("mods directory should be untouched on failure, has %d entries", n)
	}
}

func TestFabric_Errors(t *testing.T) {
	t.Run("fetch", func(t *testing.T) {
		dirs := testDirs(t)
		runner := &fakeRunner{dirs: dirs}
		f := NewFabric(Deps{Dirs: dirs, Client: &fakeFetcher{downloadErr: errors.New("timeout")}, Runner: runner}, fabricURL)

		_, err := f.Install(context.Background(), "1.20.1")
		if !errors.Is(err, ErrFetch) {
			t.Errorf("error = %v, want ErrFetch", err)
		}
		if len(runner.calls) != 0 {
			t.Errorf("installer should not run after a failed fetch")
		}
		if _, err := os.Stat(filepath.Join(dirs.Cache, "fabric-installer-0.11.0.jar.part")); !os.IsNotExist(err) {
			t.Errorf("partial download should be removed")
		}
	})

	t.Run("process", func(t *testing.T) {
		dirs := testDirs(t)
		runner := &fakeRunner{dirs: dirs, err: errors.New("exec: \"java\": executable file not found")}
		f := NewFabric(Deps{Dirs: dirs, Client: &fakeFetcher{}, Runner: runner}, fabricURL)

		_, err := f.Install(context.Background(), "1.20.1")
		if !errors.Is(err, ErrProcess) {
			t.Errorf("error = %v, want ErrProcess", err)
		}
	})
}

func TestInstall_EmptyGameVersion(t *testing.T) {
	for _, kind := range []model.LoaderKind{model.LoaderFabric, model.LoaderForge} {
		t.Run(kind.String(), func(t *testing.T) {
			dirs := testDirs(t)
			addVersion(t, dirs, "fabric-loader-0.14.22-1.20.1")
			addMods(t, dirs, "keep.jar")

			fetcher := &fakeFetcher{}
			runner := &fakeRunner{dirs: dirs}
			inst, err := New(kind, Deps{Dirs: dirs, Client: fetcher, Runner: runner}, config.DefaultSettings())
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}

			res, err := inst.Install(context.Background(), " ")
			if !errors.Is(err, ErrNoGameVersion) {
				t.Errorf("error = %v, want ErrNoGameVersion", err)
			}
			if res.Success {
				t.Error("Success = true for an empty game version")
			}
			if n := modCount(t, dirs); n != 1 {
				t.Errorf("mods directory has %d entries, want 1", n)
			}
			if fetcher.indexCalls != 0 || len(runner.calls) != 0 {
				t.Errorf("expected no index fetch or spawn, got index=%d calls=%v", fetcher.indexCalls, runner.calls)
			}
		})
	}
}

func TestFabricLoaderVersion(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"fabric-loader-0.14.22-1.20.1", "0.14.22"},
		{"fabric-loader", "unknown"},
		{"1.20.1-fabric-loader", "loader"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fabricLoaderVersion(tt.name); got != tt.want {
				t.Errorf("fabricLoaderVersion(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestForge_AlreadyInstalled(t *testing.T) {
	dirs := testDirs(t)
	addVersion(t, dirs, "1.19.2-forge-43.2.0")
	addMods(t, dirs, "old.jar")

	fetcher := &fakeFetcher{index: []ForgeVersion{{"1.18.2", "40.2.0"}, {"1.19.2", "43.2.0"}}}
	runner := &fakeRunner{dirs: dirs}
	f := NewForge(Deps{Dirs: dirs, Client: fetcher, Runner: runner}, "https://example.com/forge_versions.json", DefaultForgeMaven)

	res, err := f.Install(context.Background(), "1.19.2")
	if err != nil {
		t.Fatalf("Install failed: %v", err)
	}
	if !res.Success || res.Label != "1.19.2-forge-43.2.0" {
		t.Errorf("Result = %+v", res)
	}
	if len(fetcher.downloads) != 0 {
		t.Errorf("expected no installer download, got %v", fetcher.downloads)
	}
	if len(runner.calls) != 0 {
		t.Errorf("expected no process spawn, got %v", runner.calls)
	}
	if n := modCount(t, dirs); n != 0 {
		t.Errorf("mods directory has %d entries, want 0", n)
	}
}

func TestForge_InstallsWhenMissing(t *testing.T) {
	dirs := testDirs(t)
	// A different build for the same game version is not a match.
	addVersion(t, dirs, "1.19.2-forge-43.1.0")

	fetcher := &fakeFetcher{index: []ForgeVersion{{"1.19.2", "43.2.0"}}}
	runner := &fakeRunner{dirs: dirs, createDir: "1.19.2-forge-43.2.0"}
	f := NewForge(Deps{Dirs: dirs, Client: fetcher, Runner: runner}, "https://example.com/forge_versions.json", "https://maven.example.com/")

	res, err := f.Install(context.Background(), "1.19.2")
	if err != nil {
		t.Fatalf("Install failed: %v", err)
	}
	if !res.Success || !res.Installed {
		t.Errorf("Result = %+v", res)
	}

	wantURL := "https://maven.example.com/net/minecraftforge/forge/1.19.2-43.2.0/forge-1.19.2-43.2.0-installer.jar"
	if len(fetcher.downloads) != 1 || fetcher.downloads[0] != wantURL {
		t.Errorf("downloads = %v, want [%s]", fetcher.downloads, wantURL)
	}
	jar := filepath.Join(dirs.Cache, "forge-1.19.2-43.2.0-installer.jar")
	if len(runner.calls) != 1 || len(runner.calls[0]) != 3 || runner.calls[0][1] != "-jar" || runner.calls[0][2] != jar {
		t.Errorf("calls = %v, want [java -jar %s]", runner.calls, jar)
	}
}

func TestForge_NoBuildForVersion(t *testing.T) {
	tests := []struct {
		name  string
		index []ForgeVersion
	}{
		{"missing entry", []ForgeVersion{{"1.18.2", "40.2.0"}}},
		{"empty build", []ForgeVersion{{"1.20.1", ""}}},
		{"empty index", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dirs := testDirs(t)
			fetcher := &fakeFetcher{index: tt.index}
			runner := &fakeRunner{dirs: dirs}
			f := NewForge(Deps{Dirs: dirs, Client: fetcher, Runner: runner}, "https://example.com/forge_versions.json", DefaultForgeMaven)

			_, err := f.Install(context.Background(), "1.20.1")
			if !errors.Is(err, ErrNoForgeBuild) {
				t.Errorf("error = %v, want ErrNoForgeBuild", err)
			}
			if len(fetcher.downloads) != 0 || len(runner.calls) != 0 {
				t.Errorf("no download or spawn expected, got %v / %v", fetcher.downloads, runner.calls)
			}
		})
	}
}

func TestForge_IndexFailure(t *testing.T) {
	dirs := testDirs(t)
	f := NewForge(Deps{Dirs: dirs, Client: &fakeFetcher{indexErr: errors.New("502")}, Runner: &fakeRunner{dirs: dirs}}, "https://example.com/forge_versions.json", DefaultForgeMaven)

	_, err := f.Install(context.Background(), "1.19.2")
	if !errors.Is(err, ErrFetch) {
		t.Errorf("error = %v, want ErrFetch", err)
	}
}

func TestNew(t *testing.T) {
	settings := config.DefaultSettings()
	deps := Deps{Dirs: testDirs(t)}

	for _, kind := range []model.LoaderKind{model.LoaderFabric, model.LoaderForge} {
		inst, err := New(kind, deps, settings)
		if err != nil {
			t.Fatalf("New(%v) failed: %v", kind, err)
		}
		if inst.Kind() != kind {
			t.Errorf("Kind() = %v, want %v", inst.Kind(), kind)
		}
	}

	if _, err := New(model.LoaderKind(9), deps, settings); err == nil {
		t.Error("expected error for unknown loader kind")
	}
}
