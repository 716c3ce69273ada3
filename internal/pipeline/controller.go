package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Starkiller645/modtool/internal/download"
	"github.com/Starkiller645/modtool/internal/java"
	"github.com/Starkiller645/modtool/internal/launcher"
	"github.com/Starkiller645/modtool/internal/loader"
	"github.com/Starkiller645/modtool/internal/model"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrInvalidTransition is returned when an operation is not allowed
	// in the current stage, or while the stage's work is still running.
	ErrInvalidTransition = errors.New("invalid pipeline transition")

	// ErrIncompleteDownloads is returned by Finish while some downloads
	// have not completed. It wraps ErrInvalidTransition.
	ErrIncompleteDownloads = fmt.Errorf("%w: downloads incomplete", ErrInvalidTransition)
)

// ManifestSource provides the profile catalog.
type ManifestSource interface {
	Fetch(ctx context.Context) (*model.Manifest, error)
}

// ManifestFunc adapts a function to ManifestSource.
type ManifestFunc func(ctx context.Context) (*model.Manifest, error)

// Fetch implements ManifestSource.
func (f ManifestFunc) Fetch(ctx context.Context) (*model.Manifest, error) {
	return f(ctx)
}

// RuntimeChecker reports whether the Java runtime is usable.
type RuntimeChecker interface {
	Check(ctx context.Context) java.Result
}

// Downloader runs a batch of mod downloads.
type Downloader interface {
	Run(ctx context.Context, mods []model.ModRef, destDir string) (*download.Summary, error)
}

// Registrar writes launcher profiles.
type Registrar interface {
	Register(e launcher.Entry) (bool, error)
}

// Deps are the collaborators of a Controller.
type Deps struct {
	Manifest ManifestSource
	Runtime  RuntimeChecker

	// Installers returns the installer for a loader kind.
	Installers func(kind model.LoaderKind) (loader.Installer, error)

	// NewDownloader builds the download engine for one batch. onEvent must
	// receive every task update.
	NewDownloader func(onEvent func(download.Event)) Downloader

	// ModsDir is the download destination.
	ModsDir string

	// Registrar may be nil to skip launcher registration.
	Registrar Registrar

	// JavaArgs and Icon fill in the launcher entry. Both are optional.
	JavaArgs func() string
	Icon     func(ctx context.Context) (string, error)

	Logger *slog.Logger
}

// Controller owns the pipeline state. All methods are safe for concurrent
// use; the long-running ones block until their stage work finishes and
// reject other transitions meanwhile.
type Controller struct {
	deps Deps
	log  *slog.Logger

	mu    sync.Mutex
	state Snapshot

	// entry counts Download stage entries; registeredEntry is the last
	// entry for which launcher registration ran.
	entry           int
	registeredEntry int

	events chan Snapshot
}

// New creates a Controller in the ManifestFetch stage.
func New(deps Deps) *Controller {
	log := deps.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Controller{
		deps:   deps,
		log:    log,
		state:  Snapshot{Stage: StageManifestFetch},
		events: make(chan Snapshot, 1),
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Events delivers a snapshot after every state change. Only the newest
// undelivered snapshot is kept; slow readers skip intermediate states.
func (c *Controller) Events() <-chan Snapshot {
	return c.events
}

func (c *Controller) snapshotLocked() Snapshot {
	s := c.state
	s.Tasks = make([]model.DownloadTask, len(c.state.Tasks))
	copy(s.Tasks, c.state.Tasks)
	return s
}

func (c *Controller) publishLocked() {
	s := c.snapshotLocked()
	for {
		select {
		case c.events <- s:
			return
		default:
		}
		select {
		case <-c.events:
		default:
		}
	}
}

// begin checks that the controller is idle in stage and marks it busy.
func (c *Controller) begin(stage Stage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.expectLocked(stage); err != nil {
		return err
	}
	c.state.Busy = true
	c.state.Err = nil
	c.publishLocked()
	return nil
}

func (c *Controller) expectLocked(stage Stage) error {
	if c.state.Stage != stage {
		return fmt.Errorf("%w: in %v, need %v", ErrInvalidTransition, c.state.Stage, stage)
	}
	if c.state.Busy {
		return fmt.Errorf("%w: %v is busy", ErrInvalidTransition, stage)
	}
	return nil
}

// transition moves from one idle stage to another.
func (c *Controller) transition(from, to Stage, fn func()) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.expectLocked(from); err != nil {
		return err
	}
	if fn != nil {
		fn()
	}
	c.state.Stage = to
	c.state.Err = nil
	c.log.Debug("stage changed", "from", from, "to", to)
	c.publishLocked()
	return nil
}

// FetchManifest loads the manifest and moves to Home. On failure the
// stage does not change.
func (c *Controller) FetchManifest(ctx context.Context) error {
	if err := c.begin(StageManifestFetch); err != nil {
		return err
	}

	m, err := c.deps.Manifest.Fetch(ctx)
	if err == nil && (m == nil || len(m.Profiles) == 0) {
		err = errors.New("manifest has no profiles")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Busy = false
	if err != nil {
		c.log.Error("manifest fetch failed", "error", err)
		c.state.Err = err
		c.publishLocked()
		return err
	}

	c.log.Info("manifest loaded", "profiles", len(m.Profiles))
	c.state.Manifest = m
	c.state.SelectedProfileID = m.Profiles[0].ID
	c.state.Stage = StageHome
	c.publishLocked()
	return nil
}

// Start leaves Home for the runtime check.
func (c *Controller) Start() error {
	return c.transition(StageHome, StageRuntimeCheck, nil)
}

// CheckRuntime runs the runtime check and moves to ProfileSelect when a
// runtime is present. Otherwise the stage stays and RuntimeMissing is set.
func (c *Controller) CheckRuntime(ctx context.Context) (java.Result, error) {
	if err := c.begin(StageRuntimeCheck); err != nil {
		return java.Result{}, err
	}

	res := c.deps.Runtime.Check(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Busy = false
	c.state.Runtime = res
	c.state.RuntimeMissing = !res.Present
	if res.Present {
		c.log.Info("java runtime found", "version", res.Version)
		c.state.Stage = StageProfileSelect
	} else {
		c.log.Warn("java runtime missing")
	}
	c.publishLocked()
	return res, nil
}

// SelectProfile records the chosen profile id. Nothing else changes; an
// id that is not in the manifest is logged and will resolve to the first
// profile.
func (c *Controller) SelectProfile(id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.expectLocked(StageProfileSelect); err != nil {
		return err
	}

	c.state.SelectedProfileID = id
	if _, ok := c.state.Profile(); !ok {
		c.log.Warn("selected profile not in manifest, first profile will be used", "profile_id", id)
	}
	c.publishLocked()
	return nil
}

// Continue moves from ProfileSelect to LoaderInstall.
func (c *Controller) Continue() error {
	return c.transition(StageProfileSelect, StageLoaderInstall, func() {
		p, ok := c.state.Profile()
		if !ok {
			c.log.Warn("profile lookup fell back to first profile",
				"requested_id", c.state.SelectedProfileID, "profile_id", p.ID)
		}
		c.state.LoaderFailed = false
		c.state.Loader = loader.Result{}
	})
}

// InstallLoader installs the selected profile's loader. On success the
// pipeline enters Download; otherwise the stage stays with LoaderFailed
// set so the operator can retry or go back.
func (c *Controller) InstallLoader(ctx context.Context) (loader.Result, error) {
	if err := c.begin(StageLoaderInstall); err != nil {
		return loader.Result{}, err
	}
	c.mu.Lock()
	profile := c.profile()
	c.mu.Unlock()

	var res loader.Result
	inst, err := c.deps.Installers(profile.Loader)
	if err == nil {
		c.log.Info("installing loader", "loader", profile.Loader, "game_version", profile.GameVersion)
		res, err = inst.Install(ctx, profile.GameVersion)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Busy = false
	c.state.Loader = res
	if err != nil || !res.Success {
		if err == nil {
			err = fmt.Errorf("%v loader not found after installation", profile.Loader)
		}
		c.log.Error("could not install loader", "loader", profile.Loader, "error", err)
		c.state.LoaderFailed = true
		c.state.Err = err
		c.publishLocked()
		return res, err
	}

	c.state.LoaderFailed = false
	c.enterDownloadLocked()
	c.publishLocked()
	return res, nil
}

// RetryLoader clears a failed installation so InstallLoader can run again.
func (c *Controller) RetryLoader() error {
	return c.transition(StageLoaderInstall, StageLoaderInstall, func() {
		c.state.LoaderFailed = false
		c.state.Loader = loader.Result{}
	})
}

// BackToProfiles leaves LoaderInstall for ProfileSelect, for operators
// who install the loader by hand.
func (c *Controller) BackToProfiles() error {
	return c.transition(StageLoaderInstall, StageProfileSelect, func() {
		c.state.LoaderFailed = false
	})
}

func (c *Controller) enterDownloadLocked() {
	c.entry++
	c.state.Stage = StageDownload
	c.state.Tasks = nil
	c.state.Remaining = 0
	c.state.Downloaded = false
	c.state.Registered = false
	c.state.RegistrationErr = nil
}

// Download fetches the selected profile's mods. The first call after
// entering the stage also registers the launcher profile, concurrently
// with the downloads. After failures it may be called again to rerun the
// batch; registration is not repeated.
func (c *Controller) Download(ctx context.Context) (*download.Summary, error) {
	if err := c.begin(StageDownload); err != nil {
		return nil, err
	}

	c.mu.Lock()
	profile := c.profile()
	loaderRes := c.state.Loader
	entry := c.entry
	register := c.registeredEntry != entry && c.deps.Registrar != nil
	if register {
		c.registeredEntry = entry
	}
	c.state.Tasks = nil
	c.state.Remaining = len(profile.Mods)
	c.state.Downloaded = false
	c.publishLocked()
	c.mu.Unlock()

	runID := uuid.NewString()
	log := c.log.With("run_id", runID, "profile_id", profile.ID)
	log.Info("downloading mods", "count", len(profile.Mods), "dest", c.deps.ModsDir)

	engine := c.deps.NewDownloader(c.onDownloadEvent)

	var summary *download.Summary
	var g errgroup.Group
	g.Go(func() error {
		var err error
		summary, err = engine.Run(ctx, profile.Mods, c.deps.ModsDir)
		return err
	})
	if register {
		g.Go(func() error {
			c.register(ctx, log, profile, loaderRes)
			return nil
		})
	}
	err := g.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Busy = false
	if err != nil {
		log.Error("download failed", "error", err)
		c.state.Err = err
		c.publishLocked()
		return nil, err
	}

	c.state.Tasks = summary.Tasks
	c.state.Remaining = summary.Total - summary.Complete
	c.state.Downloaded = true
	if !summary.Done() {
		c.state.Err = fmt.Errorf("%d of %d downloads failed", summary.Failed, summary.Total)
	}
	log.Info("downloads finished", "complete", summary.Complete, "failed", summary.Failed)
	c.publishLocked()
	return summary, nil
}

func (c *Controller) onDownloadEvent(ev download.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Remaining = ev.Remaining
	for i := range c.state.Tasks {
		if c.state.Tasks[i].ID == ev.Task.ID {
			c.state.Tasks[i] = ev.Task
			c.publishLocked()
			return
		}
	}
	c.state.Tasks = append(c.state.Tasks, ev.Task)
	c.publishLocked()
}

func (c *Controller) register(ctx context.Context, log *slog.Logger, profile model.Profile, res loader.Result) {
	entry := launcher.Entry{
		Loader:      profile.Loader,
		GameVersion: profile.GameVersion,
		ProfileID:   profile.ID,
		Name:        profile.Name,
		VersionID:   res.VersionID,
	}
	if entry.VersionID == "" {
		entry.VersionID = res.Label
	}
	if c.deps.JavaArgs != nil {
		entry.JavaArgs = c.deps.JavaArgs()
	}
	if c.deps.Icon != nil {
		icon, err := c.deps.Icon(ctx)
		if err != nil {
			log.Warn("could not prepare launcher icon", "error", err)
		}
		entry.Icon = icon
	}

	added, err := c.deps.Registrar.Register(entry)
	if err != nil {
		log.Error("launcher registration failed", "key", entry.Key(), "error", err)
	} else {
		log.Info("launcher registration done", "key", entry.Key(), "added", added)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Registered = true
	c.state.RegistrationErr = err
	c.publishLocked()
}

// Finish moves to Complete once every download has completed.
func (c *Controller) Finish() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.expectLocked(StageDownload); err != nil {
		return err
	}
	if !c.state.CanFinish() {
		return ErrIncompleteDownloads
	}

	c.state.Stage = StageComplete
	c.state.Err = nil
	c.log.Info("installation complete", "profile_id", c.state.SelectedProfileID)
	c.publishLocked()
	return nil
}

// Again returns from Complete to ProfileSelect for another run.
func (c *Controller) Again() error {
	return c.transition(StageComplete, StageProfileSelect, func() {
		c.state.Loader = loader.Result{}
		c.state.Tasks = nil
		c.state.Remaining = 0
		c.state.Downloaded = false
		c.state.Registered = false
		c.state.RegistrationErr = nil
	})
}

// profile resolves the selected profile. Callers hold mu.
func (c *Controller) profile() model.Profile {
	p, _ := c.state.Profile()
	return p
}
