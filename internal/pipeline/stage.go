package pipeline

import (
	"fmt"
	"sort"

	"github.com/Starkiller645/modtool/internal/java"
	"github.com/Starkiller645/modtool/internal/loader"
	"github.com/Starkiller645/modtool/internal/model"
)

// Stage is a step of the installation pipeline.
type Stage int

const (
	StageManifestFetch Stage = iota
	StageHome
	StageRuntimeCheck
	StageProfileSelect
	StageLoaderInstall
	StageDownload
	StageComplete
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageManifestFetch:
		return "ManifestFetch"
	case StageHome:
		return "Home"
	case StageRuntimeCheck:
		return "RuntimeCheck"
	case StageProfileSelect:
		return "ProfileSelect"
	case StageLoaderInstall:
		return "LoaderInstall"
	case StageDownload:
		return "Download"
	case StageComplete:
		return "Complete"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// Snapshot is a copy of the controller state. It is safe to keep and read
// from any goroutine.
type Snapshot struct {
	Stage Stage

	// Busy is true while the stage's work is running.
	Busy bool

	// Manifest is shared between snapshots and must not be modified.
	Manifest *model.Manifest

	SelectedProfileID int

	// Runtime is the last runtime check result.
	Runtime        java.Result
	RuntimeMissing bool

	// Loader is the last loader installation result.
	Loader       loader.Result
	LoaderFailed bool

	// Tasks are the download tasks of the current Download stage entry, in
	// manifest order.
	Tasks      []model.DownloadTask
	Remaining  int
	Downloaded bool

	// Registered is true once the launcher profile write has finished for
	// the current Download stage entry, whether or not it added an entry.
	Registered      bool
	RegistrationErr error

	// Err is the failure of the last operation, if any.
	Err error
}

// Profile resolves the selected profile. The second result is false when
// the selected id is not in the manifest and the first profile was
// substituted, or when there is no manifest yet.
func (s Snapshot) Profile() (model.Profile, bool) {
	if s.Manifest == nil || len(s.Manifest.Profiles) == 0 {
		return model.Profile{}, false
	}
	return s.Manifest.Lookup(s.SelectedProfileID)
}

// Failed returns the number of failed download tasks.
func (s Snapshot) Failed() int {
	n := 0
	for _, t := range s.Tasks {
		if t.State == model.TaskFailed {
			n++
		}
	}
	return n
}

// CanFinish reports whether Finish would succeed.
func (s Snapshot) CanFinish() bool {
	return s.Stage == StageDownload && !s.Busy && s.Downloaded && s.Remaining == 0
}

// SortedTasks returns the tasks ordered for display: transfers in
// progress first, then waiting, failed and finished ones.
func (s Snapshot) SortedTasks() []model.DownloadTask {
	rank := map[model.TaskState]int{
		model.TaskInProgress: 0,
		model.TaskPending:    1,
		model.TaskFailed:     2,
		model.TaskComplete:   3,
	}

	tasks := make([]model.DownloadTask, len(s.Tasks))
	copy(tasks, s.Tasks)
	sort.SliceStable(tasks, func(i, j int) bool {
		return rank[tasks[i].State] < rank[tasks[j].State]
	})
	return tasks
}
