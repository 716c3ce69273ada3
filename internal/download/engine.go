package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	ioutils "github.com/Starkiller645/modtool/internal/io"
	"github.com/Starkiller645/modtool/internal/model"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// DefaultMaxConcurrent is the number of simultaneous transfers allowed
// when Options.MaxConcurrent is not set.
const DefaultMaxConcurrent = 4

// ErrFileNameCollision is reported for a task whose destination file
// name is already claimed by an earlier task of the same batch.
var ErrFileNameCollision = errors.New("file name already used by another mod")

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent is an operator-facing message about the batch.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Event reports a change to one task. Task is a copy; Remaining is the
// number of tasks not yet Complete.
type Event struct {
	Task      model.DownloadTask
	Remaining int
	Complete  int
	Total     int
}

// Fetcher streams a URL to a file.
type Fetcher interface {
	DownloadFile(ctx context.Context, url, destPath string, onProgress func(written, total int64)) (int64, error)
}

// Options configure an Engine.
type Options struct {
	// MaxConcurrent caps simultaneous network transfers. Zero means
	// DefaultMaxConcurrent.
	MaxConcurrent int

	// OnEvent receives task updates. Calls are serialized and made while
	// the engine holds its lock, so the callback must not block.
	OnEvent func(Event)

	// OnProgress receives operator messages.
	OnProgress func(ProgressEvent)

	Logger *slog.Logger
}

// Summary is the outcome of a batch.
type Summary struct {
	Tasks    []model.DownloadTask
	Complete int
	Failed   int
	Total    int
}

// Done reports whether every task completed.
func (s *Summary) Done() bool {
	return s.Complete == s.Total
}

// Engine downloads batches of mods with a global cap on concurrent
// transfers.
type Engine struct {
	client Fetcher
	opts   Options
	log    *slog.Logger

	receivedBytes   int64
	totalBytes      int64
	downloadedFiles int32
	totalFiles      int32
}

// NewEngine creates an Engine that downloads through client.
func NewEngine(client Fetcher, opts Options) *Engine {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = DefaultMaxConcurrent
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Engine{client: client, opts: opts, log: log}
}

// GetProgress returns byte and file counters of the current batch.
// totalBytes only counts tasks whose size is known.
func (e *Engine) GetProgress() (received, total int64, filesReceived, filesTotal int32) {
	return atomic.LoadInt64(&e.receivedBytes), atomic.LoadInt64(&e.totalBytes),
		atomic.LoadInt32(&e.downloadedFiles), atomic.LoadInt32(&e.totalFiles)
}

// batch holds the task table of one Run. mu guards tasks and serializes
// OnEvent.
type batch struct {
	mu       sync.Mutex
	tasks    []model.DownloadTask
	complete int
	failed   int
	onEvent  func(Event)
}

// update applies fn to task i and publishes the result.
func (b *batch) update(i int, fn func(t *model.DownloadTask)) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := &b.tasks[i]
	prev := t.State
	fn(t)
	if prev != t.State {
		switch t.State {
		case model.TaskComplete:
			b.complete++
		case model.TaskFailed:
			b.failed++
		}
	}
	b.publish(i)
}

func (b *batch) publish(i int) {
	if b.onEvent == nil {
		return
	}
	b.onEvent(Event{
		Task:      b.tasks[i],
		Remaining: len(b.tasks) - b.complete,
		Complete:  b.complete,
		Total:     len(b.tasks),
	})
}

func (b *batch) summary() *Summary {
	b.mu.Lock()
	defer b.mu.Unlock()

	tasks := make([]model.DownloadTask, len(b.tasks))
	copy(tasks, b.tasks)
	return &Summary{Tasks: tasks, Complete: b.complete, Failed: b.failed, Total: len(tasks)}
}

// Run downloads every mod into destDir and waits for all of them. A
// failed task does not stop the others; the returned error is reserved
// for problems with destDir itself.
func (e *Engine) Run(ctx context.Context, mods []model.ModRef, destDir string) (*Summary, error) {
	if err := ioutils.EnsureDir(destDir); err != nil {
		return nil, fmt.Errorf("creating download directory: %w", err)
	}

	b := &batch{tasks: make([]model.DownloadTask, len(mods)), onEvent: e.opts.OnEvent}
	rejected := make([]error, len(mods))
	// Keyed case-insensitively: Windows and macOS filesystems fold case.
	seen := make(map[string]bool, len(mods))
	for i, mod := range mods {
		name, err := ioutils.FileNameFromURL(mod.URL)
		key := strings.ToLower(name)
		if err == nil && seen[key] {
			err = fmt.Errorf("%w: %s", ErrFileNameCollision, name)
		}
		if err == nil {
			seen[key] = true
		}
		b.tasks[i] = model.NewDownloadTask(mod, name)
		rejected[i] = err
	}

	atomic.StoreInt64(&e.receivedBytes, 0)
	atomic.StoreInt64(&e.totalBytes, 0)
	atomic.StoreInt32(&e.downloadedFiles, 0)
	atomic.StoreInt32(&e.totalFiles, int32(len(mods)))

	b.mu.Lock()
	for i := range b.tasks {
		b.publish(i)
	}
	b.mu.Unlock()

	e.log.Info("starting downloads", "count", len(mods), "dest", destDir, "max_concurrent", e.opts.MaxConcurrent)

	gate := semaphore.NewWeighted(int64(e.opts.MaxConcurrent))
	var g errgroup.Group
	for i := range b.tasks {
		if rejected[i] != nil {
			err := rejected[i]
			b.update(i, func(t *model.DownloadTask) {
				t.State = model.TaskFailed
				t.Err = err
			})
			e.progress(ProgressEvent{Message: fmt.Sprintf("Skipping %s: %v", mods[i].Name, err), Level: LevelError})
			continue
		}

		g.Go(func() error {
			e.download(ctx, b, i, gate, destDir)
			return nil
		})
	}
	g.Wait()

	s := b.summary()
	if s.Done() {
		e.progress(ProgressEvent{Message: fmt.Sprintf("Downloaded %d mods", s.Total), Level: LevelSuccess})
	} else {
		e.progress(ProgressEvent{Message: fmt.Sprintf("%d of %d mods failed to download", s.Failed, s.Total), Level: LevelWarning})
	}
	e.log.Info("downloads finished", "complete", s.Complete, "failed", s.Failed, "total", s.Total)
	return s, nil
}

func (e *Engine) download(ctx context.Context, b *batch, i int, gate *semaphore.Weighted, destDir string) {
	b.mu.Lock()
	task := b.tasks[i]
	b.mu.Unlock()

	fail := func(err error) {
		b.update(i, func(t *model.DownloadTask) {
			t.State = model.TaskFailed
			t.Err = err
		})
		e.log.Warn("download failed", "mod", task.Mod.Name, "url", task.Mod.URL, "error", err)
		e.progress(ProgressEvent{Message: fmt.Sprintf("Error downloading %s: %v", task.Mod.Name, err), Level: LevelError})
	}

	if err := gate.Acquire(ctx, 1); err != nil {
		fail(err)
		return
	}

	b.update(i, func(t *model.DownloadTask) {
		t.State = model.TaskInProgress
	})

	dest := filepath.Join(destDir, task.FileName)
	var last int64
	created := false
	n, err := e.client.DownloadFile(ctx, task.Mod.URL, dest, func(written, total int64) {
		created = true
		if written == 0 && total > 0 {
			atomic.AddInt64(&e.totalBytes, total)
		}
		atomic.AddInt64(&e.receivedBytes, written-last)
		last = written
		b.update(i, func(t *model.DownloadTask) {
			t.BytesTotal = total
			if written > t.BytesDownloaded {
				t.BytesDownloaded = written
			}
		})
	})

	// Tasks are marked finished before their slot is released so that no
	// more than MaxConcurrent are ever observed InProgress.
	if err != nil {
		if created {
			os.Remove(dest)
		}
		fail(err)
		gate.Release(1)
		return
	}

	b.update(i, func(t *model.DownloadTask) {
		t.BytesDownloaded = n
		if t.BytesTotal == model.UnknownTotal {
			t.BytesTotal = n
		}
		t.State = model.TaskComplete
	})
	gate.Release(1)

	atomic.AddInt32(&e.downloadedFiles, 1)
	e.progress(ProgressEvent{Message: fmt.Sprintf("Downloaded: %s", task.FileName), Level: LevelVerbose})
}

func (e *Engine) progress(event ProgressEvent) {
	if e.opts.OnProgress != nil {
		e.opts.OnProgress(event)
	}
}
