package main

import (
	"context"
	"sync"

	"github.com/Starkiller645/modtool/internal/download"
	"github.com/Starkiller645/modtool/internal/model"
	"github.com/fatih/color"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// runDownloads runs the Download stage with one progress bar per mod.
func (r *runner) runDownloads(ctx context.Context) (*download.Summary, error) {
	r.progress = mpb.NewWithContext(ctx, mpb.WithAutoRefresh(), mpb.WithOutput(color.Output))
	bars := newBarSet(r.progress)

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case snap := <-r.ctrl.Events():
				bars.update(snap.Tasks)
			case <-done:
				return
			}
		}
	}()

	summary, err := r.ctrl.Download(ctx)
	close(done)
	wg.Wait()

	if summary != nil {
		bars.update(summary.Tasks)
	}
	bars.abortUnfinished()
	r.progress.Wait()
	r.progress = nil
	return summary, err
}

// barSet maps download tasks to progress bars.
type barSet struct {
	p    *mpb.Progress
	bars map[string]*mpb.Bar
}

func newBarSet(p *mpb.Progress) *barSet {
	return &barSet{p: p, bars: make(map[string]*mpb.Bar)}
}

func (s *barSet) update(tasks []model.DownloadTask) {
	for _, t := range tasks {
		bar, ok := s.bars[t.ID]
		if !ok {
			if t.State == model.TaskPending {
				continue
			}
			bar = s.add(t)
			s.bars[t.ID] = bar
		}
		if bar.Completed() || bar.Aborted() {
			continue
		}

		switch t.State {
		case model.TaskInProgress:
			if t.BytesTotal > 0 {
				bar.SetTotal(t.BytesTotal, false)
			}
			bar.SetCurrent(t.BytesDownloaded)
		case model.TaskComplete:
			bar.SetCurrent(t.BytesDownloaded)
			bar.SetTotal(-1, true)
		case model.TaskFailed:
			bar.Abort(false)
		}
	}
}

func (s *barSet) add(t model.DownloadTask) *mpb.Bar {
	name := t.Mod.Name
	if name == "" {
		name = t.FileName
	}
	total := t.BytesTotal
	if total < 0 {
		total = t.Mod.Size
	}

	return s.p.AddBar(total,
		mpb.PrependDecorators(
			decor.Name(name, decor.WCSyncSpaceR),
			decor.CountersKibiByte("% .1f / % .1f", decor.WCSyncSpace),
		),
		mpb.AppendDecorators(
			decor.OnAbort(decor.OnComplete(decor.Percentage(decor.WC{W: 5}), "done"), "failed"),
		),
	)
}

// abortUnfinished stops bars whose final state was never seen so that
// Wait returns.
func (s *barSet) abortUnfinished() {
	for _, bar := range s.bars {
		if !bar.Completed() && !bar.Aborted() {
			bar.Abort(false)
		}
	}
}
