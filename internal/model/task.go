package model

import (
	"fmt"

	"github.com/google/uuid"
)

// TaskState is the lifecycle state of a DownloadTask.
type TaskState int

const (
	TaskPending TaskState = iota
	TaskInProgress
	TaskComplete
	TaskFailed
)

// String returns the state name.
func (s TaskState) String() string {
	switch s {
	case TaskPending:
		return "Pending"
	case TaskInProgress:
		return "InProgress"
	case TaskComplete:
		return "Complete"
	case TaskFailed:
		return "Failed"
	default:
		return fmt.Sprintf("TaskState(%d)", int(s))
	}
}

// IsFinished returns true for Complete and Failed.
func (s TaskState) IsFinished() bool {
	return s == TaskComplete || s == TaskFailed
}

// UnknownTotal marks a DownloadTask whose response carried no content length.
const UnknownTotal int64 = -1

// DownloadTask tracks one mod download.
type DownloadTask struct {
	// ID uniquely identifies the task within a run.
	ID string

	// Mod is the manifest entry being fetched.
	Mod ModRef

	// FileName is the destination file name inside the target directory.
	FileName string

	// BytesDownloaded is the number of bytes written so far. It never decreases.
	BytesDownloaded int64

	// BytesTotal is the content length announced by the server, or UnknownTotal.
	BytesTotal int64

	State TaskState

	// Err holds the failure reason when State is TaskFailed.
	Err error
}

// NewDownloadTask creates a pending task for mod.
func NewDownloadTask(mod ModRef, fileName string) DownloadTask {
	return DownloadTask{
		ID:         uuid.New().String(),
		Mod:        mod,
		FileName:   fileName,
		BytesTotal: UnknownTotal,
		State:      TaskPending,
	}
}

// Percent returns the completion percentage in [0, 100], or -1 when the
// total size is unknown.
func (t DownloadTask) Percent() float64 {
	if t.BytesTotal <= 0 {
		if t.BytesTotal == 0 && t.State == TaskComplete {
			return 100
		}
		return -1
	}
	p := float64(t.BytesDownloaded) / float64(t.BytesTotal) * 100
	if p > 100 {
		p = 100
	}
	return p
}
