// Package download fetches the mods of a profile into the game's mods
// directory.
//
// # Engine
//
// The Engine starts one goroutine per mod. A weighted semaphore caps the
// number of simultaneous transfers (four by default); a task holds its
// slot only while its response body is being streamed.
//
//	engine := download.NewEngine(client, download.Options{
//	    OnEvent: func(ev download.Event) {
//	        fmt.Printf("%s %v (%d remaining)\n", ev.Task.FileName, ev.Task.State, ev.Remaining)
//	    },
//	})
//
//	summary, err := engine.Run(ctx, profile.Mods, dirs.Mods())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !summary.Done() {
//	    fmt.Printf("%d downloads failed\n", summary.Failed)
//	}
//
// # Failures
//
// A failed task does not stop the batch. Files are named after the last
// path segment of the mod URL; two mods mapping to the same name fail the
// later one with ErrFileNameCollision rather than overwriting. Partial
// files of failed transfers are removed. There is no automatic retry.
//
// # Progress
//
// Task updates arrive as Event values through Options.OnEvent, and
// operator messages as ProgressEvent values through Options.OnProgress:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	}
//
// GetProgress exposes aggregate byte and file counters for polling.
package download
