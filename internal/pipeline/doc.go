// Package pipeline drives an installation through its stages:
//
//	ManifestFetch → Home → RuntimeCheck → ProfileSelect → LoaderInstall → Download → Complete
//
// The Controller owns all pipeline state behind a mutex. Front ends issue
// transition requests through its methods and render the Snapshot values
// it hands out, either by calling Snapshot or by reading Events. A
// transition that does not apply to the current stage returns
// ErrInvalidTransition and leaves the state unchanged.
//
// Only the Controller decides whether a failure halts the pipeline or
// leaves the stage open for a retry:
//   - a manifest fetch failure keeps the pipeline in ManifestFetch
//   - a missing runtime keeps it in RuntimeCheck
//   - a failed loader install offers RetryLoader and BackToProfiles
//   - failed downloads block Finish until a rerun of Download succeeds
package pipeline
