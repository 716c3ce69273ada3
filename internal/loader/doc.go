// Package loader installs the Fabric and Forge mod loaders.
//
// Both installers follow the same steps:
//
//  1. Detect an existing installation in the game's versions directory
//  2. If found, clear the mods directory and report success
//  3. Otherwise fetch the installer jar into the cache and run it
//  4. Detect again; success clears the mods directory, a miss is a failure
//
// Clearing the mods directory is intentional: every installation starts
// from an empty mod set.
//
// # Usage
//
//	inst, err := loader.New(profile.Loader, deps, settings)
//	res, err := inst.Install(ctx, profile.GameVersion)
//	if err != nil {
//	    // errors.Is(err, loader.ErrFetch), loader.ErrProcess, loader.ErrNoForgeBuild
//	}
//	if !res.Success {
//	    // installer ran but left nothing detectable
//	}
package loader
