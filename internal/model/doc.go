// Package model defines the core data structures used throughout
// modtool.
//
// # Manifest
//
// Manifest is the catalog of installable profiles fetched from the
// remote manifest service. It is immutable once loaded:
//
//	profile, ok := manifest.Lookup(id)
//	if !ok {
//	    // id did not match, profile is manifest.Profiles[0]
//	}
//
// # Profile
//
// Profile binds a game version, a mod loader and an ordered list of mods:
//
//	fmt.Println(profile.Name, profile.Loader, profile.GameVersion)
//	fmt.Println(profile.Summary()) // "Sodium and 4 other mods"
//
// # DownloadTask
//
// DownloadTask is the runtime tracking record for one mod being fetched.
// Tasks are created by the download engine when a batch starts and are
// only ever observed from outside as copies.
package model
