// Package launcher registers installed profiles with the game launcher
// by editing its launcher_profiles.json.
//
// Registration is idempotent: the entry key is derived from the loader,
// the game version and the manifest profile id, and an existing entry
// with that key is never replaced.
//
//	w := launcher.NewWriter(dirs.LauncherProfiles(), logger)
//	added, err := w.Register(launcher.Entry{
//	    Loader:      model.LoaderFabric,
//	    GameVersion: "1.20.1",
//	    ProfileID:   0,
//	    Name:        "Survival",
//	    VersionID:   "fabric-loader-0.14.22-1.20.1",
//	    JavaArgs:    launcher.HostJavaArgs(),
//	})
package launcher
