// Package ioutils provides file system and image processing utilities.
//
// This package contains functions for:
//   - Directory creation
//   - Clearing the mods directory before a loader install
//   - Deriving download file names from URLs
//   - Filename sanitization for cross-platform compatibility
//   - Launcher icon resizing and data URI encoding
//
// # File Operations
//
//	// Ensure directory exists
//	err := ioutils.EnsureDir("/path/to/new/directory")
//
//	// Remove every file in the mods directory, skipping locked ones
//	removed, skipped, err := ioutils.ClearDir(modsDir)
//
//	// Destination file name for a download
//	name, err := ioutils.FileNameFromURL("https://cdn.example.com/mods/sodium.jar")
//
// # Image Processing
//
// The ImageService handles launcher icons:
//
//	svc := ioutils.NewImageService()
//	uri, _ := svc.DataURI(ctx, iconPNG, 128)
package ioutils
