// Package ioutils provides file system and image processing utilities.
//
// This package contains functions for:
//   - File writing and directory creation
//   - Filename sanitization for cross-platform compatibility
//   - Station artwork resizing and format conversion
//
// # File Operations
//
//	// Write data to file
//	err := ioutils.WriteFile(ctx, "/shows/shows.m3u", content)
//
//	// Ensure directory exists
//	err := ioutils.EnsureDir("/shows/tmp/2024-01-08")
//
// # Filename Sanitization
//
// Use SanitizeFileName to strip invalid characters from operator input
// before it lands in a path:
//
//	safe := ioutils.SanitizeFileName("KFJC/2") // Returns "KFJC_2"
//
// # Station Artwork
//
// The ImageService prepares cover art for ID3 embedding:
//
//	svc := ioutils.NewImageService()
//	art, err := svc.LoadStationArt(ctx, artPath, 1000, true)
package ioutils
