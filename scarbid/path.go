package scarbid

import "path/filepath"

// filepathToSlash cleans an OS path and renders it with forward slashes so
// that SourceId URLs are stable across platforms.
func filepathToSlash(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}
