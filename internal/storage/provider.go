// Package storage defines the file-system abstraction used for transcripts and generated documents.
package storage

import "github.com/starford/coursedocs/internal/models"

// Provider is the interface for rooted file operations.
type Provider interface {
	// Root returns the absolute root directory.
	Root() string
	// List returns metadata for files under dir (relative to root) whose extension is in exts.
	// An empty exts matches every regular file. Results are sorted by path.
	List(dir string, exts ...string) ([]models.FileMeta, error)
	// Read returns the raw bytes of the file at path (relative to root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to root).
	Write(path string, content []byte) error
	// Delete removes the file at path (relative to root).
	Delete(path string) error
	// Exists reports whether a regular file exists at path.
	Exists(path string) bool
}
