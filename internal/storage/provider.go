// Package storage defines the state-directory file abstraction.
package storage

// Provider is the interface for state-directory file operations. Paths
// are relative to the state root.
type Provider interface {
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Exists reports whether a regular file is present at path.
	Exists(path string) bool
}
