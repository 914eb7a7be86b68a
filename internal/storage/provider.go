// Package storage abstracts the content directory that holds post files.
package storage

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/octavio/octavio/internal/models"
)

// Provider is the interface for content file operations. Paths are relative
// to the content root.
type Provider interface {
	// List returns metadata for every .md file under dir.
	List(dir string) ([]models.FileMetadata, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
}

// Checksum returns the hex SHA-256 digest used to detect changed post files.
func Checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
