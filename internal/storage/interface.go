package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no export exists at a key
var ErrNotFound = errors.New("export not found")

// Metadata describes a saved export
type Metadata struct {
	ContentType string            `json:"contentType,omitempty"`
	Kind        string            `json:"kind,omitempty"`   // market or cache
	Format      string            `json:"format,omitempty"` // csv, html, ...
	RankID      int64             `json:"rankId,omitempty"`
	Side        string            `json:"side,omitempty"`
	CreatedAt   time.Time         `json:"createdAt,omitempty"`
	Custom      map[string]string `json:"custom,omitempty"`
}

// FileInfo describes a stored export without its content
type FileInfo struct {
	Key        string    `json:"key"`
	Size       int64     `json:"size"`
	Checksum   string    `json:"checksum"`
	ModifiedAt time.Time `json:"modifiedAt"`
	Metadata   *Metadata `json:"metadata,omitempty"`
}

// Storage persists rendered exports
type Storage interface {
	// Put stores content at the given key with optional metadata
	Put(ctx context.Context, key string, content []byte, metadata *Metadata) error

	// Get retrieves content from the given key
	Get(ctx context.Context, key string) ([]byte, error)

	// GetInfo retrieves file information without content
	GetInfo(ctx context.Context, key string) (*FileInfo, error)

	// Exists checks if an export exists at the given key
	Exists(ctx context.Context, key string) (bool, error)

	// Delete removes the export at the given key
	Delete(ctx context.Context, key string) error

	// List returns all keys matching the given prefix
	List(ctx context.Context, prefix string) ([]string, error)
}
