package storage

import (
	"context"
	"errors"
)

// Sentinel errors shared across all store implementations.
var (
	ErrNotFound = errors.New("document not found")
)

// Document keys. The store holds exactly three whole-document values;
// partial updates and cross-key transactions are not part of the contract,
// except for SaveAll which batches several documents into one write.
const (
	KeyRoster  = "trustio_users"
	KeySession = "trustio_session"
	KeyTheme   = "trustio_theme"
)

// DocumentStore defines the durable key-value contract. Writes are
// synchronous and whole-document; the last write wins.
type DocumentStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	// SaveAll writes every given document in a single transaction so a
	// roster update and its session update can never tear apart.
	SaveAll(ctx context.Context, docs map[string][]byte) error
	Delete(ctx context.Context, key string) error
	Close()
}
