// Package history keeps a local ledger of successful generations in SQLite.
package history

import (
	"time"

	"github.com/0xmhha/smartreadme/pkg/artifact"
)

// Entry is one recorded generation.
type Entry struct {
	ID              int64                 `json:"id"`
	ProjectName     string                `json:"project_name"`
	ArchivePath     string                `json:"archive_path"`
	GeneratedAt     time.Time             `json:"generated_at"`
	DurationSeconds float64               `json:"duration_seconds"`
	Artifacts       []artifact.Descriptor `json:"artifacts"`
}

// Store persists entries.
type Store interface {
	// Record inserts e and returns its assigned ID.
	Record(e Entry) (int64, error)

	// List returns the newest entries first. A limit <= 0 returns all.
	List(limit int) ([]Entry, error)

	// Get returns one entry or ErrNotFound.
	Get(id int64) (*Entry, error)

	// Delete removes one entry or returns ErrNotFound.
	Delete(id int64) error

	Close() error
}
