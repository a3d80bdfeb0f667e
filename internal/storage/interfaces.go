// Package storage defines where proxy state lives between calls. A record
// is the proxy's storage: the implementation pointer plus the encoded
// contract state, which upgrades never rewrite.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no proxy is stored at an address.
var ErrNotFound = errors.New("proxy not found")

// Record is one proxy's persisted storage.
type Record struct {
	Address        string    `db:"address" json:"address"`
	Implementation string    `db:"implementation" json:"implementation"`
	State          []byte    `db:"state" json:"state"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Clone returns a deep copy.
func (r Record) Clone() Record {
	out := r
	out.State = append([]byte(nil), r.State...)
	return out
}

// Store persists proxy records.
type Store interface {
	// Load returns the record at address or ErrNotFound.
	Load(ctx context.Context, address string) (Record, error)
	// Save inserts or replaces the record. CreatedAt is kept from the first save.
	Save(ctx context.Context, rec Record) error
	// List returns every record ordered by creation time.
	List(ctx context.Context) ([]Record, error)
}
