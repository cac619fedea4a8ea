// Package backend selects and builds the ledger store implementation
// from configuration.
package backend

import (
	"ledger/internal/ledger"
)

// Backend is the full surface the HTTP layer needs from a store.
type Backend interface {
	ledger.Store
	ledger.Querier
}

// CleanupFunc releases backend resources at shutdown.
type CleanupFunc func() error

// Result contains the backend instance and an optional cleanup function.
type Result struct {
	Backend Backend
	Cleanup CleanupFunc
}

// Type identifies a backend implementation.
type Type string

const (
	MemoryBackend   Type = "memory"
	JSONFileBackend Type = "jsonfile"
	SQLiteBackend   Type = "sqlite"
)

// String implements fmt.Stringer.
func (t Type) String() string {
	return string(t)
}

// IsValid reports whether the backend type is known.
func (t Type) IsValid() bool {
	switch t {
	case MemoryBackend, JSONFileBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}

// Types returns all valid backend types.
func Types() []Type {
	return []Type{MemoryBackend, JSONFileBackend, SQLiteBackend}
}
