// Package backend selects and constructs the expense store from
// configuration.
package backend

import (
	"spendtrack/internal/amqp"
	"spendtrack/internal/store"
)

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// Result contains the constructed store, the optional AMQP client, and a
// cleanup function.
type Result struct {
	Store   store.ExpenseStore
	AMQP    *amqp.Client // nil when no broker is configured
	Cleanup CleanupFunc
}

// Type represents the kind of expense store.
type Type string

const (
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
