// Package fixture persists generated and invalidated test fixtures so they
// can be listed and replayed later.
package fixture

import (
	"fmt"
	"time"
)

// Kind is the type of object a record holds.
type Kind string

const (
	KindTx     Kind = "tx"
	KindBlock  Kind = "block"
	KindHeader Kind = "header"
)

// Kinds lists every record kind.
var Kinds = []Kind{KindTx, KindBlock, KindHeader}

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown kind %q", ErrInvalidRecord, s)
}

// Record is one stored fixture.
type Record struct {
	ID        string // wtxid for transactions, block hash otherwise
	Kind      Kind
	Hex       string   // consensus serialization
	Broken    bool     // produced by an invalidator
	Flags     []string // invalidated fields, canonical names
	Parent    string   // ID of the record this one was derived from
	CreatedAt time.Time
}

func (r *Record) validate() error {
	if r == nil {
		return fmt.Errorf("%w: record", ErrNilParam)
	}
	if r.ID == "" {
		return fmt.Errorf("%w: empty ID", ErrInvalidRecord)
	}
	if r.Hex == "" {
		return fmt.Errorf("%w: empty hex", ErrInvalidRecord)
	}
	if _, err := ParseKind(string(r.Kind)); err != nil {
		return err
	}
	return nil
}

// Store persists fixture records.
type Store interface {
	// Put stores a record. A record with the same kind and ID is rejected
	// with ErrDuplicate.
	Put(r *Record) error

	// Get retrieves a record by kind and ID.
	Get(kind Kind, id string) (*Record, error)

	// Find retrieves a record by ID across all kinds.
	Find(id string) (*Record, error)

	// List returns every record of kind, ordered by ID.
	List(kind Kind) ([]*Record, error)

	// Delete removes a record.
	Delete(kind Kind, id string) error
}
