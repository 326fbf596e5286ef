package fixture

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"
)

// DefaultFileName is the store file created inside the data directory.
const DefaultFileName = "fixtures.db"

// BoltStore persists fixture records in a bbolt database, one bucket per
// kind, keyed by record ID.
type BoltStore struct {
	db *bbolt.DB
}

// Compile-time interface check.
var _ Store = (*BoltStore)(nil)

// OpenBoltStore opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltStore(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("fixture: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("fixture: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, k := range Kinds {
			if _, err := tx.CreateBucketIfNotExists(bucketName(k)); err != nil {
				return fmt.Errorf("fixture: create bucket %q: %w", k, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("fixture: create buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

func bucketName(k Kind) []byte { return []byte("fixtures_" + string(k)) }

// bucket returns the bucket for kind, or ErrNotFound for an unknown kind.
func bucket(tx *bbolt.Tx, kind Kind) (*bbolt.Bucket, error) {
	b := tx.Bucket(bucketName(kind))
	if b == nil {
		return nil, fmt.Errorf("%w: kind %q", ErrNotFound, kind)
	}
	return b, nil
}

// Put stores a record keyed by ID.
func (s *BoltStore) Put(r *Record) error {
	if err := r.validate(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, r.Kind)
		if err != nil {
			return err
		}
		key := []byte(r.ID)
		if b.Get(key) != nil {
			return fmt.Errorf("%w: %s %s", ErrDuplicate, r.Kind, r.ID)
		}

		data, err := encodeGob(r)
		if err != nil {
			return fmt.Errorf("fixture: encode record: %w", err)
		}
		return b.Put(key, data)
	})
}

// Get retrieves a record by kind and ID.
func (s *BoltStore) Get(kind Kind, id string) (*Record, error) {
	var r Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, kind)
		if err != nil {
			return err
		}
		data := b.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
		}
		if err := decodeGob(data, &r); err != nil {
			return fmt.Errorf("fixture: decode record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Find retrieves a record by ID across all kinds.
func (s *BoltStore) Find(id string) (*Record, error) {
	for _, k := range Kinds {
		r, err := s.Get(k, id)
		switch {
		case err == nil:
			return r, nil
		case !errors.Is(err, ErrNotFound):
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// List returns every record of kind in key order.
func (s *BoltStore) List(kind Kind) ([]*Record, error) {
	var out []*Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, kind)
		if err != nil {
			return err
		}
		return b.ForEach(func(_, v []byte) error {
			var r Record
			if err := decodeGob(v, &r); err != nil {
				return fmt.Errorf("fixture: decode record: %w", err)
			}
			out = append(out, &r)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a record.
func (s *BoltStore) Delete(kind Kind, id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, kind)
		if err != nil {
			return err
		}
		key := []byte(id)
		if b.Get(key) == nil {
			return fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
		}
		return b.Delete(key)
	})
}

// encodeGob serializes a value using gob encoding.
func encodeGob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeGob deserializes gob-encoded data into a value.
func decodeGob(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}
