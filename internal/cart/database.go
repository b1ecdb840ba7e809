package cart

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"go.etcd.io/bbolt"
)

const (
	bucketName = "cart"
	entriesKey = "swiftcart-items"
)

// DB defines the interface for cart persistence operations
type DB interface {
	// LoadEntries retrieves the persisted cart entries
	LoadEntries() ([]Entry, error)

	// SaveEntries persists the full cart entry list
	SaveEntries(entries []Entry) error

	// Close closes the database connection
	Close() error
}

// BoltDB implements the DB interface using BoltDB
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB creates a new BoltDB instance
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return &BoltDB{db: db}, nil
}

// LoadEntries retrieves the persisted cart entries. Missing or malformed data
// yields an empty cart rather than an error.
func (b *BoltDB) LoadEntries() ([]Entry, error) {
	entries := make([]Entry, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		data := bucket.Get([]byte(entriesKey))
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &entries); err != nil {
			slog.Warn("Discarding malformed cart data", "error", err)
			entries = entries[:0]
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading cart: %w", err)
	}
	return entries, nil
}

// SaveEntries persists the full cart entry list
func (b *BoltDB) SaveEntries(entries []Entry) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		data, err := json.Marshal(entries)
		if err != nil {
			return fmt.Errorf("marshaling cart: %w", err)
		}
		return bucket.Put([]byte(entriesKey), data)
	})
}

// Close closes the database connection
func (b *BoltDB) Close() error {
	return b.db.Close()
}
