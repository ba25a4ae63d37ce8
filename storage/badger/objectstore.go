package badger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"

	"github.com/jshaughn618/story-search/storage"
)

// ObjectStore implements storage.ObjectStore on a BadgerDB backend.
type ObjectStore struct {
	backend *Backend
}

var _ storage.ObjectStore = (*ObjectStore)(nil)

// NewObjectStore creates an ObjectStore over the backend.
func NewObjectStore(backend *Backend) *ObjectStore {
	return &ObjectStore{backend: backend}
}

// Put stores a blob under the key, replacing any existing value.
func (s *ObjectStore) Put(ctx context.Context, key string, data []byte) error {
	if s.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeObjectKey(key), data); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Get retrieves a blob. Returns storage.ErrNotFound if the key is absent.
func (s *ObjectStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var data []byte
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeObjectKey(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Delete removes a blob. Deleting an absent key is not an error.
func (s *ObjectStore) Delete(ctx context.Context, key string) error {
	if s.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeObjectKey(key)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// DeletePrefix removes every blob whose key starts with prefix.
func (s *ObjectStore) DeletePrefix(ctx context.Context, prefix string) error {
	if s.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return s.backend.deletePrefix(makeObjectPrefix(prefix))
}

// Close is a no-op; the shared backend owns the database handle.
func (s *ObjectStore) Close() error {
	return nil
}
