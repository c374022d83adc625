package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/MKhiriev/go-estimate-sync/internal/logger"
)

const fileLockRetryInterval = 20 * time.Millisecond

// fileStore keeps every key in a single JSON document. A sibling ".lock"
// file serialises access between processes sharing the same path.
type fileStore struct {
	mu     sync.Mutex
	path   string
	lock   *flock.Flock
	closed bool
	logger *logger.Logger
}

// NewFileStore returns a KeyValueStore persisted as a JSON document at path.
func NewFileStore(path string, log *logger.Logger) (KeyValueStore, error) {
	if path == "" {
		return nil, errors.New("path is required for file store")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	return &fileStore{
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: log,
	}, nil
}

func (f *fileStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := f.withLock(ctx, func() error {
		items, err := f.load()
		if err != nil {
			return err
		}
		v, ok := items[key]
		if !ok {
			return ErrKeyNotFound
		}
		value = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (f *fileStore) Put(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrEmptyKey
	}

	return f.withLock(ctx, func() error {
		items, err := f.load()
		if err != nil {
			return err
		}
		items[key] = append([]byte(nil), value...)
		return f.save(items)
	})
}

func (f *fileStore) Delete(ctx context.Context, key string) error {
	return f.withLock(ctx, func() error {
		items, err := f.load()
		if err != nil {
			return err
		}
		if _, ok := items[key]; !ok {
			return nil
		}
		delete(items, key)
		return f.save(items)
	})
}

func (f *fileStore) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fileStore) withLock(ctx context.Context, fn func() error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrStoreClosed
	}

	locked, err := f.lock.TryLockContext(ctx, fileLockRetryInterval)
	if err != nil {
		f.logger.Err(err).Str("func", "fileStore.withLock").Str("path", f.path).Msg("failed to acquire file lock")
		return fmt.Errorf("acquire file lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("acquire file lock: %s is held by another process", f.path)
	}
	defer func() {
		if err := f.lock.Unlock(); err != nil {
			f.logger.Err(err).Str("func", "fileStore.withLock").Msg("failed to release file lock")
		}
	}()

	return fn()
}

// load reads the whole document. A missing file is an empty store.
func (f *fileStore) load() (map[string][]byte, error) {
	items := make(map[string][]byte)

	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return items, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store file: %w", err)
	}
	if len(raw) == 0 {
		return items, nil
	}

	if err = json.Unmarshal(raw, &items); err != nil {
		f.logger.Err(err).Str("func", "fileStore.load").Str("path", f.path).Msg("store file is corrupted")
		return nil, fmt.Errorf("decode store file: %w", err)
	}
	return items, nil
}

// save replaces the document atomically through a temp file and rename.
func (f *fileStore) save(items map[string][]byte) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode store file: %w", err)
	}

	tmp := f.path + ".tmp"
	if err = os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	if err = os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}
