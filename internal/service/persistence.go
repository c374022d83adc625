package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/MKhiriev/go-estimate-sync/internal/logger"
	"github.com/MKhiriev/go-estimate-sync/internal/store"
	"github.com/MKhiriev/go-estimate-sync/models"
)

const sessionKeyPrefix = "estimate-session/"

// SessionKey is the storage key of a document's overlay. It depends on the
// document id only, so a reload finds what the previous run saved.
func SessionKey(docID string) string {
	return sessionKeyPrefix + docID
}

// SessionPersister stores session snapshots in a device-local key-value store.
type SessionPersister struct {
	kv     store.KeyValueStore
	logger *logger.Logger
}

// NewSessionPersister returns a persister writing to kv.
func NewSessionPersister(kv store.KeyValueStore, log *logger.Logger) *SessionPersister {
	return &SessionPersister{kv: kv, logger: log}
}

// Save writes snapshot under its document key. An overlay without pending
// edits deletes the key instead.
func (p *SessionPersister) Save(ctx context.Context, snapshot models.SessionSnapshot) error {
	if snapshot.DocumentID == "" {
		return ErrEmptyDocumentID
	}
	if len(snapshot.Pending) == 0 {
		return p.Delete(ctx, snapshot.DocumentID)
	}
	if snapshot.Version == 0 {
		snapshot.Version = models.SessionSnapshotVersion
	}

	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode session snapshot: %w", err)
	}

	if err = p.kv.Put(ctx, SessionKey(snapshot.DocumentID), raw); err != nil {
		p.logger.Err(err).
			Str("func", "SessionPersister.Save").
			Str("document_id", snapshot.DocumentID).
			Msg("failed to save session snapshot")
		return fmt.Errorf("save session snapshot: %w", err)
	}
	return nil
}

// Load returns the snapshot stored for docID. found is false when nothing
// was saved.
func (p *SessionPersister) Load(ctx context.Context, docID string) (snapshot models.SessionSnapshot, found bool, err error) {
	raw, err := p.kv.Get(ctx, SessionKey(docID))
	if errors.Is(err, store.ErrKeyNotFound) {
		return models.SessionSnapshot{}, false, nil
	}
	if err != nil {
		return models.SessionSnapshot{}, false, fmt.Errorf("load session snapshot: %w", err)
	}

	if err = json.Unmarshal(raw, &snapshot); err != nil {
		return models.SessionSnapshot{}, false, fmt.Errorf("decode session snapshot: %w", err)
	}
	if snapshot.Version != models.SessionSnapshotVersion {
		return models.SessionSnapshot{}, false, fmt.Errorf("%w: %d", ErrSnapshotVersion, snapshot.Version)
	}
	if snapshot.Pending == nil {
		snapshot.Pending = make(models.PendingChanges)
	}
	for _, fields := range snapshot.Pending {
		for field, pf := range fields {
			pf.Value = models.Normalize(field, pf.Value)
			pf.BaseValue = models.Normalize(field, pf.BaseValue)
			fields[field] = pf
		}
	}
	for i, c := range snapshot.Conflicts {
		snapshot.Conflicts[i].LocalValue = models.Normalize(c.Field, c.LocalValue)
		snapshot.Conflicts[i].ServerValue = models.Normalize(c.Field, c.ServerValue)
	}

	return snapshot, true, nil
}

// Delete removes the snapshot of docID.
func (p *SessionPersister) Delete(ctx context.Context, docID string) error {
	if err := p.kv.Delete(ctx, SessionKey(docID)); err != nil {
		p.logger.Err(err).
			Str("func", "SessionPersister.Delete").
			Str("document_id", docID).
			Msg("failed to delete session snapshot")
		return fmt.Errorf("delete session snapshot: %w", err)
	}
	return nil
}

// persistWriter saves the overlay off the editing path. Signals coalesce,
// and every write takes a fresh snapshot of the whole overlay under mu, so
// a later write never carries older state than an earlier one.
type persistWriter struct {
	persister *SessionPersister
	source    func() (models.SessionSnapshot, bool)
	logger    *logger.Logger

	mu     sync.Mutex
	signal chan struct{}
	stop   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

func newPersistWriter(p *SessionPersister, source func() (models.SessionSnapshot, bool), log *logger.Logger) *persistWriter {
	return &persistWriter{
		persister: p,
		source:    source,
		logger:    log,
		signal:    make(chan struct{}, 1),
		stop:      make(chan struct{}),
	}
}

func (w *persistWriter) start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case <-w.stop:
				return
			case <-ctx.Done():
				return
			case <-w.signal:
				if err := w.persistNow(ctx); err != nil {
					w.logger.Warn().Err(err).Str("func", "persistWriter.loop").Msg("background save failed")
				}
			}
		}
	}()
}

// notify asks for a save without blocking.
func (w *persistWriter) notify() {
	select {
	case w.signal <- struct{}{}:
	default:
	}
}

// persistNow saves the current overlay synchronously.
func (w *persistWriter) persistNow(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	snapshot, ok := w.source()
	if !ok {
		return nil
	}
	return w.persister.Save(ctx, snapshot)
}

// exclusive runs fn with background saves held off.
func (w *persistWriter) exclusive(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn()
}

// close stops the loop. Signals not yet written are dropped; callers save
// synchronously before closing.
func (w *persistWriter) close() {
	w.once.Do(func() { close(w.stop) })
	w.wg.Wait()
}
