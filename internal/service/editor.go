package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MKhiriev/go-estimate-sync/internal/adapter"
	"github.com/MKhiriev/go-estimate-sync/internal/config"
	"github.com/MKhiriev/go-estimate-sync/internal/logger"
	"github.com/MKhiriev/go-estimate-sync/internal/store"
	"github.com/MKhiriev/go-estimate-sync/internal/utils"
	"github.com/MKhiriev/go-estimate-sync/models"
)

// EditorOptions tunes the debounce policy and session switching.
type EditorOptions struct {
	// DebounceWindow delays standard-priority fields.
	DebounceWindow time.Duration
	// DeferredWindow delays deferred-priority fields.
	DeferredWindow time.Duration
	// FlushOnSwitch hands unsettled edits to the sync engine before a
	// session is drained.
	FlushOnSwitch bool
	// IDs generates session identities. Defaults to UUIDv7.
	IDs IDGenerator
}

// NewEditorOptions maps the editor configuration section onto options.
func NewEditorOptions(cfg config.Editor) EditorOptions {
	return EditorOptions{
		DebounceWindow: cfg.DebounceWindow,
		DeferredWindow: cfg.DeferredWindow,
		FlushOnSwitch:  !cfg.NoFlushOnSwitch,
	}
}

// Editor wires the overlay, the dirty-field tracker, the sync engine and
// session persistence behind the EstimateEditor surface. Create one per
// editing surface.
type Editor struct {
	opts   EditorOptions
	logger *logger.Logger
	ctx    context.Context
	cancel context.CancelFunc

	overlay   *overlay
	tracker   *tracker
	engine    *syncEngine
	persister *SessionPersister
	writer    *persistWriter

	sessionMu sync.Mutex
	closed    atomic.Bool

	listenersMu sync.RWMutex
	listeners   []func()
}

// NewEditor builds an editor that sends bulk updates through updater and
// keeps unsaved edits in kv. The caller owns kv and closes it after Close.
func NewEditor(updater adapter.BulkUpdater, kv store.KeyValueStore, opts EditorOptions, log *logger.Logger) *Editor {
	if opts.DebounceWindow <= 0 {
		opts.DebounceWindow = config.DefaultDebounceWindow
	}
	if opts.DeferredWindow <= 0 {
		opts.DeferredWindow = 2 * opts.DebounceWindow
	}
	if opts.IDs == nil {
		opts.IDs = utils.NewUUIDGenerator()
	}

	ctx, cancel := context.WithCancel(log.WithContext(context.Background()))
	e := &Editor{
		opts:      opts,
		logger:    log,
		ctx:       ctx,
		cancel:    cancel,
		overlay:   newOverlay(),
		persister: NewSessionPersister(kv, log),
	}

	e.engine = newSyncEngine(ctx, e.overlay, updater, log)
	e.engine.onStatus = e.notify
	e.engine.onApplied = func() { e.writer.notify() }
	e.engine.onDetached = e.reconcileDetached

	e.tracker = newTracker(opts.DebounceWindow, opts.DeferredWindow, e.settled)
	e.writer = newPersistWriter(e.persister, e.overlay.snapshot, log)
	e.writer.start(ctx)

	return e
}

func (e *Editor) settled(change models.FieldChange) {
	e.logger.Debug().
		Str("func", "Editor.settled").
		Str("row_id", change.RowID).
		Str("field", change.Field).
		Str("priority", string(change.Priority)).
		Msg("field edit settled")
	e.engine.settle()
}

func (e *Editor) StartSession(ctx context.Context, docID, parentID string, rows []models.EstimateLine) (models.RestoreReport, error) {
	if docID == "" {
		return models.RestoreReport{}, ErrEmptyDocumentID
	}

	e.sessionMu.Lock()
	defer e.sessionMu.Unlock()

	if e.overlay.active() {
		if err := e.drain(ctx); err != nil {
			e.logger.Err(err).Str("func", "Editor.StartSession").Msg("failed to persist outgoing session")
		}
	}

	var (
		report  models.RestoreReport
		loadErr error
	)
	sessionID := e.opts.IDs.Generate()
	e.writer.exclusive(func() {
		snapshot, found, err := e.persister.Load(ctx, docID)
		if err != nil {
			loadErr = err
		}
		var restore *models.SessionSnapshot
		if found {
			restore = &snapshot
		}
		report = e.overlay.open(sessionID, docID, parentID, rows, restore)
	})
	e.engine.clearError()

	if report.Dropped > 0 {
		e.writer.notify()
	}

	e.logger.Info().
		Str("func", "Editor.StartSession").
		Str("document_id", docID).
		Str("session_id", sessionID).
		Int("rows", len(rows)).
		Bool("restored", report.Restored).
		Int("restored_fields", report.Fields).
		Int("dropped_fields", report.Dropped).
		Msg("editing session started")
	e.notify()

	if loadErr != nil {
		e.logger.Warn().Err(loadErr).Str("func", "Editor.StartSession").Msg("saved overlay could not be restored")
		return report, loadErr
	}
	return report, nil
}

func (e *Editor) EndSession(ctx context.Context) error {
	e.sessionMu.Lock()
	defer e.sessionMu.Unlock()

	if !e.overlay.active() {
		return nil
	}
	err := e.drain(ctx)
	e.notify()
	return err
}

// drain is the outgoing half of a session switch: flush, then detach and save.
// An in-flight sync is not cancelled; its result is reconciled against the
// saved overlay when it arrives.
func (e *Editor) drain(ctx context.Context) error {
	if e.opts.FlushOnSwitch {
		e.tracker.flushAll()
	}
	e.tracker.cancelAll()

	_, docID, _ := e.overlay.session()
	var err error
	e.writer.exclusive(func() {
		snapshot, ok := e.overlay.detach()
		if ok {
			err = e.persister.Save(ctx, snapshot)
		}
	})
	e.engine.clearError()

	e.logger.Info().
		Str("func", "Editor.drain").
		Str("document_id", docID).
		Msg("editing session ended")
	return err
}

func (e *Editor) reconcileDetached(ctx context.Context, plan syncPlan, out syncOutcome) {
	e.writer.exclusive(func() {
		snapshot, found, err := e.persister.Load(ctx, plan.docID)
		if err != nil {
			e.logger.Err(err).Str("func", "Editor.reconcileDetached").Str("document_id", plan.docID).Msg("failed to load saved overlay")
			return
		}
		if !found || !reconcileSnapshot(&snapshot, plan, out) {
			return
		}
		if err = e.persister.Save(ctx, snapshot); err != nil {
			e.logger.Err(err).Str("func", "Editor.reconcileDetached").Str("document_id", plan.docID).Msg("failed to save reconciled overlay")
		}
	})
}

func (e *Editor) DocumentID() string {
	_, docID, _ := e.overlay.session()
	return docID
}

func (e *Editor) DisplayRows() []models.EstimateLine {
	return e.overlay.displayRows()
}

func (e *Editor) HasUnsavedChanges() bool {
	return e.overlay.hasUnsavedChanges()
}

func (e *Editor) PendingCount() int {
	return e.overlay.pendingCount()
}

func (e *Editor) IsFieldPending(rowID, field string) bool {
	return e.overlay.isFieldPending(rowID, field)
}

func (e *Editor) SyncStatus() models.SyncStatus {
	return e.engine.status()
}

func (e *Editor) Conflicts() []models.Conflict {
	return e.overlay.conflictList()
}

func (e *Editor) LastError() error {
	return e.engine.lastError()
}

func (e *Editor) UpdateField(rowID, field string, value any) {
	if !e.overlay.active() {
		e.logger.Warn().
			Str("func", "Editor.UpdateField").
			Str("row_id", rowID).
			Str("field", field).
			Msg("edit ignored, no active session")
		return
	}

	change := e.overlay.updateField(rowID, field, value)
	e.writer.notify()
	e.tracker.track(change)
	e.notify()
}

func (e *Editor) SyncNow(ctx context.Context) (models.SyncResult, error) {
	if !e.overlay.active() {
		return models.SyncResult{}, nil
	}
	return e.engine.syncNow(ctx)
}

func (e *Editor) RequestSync() {
	e.engine.trigger()
}

func (e *Editor) DiscardChanges() {
	e.overlay.discard()
	e.tracker.cancelAll()
	e.engine.clearError()
	e.writer.notify()
	e.notify()
}

func (e *Editor) DiscardField(rowID, field string) {
	if !e.overlay.discardField(rowID, field) {
		return
	}
	if !e.overlay.hasUnsavedChanges() {
		e.engine.clearError()
	}
	e.writer.notify()
	e.notify()
}

func (e *Editor) ResolveConflict(rowID, field string, useLocal bool) error {
	if !e.overlay.active() {
		return ErrNoActiveSession
	}
	if err := e.overlay.resolve(rowID, field, useLocal); err != nil {
		return err
	}

	e.logger.Info().
		Str("func", "Editor.ResolveConflict").
		Str("row_id", rowID).
		Str("field", field).
		Bool("use_local", useLocal).
		Msg("conflict resolved")

	e.writer.notify()
	if useLocal {
		e.engine.trigger()
	}
	e.notify()
	return nil
}

func (e *Editor) Flush(rowID, field string) {
	e.tracker.flush(rowID, field)
}

func (e *Editor) FlushAll() {
	e.tracker.flushAll()
}

func (e *Editor) MergeBaseline(rows []models.EstimateLine) MergeReport {
	if !e.overlay.active() {
		return MergeReport{}
	}

	report := e.overlay.mergeBaseline(rows)
	e.logger.Debug().
		Str("func", "Editor.MergeBaseline").
		Int("replaced", report.Replaced).
		Int("merged", report.Merged).
		Int("dropped", report.Dropped).
		Int("conflicts", report.Conflicts).
		Msg("baseline merged")

	e.writer.notify()
	e.notify()
	return report
}

func (e *Editor) OnChange(fn func()) {
	e.listenersMu.Lock()
	defer e.listenersMu.Unlock()
	e.listeners = append(e.listeners, fn)
}

func (e *Editor) notify() {
	e.listenersMu.RLock()
	listeners := make([]func(), len(e.listeners))
	copy(listeners, e.listeners)
	e.listenersMu.RUnlock()

	for _, fn := range listeners {
		fn()
	}
}

func (e *Editor) Close(ctx context.Context) error {
	if e.closed.Swap(true) {
		return nil
	}

	err := e.EndSession(ctx)
	e.tracker.close()
	if waitErr := e.engine.wait(ctx); waitErr != nil {
		err = errors.Join(err, waitErr)
	}
	e.writer.close()
	e.cancel()
	return err
}
