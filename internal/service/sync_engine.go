package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/MKhiriev/go-estimate-sync/internal/adapter"
	"github.com/MKhiriev/go-estimate-sync/internal/logger"
	"github.com/MKhiriev/go-estimate-sync/models"
)

// syncEngine turns the overlay into bulk update calls and interprets their
// results. At most one call is in flight; triggers arriving meanwhile are
// folded into a single follow-up attempt.
type syncEngine struct {
	overlay *overlay
	updater adapter.BulkUpdater
	logger  *logger.Logger
	baseCtx context.Context

	// onApplied runs after a result changed live state.
	onApplied func()
	// onStatus runs whenever the sync status may have changed.
	onStatus func()
	// onDetached receives results of plans whose document is no longer open.
	onDetached func(ctx context.Context, plan syncPlan, out syncOutcome)

	mu            sync.Mutex
	inFlight      bool
	flightSession string
	rerun         bool
	rerunFresh    bool
	lastErr       error
	wg            sync.WaitGroup
}

func newSyncEngine(ctx context.Context, ov *overlay, updater adapter.BulkUpdater, log *logger.Logger) *syncEngine {
	nop := func() {}
	return &syncEngine{
		overlay:    ov,
		updater:    updater,
		logger:     log,
		baseCtx:    ctx,
		onApplied:  nop,
		onStatus:   nop,
		onDetached: func(context.Context, syncPlan, syncOutcome) {},
	}
}

// begin builds the next plan and marks the engine busy. deferred is true
// when another call is in flight; the request is then remembered as a rerun.
// fresh marks a request caused by a newly settled edit.
func (e *syncEngine) begin(fresh bool) (plan syncPlan, started, deferred bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.inFlight {
		e.rerun = true
		e.rerunFresh = e.rerunFresh || fresh
		return syncPlan{}, false, true
	}

	plan = e.overlay.buildPlan()
	if plan.empty() {
		return plan, false, false
	}

	e.inFlight = true
	e.flightSession = plan.sessionID
	e.wg.Add(1)
	return plan, true, false
}

// trigger starts a background sync. The plan is built on the caller's
// goroutine so that it reflects the overlay at the moment of the trigger.
func (e *syncEngine) trigger() {
	e.start(false)
}

// settle is trigger for a newly settled edit. If it lands during a flight
// that fails, the rerun still happens.
func (e *syncEngine) settle() {
	e.start(true)
}

func (e *syncEngine) start(fresh bool) {
	plan, started, _ := e.begin(fresh)
	if !started {
		return
	}
	go func() {
		_, _ = e.execute(e.baseCtx, plan)
	}()
}

// syncNow runs a sync on the caller's goroutine.
func (e *syncEngine) syncNow(ctx context.Context) (models.SyncResult, error) {
	plan, started, deferred := e.begin(false)
	if deferred {
		return models.SyncResult{Deferred: true}, nil
	}
	if !started {
		return models.SyncResult{}, nil
	}
	return e.execute(ctx, plan)
}

func (e *syncEngine) execute(ctx context.Context, plan syncPlan) (models.SyncResult, error) {
	defer e.wg.Done()
	e.onStatus()

	log := e.logger.With().
		Str("func", "syncEngine.execute").
		Str("document_id", plan.docID).
		Int("rows", len(plan.updates)).
		Logger()

	var (
		out     syncOutcome
		result  models.SyncResult
		syncErr error
		echoed  []models.EstimateLine
	)

	resp, err := e.updater.BulkUpdate(ctx, plan.docID, plan.updates)
	if err != nil {
		out = failWholeBatch(plan)
		result = models.SyncResult{Sent: len(plan.updates), Failed: len(plan.updates)}
		syncErr = fmt.Errorf("%w: %w", ErrTransport, err)
		log.Warn().Err(err).Msg("bulk update transport failure, pending changes kept")
	} else {
		out, result, syncErr = classify(plan, resp)
		echoed = resp.Rows
		log.Debug().
			Bool("success", resp.Success).
			Int("cleared", result.Cleared).
			Int("stale", result.Stale).
			Int("failed", result.Failed).
			Msg("bulk update finished")
		if syncErr != nil {
			log.Warn().Err(syncErr).Msg("bulk update reported real errors")
		}
	}

	target := e.overlay.applyOutcome(plan, out, echoed)
	switch target {
	case appliedLive, appliedReopened:
		e.onApplied()
	case detached:
		log.Info().Msg("session ended before the result arrived, reconciling saved overlay")
		e.onDetached(ctx, plan, out)
	}

	e.mu.Lock()
	e.inFlight = false
	e.flightSession = ""
	if target == appliedLive {
		e.lastErr = syncErr
	}
	// failures are retried by the user or the retry job, not in a loop;
	// only an edit that settled during the flight earns an immediate rerun
	rerun := e.rerun && (syncErr == nil || e.rerunFresh)
	e.rerun, e.rerunFresh = false, false
	e.mu.Unlock()

	e.onStatus()
	if rerun {
		e.trigger()
	}
	return result, syncErr
}

// classify partitions the per-row errors of resp. Stale-reference errors
// resolve their row; any other error keeps the row pending. A negative
// verdict without row errors fails the whole batch, and with row errors it
// means the rows without errors were applied.
func classify(plan syncPlan, resp models.BulkUpdateResponse) (syncOutcome, models.SyncResult, error) {
	out := syncOutcome{
		cleared: make(map[string]bool),
		stale:   make(map[string]bool),
		failed:  make(map[string]bool),
	}
	ids := plan.rowIDs()
	inBatch := make(map[string]bool, len(ids))
	for _, id := range ids {
		inBatch[id] = true
	}

	relevant := make([]models.RowError, 0, len(resp.Errors))
	for _, re := range resp.Errors {
		if !inBatch[re.ID] {
			continue
		}
		relevant = append(relevant, re)
		if re.IsStaleReference() {
			out.stale[re.ID] = true
		}
	}

	var failures []models.RowError
	for _, re := range relevant {
		if out.stale[re.ID] || out.failed[re.ID] {
			continue
		}
		out.failed[re.ID] = true
		failures = append(failures, re)
	}

	if !resp.Success && len(relevant) == 0 {
		for _, id := range ids {
			out.failed[id] = true
			failures = append(failures, models.RowError{
				ID:      id,
				Code:    models.RowErrorUnknown,
				Message: "rejected by authority",
			})
		}
	}

	for _, id := range ids {
		if !out.stale[id] && !out.failed[id] {
			out.cleared[id] = true
		}
	}

	result := models.SyncResult{
		Sent:    len(ids),
		Cleared: len(out.cleared),
		Stale:   len(out.stale),
		Failed:  len(out.failed),
	}
	if len(failures) > 0 {
		return out, result, &SyncError{Total: len(ids), Failed: failures}
	}
	return out, result, nil
}

func failWholeBatch(plan syncPlan) syncOutcome {
	out := syncOutcome{
		cleared: map[string]bool{},
		stale:   map[string]bool{},
		failed:  make(map[string]bool, len(plan.updates)),
	}
	for _, id := range plan.rowIDs() {
		out.failed[id] = true
	}
	return out
}

func (e *syncEngine) status() models.SyncStatus {
	sessionID, _, _ := e.overlay.session()

	e.mu.Lock()
	syncing := e.inFlight && e.flightSession == sessionID
	lastErr := e.lastErr
	e.mu.Unlock()

	switch {
	case syncing:
		return models.SyncStatusSyncing
	case lastErr != nil:
		return models.SyncStatusError
	case e.overlay.conflictCount() > 0:
		return models.SyncStatusConflict
	default:
		return models.SyncStatusIdle
	}
}

func (e *syncEngine) lastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// clearError forgets the last failure, e.g. after the user discarded the
// edits it was about or switched documents.
func (e *syncEngine) clearError() {
	e.mu.Lock()
	e.lastErr = nil
	e.rerun = false
	e.mu.Unlock()
}

// wait blocks until no call is in flight or ctx is done.
func (e *syncEngine) wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
