package service

import (
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/MKhiriev/go-estimate-sync/models"
)

// overlay is the local overlay store of one editing surface: the baseline
// observed on the authority, the sparse map of pending edits layered on top
// of it, and the open conflicts. Every mutation happens under mu so readers
// never observe a partially applied update.
type overlay struct {
	mu sync.RWMutex

	sessionID string
	docID     string
	parentID  string

	baseline  map[string]models.EstimateLine
	pending   models.PendingChanges
	conflicts map[models.RowField]models.Conflict

	// revision is never reset, so revisions restored from the device stay
	// comparable with the ones handed out later.
	revision     uint64
	lastModified time.Time

	now func() time.Time
}

func newOverlay() *overlay {
	return &overlay{
		baseline:  make(map[string]models.EstimateLine),
		pending:   make(models.PendingChanges),
		conflicts: make(map[models.RowField]models.Conflict),
		now:       time.Now,
	}
}

// session returns the identity of the active session.
func (o *overlay) session() (sessionID, docID, parentID string) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.sessionID, o.docID, o.parentID
}

func (o *overlay) active() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.sessionID != ""
}

// open replaces the whole session state with a fresh baseline and, when
// snapshot is non-nil, restores its pending edits on top of it.
func (o *overlay) open(sessionID, docID, parentID string, rows []models.EstimateLine, snapshot *models.SessionSnapshot) models.RestoreReport {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.sessionID, o.docID, o.parentID = sessionID, docID, parentID
	o.baseline = indexRows(rows)
	o.pending = make(models.PendingChanges)
	o.conflicts = make(map[models.RowField]models.Conflict)
	o.lastModified = time.Time{}

	if snapshot == nil {
		return models.RestoreReport{}
	}
	return o.restoreLocked(*snapshot)
}

// clear drops all session state. The revision counter survives.
func (o *overlay) clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.clearLocked()
}

// detach takes the final snapshot and clears the session in one step, so a
// result landing afterwards is always treated as detached.
func (o *overlay) detach() (models.SessionSnapshot, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	snapshot, ok := o.snapshotLocked()
	o.clearLocked()
	return snapshot, ok
}

func (o *overlay) clearLocked() {
	o.sessionID, o.docID, o.parentID = "", "", ""
	o.baseline = make(map[string]models.EstimateLine)
	o.pending = make(models.PendingChanges)
	o.conflicts = make(map[models.RowField]models.Conflict)
	o.lastModified = time.Time{}
}

// updateField records an edit. It never fails; the returned change is what
// the tracker hands to the sync engine once the edit settles.
func (o *overlay) updateField(rowID, field string, value any) models.FieldChange {
	value = models.Normalize(field, value)
	now := o.now()

	o.mu.Lock()
	defer o.mu.Unlock()

	o.revision++
	fields, ok := o.pending[rowID]
	if !ok {
		fields = make(map[string]models.PendingField)
		o.pending[rowID] = fields
	}

	pf, edited := fields[field]
	if !edited {
		// the edit is made against whatever the baseline shows right now
		if row, ok := o.baseline[rowID]; ok {
			pf.BaseValue, pf.HasBase = row.Value(field)
		}
	}
	pf.Value = value
	pf.EditedAt = now
	pf.Revision = o.revision
	fields[field] = pf

	if c, ok := o.conflicts[models.RowField{RowID: rowID, Field: field}]; ok {
		c.LocalValue = value
		o.conflicts[models.RowField{RowID: rowID, Field: field}] = c
	}
	o.lastModified = now

	return models.FieldChange{
		RowID:      rowID,
		Field:      field,
		Value:      value,
		Timestamp:  now,
		Priority:   models.LookupField(field).Priority,
		RetryCount: pf.RetryCount,
	}
}

// displayRows merges baseline and pending edits (pending wins) and sorts the
// result by sequence number. The rows are copies owned by the caller.
func (o *overlay) displayRows() []models.EstimateLine {
	o.mu.RLock()
	defer o.mu.RUnlock()

	rows := make([]models.EstimateLine, 0, len(o.baseline))
	for id, base := range o.baseline {
		row := base.Clone()
		for field, pf := range o.pending[id] {
			row.Fields[field] = pf.Value
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].SequenceNumber != rows[j].SequenceNumber {
			return rows[i].SequenceNumber < rows[j].SequenceNumber
		}
		return rows[i].ID < rows[j].ID
	})
	return rows
}

func (o *overlay) hasUnsavedChanges() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.pending) > 0
}

func (o *overlay) isFieldPending(rowID, field string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, ok := o.pending[rowID][field]
	return ok
}

func (o *overlay) pendingCount() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.pending.FieldCount()
}

// discard drops every pending edit and conflict of the session.
func (o *overlay) discard() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.pending = make(models.PendingChanges)
	o.conflicts = make(map[models.RowField]models.Conflict)
	o.lastModified = o.now()
}

// discardField drops one pending edit. It reports whether there was one.
func (o *overlay) discardField(rowID, field string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := o.pending[rowID][field]; !ok {
		return false
	}
	o.deleteFieldLocked(rowID, field)
	o.lastModified = o.now()
	return true
}

// deleteFieldLocked removes a pending field together with its conflict and
// drops the row key once it has no fields left.
func (o *overlay) deleteFieldLocked(rowID, field string) {
	delete(o.conflicts, models.RowField{RowID: rowID, Field: field})

	fields, ok := o.pending[rowID]
	if !ok {
		return
	}
	delete(fields, field)
	if len(fields) == 0 {
		delete(o.pending, rowID)
	}
}

func (o *overlay) deleteRowLocked(rowID string) int {
	n := len(o.pending[rowID])
	for field := range o.pending[rowID] {
		delete(o.conflicts, models.RowField{RowID: rowID, Field: field})
	}
	delete(o.pending, rowID)
	return n
}

// snapshot returns the persistable state of the session. ok is false when
// no session is active.
func (o *overlay) snapshot() (models.SessionSnapshot, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.snapshotLocked()
}

func (o *overlay) snapshotLocked() (models.SessionSnapshot, bool) {
	if o.sessionID == "" {
		return models.SessionSnapshot{}, false
	}

	return models.SessionSnapshot{
		DocumentID:   o.docID,
		ParentID:     o.parentID,
		Pending:      o.pending.Clone(),
		Conflicts:    o.conflictListLocked(),
		LastModified: o.lastModified,
		Version:      models.SessionSnapshotVersion,
	}, true
}

// restoreLocked layers a persisted overlay over the freshly loaded
// baseline. Edits of rows the baseline no longer has are dropped; the rest
// go through the same conflict check as a refetch.
func (o *overlay) restoreLocked(snapshot models.SessionSnapshot) models.RestoreReport {
	report := models.RestoreReport{LastModified: snapshot.LastModified}

	persisted := make(map[models.RowField]models.Conflict, len(snapshot.Conflicts))
	for _, c := range snapshot.Conflicts {
		persisted[models.RowField{RowID: c.RowID, Field: c.Field}] = c
	}

	for rowID, fields := range snapshot.Pending {
		row, ok := o.baseline[rowID]
		if !ok {
			report.Dropped += len(fields)
			continue
		}
		if len(fields) == 0 {
			continue
		}

		restored := make(map[string]models.PendingField, len(fields))
		for field, pf := range fields {
			pf.Value = models.Normalize(field, pf.Value)
			pf.BaseValue = models.Normalize(field, pf.BaseValue)
			restored[field] = pf
			if pf.Revision > o.revision {
				o.revision = pf.Revision
			}
		}
		o.pending[rowID] = restored
		report.Rows++
		report.Fields += len(restored)

		for field := range restored {
			key := models.RowField{RowID: rowID, Field: field}
			o.detectLocked(row, field)
			if c, ok := o.conflicts[key]; ok {
				if prev, ok := persisted[key]; ok {
					c.DetectedAt = prev.DetectedAt
					o.conflicts[key] = c
				}
			}
		}
	}

	report.Conflicts = len(o.conflicts)
	report.Restored = report.Fields > 0
	if report.Restored {
		o.lastModified = snapshot.LastModified
	}
	return report
}

func indexRows(rows []models.EstimateLine) map[string]models.EstimateLine {
	out := make(map[string]models.EstimateLine, len(rows))
	for _, row := range rows {
		row = row.Clone()
		models.NormalizeFields(row.Fields)
		out[row.ID] = row
	}
	return out
}

// syncPlan is one bulk update built from the overlay together with what is
// needed to apply its result later.
type syncPlan struct {
	sessionID string
	docID     string
	updates   []models.RowUpdate
	sent      map[models.RowField]models.PendingField
}

func (p syncPlan) empty() bool {
	return len(p.updates) == 0
}

func (p syncPlan) rowIDs() []string {
	ids := make([]string, 0, len(p.updates))
	for _, u := range p.updates {
		ids = append(ids, u.ID)
	}
	return ids
}

// buildPlan collects one row update per row with pending edits. Conflicted
// fields stay out until the user resolves them; a row whose every field is
// conflicted is omitted.
func (o *overlay) buildPlan() syncPlan {
	o.mu.RLock()
	defer o.mu.RUnlock()

	plan := syncPlan{
		sessionID: o.sessionID,
		docID:     o.docID,
		sent:      make(map[models.RowField]models.PendingField),
	}
	if o.sessionID == "" {
		return plan
	}

	for _, rowID := range slices.Sorted(maps.Keys(o.pending)) {
		update := models.RowUpdate{ID: rowID, ParentID: o.parentID, Fields: make(map[string]any)}
		if row, ok := o.baseline[rowID]; ok && row.ParentID != "" {
			update.ParentID = row.ParentID
		}

		for field, pf := range o.pending[rowID] {
			key := models.RowField{RowID: rowID, Field: field}
			if _, conflicted := o.conflicts[key]; conflicted {
				continue
			}
			update.Fields[field] = pf.Value
			plan.sent[key] = pf
		}
		if len(update.Fields) > 0 {
			plan.updates = append(plan.updates, update)
		}
	}
	return plan
}

// syncOutcome is the classified result of a bulk update for one plan.
type syncOutcome struct {
	cleared map[string]bool
	stale   map[string]bool
	failed  map[string]bool
}

// applyTarget tells where the result of a bulk update ended up.
type applyTarget int

const (
	// appliedLive: the session that built the plan is still active.
	appliedLive applyTarget = iota
	// appliedReopened: the document was closed and opened again meanwhile.
	// Restored edits keep their revisions, so guarded clearing is still exact.
	appliedReopened
	// detached: another document (or none) is active; live state is untouched.
	detached
)

// applyOutcome clears confirmed fields, drops stale rows and counts a retry
// on failed ones. A field re-edited while the request was in flight keeps
// its newer value but is rebased onto what the authority now holds. Echoed
// rows are merged only into the session that sent them.
func (o *overlay) applyOutcome(plan syncPlan, out syncOutcome, echoed []models.EstimateLine) applyTarget {
	o.mu.Lock()
	defer o.mu.Unlock()

	target := appliedLive
	switch {
	case o.sessionID == plan.sessionID:
	case o.sessionID != "" && o.docID == plan.docID:
		target = appliedReopened
	default:
		return detached
	}

	for rowID := range out.stale {
		o.deleteRowLocked(rowID)
	}

	for key, sent := range plan.sent {
		if out.stale[key.RowID] {
			continue
		}

		if out.cleared[key.RowID] {
			if row, ok := o.baseline[key.RowID]; ok {
				row.Fields[key.Field] = sent.Value
			}
		}

		pf, ok := o.pending[key.RowID][key.Field]
		if !ok {
			continue
		}
		switch {
		case out.cleared[key.RowID] && pf.Revision == sent.Revision:
			o.deleteFieldLocked(key.RowID, key.Field)
		case out.cleared[key.RowID]:
			pf.BaseValue, pf.HasBase = sent.Value, true
			o.pending[key.RowID][key.Field] = pf
		case out.failed[key.RowID]:
			pf.RetryCount++
			o.pending[key.RowID][key.Field] = pf
		}
	}

	if target == appliedLive {
		for _, row := range echoed {
			if _, known := o.baseline[row.ID]; known {
				o.mergeRowLocked(row)
			}
		}
	}

	o.lastModified = o.now()
	return target
}

// reconcileSnapshot applies a detached outcome to a persisted snapshot so a
// later reopen does not resend edits the authority already has.
func reconcileSnapshot(snapshot *models.SessionSnapshot, plan syncPlan, out syncOutcome) bool {
	changed := false
	for rowID := range out.stale {
		if _, ok := snapshot.Pending[rowID]; ok {
			delete(snapshot.Pending, rowID)
			changed = true
		}
	}

	for key, sent := range plan.sent {
		if !out.cleared[key.RowID] {
			continue
		}
		pf, ok := snapshot.Pending[key.RowID][key.Field]
		if !ok || pf.Revision != sent.Revision {
			continue
		}
		delete(snapshot.Pending[key.RowID], key.Field)
		if len(snapshot.Pending[key.RowID]) == 0 {
			delete(snapshot.Pending, key.RowID)
		}
		changed = true
	}

	if changed {
		kept := snapshot.Conflicts[:0]
		for _, c := range snapshot.Conflicts {
			if _, ok := snapshot.Pending[c.RowID][c.Field]; ok {
				kept = append(kept, c)
			}
		}
		snapshot.Conflicts = kept
	}
	return changed
}
