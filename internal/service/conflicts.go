package service

import (
	"cmp"
	"slices"

	"github.com/MKhiriev/go-estimate-sync/models"
)

// MergeReport describes what a baseline merge did to the overlay.
type MergeReport struct {
	// Replaced counts rows without pending edits that were replaced outright.
	Replaced int
	// Merged counts rows with pending edits whose baseline was merged.
	Merged int
	// Dropped counts pending fields of rows the authority no longer returns.
	Dropped int
	// Conflicts counts conflicts open after the merge.
	Conflicts int
}

// detectLocked compares the server value of field in row with the pending
// edit made against the previous baseline.
//
//   - server equals local: the edit already landed, it is rebased and any
//     conflict goes away;
//   - server equals the value the edit was made against: nothing changed
//     upstream;
//   - otherwise the server moved underneath the edit and a conflict is
//     recorded (or refreshed) while the local value stays displayed.
func (o *overlay) detectLocked(row models.EstimateLine, field string) {
	key := models.RowField{RowID: row.ID, Field: field}
	pf, ok := o.pending[row.ID][field]
	if !ok {
		delete(o.conflicts, key)
		return
	}

	// an absent field compares as null
	server, _ := row.Value(field)
	var base any
	if pf.HasBase {
		base = pf.BaseValue
	}

	switch {
	case models.ValuesEqual(field, server, pf.Value):
		pf.BaseValue, pf.HasBase = server, true
		o.pending[row.ID][field] = pf
		delete(o.conflicts, key)
	case models.ValuesEqual(field, server, base):
		delete(o.conflicts, key)
	default:
		c, exists := o.conflicts[key]
		if !exists {
			c = models.Conflict{RowID: row.ID, Field: field, DetectedAt: o.now()}
		}
		c.LocalValue = pf.Value
		c.ServerValue = server
		o.conflicts[key] = c
	}
}

// mergeRowLocked adopts row as the new baseline. Non-pending fields and the
// sequence number come from the server as they are; pending fields go
// through conflict detection.
func (o *overlay) mergeRowLocked(row models.EstimateLine) bool {
	row = row.Clone()
	models.NormalizeFields(row.Fields)
	o.baseline[row.ID] = row

	fields, ok := o.pending[row.ID]
	if !ok {
		return false
	}
	for field := range fields {
		o.detectLocked(row, field)
	}
	return true
}

// mergeBaseline applies a refetched list of rows for the active document.
// Pending edits of rows that disappeared are dropped silently: they point at
// deleted or renumbered lines.
func (o *overlay) mergeBaseline(rows []models.EstimateLine) MergeReport {
	o.mu.Lock()
	defer o.mu.Unlock()

	var report MergeReport
	incoming := make(map[string]bool, len(rows))
	o.baseline = make(map[string]models.EstimateLine, len(rows))

	for _, row := range rows {
		incoming[row.ID] = true
		if o.mergeRowLocked(row) {
			report.Merged++
		} else {
			report.Replaced++
		}
	}

	for rowID := range o.pending {
		if !incoming[rowID] {
			report.Dropped += o.deleteRowLocked(rowID)
		}
	}
	if report.Dropped > 0 {
		o.lastModified = o.now()
	}

	report.Conflicts = len(o.conflicts)
	return report
}

// mergeEchoed merges rows echoed back outside of a sync. Unlike a refetch
// it never drops rows that were not echoed.
func (o *overlay) mergeEchoed(rows []models.EstimateLine) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, row := range rows {
		if _, known := o.baseline[row.ID]; !known {
			continue
		}
		o.mergeRowLocked(row)
	}
}

func (o *overlay) conflictList() []models.Conflict {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.conflictListLocked()
}

func (o *overlay) conflictListLocked() []models.Conflict {
	out := make([]models.Conflict, 0, len(o.conflicts))
	for _, c := range o.conflicts {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b models.Conflict) int {
		return cmp.Or(cmp.Compare(a.RowID, b.RowID), cmp.Compare(a.Field, b.Field))
	})
	return out
}

func (o *overlay) conflictCount() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.conflicts)
}

// resolve applies the user's choice for a conflict. Keeping local rebases
// the edit onto the server value so it is sent again; using the server value
// drops the edit, the baseline already holds the server value.
func (o *overlay) resolve(rowID, field string, useLocal bool) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	key := models.RowField{RowID: rowID, Field: field}
	c, ok := o.conflicts[key]
	if !ok {
		return ErrConflictNotFound
	}

	pf, pending := o.pending[rowID][field]
	switch {
	case !pending:
		delete(o.conflicts, key)
	case useLocal:
		pf.BaseValue, pf.HasBase = c.ServerValue, true
		o.pending[rowID][field] = pf
		delete(o.conflicts, key)
	default:
		o.deleteFieldLocked(rowID, field)
	}
	o.lastModified = o.now()
	return nil
}
