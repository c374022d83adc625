package service

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"github.com/MKhiriev/go-estimate-sync/models"
)

type trackedField struct {
	timer  *time.Timer
	gen    uint64
	change models.FieldChange
}

// tracker debounces settled field edits per (row, field) key. Every edit of
// a key re-arms its timer; immediate-priority fields skip the timer. Each
// settling is handed off exactly once, whether by timer expiry or by a flush.
type tracker struct {
	mu      sync.Mutex
	windows map[models.Priority]time.Duration
	fields  map[models.RowField]*trackedField
	gen     uint64
	closed  bool

	handoff func(models.FieldChange)
}

func newTracker(standard, deferred time.Duration, handoff func(models.FieldChange)) *tracker {
	return &tracker{
		windows: map[models.Priority]time.Duration{
			models.PriorityImmediate: 0,
			models.PriorityStandard:  standard,
			models.PriorityDeferred:  deferred,
		},
		fields:  make(map[models.RowField]*trackedField),
		handoff: handoff,
	}
}

// track records change and (re)arms the debounce timer of its key.
func (t *tracker) track(change models.FieldChange) {
	key := models.RowField{RowID: change.RowID, Field: change.Field}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}

	if tf, ok := t.fields[key]; ok {
		tf.timer.Stop()
		delete(t.fields, key)
	}

	window := t.windows[change.Priority]
	if window <= 0 {
		t.mu.Unlock()
		t.handoff(change)
		return
	}

	t.gen++
	gen := t.gen
	t.fields[key] = &trackedField{
		gen:    gen,
		change: change,
		timer:  time.AfterFunc(window, func() { t.expire(key, gen) }),
	}
	t.mu.Unlock()
}

// expire is the timer callback. A timer that lost the race with a flush or
// a newer edit finds a different generation and does nothing.
func (t *tracker) expire(key models.RowField, gen uint64) {
	t.mu.Lock()
	tf, ok := t.fields[key]
	if !ok || tf.gen != gen {
		t.mu.Unlock()
		return
	}
	delete(t.fields, key)
	t.mu.Unlock()

	t.handoff(tf.change)
}

// flush hands off the latest edit of key right away. It reports whether
// there was an unsettled edit to hand off.
func (t *tracker) flush(rowID, field string) bool {
	key := models.RowField{RowID: rowID, Field: field}

	t.mu.Lock()
	tf, ok := t.fields[key]
	if ok {
		tf.timer.Stop()
		delete(t.fields, key)
	}
	t.mu.Unlock()

	if ok {
		t.handoff(tf.change)
	}
	return ok
}

// flushAll hands off every unsettled edit and returns how many there were.
func (t *tracker) flushAll() int {
	t.mu.Lock()
	changes := make([]models.FieldChange, 0, len(t.fields))
	for key, tf := range t.fields {
		tf.timer.Stop()
		changes = append(changes, tf.change)
		delete(t.fields, key)
	}
	t.mu.Unlock()

	slices.SortFunc(changes, func(a, b models.FieldChange) int {
		return cmp.Or(cmp.Compare(a.RowID, b.RowID), cmp.Compare(a.Field, b.Field))
	})
	for _, change := range changes {
		t.handoff(change)
	}
	return len(changes)
}

// cancelAll disarms every timer without handing anything off.
func (t *tracker) cancelAll() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for key, tf := range t.fields {
		tf.timer.Stop()
		delete(t.fields, key)
	}
}

func (t *tracker) armed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.fields)
}

// close cancels all timers and ignores later edits.
func (t *tracker) close() {
	t.cancelAll()

	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
}
