package service

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-estimate-sync/models"
)

type handoffRecorder struct {
	mu      sync.Mutex
	changes []models.FieldChange
}

func (r *handoffRecorder) record(c models.FieldChange) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, c)
}

func (r *handoffRecorder) all() []models.FieldChange {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.FieldChange(nil), r.changes...)
}

func change(rowID, field string, value any) models.FieldChange {
	return models.FieldChange{
		RowID:    rowID,
		Field:    field,
		Value:    value,
		Priority: models.LookupField(field).Priority,
	}
}

func TestTracker_CoalescesEditsOfOneField(t *testing.T) {
	rec := &handoffRecorder{}
	tr := newTracker(60*time.Millisecond, 120*time.Millisecond, rec.record)
	defer tr.close()

	for _, v := range []float64{100, 150, 175} {
		tr.track(change("L1", models.FieldPartCost, v))
		time.Sleep(10 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return len(rec.all()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(100 * time.Millisecond)

	got := rec.all()
	require.Len(t, got, 1)
	assert.Equal(t, 175.0, got[0].Value)
	assert.Zero(t, tr.armed())
}

func TestTracker_KeysAreIndependent(t *testing.T) {
	rec := &handoffRecorder{}
	tr := newTracker(40*time.Millisecond, 80*time.Millisecond, rec.record)
	defer tr.close()

	tr.track(change("L1", models.FieldPartCost, 1))
	tr.track(change("L1", models.FieldLaborHours, 2))
	tr.track(change("L2", models.FieldPartCost, 3))
	assert.Equal(t, 3, tr.armed())

	require.Eventually(t, func() bool { return len(rec.all()) == 3 }, time.Second, 5*time.Millisecond)
}

func TestTracker_ImmediatePrioritySkipsTimer(t *testing.T) {
	rec := &handoffRecorder{}
	tr := newTracker(time.Hour, time.Hour, rec.record)
	defer tr.close()

	tr.track(change("L1", models.FieldOperationCode, "RPR"))

	require.Len(t, rec.all(), 1, "handed off before track returns")
	assert.Zero(t, tr.armed())
}

func TestTracker_ImmediateEditReplacesArmedTimer(t *testing.T) {
	rec := &handoffRecorder{}
	tr := newTracker(time.Hour, time.Hour, rec.record)
	defer tr.close()

	standard := change("L1", models.FieldOperationCode, "RPL")
	standard.Priority = models.PriorityStandard
	tr.track(standard)
	tr.track(change("L1", models.FieldOperationCode, "RPR"))

	got := rec.all()
	require.Len(t, got, 1)
	assert.Equal(t, "RPR", got[0].Value)
	assert.Zero(t, tr.armed())
}

func TestTracker_DeferredWindowIsLonger(t *testing.T) {
	rec := &handoffRecorder{}
	tr := newTracker(20*time.Millisecond, 300*time.Millisecond, rec.record)
	defer tr.close()

	tr.track(change("L1", models.FieldNotes, "later"))
	tr.track(change("L1", models.FieldPartCost, 1))

	require.Eventually(t, func() bool { return len(rec.all()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, models.FieldPartCost, rec.all()[0].Field)
	assert.Equal(t, 1, tr.armed())
}

func TestTracker_FlushHandsOffExactlyOnce(t *testing.T) {
	rec := &handoffRecorder{}
	tr := newTracker(30*time.Millisecond, 60*time.Millisecond, rec.record)
	defer tr.close()

	tr.track(change("L1", models.FieldPartCost, 5))

	assert.True(t, tr.flush("L1", models.FieldPartCost))
	assert.False(t, tr.flush("L1", models.FieldPartCost))
	time.Sleep(80 * time.Millisecond)

	assert.Len(t, rec.all(), 1)
}

func TestTracker_FlushAllIsSorted(t *testing.T) {
	rec := &handoffRecorder{}
	tr := newTracker(time.Hour, time.Hour, rec.record)
	defer tr.close()

	tr.track(change("L3", models.FieldPartCost, 1))
	tr.track(change("L1", models.FieldPartCost, 1))
	tr.track(change("L1", models.FieldDescription, "x"))

	assert.Equal(t, 3, tr.flushAll())

	got := rec.all()
	require.Len(t, got, 3)
	assert.Equal(t, "L1", got[0].RowID)
	assert.Equal(t, models.FieldDescription, got[0].Field)
	assert.Equal(t, models.FieldPartCost, got[1].Field)
	assert.Equal(t, "L3", got[2].RowID)
	assert.Zero(t, tr.flushAll())
}

func TestTracker_CancelAllDropsTimers(t *testing.T) {
	rec := &handoffRecorder{}
	tr := newTracker(20*time.Millisecond, 40*time.Millisecond, rec.record)
	defer tr.close()

	tr.track(change("L1", models.FieldPartCost, 1))
	tr.cancelAll()
	time.Sleep(60 * time.Millisecond)

	assert.Empty(t, rec.all())
	assert.Zero(t, tr.armed())
}

func TestTracker_IgnoresEditsAfterClose(t *testing.T) {
	rec := &handoffRecorder{}
	tr := newTracker(10*time.Millisecond, 20*time.Millisecond, rec.record)

	tr.close()
	tr.track(change("L1", models.FieldOperationCode, "RPR"))
	tr.track(change("L1", models.FieldPartCost, 1))
	time.Sleep(40 * time.Millisecond)

	assert.Empty(t, rec.all())
}
