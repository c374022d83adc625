package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-estimate-sync/internal/logger"
	"github.com/MKhiriev/go-estimate-sync/internal/mock"
	"github.com/MKhiriev/go-estimate-sync/internal/store"
	"github.com/MKhiriev/go-estimate-sync/models"
)

func sampleSnapshot() models.SessionSnapshot {
	edited := time.Date(2026, 5, 4, 12, 30, 0, 0, time.UTC)
	return models.SessionSnapshot{
		DocumentID: "D1",
		ParentID:   "D1",
		Pending: models.PendingChanges{
			"L1": {
				models.FieldPartCost: {Value: 250.0, BaseValue: 120.0, HasBase: true, EditedAt: edited, Revision: 3},
				models.FieldNotes:    {Value: nil, EditedAt: edited, Revision: 4},
			},
		},
		Conflicts: []models.Conflict{
			{RowID: "L1", Field: models.FieldPartCost, LocalValue: 250.0, ServerValue: 130.0, DetectedAt: edited},
		},
		LastModified: edited,
		Version:      models.SessionSnapshotVersion,
	}
}

func TestSessionKey_DependsOnDocumentOnly(t *testing.T) {
	assert.Equal(t, "estimate-session/D1", SessionKey("D1"))
	assert.Equal(t, SessionKey("D1"), SessionKey("D1"))
	assert.NotEqual(t, SessionKey("D1"), SessionKey("D2"))
}

func TestSessionPersister_RoundTrip(t *testing.T) {
	ctx := context.Background()
	p := NewSessionPersister(store.NewMemoryStore(), logger.Nop())

	want := sampleSnapshot()
	require.NoError(t, p.Save(ctx, want))

	got, found, err := p.Load(ctx, "D1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, want, got)
}

func TestSessionPersister_LoadMissing(t *testing.T) {
	p := NewSessionPersister(store.NewMemoryStore(), logger.Nop())

	_, found, err := p.Load(context.Background(), "D1")

	require.NoError(t, err)
	assert.False(t, found)
}

func TestSessionPersister_EmptyOverlayDeletesKey(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	p := NewSessionPersister(kv, logger.Nop())

	require.NoError(t, p.Save(ctx, sampleSnapshot()))
	require.NoError(t, p.Save(ctx, models.SessionSnapshot{DocumentID: "D1"}))

	_, err := kv.Get(ctx, SessionKey("D1"))
	assert.ErrorIs(t, err, store.ErrKeyNotFound)
}

func TestSessionPersister_RejectsEmptyDocument(t *testing.T) {
	p := NewSessionPersister(store.NewMemoryStore(), logger.Nop())
	assert.ErrorIs(t, p.Save(context.Background(), models.SessionSnapshot{}), ErrEmptyDocumentID)
}

func TestSessionPersister_UnknownVersion(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	p := NewSessionPersister(kv, logger.Nop())

	snap := sampleSnapshot()
	snap.Version = 2
	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	require.NoError(t, kv.Put(ctx, SessionKey("D1"), raw))

	_, found, err := p.Load(ctx, "D1")
	assert.ErrorIs(t, err, ErrSnapshotVersion)
	assert.False(t, found)
}

func TestSessionPersister_CorruptPayload(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	require.NoError(t, kv.Put(ctx, SessionKey("D1"), []byte("{not json")))

	_, found, err := NewSessionPersister(kv, logger.Nop()).Load(ctx, "D1")
	assert.Error(t, err)
	assert.False(t, found)
}

func TestSessionPersister_StoreErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	kv := mock.NewMockKeyValueStore(ctrl)
	p := NewSessionPersister(kv, logger.Nop())
	boom := errors.New("disk full")

	kv.EXPECT().Put(gomock.Any(), "estimate-session/D1", gomock.Any()).Return(boom)
	kv.EXPECT().Get(gomock.Any(), "estimate-session/D1").Return(nil, boom)
	kv.EXPECT().Delete(gomock.Any(), "estimate-session/D1").Return(boom)

	ctx := context.Background()
	assert.ErrorIs(t, p.Save(ctx, sampleSnapshot()), boom)

	_, _, err := p.Load(ctx, "D1")
	assert.ErrorIs(t, err, boom)

	assert.ErrorIs(t, p.Delete(ctx, "D1"), boom)
}

// ── persistWriter ───────────────────────────────────────────────────────────

func TestPersistWriter_SavesInBackground(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	kv := store.NewMemoryStore()
	p := NewSessionPersister(kv, logger.Nop())
	ov := openOverlay(testRows())
	w := newPersistWriter(p, ov.snapshot, logger.Nop())
	w.start(ctx)
	defer w.close()

	ov.updateField("L1", models.FieldPartCost, 250)
	w.notify()
	w.notify()

	require.Eventually(t, func() bool {
		snap, found, err := p.Load(ctx, "D1")
		return err == nil && found && snap.Pending["L1"][models.FieldPartCost].Value == 250.0
	}, time.Second, 5*time.Millisecond)
}

func TestPersistWriter_PersistNowWithoutSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	kv := mock.NewMockKeyValueStore(ctrl)
	w := newPersistWriter(NewSessionPersister(kv, logger.Nop()), newOverlay().snapshot, logger.Nop())

	assert.NoError(t, w.persistNow(context.Background()))
}

func TestPersistWriter_PersistNowClearedOverlayDeletes(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	p := NewSessionPersister(kv, logger.Nop())
	ov := openOverlay(testRows())
	w := newPersistWriter(p, ov.snapshot, logger.Nop())

	ov.updateField("L1", models.FieldPartCost, 250)
	require.NoError(t, w.persistNow(ctx))
	_, found, _ := p.Load(ctx, "D1")
	require.True(t, found)

	ov.discard()
	require.NoError(t, w.persistNow(ctx))
	_, found, _ = p.Load(ctx, "D1")
	assert.False(t, found)
}
