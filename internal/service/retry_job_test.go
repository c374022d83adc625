// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-estimate-sync/internal/logger"
	"github.com/MKhiriev/go-estimate-sync/models"
)

// spyEditor считает вызовы RequestSync; статус и наличие правок задаются тестом.
type spyEditor struct {
	calls   atomic.Int64
	status  atomic.Value
	unsaved atomic.Bool
}

func newSpyEditor(status models.SyncStatus, unsaved bool) *spyEditor {
	s := &spyEditor{}
	s.status.Store(status)
	s.unsaved.Store(unsaved)
	return s
}

func (s *spyEditor) SyncStatus() models.SyncStatus { return s.status.Load().(models.SyncStatus) }
func (s *spyEditor) HasUnsavedChanges() bool       { return s.unsaved.Load() }
func (s *spyEditor) RequestSync()                  { s.calls.Add(1) }

// ── NewRetryJob ─────────────────────────────────────────────────────────────

func TestNewRetryJob_ReturnsInterface(t *testing.T) {
	job := NewRetryJob(newSpyEditor(models.SyncStatusIdle, false), logger.Nop())
	require.NotNil(t, job)

	var _ RetryJob = job
}

// ── Start / Stop ────────────────────────────────────────────────────────────

func TestRetryJob_RetriesFailedSync(t *testing.T) {
	spy := newSpyEditor(models.SyncStatusError, true)
	job := NewRetryJob(spy, logger.Nop())

	// Интервал 10ms: за 55ms должно быть ~5 тиков
	job.Start(context.Background(), 10*time.Millisecond)
	time.Sleep(55 * time.Millisecond)
	job.Stop()

	got := spy.calls.Load()
	assert.GreaterOrEqual(t, got, int64(3), "RequestSync должен быть вызван несколько раз, вызвано: %d", got)
}

func TestRetryJob_SkipsWhenNothingToRetry(t *testing.T) {
	cases := []struct {
		name    string
		status  models.SyncStatus
		unsaved bool
	}{
		{"idle with edits", models.SyncStatusIdle, true},
		{"syncing", models.SyncStatusSyncing, true},
		{"conflict", models.SyncStatusConflict, true},
		{"error without edits", models.SyncStatusError, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			spy := newSpyEditor(tc.status, tc.unsaved)
			job := NewRetryJob(spy, logger.Nop())

			job.Start(context.Background(), 5*time.Millisecond)
			time.Sleep(30 * time.Millisecond)
			job.Stop()

			assert.Zero(t, spy.calls.Load())
		})
	}
}

func TestRetryJob_StopsRetryingOnceRecovered(t *testing.T) {
	spy := newSpyEditor(models.SyncStatusError, true)
	job := NewRetryJob(spy, logger.Nop())

	job.Start(context.Background(), 5*time.Millisecond)
	require.Eventually(t, func() bool { return spy.calls.Load() > 0 }, time.Second, time.Millisecond)

	spy.status.Store(models.SyncStatusIdle)
	time.Sleep(10 * time.Millisecond)
	before := spy.calls.Load()
	time.Sleep(30 * time.Millisecond)
	job.Stop()

	assert.Equal(t, before, spy.calls.Load())
}

func TestRetryJob_Stop_StopsGoroutine(t *testing.T) {
	spy := newSpyEditor(models.SyncStatusError, true)
	job := NewRetryJob(spy, logger.Nop())

	job.Start(context.Background(), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	job.Stop()

	callsAfterStop := spy.calls.Load()
	time.Sleep(30 * time.Millisecond)

	assert.Equal(t, callsAfterStop, spy.calls.Load(), "после Stop новых вызовов быть не должно")
}

func TestRetryJob_Stop_BeforeStart_NoPanic(t *testing.T) {
	job := NewRetryJob(newSpyEditor(models.SyncStatusIdle, false), logger.Nop())

	assert.NotPanics(t, func() { job.Stop() })
}

func TestRetryJob_DoubleStop_NoPanic(t *testing.T) {
	job := NewRetryJob(newSpyEditor(models.SyncStatusIdle, false), logger.Nop())

	job.Start(context.Background(), 10*time.Millisecond)
	job.Stop()

	assert.NotPanics(t, func() { job.Stop() })
}

func TestRetryJob_Start_DefaultInterval(t *testing.T) {
	spy := newSpyEditor(models.SyncStatusError, true)
	job := NewRetryJob(spy, logger.Nop())

	// interval <= 0 → дефолт 30 секунд, за 20ms вызовов быть не должно
	job.Start(context.Background(), 0)
	time.Sleep(20 * time.Millisecond)
	job.Stop()

	job.Start(context.Background(), -time.Second)
	time.Sleep(20 * time.Millisecond)
	job.Stop()

	assert.Equal(t, int64(0), spy.calls.Load())
}

func TestRetryJob_Restart_StopsPrevious(t *testing.T) {
	spy := newSpyEditor(models.SyncStatusError, true)
	job := NewRetryJob(spy, logger.Nop())
	ctx := context.Background()

	job.Start(ctx, 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	callsBefore := spy.calls.Load()
	assert.Greater(t, callsBefore, int64(0))

	// Start повторно на том же job: внутри вызовет Stop()
	job.Start(ctx, 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	job.Stop()

	assert.Greater(t, spy.calls.Load(), callsBefore, "второй Start должен продолжить генерировать вызовы")
}

func TestRetryJob_ContextCancel_StopsJob(t *testing.T) {
	job := NewRetryJob(newSpyEditor(models.SyncStatusError, true), logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())

	job.Start(ctx, 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	cancel()

	done := make(chan struct{})
	go func() {
		job.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop завис после отмены контекста")
	}
}

func TestRetryJob_RecoversEditorAfterTransportFailure(t *testing.T) {
	updater := newFakeUpdater()
	var failing atomic.Bool
	failing.Store(true)
	updater.respond = func([]models.RowUpdate) (models.BulkUpdateResponse, error) {
		if failing.Load() {
			return models.BulkUpdateResponse{}, assert.AnError
		}
		return models.BulkUpdateResponse{Success: true}, nil
	}
	e := newTestEditor(t, updater, nil, EditorOptions{DebounceWindow: time.Hour})
	startD1(t, e)

	e.UpdateField("L1", models.FieldPartCost, 250)
	_, err := e.SyncNow(context.Background())
	require.ErrorIs(t, err, ErrTransport)
	require.Equal(t, models.SyncStatusError, e.SyncStatus())

	failing.Store(false)
	job := NewRetryJob(e, logger.Nop())
	job.Start(context.Background(), 10*time.Millisecond)
	defer job.Stop()

	require.Eventually(t, func() bool {
		return !e.HasUnsavedChanges() && e.SyncStatus() == models.SyncStatusIdle
	}, 2*time.Second, 5*time.Millisecond)
}
