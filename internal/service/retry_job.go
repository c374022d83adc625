package service

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/go-estimate-sync/internal/config"
	"github.com/MKhiriev/go-estimate-sync/internal/logger"
	"github.com/MKhiriev/go-estimate-sync/models"
)

// retryTarget is the part of the editor the retry job needs.
type retryTarget interface {
	SyncStatus() models.SyncStatus
	HasUnsavedChanges() bool
	RequestSync()
}

type retryJob struct {
	editor retryTarget
	logger *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRetryJob creates a job that re-triggers a failed sync on a ticker.
// The job is idle until Start is called.
func NewRetryJob(editor retryTarget, log *logger.Logger) RetryJob {
	return &retryJob{editor: editor, logger: log}
}

// Start implements RetryJob. It stops any previously running job, then
// launches a goroutine that, every interval, requests a sync if the last
// attempt failed and edits are still pending. If interval is zero or
// negative it defaults to config.DefaultRetryInterval. The goroutine exits
// when ctx is cancelled or Stop is called.
func (j *retryJob) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = config.DefaultRetryInterval
	}

	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				if j.editor.SyncStatus() != models.SyncStatusError || !j.editor.HasUnsavedChanges() {
					continue
				}
				j.logger.Debug().Str("func", "retryJob.tick").Msg("retrying failed sync")
				j.editor.RequestSync()
			}
		}
	}()
}

// Stop implements RetryJob. It cancels the background goroutine's context
// and blocks until it has exited. Safe to call when the job is not running.
func (j *retryJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}
