package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-estimate-sync/internal/config"
	"github.com/MKhiriev/go-estimate-sync/internal/logger"
	"github.com/MKhiriev/go-estimate-sync/internal/service"
	"github.com/MKhiriev/go-estimate-sync/internal/store"
	"github.com/MKhiriev/go-estimate-sync/internal/tui"
)

// shutdownTimeout bounds the final save and the wait for an in-flight sync.
const shutdownTimeout = 10 * time.Second

type App struct {
	editor service.EstimateEditor
	retry  service.RetryJob
	ui     UI
	kv     store.KeyValueStore
	cfg    config.Workers
	logger *logger.Logger
}

func NewApp(editor service.EstimateEditor, retry service.RetryJob, ui UI, kv store.KeyValueStore, cfg config.Workers, log *logger.Logger) (*App, error) {
	if editor == nil || retry == nil || ui == nil || kv == nil {
		return nil, errors.New("client app: missing dependency")
	}
	return &App{editor: editor, retry: retry, ui: ui, kv: kv, cfg: cfg, logger: log}, nil
}

// Run starts the retry job, blocks in the UI and then shuts down: the open
// session is persisted, an in-flight sync is awaited and the store closed.
func (a *App) Run(ctx context.Context) error {
	a.retry.Start(ctx, a.cfg.RetryInterval)

	uiErr := a.ui.Run(ctx)
	if errors.Is(uiErr, tui.ErrUserQuit) {
		uiErr = nil
	}
	a.retry.Stop()

	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	var errs []error
	if uiErr != nil {
		errs = append(errs, fmt.Errorf("ui: %w", uiErr))
	}
	if err := a.editor.Close(closeCtx); err != nil {
		a.logger.Err(err).Str("func", "App.Run").Msg("editor did not shut down cleanly")
		errs = append(errs, fmt.Errorf("close editor: %w", err))
	}
	if err := a.kv.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close session store: %w", err))
	}

	a.logger.Info().Str("func", "App.Run").Msg("client stopped")
	return errors.Join(errs...)
}
