package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/go-estimate-sync/internal/adapter"
	"github.com/MKhiriev/go-estimate-sync/internal/client"
	"github.com/MKhiriev/go-estimate-sync/internal/config"
	"github.com/MKhiriev/go-estimate-sync/internal/logger"
	"github.com/MKhiriev/go-estimate-sync/internal/service"
	"github.com/MKhiriev/go-estimate-sync/internal/store"
	"github.com/MKhiriev/go-estimate-sync/internal/tui"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	cfg, err := config.GetClientConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error getting configs: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewClientLogger("estimate-client", cfg.Log.Path)
	log.Debug().Any("config", cfg).Msg("received configs")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()
	ctx = log.WithContext(ctx)

	authorityAdapter, err := adapter.NewHTTPAdapter(cfg.Adapter, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create authority adapter")
	}

	sessions, err := store.NewKeyValueStore(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create session storage")
	}

	editor := service.NewEditor(authorityAdapter, sessions, service.NewEditorOptions(cfg.Editor), log)
	retry := service.NewRetryJob(editor, log)
	ui := tui.New(editor, authorityAdapter, log)

	app, err := client.NewApp(editor, retry, ui, sessions, cfg.Workers, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init client app error")
	}

	if err = app.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("client run error")
	}
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
