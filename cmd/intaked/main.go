package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/intakehq/referral-ocr/internal/assess"
	"github.com/intakehq/referral-ocr/internal/checklist"
	"github.com/intakehq/referral-ocr/internal/common"
	"github.com/intakehq/referral-ocr/internal/extract"
	"github.com/intakehq/referral-ocr/internal/normalize"
	"github.com/intakehq/referral-ocr/internal/ocr"
	"github.com/intakehq/referral-ocr/internal/pipeline"
	"github.com/intakehq/referral-ocr/internal/rules"
	"github.com/intakehq/referral-ocr/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("service failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	normCfg := normalize.DefaultConfig()
	if path := cfg.Pipeline.NormalizeConfigPath; path != "" {
		var err error
		if normCfg, err = normalize.LoadConfig(path); err != nil {
			return err
		}
		logger.Info("normalize config loaded", "path", path)
	}
	normalizer, err := normalize.New(normCfg)
	if err != nil {
		return err
	}

	ruleStore := rules.NewStore()
	if path := cfg.Pipeline.RulePackPath; path != "" {
		pack, err := rules.LoadPack(path)
		if err != nil {
			return err
		}
		if err := ruleStore.Install(pack); err != nil {
			return err
		}
		logger.Info("rule pack installed", "pack", pack.Name, "rules", len(pack.Rules))
	}

	store, err := checklist.Open(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	processor := pipeline.NewProcessor(
		normalizer,
		extract.New(ruleStore, logger),
		assess.New(logger),
		logger,
	)
	streams := pipeline.NewStreams(cfg.Batch.StreamIdleAfter)
	batch := pipeline.NewBatch(
		processor,
		ocr.NewClient(cfg.OCR.Command, cfg.OCR.Timeout, logger),
		streams,
		logger,
		pipeline.WithWorkers(cfg.Batch.Workers),
		pipeline.WithQueueSize(cfg.Batch.QueueSize),
		pipeline.WithDocTimeout(cfg.Batch.DocTimeout),
	)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: server.New(processor, batch, streams, ruleStore, store, logger).Routes(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
