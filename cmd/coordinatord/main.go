package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/chaumian/coordinator/internal/config"
	"github.com/chaumian/coordinator/internal/core/application"
	"github.com/chaumian/coordinator/internal/infrastructure/broadcaster"
	"github.com/chaumian/coordinator/internal/infrastructure/exchangerate"
	"github.com/chaumian/coordinator/internal/infrastructure/feeestimator"
)

//nolint:all
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid config")
	}

	log.SetLevel(log.Level(cfg.LogLevel))

	feeClient, err := feeestimator.New(cfg.BitcoinNodeRPCHost, cfg.BitcoinNodeRPCUser, cfg.BitcoinNodeRPCPass)
	if err != nil {
		log.WithError(err).Fatal("failed to dial bitcoind")
	}
	defer feeClient.Shutdown()

	rateClient := exchangerate.New(cfg.ExchangeRateURL)
	events := broadcaster.New(64)

	scheduler := application.NewScheduler(cfg, events, feeClient, rateClient, nil, log.StandardLogger())

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		for event := range events.Events() {
			log.WithField("phase", event.NewPhase).Info(event.Message)
		}
	}()

	log.Info("starting coordinator...")
	go func() {
		if err := scheduler.Run(ctx); err != nil {
			log.WithError(err).Error("scheduler exited")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT, os.Interrupt)
	<-sigChan

	log.Info("shutting down coordinator...")
	cancel()
	log.Exit(0)
}
