package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iamarketings/Operator/internal/apiclient"
	"github.com/iamarketings/Operator/internal/config"
	"github.com/iamarketings/Operator/internal/console"
	"github.com/iamarketings/Operator/internal/sample"
	"github.com/iamarketings/Operator/internal/simulator"
	"github.com/iamarketings/Operator/internal/store"
)

func main() {
	cfgPath := flag.String("config", "", "config file path (defaults apply when empty)")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			log.Fatalf("load config: %v", err)
		}
	}
	cc := cfg.Console

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	client := apiclient.New(cc.APIBaseURL, cc.RequestTimeout)
	if cc.APIKey != "" {
		client.Headers = map[string]string{"X-API-Key": cc.APIKey}
	}

	seed := sample.New(cc.SampleSeed).Dataset(cc.SampleSizes, time.Now())
	st := store.New(client, seed, store.WithLogger(logger))
	sim := simulator.New(cc.Simulator, cc.SampleSeed, logger)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	go func() {
		report := <-st.Start(ctx)
		if report.OK() {
			log.Printf("store loaded from %s", cc.APIBaseURL)
			return
		}
		log.Printf("store partially loaded from %s, sample data kept for failed collections", cc.APIBaseURL)
	}()
	go sim.Run(ctx)

	srv := &http.Server{
		Addr:        cc.ListenAddr,
		Handler:     console.New(st, sim, logger).Router(),
		ReadTimeout: 5 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("PBX console listening on %s", cc.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
}
