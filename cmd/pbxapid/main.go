package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iamarketings/Operator/internal/config"
	"github.com/iamarketings/Operator/internal/db"
	"github.com/iamarketings/Operator/internal/httpapi"
)

func main() {
	cfgPath := flag.String("config", "/etc/pbx/pbxapid.yaml", "config file path")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if cfg.MigrateOnStart {
		res, err := db.Migrate(cfg.DBDSN)
		if err != nil {
			log.Fatalf("migrate: %v", err)
		}
		log.Printf("schema at version %d (changed=%t)", res.Version, res.Changed)
	}

	pool, err := db.NewPool(context.Background(), cfg.DBDSN, cfg.DBPool)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      httpapi.NewRouter(cfg, pool),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("PBX backend listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
}
