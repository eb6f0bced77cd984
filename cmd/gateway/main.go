package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvpnlabs/access-gateway/pkg/config"
	"github.com/dvpnlabs/access-gateway/pkg/entitlement"
	"github.com/dvpnlabs/access-gateway/pkg/logging"
	"github.com/dvpnlabs/access-gateway/pkg/noderegistry"
	"github.com/dvpnlabs/access-gateway/pkg/server"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (optional; environment variables otherwise)")
	ensureSchema := flag.Bool("ensure-schema", false, "Create the registry table if missing before serving")
	flag.Parse()

	log := logging.New("info", "json")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log = logging.New(cfg.LogLevel, cfg.LogFormat)

	checker, err := entitlement.New(cfg.EthereumRPC, cfg.SubscriptionContract, cfg.CallTimeout)
	if err != nil {
		log.Error("failed to create entitlement checker", "error", err)
		os.Exit(1)
	}
	defer checker.Close()

	store, err := noderegistry.NewPostgresStore(cfg.DatabaseURL, noderegistry.WithTableName(cfg.NodeTable))
	if err != nil {
		log.Error("failed to create registry store", "error", err)
		os.Exit(1)
	}

	if *ensureSchema {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := store.EnsureSchema(ctx)
		cancel()
		if err != nil {
			log.Error("failed to ensure registry schema", "error", err)
			os.Exit(1)
		}
		log.Info("registry schema ensured", "table", cfg.NodeTable)
	}

	resolver := noderegistry.NewResolver(store, log)
	srv := server.New(cfg, log, checker, resolver)

	httpSrv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      srv.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("gateway listening",
			"addr", cfg.ListenAddr,
			"contract", cfg.SubscriptionContract,
			"rpc", cfg.EthereumRPC,
			"table", cfg.NodeTable)
		errCh <- httpSrv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		log.Error("server error", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("gateway stopped")
}
