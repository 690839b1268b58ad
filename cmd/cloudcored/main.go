// Command cloudcored starts the emulator: it loads configuration, opens
// the KV store, wires every domain package into a server.Server, starts
// the background reconciler and lifecycle executor, and serves HTTP
// until signaled to stop. Grounded on ais/daemon.go's initDaemon/Run
// split: parse flags, build dependencies, hand off to a blocking serve
// loop that a signal cancels.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/cloudcore/cloudcore/cmn/config"
	"github.com/cloudcore/cloudcore/cmn/log"
	"github.com/cloudcore/cloudcore/cmn/metrics"
	"github.com/cloudcore/cloudcore/compute"
	"github.com/cloudcore/cloudcore/events"
	"github.com/cloudcore/cloudcore/identity"
	"github.com/cloudcore/cloudcore/kv"
	"github.com/cloudcore/cloudcore/lifecycle"
	"github.com/cloudcore/cloudcore/network"
	"github.com/cloudcore/cloudcore/objectstore"
	"github.com/cloudcore/cloudcore/operations"
	"github.com/cloudcore/cloudcore/runtime"
	"github.com/cloudcore/cloudcore/server"
)

func main() {
	configPath := flag.String("config", "", "path to a JSON config file (overrides defaults; env vars override both)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("cloudcored: loading config: %v", err)
	}

	if err := os.MkdirAll(cfg.StorageRoot, 0o755); err != nil {
		log.Fatalf("cloudcored: creating storage root %s: %v", cfg.StorageRoot, err)
	}

	store, err := kv.Open(cfg.KVPath)
	if err != nil {
		log.Fatalf("cloudcored: opening kv store %s: %v", cfg.KVPath, err)
	}
	defer store.Close()

	reg := metrics.New()

	net := network.NewAllocator(store)
	rt := runtime.NewDockerRuntime()
	ctrl := compute.New(store, rt, net,
		compute.WithMetrics(reg),
		compute.WithRuntimeTimeout(cfg.RuntimeTimeout()))
	idRegistry := identity.New(store)
	opsRegistry := operations.New(store, operations.WithMetrics(reg))
	dispatcher := events.New(events.WithMetrics(reg))
	objStore := objectstore.New(store, cfg.StorageRoot,
		objectstore.WithEventPublisher(dispatcher),
		objectstore.WithMetrics(reg))

	srv := server.New(&server.Server{
		Store:    objStore,
		Compute:  ctrl,
		Network:  net,
		Identity: idRegistry,
		Ops:      opsRegistry,
		Config:   cfg,
		Metrics:  reg,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if removed, err := objStore.GCTempFiles(time.Hour); err != nil {
		log.Warningf("cloudcored: startup temp-file gc: %v", err)
	} else if removed > 0 {
		log.Infof("cloudcored: startup temp-file gc removed %d stale uploads", removed)
	}

	reconciler := compute.NewReconciler(ctrl, cfg.ReconcilerInterval())
	go func() {
		if err := reconciler.Run(ctx); err != nil && ctx.Err() == nil {
			log.Errorf("cloudcored: reconciler stopped: %v", err)
		}
	}()

	lc := lifecycle.New(objStore, cfg.LifecycleInterval(), lifecycle.WithMetrics(reg))
	go func() {
		if err := lc.Run(ctx); err != nil && ctx.Err() == nil {
			log.Errorf("cloudcored: lifecycle executor stopped: %v", err)
		}
	}()

	fastHandler := fasthttpadaptor.NewFastHTTPHandler(srv)
	fastServer := &fasthttp.Server{
		Handler:      fastHandler,
		ReadTimeout:  cfg.RequestTimeout(),
		WriteTimeout: cfg.RequestTimeout(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("cloudcored: listening on %s", cfg.ListenAddr)
		errCh <- fastServer.ListenAndServe(cfg.ListenAddr)
	}()

	select {
	case <-ctx.Done():
		log.Infof("cloudcored: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := fastServer.ShutdownWithContext(shutdownCtx); err != nil {
			log.Errorf("cloudcored: shutdown: %v", err)
		}
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("cloudcored: listener: %v", err)
		}
	}
}
