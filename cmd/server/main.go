package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/xtding233/capsule-gacha/internal/game"
	"github.com/xtding233/capsule-gacha/internal/session"
	"github.com/xtding233/capsule-gacha/internal/transport/grpcapi"
	"github.com/xtding233/capsule-gacha/internal/transport/httpapi"
)

type config struct {
	HTTPAddr      string        `env:"GACHA_HTTP_ADDR" envDefault:":8080"`
	GRPCAddr      string        `env:"GACHA_GRPC_ADDR" envDefault:":9090"`
	ConfigDir     string        `env:"GACHA_CONFIG_DIR" envDefault:"config"`
	Theme         string        `env:"GACHA_THEME"`
	WatchInterval time.Duration `env:"GACHA_WATCH_INTERVAL" envDefault:"2s"`
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("parse env: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg config) error {
	loader := game.NewLoader(cfg.ConfigDir)
	if !loader.Paths().HasTheme(cfg.Theme) {
		log.Printf("theme %q not found at %s; serving default config until it appears",
			cfg.Theme, loader.Paths().ThemePath(cfg.Theme))
	}
	factory, version, err := buildFactory(loader, cfg.Theme)
	if err != nil {
		return err
	}
	log.Printf("loaded config version %q (theme %q)", version, cfg.Theme)
	store := session.NewStore(factory)

	// config hot-reload: only sessions created after a change see it
	watcher := game.NewFileWatcher(loader.Paths().Files(cfg.Theme), cfg.WatchInterval, func(path string) {
		loader.Invalidate()
		f, v, err := buildFactory(loader, cfg.Theme)
		if err != nil {
			log.Printf("reload %s: %v (keeping previous config)", path, err)
			return
		}
		store.SetFactory(f)
		log.Printf("reloaded config version %q after change to %s", v, path)
	})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewHandler(httpapi.HandlerDeps{Store: store}).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcSrv := grpc.NewServer()
	grpcapi.Register(grpcSrv, grpcapi.NewServer(store))
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcSrv, healthSrv)
	healthSrv.SetServingStatus(grpcapi.ServiceName, healthpb.HealthCheckResponse_SERVING)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return watcher.Run(ctx) })
	g.Go(func() error {
		log.Printf("http listening on %s ...", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return err
		}
		log.Printf("grpc listening on %s ...", cfg.GRPCAddr)
		return grpcSrv.Serve(lis)
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Printf("shutting down")
		healthSrv.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		grpcSrv.GracefulStop()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func buildFactory(loader *game.Loader, theme string) (session.Factory, string, error) {
	params, err := loader.Load(theme)
	if err != nil {
		return nil, "", err
	}
	f, err := session.NewFactory(params)
	if err != nil {
		return nil, "", err
	}
	return f, params.Version, nil
}
