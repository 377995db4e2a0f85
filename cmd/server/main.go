package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/suPer8Hu/linkedcraft/internal/config"
	"github.com/suPer8Hu/linkedcraft/internal/db"
	"github.com/suPer8Hu/linkedcraft/internal/generate"
	"github.com/suPer8Hu/linkedcraft/internal/history"
	"github.com/suPer8Hu/linkedcraft/internal/httpapi"
	"github.com/suPer8Hu/linkedcraft/internal/httpapi/handlers"
	"github.com/suPer8Hu/linkedcraft/internal/identity"
	"github.com/suPer8Hu/linkedcraft/internal/profile"
	"github.com/suPer8Hu/linkedcraft/internal/session"
	"github.com/suPer8Hu/linkedcraft/internal/store/rabbitmq"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("server: %v", err)
	}
}

func run() error {
	cfg := config.Load()

	gdb, err := db.Connect(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	if err := db.AutoMigrate(gdb); err != nil {
		return fmt.Errorf("db migrate: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, closeProvider, err := newProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeProvider()

	store := session.NewStore(provider)
	store.Start(ctx)
	defer store.Close()

	histRepo := history.NewRepo(gdb)
	var archiver handlers.Archiver = histRepo
	if cfg.RabbitURL != "" {
		pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
		if err != nil {
			return fmt.Errorf("rabbit publisher: %w", err)
		}
		defer pub.Close()
		archiver = pub
		log.Printf("[server] archiving via queue=%s", cfg.RabbitQueue)
	}

	h := handlers.NewHandler(handlers.Deps{
		Store:      store,
		Profiles:   profile.NewRepo(gdb),
		History:    histRepo,
		Generator:  generate.NewHTTPClient(cfg.GenerateURL, cfg.GenerateTimeout),
		Archiver:   archiver,
		SignInPath: cfg.SignInPath,
	})
	defer h.Close()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpapi.NewRouter(cfg, h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("[server] listening addr=%s provider=%s", srv.Addr, cfg.IdentityProvider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Printf("[server] shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newProvider(ctx context.Context, cfg config.Config) (session.Provider, func(), error) {
	switch cfg.IdentityProvider {
	case "memory":
		var initial *session.Session
		if cfg.DevUserID != "" {
			initial = &session.Session{User: session.Identity{ID: cfg.DevUserID, Email: cfg.DevUserEmail}}
		}
		return identity.NewMemory(initial), func() {}, nil
	case "", "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		p := identity.NewRedis(rdb, cfg.IdentitySessionKey, cfg.IdentityChannel, cfg.JWTSecret)
		return p, func() { _ = rdb.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported IDENTITY_PROVIDER=%q", cfg.IdentityProvider)
	}
}
