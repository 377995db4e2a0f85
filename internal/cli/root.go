// Package cli implements the linkedcraft operator commands.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/suPer8Hu/linkedcraft/internal/config"
	"github.com/suPer8Hu/linkedcraft/internal/generate"
	"github.com/suPer8Hu/linkedcraft/internal/identity"
	"github.com/suPer8Hu/linkedcraft/internal/session"
)

// Backend is an identity provider the operator can sign in to.
type Backend interface {
	session.Provider
	SignIn(ctx context.Context, accessToken string) (*session.Session, error)
	SignOut(ctx context.Context) error
}

// Deps builds the collaborators of a command. Tests replace them.
type Deps struct {
	Backend   func(ctx context.Context, cfg config.Config) (Backend, func(), error)
	Generator func(cfg config.Config) generate.Generator
}

// RootOptions holds global flags and loaded configuration.
type RootOptions struct {
	Format string // "json" | "text"
	Config config.Config
	Deps   Deps
}

var ValidFormats = []string{"text", "json"}

func DefaultDeps() Deps {
	return Deps{
		Backend:   redisBackend,
		Generator: func(cfg config.Config) generate.Generator { return generate.NewHTTPClient(cfg.GenerateURL, cfg.GenerateTimeout) },
	}
}

// NewRootCommand creates the linkedcraft command tree. cfg is used as is;
// main passes config.Load().
func NewRootCommand(cfg config.Config, deps Deps) *cobra.Command {
	opts := &RootOptions{Config: cfg, Deps: deps}

	cmd := &cobra.Command{
		Use:           "linkedcraft",
		Short:         "Operate the LinkedCraft dashboard backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewSessionCommand(opts))
	cmd.AddCommand(NewGenerateCommand(opts))
	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func redisBackend(ctx context.Context, cfg config.Config) (Backend, func(), error) {
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
	b := identity.NewRedis(rdb, cfg.IdentitySessionKey, cfg.IdentityChannel, cfg.JWTSecret)
	return b, func() { _ = rdb.Close() }, nil
}

// readState runs a session store against b until it has its first answer.
func readState(ctx context.Context, b Backend) (session.State, error) {
	store := session.NewStore(b)
	store.Start(ctx)
	defer store.Close()

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	st, err := store.WaitReady(waitCtx)
	if err != nil {
		return st, fmt.Errorf("session did not become ready: %w", err)
	}
	return st, nil
}
