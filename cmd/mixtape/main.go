// Command mixtape analyzes Spotify playlists and generates recommendation
// playlists from them. Every subcommand reads the shared YAML config and
// the SPOTIFY_CLIENT_ID / SPOTIFY_CLIENT_SECRET environment variables;
// run `mixtape login` once to cache an OAuth2 token.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/harmoni-labs/mixtape/config"
	"github.com/harmoni-labs/mixtape/internal/adapters/csvfile"
	"github.com/harmoni-labs/mixtape/internal/adapters/spotify"
	"github.com/harmoni-labs/mixtape/internal/adapters/sqlite"
	"github.com/harmoni-labs/mixtape/internal/auth"
	"github.com/harmoni-labs/mixtape/internal/core/ports"
	"github.com/harmoni-labs/mixtape/internal/core/services"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "login":
		err = runLogin(ctx, args)
	case "load":
		err = runLoad(ctx, args)
	case "recommend":
		err = runRecommend(ctx, args)
	case "artist":
		err = runArtist(ctx, args)
	case "mood":
		err = runMood(ctx, args)
	case "trends":
		err = runTrends(ctx, args)
	case "stats":
		err = runStats(ctx, args)
	case "profile":
		err = runProfile(ctx, args)
	case "playlist-rec":
		err = runPlaylistRec(ctx, args)
	case "most-listened":
		err = runMostListened(ctx, args)
	case "general":
		err = runGeneral(ctx, args)
	case "export":
		err = runExport(ctx, args)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "mixtape: unknown command %q\n\n", cmd)
		usage()
		os.Exit(2)
	}

	if err != nil {
		if errors.Is(err, auth.ErrNoToken) || errors.Is(err, ports.ErrUnauthorized) {
			slog.Error("authorization missing or expired, run 'mixtape login' first", "error", err)
		} else {
			slog.Error("command failed", "error", err)
		}
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `Usage: mixtape <command> [flags]

Commands:
  login          authorize against your Spotify account and cache the token
  load           fetch a playlist and store a fresh snapshot
  recommend      playlist songs nearest to a base song
  artist         an artist's songs, or their songs padded with related ones
  mood           songs matching a mood, ordered by how pronounced it is
  trends         trending genres and artists within a time window
  stats          audio feature statistics and the songs at the extremes
  profile        recommendations seeded from your listening profile
  playlist-rec   recommendations seeded from the playlist's own trends
  most-listened  your top tracks, or the playlist songs nearest to them
  general        recommendations seeded from names you pass yourself
  export         write a playlist snapshot to a CSV file

Run 'mixtape <command> -h' for the command's flags.
`)
}

// app bundles the wired service with its config for the subcommands.
type app struct {
	cfg   *config.Config
	rec   *services.Recommender
	close func()
}

// buildApp wires the whole dependency graph for one command run.
func buildApp(ctx context.Context, configPath string) (*app, error) {
	// 1. Environment and configuration. A missing .env file is fine, the
	// variables may just as well come from the shell.
	_ = godotenv.Load()
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	setupLogging(cfg.LogLevel)

	// 2. OAuth2 HTTP client. Credentials live in the environment only;
	// the token cache comes from a previous `mixtape login`.
	authn, err := newAuthenticator(cfg)
	if err != nil {
		return nil, err
	}
	httpClient, err := authn.Client(ctx)
	if err != nil {
		return nil, err
	}

	// 3. Driven adapters: the Spotify Web API client and the local
	// snapshot store selected by the config.
	client := spotify.NewClient(httpClient, spotify.Config{
		MaxRetries:  cfg.Spotify.MaxRetries,
		BaseBackoff: time.Duration(cfg.Spotify.BackoffBaseMS) * time.Millisecond,
	})
	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	// 4. Core service. The publisher shares the API client, the distance
	// weights merge the config overrides over the defaults.
	publisher := services.NewPublisher(client, client)
	rec := services.NewRecommender(client, client, store, publisher, cfg.DistanceWeights())

	a := &app{cfg: cfg, rec: rec, close: func() {}}
	if store != nil {
		a.close = func() {
			if err := store.Close(); err != nil {
				slog.Warn("closing snapshot store", "error", err)
			}
		}
	}
	return a, nil
}

func setupLogging(level int) {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(level),
	})
	slog.SetDefault(slog.New(handler))
}

func newAuthenticator(cfg *config.Config) (*auth.Authenticator, error) {
	clientID := os.Getenv("SPOTIFY_CLIENT_ID")
	clientSecret := os.Getenv("SPOTIFY_CLIENT_SECRET")
	if clientID == "" || clientSecret == "" {
		return nil, errors.New("SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET environment variables are required")
	}
	return auth.New(auth.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectPort: cfg.Auth.RedirectPort,
		TokenFile:    cfg.Auth.TokenFile,
	})
}

func openStore(cfg *config.Config) (ports.SnapshotStore, error) {
	switch cfg.Cache.Driver {
	case "sqlite":
		return sqlite.NewStore(filepath.Join(cfg.Cache.Dir, "mixtape.db"))
	case "csv":
		return csvfile.NewStore(cfg.Cache.Dir)
	case "off":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Cache.Driver)
	}
}
