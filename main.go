package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/besuhoff/skyline-blaster-go/internal/auth"
	"github.com/besuhoff/skyline-blaster-go/internal/config"
	"github.com/besuhoff/skyline-blaster-go/internal/db"
	"github.com/besuhoff/skyline-blaster-go/internal/game"
	"github.com/besuhoff/skyline-blaster-go/internal/handlers"
	"github.com/besuhoff/skyline-blaster-go/internal/server"
)

var (
	host       = flag.String("host", "", "Host to listen on (overrides HOST)")
	port       = flag.String("port", "", "Port to listen on (overrides PORT)")
	certFile   = flag.String("cert", "", "TLS certificate file (overrides TLS_CERT)")
	keyFile    = flag.String("key", "", "TLS key file (overrides TLS_KEY)")
	useTLS     = flag.Bool("tls", false, "Enable TLS/HTTPS")
	issueToken = flag.String("issue-token", "", "Print a signed token for the given player name and exit")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg := config.LoadConfig()
	applyFlags(cfg)

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	if *issueToken != "" {
		if err := printToken(cfg, *issueToken); err != nil {
			slog.Error("issuing token", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg); err != nil {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func applyFlags(cfg *config.Config) {
	if *host != "" {
		cfg.Host = *host
	}
	if *port != "" {
		cfg.Port = *port
	}
	if *certFile != "" {
		cfg.TLSCert = *certFile
	}
	if *keyFile != "" {
		cfg.TLSKey = *keyFile
	}
	if *useTLS {
		cfg.UseTLS = true
	}
}

func printToken(cfg *config.Config, name string) error {
	if cfg.SecretKey == "" {
		return errors.New("SECRET_KEY is not set")
	}
	token, err := auth.GenerateToken(cfg.SecretKey, name, name, config.DevTokenTTL)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recorder, err := openRecorder(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := recorder.Close(closeCtx); err != nil {
			slog.Warn("closing stats store", "error", err)
		}
	}()

	seed := cfg.WorldSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	store := game.NewStore()
	for _, building := range game.GenerateCity(rand.New(rand.NewSource(seed)), cfg.BuildingCount) {
		store.AddBuilding(building)
	}
	slog.Info("city generated", "seed", seed, "buildings", store.BuildingCount())

	gameServer := server.NewGameServer(game.NewEngine(store, cfg.HitOrder), recorder, cfg)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", gameServer.HandleWebSocket)
	mux.HandleFunc("/health", handlers.HandleHealth)
	mux.HandleFunc("/api/v1/world", handlers.NewWorldHandler(gameServer).HandleGetWorld)
	mux.HandleFunc("/api/v1/leaderboard", handlers.NewLeaderboardHandler(recorder).HandleGetLeaderboard)
	if cfg.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return gameServer.Run(gctx)
	})

	g.Go(func() error {
		var err error
		if cfg.UseTLS || cfg.TLSCert != "" {
			if cfg.TLSCert == "" || cfg.TLSKey == "" {
				return errors.New("TLS enabled but certificate or key file not provided")
			}
			slog.Info("starting game server with TLS", "addr", addr)
			err = httpServer.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
		} else {
			slog.Info("starting game server", "addr", addr)
			err = httpServer.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// openRecorder picks the stats store: MongoDB, then SQLite, else none
func openRecorder(ctx context.Context, cfg *config.Config) (db.Recorder, error) {
	switch {
	case cfg.MongoDBURL != "":
		store, err := db.ConnectMongo(ctx, cfg.MongoDBURL)
		if err != nil {
			return nil, err
		}
		slog.Info("stats stored in mongodb")
		return store, nil
	case cfg.SQLitePath != "":
		store, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		slog.Info("stats stored in sqlite", "path", cfg.SQLitePath)
		return store, nil
	default:
		slog.Info("no stats store configured")
		return db.NopRecorder{}, nil
	}
}
