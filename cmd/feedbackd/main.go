package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"product_feedback/internal/bot"
	"product_feedback/internal/config"
	"product_feedback/internal/dashboard"
	"product_feedback/internal/httpapi"
	"product_feedback/internal/model"
	"product_feedback/internal/scheduler"
	"product_feedback/internal/storage"
	"product_feedback/migrations"
)

func main() {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigrate(cfg, os.Args[2:]); err != nil {
			log.Error("migrate", "error", err)
			os.Exit(1)
		}
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := openStorage(ctx, cfg)
	if err != nil {
		log.Error("open storage", "backend", cfg.StorageBackend, "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	svc := dashboard.New(store, log)
	defer svc.Close()

	if cfg.BotEnabled() {
		b, err := bot.New(cfg.TelegramBotToken, svc, cfg, log)
		if err != nil {
			log.Error("create bot", "error", err)
			os.Exit(1)
		}
		go b.Run(ctx)

		if len(cfg.DigestChatIDs) > 0 {
			sched := scheduler.New(svc, b, cfg.DigestChatIDs, cfg.DigestInterval, log)
			go sched.Run(ctx)
		}
		log.Info("telegram bot started", "digest_chats", len(cfg.DigestChatIDs))
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.New(svc, cfg.AllowedOrigins, log).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting http server", "addr", cfg.HTTPAddr, "backend", cfg.StorageBackend)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server", "error", err)
			os.Exit(1)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown http server", "error", err)
	}

	log.Info("server stopped")
}

func openStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	var seed []model.Feedback
	if cfg.SeedSampleData {
		seed = storage.SampleFeedback()
	}

	switch cfg.StorageBackend {
	case config.BackendSQLite:
		if err := ensureDir(cfg.DatabasePath); err != nil {
			return nil, err
		}
		s, err := storage.NewSQLite(ctx, cfg.DatabasePath, seed)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return storage.NewMemory(seed), nil
	}
}

func ensureDir(dbPath string) error {
	if dbPath == ":memory:" {
		return nil
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create data directory %s: %w", dir, err)
		}
	}
	return nil
}

func runMigrate(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	dbPath := fs.String("db", cfg.DatabasePath, "path to sqlite database")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: feedbackd migrate [-db path] <command>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintf(os.Stderr, "Commands: %s\n", strings.Join(migrations.Commands, ", "))
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("missing command")
	}

	if err := ensureDir(*dbPath); err != nil {
		return err
	}
	db, err := sql.Open("sqlite", *dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	return migrations.Command(db, fs.Arg(0))
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
