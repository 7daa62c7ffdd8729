package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/fintrack/groupledger/internal/auth"
	"github.com/fintrack/groupledger/internal/config"
	ledgerhttp "github.com/fintrack/groupledger/internal/http"
	"github.com/fintrack/groupledger/internal/notify"
	"github.com/fintrack/groupledger/internal/service"
	"github.com/fintrack/groupledger/internal/storage"
	"github.com/fintrack/groupledger/internal/storage/memory"
	"github.com/fintrack/groupledger/internal/storage/sqlite"
	"github.com/fintrack/groupledger/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logging.Setup()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	store, err := newStore(cfg)
	if err != nil {
		slog.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("storage initialized", "backend", cfg.Backend)

	notifier := newNotifier(cfg)
	defer notifier.Close()

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTDuration)
	authenticator := auth.NewPasswordAuthenticator(store)

	server := ledgerhttp.NewServer(
		service.NewAuthService(authenticator, jwtManager),
		service.NewGroupService(store),
		service.NewExpenseService(store, notifier),
		service.NewMessageService(store),
		store,
	)

	// h2c lets clients speak HTTP/2 without TLS when a proxy terminates it.
	handler := h2c.NewHandler(server.Router(jwtManager), &http2.Server{})

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func newStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Backend {
	case "memory":
		return memory.New(), nil
	default:
		return sqlite.New(cfg.SQLiteDBPath)
	}
}

func newNotifier(cfg *config.Config) notify.Notifier {
	if cfg.AMQPURL == "" {
		slog.Info("no broker configured, reminders are stored only")
		return notify.Nop{}
	}
	notifier, err := notify.NewAMQPNotifier(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		slog.Error("broker connection failed, reminders are stored only", "error", err)
		return notify.Nop{}
	}
	return notifier
}
