package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/zsyp1996/childrenlanguagescreeningline-bot/internal/bot"
	"github.com/zsyp1996/childrenlanguagescreeningline-bot/internal/classifier"
	"github.com/zsyp1996/childrenlanguagescreeningline-bot/internal/config"
	"github.com/zsyp1996/childrenlanguagescreeningline-bot/internal/engine"
	"github.com/zsyp1996/childrenlanguagescreeningline-bot/internal/llm"
	"github.com/zsyp1996/childrenlanguagescreeningline-bot/internal/session"
	"github.com/zsyp1996/childrenlanguagescreeningline-bot/internal/transport/line"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the webhook server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		return err
	}

	provider, err := llm.NewProviderFromEnv(ctx)
	if err != nil {
		return fmt.Errorf("configure LLM provider: %w", err)
	}

	bank, err := loadBank(ctx, cfg.ItemBank)
	if err != nil {
		return fmt.Errorf("load item bank: %w", err)
	}
	if bank.Len() == 0 {
		return fmt.Errorf("item bank at %q is empty", cfg.ItemBank.Driver)
	}

	store, err := openSessionStore(ctx, cfg.Sessions)
	if err != nil {
		return err
	}

	cls := classifier.New(provider)
	eng := engine.New(bank, cls, logger)
	b := bot.New(store, eng, cls, logger)

	client := line.NewClient(cfg.LineAccessToken)
	handler := line.NewHandler(cfg.LineSecret, b, client, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           line.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("webhook server listening",
			"port", cfg.Port,
			"model", provider.ModelID(),
			"items", bank.Len(),
			"session_store", cfg.Sessions.Store)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}
	return nil
}

func openSessionStore(ctx context.Context, cfg config.Sessions) (session.Store, error) {
	switch cfg.Store {
	case config.SessionMemory:
		return session.NewMemoryStore(), nil
	case config.SessionRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("ping redis at %s: %w", cfg.RedisAddr, err)
		}
		return session.NewRedisStore(client), nil
	}
	return nil, fmt.Errorf("unknown session store %q", cfg.Store)
}
