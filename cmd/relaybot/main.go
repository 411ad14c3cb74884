package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"relaybot/internal/adapter/fetch"
	httpAdapter "relaybot/internal/adapter/http"
	"relaybot/internal/adapter/sqlite"
	"relaybot/internal/adapter/telegram"
	"relaybot/internal/config"
	"relaybot/internal/domain"
	"relaybot/internal/relay"
	"relaybot/internal/storage"
	"relaybot/internal/sysinfo"
	"relaybot/internal/worker"
)

func main() {
	configPath := flag.String("config", "", "path to TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("configuration: %v", err)
	}

	log.Printf("starting relaybot, downloads in %s", cfg.Download.Dir)

	store, err := storage.New(cfg.Download.Dir)
	if err != nil {
		log.Fatalf("failed to prepare download dir: %v", err)
	}

	history, err := sqlite.New(cfg.History.DBPath)
	if err != nil {
		log.Fatalf("failed to initialize history database: %v", err)
	}
	defer history.Close()

	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		log.Fatalf("failed to connect to Telegram: %v", err)
	}
	log.Printf("authorized as @%s", botAPI.Self.UserName)

	queue := domain.NewQueue()
	fetcher := fetch.Default(cfg.Download.Timeout.Duration)
	uploader := telegram.NewUploader(cfg.Telegram.BotToken, cfg.Telegram.GroupID)
	rel := relay.New(uploader, cfg.Relay.MaxRetries, cfg.Relay.Backoff.Duration)
	notifier := telegram.NewNotifier(botAPI)

	w := worker.New(queue, store, fetcher, rel, notifier, history,
		cfg.Progress.Window.Duration, cfg.Progress.MinDelta)

	status := sysinfo.NewReporter(store, queue, history)
	bot := telegram.NewBot(botAPI, queue, store, w, status)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := httpAdapter.NewServer(queue, addr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go bot.Run(ctx)

	go func() {
		log.Printf("keep-alive server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("keep-alive server error: %v", err)
		}
	}()

	sig := <-sigCh
	log.Printf("received signal %v, shutting down", sig)

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("keep-alive server shutdown error: %v", err)
	}

	log.Println("shutdown complete")
}
