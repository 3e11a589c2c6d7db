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

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/lakshya-git-hub/speech-to-text-app/internal/api"
	"github.com/lakshya-git-hub/speech-to-text-app/internal/api/handlers"
	"github.com/lakshya-git-hub/speech-to-text-app/internal/audio"
	"github.com/lakshya-git-hub/speech-to-text-app/internal/config"
	"github.com/lakshya-git-hub/speech-to-text-app/internal/media"
	"github.com/lakshya-git-hub/speech-to-text-app/internal/queue"
	"github.com/lakshya-git-hub/speech-to-text-app/internal/storage"
	"github.com/lakshya-git-hub/speech-to-text-app/internal/stt"
	"github.com/lakshya-git-hub/speech-to-text-app/internal/transcript"
	"github.com/lakshya-git-hub/speech-to-text-app/internal/transcriptstore"
	"github.com/lakshya-git-hub/speech-to-text-app/internal/webhook"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Redis backs the redis store and the transcription queue; both are optional.
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	redisUp := rdb.Ping(ctx).Err() == nil
	if !redisUp {
		slog.Warn("redis unavailable", "addr", cfg.Redis.Addr)
	}

	store, closeStore, err := transcriptstore.Open(ctx, cfg, rdb)
	if err != nil {
		slog.Error("failed to open transcript store", "backend", cfg.Store.Backend, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	dispatcher := webhook.NewDispatcher(cfg.Webhook)
	defer dispatcher.Close()

	transcripts := transcript.NewService(store, dispatcher, cfg.Store.DefaultLanguage)

	checks := []handlers.Check{{Name: "store", Ping: transcripts.Ping}}
	if redisUp && cfg.Store.Backend != config.StoreBackendRedis {
		checks = append(checks, handlers.Check{Name: "redis", Ping: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	}

	deps := api.Deps{Transcripts: transcripts, Checks: checks}

	audioStore, err := storage.New(cfg.Storage)
	if err != nil {
		slog.Error("failed to init audio storage", "error", err)
		os.Exit(1)
	}
	if local, ok := audioStore.(*storage.LocalStorage); ok {
		deps.UploadDir = local.Root()
	}

	provider, err := stt.New(cfg.STT)
	if err != nil {
		slog.Error("failed to init speech-to-text provider", "error", err)
		os.Exit(1)
	}

	var transcoder audio.Transcoder
	if cfg.Transcode.Enabled {
		tc := media.NewTranscoder(cfg.Transcode.FFmpegPath)
		if tc.Available() {
			transcoder = tc
		} else {
			slog.Warn("ffmpeg not found, uploads are sent to the provider as-is", "path", cfg.Transcode.FFmpegPath)
		}
	}

	var enqueuer audio.Enqueuer
	if cfg.AsyncTranscription(redisUp) {
		qc := queue.NewClient(cfg.Redis)
		defer qc.Close()
		enqueuer = qc
	} else {
		slog.Info("background transcription disabled", "redis_up", redisUp, "store", cfg.Store.Backend)
	}

	deps.Audio = audio.NewService(audioStore, provider, transcoder, enqueuer, audio.Config{
		Bucket:          cfg.Storage.Bucket,
		MaxBytes:        cfg.Storage.MaxBytes,
		DefaultLanguage: cfg.Store.DefaultLanguage,
	})

	router := api.NewRouter(cfg, deps)
	defer router.Close()

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting API server",
			"addr", cfg.Addr(),
			"store", cfg.Store.Backend,
			"storage", cfg.Storage.Backend,
			"stt", provider.Name(),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	slog.Info("server stopped")
}
