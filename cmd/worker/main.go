package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/lakshya-git-hub/speech-to-text-app/internal/audio"
	"github.com/lakshya-git-hub/speech-to-text-app/internal/config"
	"github.com/lakshya-git-hub/speech-to-text-app/internal/media"
	"github.com/lakshya-git-hub/speech-to-text-app/internal/queue"
	"github.com/lakshya-git-hub/speech-to-text-app/internal/queue/workers"
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
	if cfg.Store.Backend == config.StoreBackendMemory {
		slog.Error("worker needs a shared transcript store, set STORE_BACKEND to postgres or redis")
		os.Exit(1)
	}

	ctx := context.Background()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	store, closeStore, err := transcriptstore.Open(ctx, cfg, rdb)
	if err != nil {
		slog.Error("failed to open transcript store", "backend", cfg.Store.Backend, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	dispatcher := webhook.NewDispatcher(cfg.Webhook)
	defer dispatcher.Close()
	transcripts := transcript.NewService(store, dispatcher, cfg.Store.DefaultLanguage)

	audioStore, err := storage.New(cfg.Storage)
	if err != nil {
		slog.Error("failed to init audio storage", "error", err)
		os.Exit(1)
	}
	provider, err := stt.New(cfg.STT)
	if err != nil {
		slog.Error("failed to init speech-to-text provider", "error", err)
		os.Exit(1)
	}

	var transcoder audio.Transcoder
	if cfg.Transcode.Enabled {
		if tc := media.NewTranscoder(cfg.Transcode.FFmpegPath); tc.Available() {
			transcoder = tc
		}
	}

	audioSvc := audio.NewService(audioStore, provider, transcoder, nil, audio.Config{
		Bucket:          cfg.Storage.Bucket,
		MaxBytes:        cfg.Storage.MaxBytes,
		DefaultLanguage: cfg.Store.DefaultLanguage,
	})

	srv := asynq.NewServer(
		queue.RedisOpt(cfg.Redis),
		asynq.Config{
			Concurrency: cfg.Worker.Concurrency,
			Queues: map[string]int{
				queue.QueueDefault: 3,
				queue.QueueLow:     1,
			},
		},
	)

	registry := queue.NewHandlersRegistry()
	transcribeWorker := workers.NewTranscribeWorker(audioSvc, transcripts)
	registry.Register(queue.TypeAudioTranscribe, asynq.HandlerFunc(transcribeWorker.ProcessTask))

	slog.Info("starting worker", "concurrency", cfg.Worker.Concurrency, "stt", provider.Name())
	if err := srv.Run(registry.Mux()); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
