package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/Messano/brain-hr-hub/internal/audit"
	"github.com/Messano/brain-hr-hub/internal/cache"
	"github.com/Messano/brain-hr-hub/internal/config"
	"github.com/Messano/brain-hr-hub/internal/contract"
	"github.com/Messano/brain-hr-hub/internal/database"
	"github.com/Messano/brain-hr-hub/internal/queue"
	"github.com/Messano/brain-hr-hub/internal/queue/workers"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

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

	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.Worker.Concurrency,
		Queues: map[string]int{
			"critical": 6,
			"default":  3,
			"low":      1,
		},
	})

	auditSvc := audit.NewService(db)
	// The worker records audit entries inline; enqueueing from here
	// would loop back into the same queue.
	recorder := audit.NewRecorder(nil, auditSvc)
	contractSvc := contract.NewService(db, cache.NewCache(rdb), recorder)

	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TypeAuditRecord, workers.NewAuditWorker(auditSvc).ProcessTask)
	mux.HandleFunc(queue.TypeContractExpire, workers.NewContractWorker(contractSvc).ProcessTask)

	// Nightly end-date sweep.
	scheduler := asynq.NewScheduler(redisOpt, nil)
	if _, err := scheduler.Register("0 2 * * *", asynq.NewTask(queue.TypeContractExpire, nil)); err != nil {
		slog.Error("failed to register contract sweep", "error", err)
		os.Exit(1)
	}
	go func() {
		if err := scheduler.Run(); err != nil {
			slog.Error("scheduler error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("starting worker", "concurrency", cfg.Worker.Concurrency)
	if err := srv.Run(mux); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
