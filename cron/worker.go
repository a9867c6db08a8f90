package cron

import (
	"context"
	"fmt"
	"log"
	"time"

	"merchify/config"
	"merchify/services/catalog"

	"github.com/hibiken/asynq"
)

const TypeCatalogRefresh = "catalog:refresh"

// InitRefreshWorker runs the async worker and its periodic schedule in the
// background. The catalog snapshot is refreshed on an interval so user
// turns rarely pay for a remote fetch.
func InitRefreshWorker(cache *catalog.Cache) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 1,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeCatalogRefresh, handleRefreshTask(cache))

	go func() {
		log.Println("[RefreshWorker] Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[RefreshWorker] Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[RefreshWorker] Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()

	go runRefreshScheduler(redisOpts)
}

func handleRefreshTask(cache *catalog.Cache) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		log.Println("[RefreshWorker] Running scheduled catalog refresh")
		if err := cache.Refresh(ctx, false); err != nil {
			log.Printf("[RefreshWorker] Refresh failed, previous snapshot retained: %v", err)
			return err
		}
		return nil
	}
}

// runRefreshScheduler enqueues the refresh task on the configured interval.
func runRefreshScheduler(redisOpts asynq.RedisClientOpt) {
	scheduler := asynq.NewScheduler(redisOpts, nil)

	interval := config.AppConfig.RefreshIntervalHrs
	if interval <= 0 {
		interval = 12
	}
	spec := fmt.Sprintf("@every %dh", interval)

	if _, err := scheduler.Register(spec, asynq.NewTask(TypeCatalogRefresh, nil)); err != nil {
		log.Printf("[RefreshWorker] Failed to register schedule: %v", err)
		return
	}
	if err := scheduler.Run(); err != nil {
		log.Printf("[RefreshWorker] Scheduler stopped: %v", err)
	}
}
