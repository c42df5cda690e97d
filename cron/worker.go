package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"

	"ledgerly/config"
	"ledgerly/models"
	"ledgerly/services/syncer"
)

const TypeSyncRetry = "sync:retry"

// SyncRetryPayload identifies one (booking, system) pair to re-sync.
type SyncRetryPayload struct {
	BookingID string `json:"bookingId"`
	System    string `json:"system"`
}

// NewSyncRetryTask builds the asynq task for a sync retry.
func NewSyncRetryTask(bookingID, system string) (*asynq.Task, error) {
	payload, err := json.Marshal(SyncRetryPayload{BookingID: bookingID, System: system})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeSyncRetry, payload, asynq.MaxRetry(5), asynq.Timeout(time.Minute)), nil
}

// InitSyncRetryWorker runs the async worker in background.
func InitSyncRetryWorker(dispatcher syncer.Dispatcher) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPass,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeSyncRetry, handleSyncRetryTask(dispatcher))

	// Start Redis health monitor
	go monitorRedisConnection()

	// Start async worker with retry logic
	go func() {
		log.Println("[SyncRetryWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[SyncRetryWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[SyncRetryWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handleSyncRetryTask(dispatcher syncer.Dispatcher) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p SyncRetryPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[SyncRetryHandler] invalid payload: %v", err)
			return fmt.Errorf("invalid payload: %v: %w", err, asynq.SkipRetry)
		}

		log.Printf("[SyncRetryHandler] retrying %s sync for booking %s", p.System, p.BookingID)

		outcome, err := dispatcher.DispatchOne(ctx, p.BookingID, p.System)
		if err != nil {
			// A bad booking id or system tag will never succeed.
			log.Printf("[SyncRetryHandler] retry aborted for booking %s: %v", p.BookingID, err)
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		if outcome.Status == models.SyncStatusFailed {
			// Returning an error lets asynq back off and try again.
			log.Printf("[SyncRetryHandler] %s sync still failing for booking %s: %s", p.System, p.BookingID, outcome.Reason)
			return fmt.Errorf("%s sync failed: %s", p.System, outcome.Reason)
		}
		return nil
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPass,
		DB:       config.AppConfig.RedisQueueDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[SyncRetryWorker] redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
