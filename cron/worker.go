package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"clinicbook/config"
	"clinicbook/services/booking"
	"clinicbook/services/notification"

	"github.com/hibiken/asynq"
)

// TypeNoShowSweep is the periodic task that expires overdue confirmed
// appointments into no-shows.
const TypeNoShowSweep = "appointments:noshow_sweep"

// InitWorker runs the asynq worker and the periodic task scheduler in the
// background. The worker consumes appointment events and the no-show sweep.
func InitWorker(bookingSvc booking.BookingService, dispatcher notification.Dispatcher) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
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
	mux.HandleFunc(notification.TypeAppointmentEvent, handleAppointmentEvent(dispatcher))
	mux.HandleFunc(TypeNoShowSweep, handleNoShowSweep(bookingSvc))

	go func() {
		log.Println("[Worker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[Worker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)
				if attempts == maxAttempts {
					log.Fatal("[Worker] max retry attempts reached, exiting")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()

	go runScheduler(redisOpts)
}

// runScheduler registers the recurring no-show sweep.
func runScheduler(redisOpts asynq.RedisClientOpt) {
	scheduler := asynq.NewScheduler(redisOpts, nil)

	// The sweep is idempotent, so a run overlapping a slow previous one is
	// harmless.
	task := asynq.NewTask(TypeNoShowSweep, nil)
	if _, err := scheduler.Register("@every 5m", task); err != nil {
		log.Printf("[Worker] failed to register no-show sweep: %v", err)
		return
	}
	if err := scheduler.Run(); err != nil {
		log.Printf("[Worker] scheduler stopped: %v", err)
	}
}

func handleAppointmentEvent(dispatcher notification.Dispatcher) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p notification.EventPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[Worker] invalid event payload: %v", err)
			return err
		}
		return dispatcher.Deliver(ctx, p)
	}
}

func handleNoShowSweep(bookingSvc booking.BookingService) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		swept, err := bookingSvc.SweepNoShows(ctx)
		if err != nil {
			log.Printf("[Worker] no-show sweep failed: %v", err)
			return err
		}
		if swept > 0 {
			log.Printf("[Worker] marked %d appointments as no-show", swept)
		}
		return nil
	}
}
