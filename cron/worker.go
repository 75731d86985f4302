package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"planora/config"
	"planora/database/repository"
	"planora/models"
	"planora/services/notification"
	"planora/services/scheduling"
	"planora/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

// InitWorker runs the async worker in background. It consumes queued push
// notifications, scheduled booking reminders, and conflict report sweeps.
func InitWorker(notifSvc notification.NotificationService, detector scheduling.ConflictDetector, agents repository.AgentRepository, bookings repository.BookingRepository) {
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
	mux.HandleFunc(tasks.TypeNotifyPush, handleNotifyTask(notifSvc))
	mux.HandleFunc(tasks.TypeBookingReminder, handleNotifyTask(notifSvc))
	mux.HandleFunc(tasks.TypeReportSweep, handleReportSweep(detector, agents, bookings))

	// Start Redis health monitor
	go monitorRedisConnection()

	// Start async worker with retry logic
	go func() {
		log.Println("[Worker] 🚀 Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[Worker] ❌ Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[Worker] ❗ Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

// handleNotifyTask delivers a queued notification event to its recipient.
// Both immediate pushes and scheduled booking reminders carry the same
// payload shape.
func handleNotifyTask(notifSvc notification.NotificationService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var event models.NotificationEvent
		if err := json.Unmarshal(task.Payload(), &event); err != nil {
			log.Printf("[NotifyHandler] 🔴 Invalid payload: %v", err)
			return err
		}

		data := event.Data
		if data == nil {
			data = map[string]string{}
		}
		data["event"] = event.Event

		var err error
		switch event.RecipientRole {
		case models.RoleClient:
			err = notifSvc.SendClientPushNotification(ctx, event.RecipientID, event.Title, event.Body, data)
		case models.RoleAgent:
			err = notifSvc.SendAgentPushNotification(ctx, event.RecipientID, event.Title, event.Body, data)
		default:
			log.Printf("[NotifyHandler] ⚠️ Unknown recipient role: %s", event.RecipientRole)
			return nil
		}

		if err != nil {
			log.Printf("[NotifyHandler] ❌ Failed to send notification: %v", err)
		}
		return err
	}
}

// handleReportSweep regenerates the conflict report over the coming week for
// every active agent, then purges bookings past the retention window.
func handleReportSweep(detector scheduling.ConflictDetector, agents repository.AgentRepository, bookings repository.BookingRepository) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		now := time.Now()

		ids, err := agents.ListActiveIDs()
		if err != nil {
			log.Printf("[ReportSweep] ❌ Failed to list active agents: %v", err)
			return err
		}
		if len(ids) == 0 {
			log.Println("[ReportSweep] No active agents. Skipping report.")
		} else {
			report, err := detector.GenerateConflictReport(ids, now, now.Add(7*24*time.Hour))
			if err != nil {
				log.Printf("[ReportSweep] ❌ Report generation failed: %v", err)
				return err
			}
			total := 0
			for _, n := range report.ByType {
				total += n
			}
			log.Printf("[ReportSweep] ✅ Report %s covers %d agents with %d conflicts", report.ID, len(report.Agents), total)
		}

		// Retention: bookings that ended over a year ago are dropped. A
		// failed purge waits for the next sweep rather than retrying the
		// whole task.
		purged, err := bookings.DeleteOlderThan(now.AddDate(-1, 0, 0))
		if err != nil {
			log.Printf("[ReportSweep] ⚠️ Retention purge failed: %v", err)
			return nil
		}
		if purged > 0 {
			log.Printf("[ReportSweep] ✅ Purged %d bookings past retention", purged)
		}
		return nil
	}
}

// StartScheduler registers the nightly report sweep and runs the cron
// scheduler in background.
func StartScheduler() {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	scheduler := asynq.NewScheduler(redisOpts, &asynq.SchedulerOpts{Location: time.UTC})

	// 03:00 UTC daily.
	if _, err := scheduler.Register("0 3 * * *", tasks.NewReportSweepTask()); err != nil {
		log.Printf("[Scheduler] ❌ Failed to register report sweep: %v", err)
		return
	}

	go func() {
		log.Println("[Scheduler] 🚀 Starting cron scheduler...")
		if err := scheduler.Run(); err != nil {
			log.Printf("[Scheduler] ❌ Scheduler stopped: %v", err)
		}
	}()
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[Worker] ⚠️ Redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
