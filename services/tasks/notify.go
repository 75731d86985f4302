package tasks

import (
	"encoding/json"
	"time"

	"planora/models"

	"github.com/hibiken/asynq"
)

const (
	TypeNotifyPush      = "notify:push"
	TypeBookingReminder = "notify:reminder"
	TypeReportSweep     = "report:sweep"
)

// NewNotifyTask queues an immediate push notification.
func NewNotifyTask(event models.NotificationEvent) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(event)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeNotifyPush, b)
	opts := []asynq.Option{asynq.MaxRetry(5)}

	return task, opts, nil
}

// NewBookingReminderTask queues a push notification to fire at a later time.
func NewBookingReminderTask(event models.NotificationEvent, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(event)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeBookingReminder, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}

	return task, opts, nil
}

// NewReportSweepTask triggers a conflict sweep over the active agent pool.
func NewReportSweepTask() *asynq.Task {
	return asynq.NewTask(TypeReportSweep, nil)
}
