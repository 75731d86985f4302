package notification

import (
	"context"
	"fmt"
	"time"

	"planora/database/repository"
	"planora/models"
	"planora/services/tasks"
	"planora/utils"

	"firebase.google.com/go/v4/messaging"
	"github.com/hibiken/asynq"
)

// NotificationService queues and delivers FCM pushes. Notify enqueues;
// the async worker calls back into the send methods to deliver.
type NotificationService interface {
	Notify(event models.NotificationEvent) error
	NotifyAt(event models.NotificationEvent, fireAt time.Time) error
	SendClientPushNotification(ctx context.Context, clientID, title, body string, data map[string]string) error
	SendAgentPushNotification(ctx context.Context, agentID, title, body string, data map[string]string) error
}

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	clients repository.ClientRepository
	agents  repository.AgentRepository
	queue   *asynq.Client
}

func NewDefaultNotificationService(
	clientRepo repository.ClientRepository,
	agentRepo repository.AgentRepository,
	queue *asynq.Client,
) (*DefaultNotificationService, error) {
	if clientRepo == nil || agentRepo == nil {
		return nil, fmt.Errorf("notification service initialization error: client or agent repository is nil")
	}
	return &DefaultNotificationService{
		clients: clientRepo,
		agents:  agentRepo,
		queue:   queue,
	}, nil
}

// Notify enqueues the event for asynchronous delivery. Without a queue it
// degrades to a direct synchronous send.
func (s *DefaultNotificationService) Notify(event models.NotificationEvent) error {
	if s.queue == nil {
		return s.deliver(context.Background(), event)
	}
	task, opts, err := tasks.NewNotifyTask(event)
	if err != nil {
		return fmt.Errorf("Notify: failed to build task for %s: %w", event.Event, err)
	}
	if _, err := s.queue.Enqueue(task, opts...); err != nil {
		return fmt.Errorf("Notify: failed to enqueue %s: %w", event.Event, err)
	}
	return nil
}

// NotifyAt enqueues the event to fire at the given time.
func (s *DefaultNotificationService) NotifyAt(event models.NotificationEvent, fireAt time.Time) error {
	if s.queue == nil {
		return fmt.Errorf("NotifyAt: no queue configured for deferred delivery")
	}
	task, opts, err := tasks.NewBookingReminderTask(event, fireAt)
	if err != nil {
		return fmt.Errorf("NotifyAt: failed to build task for %s: %w", event.Event, err)
	}
	if _, err := s.queue.Enqueue(task, opts...); err != nil {
		return fmt.Errorf("NotifyAt: failed to enqueue %s: %w", event.Event, err)
	}
	return nil
}

// deliver routes an event straight to the right push channel.
func (s *DefaultNotificationService) deliver(ctx context.Context, event models.NotificationEvent) error {
	data := event.Data
	if data == nil {
		data = map[string]string{}
	}
	data["event"] = event.Event

	switch event.RecipientRole {
	case models.RoleClient:
		return s.SendClientPushNotification(ctx, event.RecipientID, event.Title, event.Body, data)
	case models.RoleAgent:
		return s.SendAgentPushNotification(ctx, event.RecipientID, event.Title, event.Body, data)
	}
	return fmt.Errorf("deliver: unknown recipient role %q", event.RecipientRole)
}

// SendClientPushNotification looks up a client's FCM token and sends a push.
func (s *DefaultNotificationService) SendClientPushNotification(
	ctx context.Context,
	clientID, title, body string,
	data map[string]string,
) error {
	client, err := s.clients.GetByID(clientID)
	if err != nil {
		return fmt.Errorf("SendClientPushNotification: could not find client %s: %w", clientID, err)
	}
	token := client.FCMToken
	if token == "" {
		return fmt.Errorf("SendClientPushNotification: client %s has no FCM token", clientID)
	}

	if _, ok := data["role"]; !ok {
		data["role"] = models.RoleClient
	}

	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	if _, err := utils.FCMClient.Send(ctx, msg); err != nil {
		return fmt.Errorf("SendClientPushNotification: failed to send FCM message: %w", err)
	}
	return nil
}

// SendAgentPushNotification looks up an agent's FCM token and sends a
// high-priority push. Replacement proposals must surface promptly.
func (s *DefaultNotificationService) SendAgentPushNotification(
	ctx context.Context,
	agentID, title, body string,
	data map[string]string,
) error {
	agent, err := s.agents.GetByID(agentID)
	if err != nil {
		return fmt.Errorf("SendAgentPushNotification: could not find agent %s: %w", agentID, err)
	}
	token := agent.FCMToken
	if token == "" {
		return fmt.Errorf("SendAgentPushNotification: agent %s has no FCM token", agentID)
	}

	if _, ok := data["role"]; !ok {
		data["role"] = models.RoleAgent
	}

	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}

	if _, err := utils.FCMClient.Send(ctx, msg); err != nil {
		return fmt.Errorf("SendAgentPushNotification: failed to send FCM message: %w", err)
	}
	return nil
}
