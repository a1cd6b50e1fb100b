package service

import (
	"context"
	"encoding/json"

	"noteshare-be/internal/dto"
	"noteshare-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// NotificationChannel is the Redis pubsub channel every instance subscribes
// to; the payload names the target user so receivers can route locally.
const NotificationChannel = "note_events"

// NotificationEnvelope is what travels over Redis between instances.
type NotificationEnvelope struct {
	TargetUserId string          `json:"target_user_id"`
	Message      json.RawMessage `json:"message"`
}

// INotificationService fans user-directed notifications out to whichever
// instance holds the recipient's websocket connection.
type INotificationService interface {
	Notify(ctx context.Context, recipient uuid.UUID, notification dto.NotificationMessage)
}

type notificationService struct {
	redisClient *redis.Client
	log         logger.ILogger
}

func NewNotificationService(redisClient *redis.Client, log logger.ILogger) INotificationService {
	return &notificationService{redisClient: redisClient, log: log}
}

// Notify is best effort. A lost notification costs nothing the next page load
// does not recover, so failures are logged and swallowed.
func (s *notificationService) Notify(ctx context.Context, recipient uuid.UUID, notification dto.NotificationMessage) {
	if s.redisClient == nil {
		return
	}
	message, err := json.Marshal(notification)
	if err != nil {
		s.log.Error("notification", "Failed to marshal notification", map[string]interface{}{"error": err.Error()})
		return
	}
	envelope, err := json.Marshal(NotificationEnvelope{
		TargetUserId: recipient.String(),
		Message:      message,
	})
	if err != nil {
		s.log.Error("notification", "Failed to marshal envelope", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := s.redisClient.Publish(ctx, NotificationChannel, envelope).Err(); err != nil {
		s.log.Warn("notification", "Failed to publish notification", map[string]interface{}{
			"recipient": recipient,
			"error":     err.Error(),
		})
	}
}
