package services

import (
	"context"
	"time"

	"github.com/amenelu/mekina/internal/domain"
	"github.com/amenelu/mekina/pkg/logger"
	"github.com/amenelu/mekina/pkg/utils"
)

// NotificationService is the Notifier collaborator: every notification lands
// in the persisted inbox, and a copy goes out on the event channel for
// real-time delivery.
type NotificationService struct {
	store    domain.NotificationStore
	eventPub domain.EventPublisher
	log      logger.Logger
}

func NewNotificationService(store domain.NotificationStore, eventPub domain.EventPublisher, log logger.Logger) *NotificationService {
	return &NotificationService{
		store:    store,
		eventPub: eventPub,
		log:      log,
	}
}

func (s *NotificationService) Notify(ctx context.Context, userID, message, link string) error {
	n := &domain.Notification{
		ID:        utils.GenerateID("notif"),
		UserID:    userID,
		Message:   message,
		Link:      link,
		CreatedAt: time.Now(),
	}

	if err := s.store.CreateNotification(ctx, n); err != nil {
		return err
	}

	// Push delivery is best effort; the inbox row is the durable copy.
	if err := s.eventPub.PublishEvent(ctx, &domain.Event{
		Type:      domain.EventNotification,
		UserID:    userID,
		Message:   message,
		Link:      link,
		Timestamp: n.CreatedAt,
	}); err != nil {
		s.log.Error("Failed to publish notification event", "user_id", userID, "error", err)
	}

	return nil
}

func (s *NotificationService) Inbox(ctx context.Context, actor domain.Identity) ([]*domain.Notification, error) {
	if !actor.IsAuthenticated() {
		return nil, domain.ErrUnauthorized
	}
	return s.store.NotificationsForUser(ctx, actor.UserID)
}

func (s *NotificationService) MarkRead(ctx context.Context, actor domain.Identity, notificationID string) error {
	if !actor.IsAuthenticated() {
		return domain.ErrUnauthorized
	}
	return s.store.MarkRead(ctx, notificationID, actor.UserID)
}

func (s *NotificationService) UnreadCount(ctx context.Context, actor domain.Identity) (int, error) {
	if !actor.IsAuthenticated() {
		return 0, domain.ErrUnauthorized
	}
	return s.store.CountUnread(ctx, actor.UserID)
}
