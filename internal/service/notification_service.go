package service

import (
	"github.com/publora/publora-backend/internal/common"
	"github.com/publora/publora-backend/internal/domain"
	"github.com/publora/publora-backend/internal/repository"
	pkglogger "github.com/publora/publora-backend/pkg/logger"
)

// DefaultChannels channels used when the caller does not specify any
var DefaultChannels = []string{"in_app"}

// NotificationService enqueues and serves notifications.
// This is the engine's outbound boundary: it decides who and when, one-shot;
// delivery, retry and read tracking across transports live elsewhere.
type NotificationService interface {
	Queue(postID uint64, recipientIDs []string, notificationType string, payload map[string]interface{}, channels []string) error
	GetList(recipientID string, page, limit int) (*domain.NotificationListResponse, error)
	GetUnreadCount(recipientID string) (int64, error)
	MarkAsRead(recipientID string, notificationID uint64) error
	MarkAllAsRead(recipientID string) error
}

type notificationService struct {
	repo repository.NotificationRepository
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

// Queue enqueues one notification per recipient
func (s *notificationService) Queue(postID uint64, recipientIDs []string, notificationType string, payload map[string]interface{}, channels []string) error {
	if len(recipientIDs) == 0 {
		return nil
	}
	if len(channels) == 0 {
		channels = DefaultChannels
	}

	notifications := make([]*domain.Notification, 0, len(recipientIDs))
	for _, recipientID := range recipientIDs {
		if recipientID == "" {
			continue
		}
		notifications = append(notifications, &domain.Notification{
			RecipientID: recipientID,
			Type:        notificationType,
			PostID:      postID,
			Payload:     payload,
			Channels:    channels,
		})
	}

	if err := s.repo.CreateBatch(notifications); err != nil {
		return err
	}

	pkglogger.GetLogger().Debug().
		Uint64("post_id", postID).
		Str("type", notificationType).
		Int("recipients", len(notifications)).
		Msg("notifications queued")
	return nil
}

// GetList returns paginated notifications for a recipient
func (s *notificationService) GetList(recipientID string, page, limit int) (*domain.NotificationListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	offset := (page - 1) * limit
	notifications, total, err := s.repo.GetList(recipientID, offset, limit)
	if err != nil {
		return nil, err
	}

	unreadCount, err := s.repo.GetUnreadCount(recipientID)
	if err != nil {
		return nil, err
	}

	return &domain.NotificationListResponse{
		Items:       notifications,
		Total:       total,
		UnreadCount: unreadCount,
		Page:        page,
		Limit:       limit,
	}, nil
}

// GetUnreadCount returns the unread notification count for a recipient
func (s *notificationService) GetUnreadCount(recipientID string) (int64, error) {
	return s.repo.GetUnreadCount(recipientID)
}

// MarkAsRead marks a notification as read after ownership check
func (s *notificationService) MarkAsRead(recipientID string, notificationID uint64) error {
	n, err := s.repo.FindByID(notificationID)
	if err != nil {
		return err
	}
	if n == nil {
		return common.ErrNotFound
	}
	if n.RecipientID != recipientID {
		return common.ErrForbidden
	}
	return s.repo.MarkAsRead(notificationID)
}

// MarkAllAsRead marks all notifications as read for a recipient
func (s *notificationService) MarkAllAsRead(recipientID string) error {
	return s.repo.MarkAllAsRead(recipientID)
}
