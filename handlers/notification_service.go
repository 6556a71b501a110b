package handlers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"portex.io/warranty/config"
	"portex.io/warranty/models"
	"portex.io/warranty/pkg/lifecycle"
)

// NotificationService persists in-app notification records for lifecycle
// events. It is the engine's Notifier adapter: delivery to external channels
// (email, SMS, push) belongs to a separate service that drains these records.
type NotificationService struct {
	db *gorm.DB
}

// NewNotificationService creates a new notification service instance
func NewNotificationService() *NotificationService {
	return &NotificationService{
		db: config.DB,
	}
}

var _ lifecycle.Notifier = (*NotificationService)(nil)

// Notify writes one notification row for the event's client. The engine
// treats any returned error as best-effort and never fails the business
// mutation because of it.
func (ns *NotificationService) Notify(ctx context.Context, event models.NotificationType, payload map[string]interface{}) error {
	recipient, _ := payload["client_id"].(string)
	if recipient == "" {
		return fmt.Errorf("notification %s has no recipient", event)
	}

	notification := models.Notification{
		UserID:     recipient,
		Type:       event,
		Title:      notificationTitle(event),
		Body:       notificationBody(event, payload),
		WarrantyID: payloadUUID(payload, "warranty_id"),
		ClaimID:    payloadUUID(payload, "claim_id"),
		Metadata:   models.JSONMap(payload),
		Status:     models.NotificationStatusPending,
	}

	if err := ns.db.WithContext(ctx).Create(&notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func notificationTitle(event models.NotificationType) string {
	switch event {
	case models.NotificationTypeWarrantyCreated:
		return "Warranty registered"
	case models.NotificationTypeClaimFiled:
		return "Warranty claim received"
	case models.NotificationTypeClaimApproved:
		return "Warranty claim approved"
	case models.NotificationTypeClaimRejected:
		return "Warranty claim rejected"
	case models.NotificationTypeClaimReplaced:
		return "Replacement completed"
	default:
		return string(event)
	}
}

func notificationBody(event models.NotificationType, payload map[string]interface{}) string {
	switch event {
	case models.NotificationTypeWarrantyCreated:
		return fmt.Sprintf("A warranty covering your material is registered until %v.", payload["warranty_end"])
	case models.NotificationTypeClaimFiled:
		return "Your warranty claim was received and will be reviewed shortly."
	case models.NotificationTypeClaimApproved:
		if comments, _ := payload["comments"].(string); comments != "" {
			return fmt.Sprintf("Your warranty claim was approved: %s", comments)
		}
		return "Your warranty claim was approved."
	case models.NotificationTypeClaimRejected:
		if comments, _ := payload["comments"].(string); comments != "" {
			return fmt.Sprintf("Your warranty claim was rejected: %s", comments)
		}
		return "Your warranty claim was rejected."
	case models.NotificationTypeClaimReplaced:
		return "The replacement for your approved claim has been confirmed."
	default:
		return string(event)
	}
}

func payloadUUID(payload map[string]interface{}, key string) *uuid.UUID {
	s, _ := payload[key].(string)
	if s == "" {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &id
}

// GetNotificationsForUser retrieves a user's notifications, newest first.
func (ns *NotificationService) GetNotificationsForUser(userID string, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var notifications []models.Notification
	err := ns.db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

// GetUnreadCount returns the number of unread notifications for a user.
func (ns *NotificationService) GetUnreadCount(userID string) (int64, error) {
	var count int64
	err := ns.db.Model(&models.Notification{}).
		Where("user_id = ? AND status = ?", userID, models.NotificationStatusPending).
		Count(&count).Error
	return count, err
}
