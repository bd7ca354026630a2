package services

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"xp-ledger/models"
)

func (s *ProgressionService) notify(snap *models.Snapshot, t models.NotificationType, title, message string) models.Notification {
	n := models.Notification{
		ID:        uuid.NewString(),
		Type:      t,
		Title:     title,
		Message:   message,
		CreatedAt: s.now().UTC(),
	}
	snap.Notifications = append(snap.Notifications, n)
	return n
}

// ListNotifications returns notifications newest first.
func (s *ProgressionService) ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error) {
	out := []models.Notification{}
	err := s.view(ctx, userID, func(snap *models.Snapshot) error {
		for i := len(snap.Notifications) - 1; i >= 0; i-- {
			n := snap.Notifications[i]
			if unreadOnly && n.Read {
				continue
			}
			out = append(out, n)
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
		return nil
	})
	return out, err
}

func (s *ProgressionService) MarkNotificationRead(ctx context.Context, userID, notificationID string) error {
	return s.update(ctx, userID, func(snap *models.Snapshot) error {
		for i := range snap.Notifications {
			if snap.Notifications[i].ID == notificationID {
				snap.Notifications[i].Read = true
				return nil
			}
		}
		return ErrNotificationNotFound
	})
}

// MarkAllNotificationsRead returns how many notifications changed.
func (s *ProgressionService) MarkAllNotificationsRead(ctx context.Context, userID string) (int, error) {
	changed := 0
	err := s.update(ctx, userID, func(snap *models.Snapshot) error {
		for i := range snap.Notifications {
			if !snap.Notifications[i].Read {
				snap.Notifications[i].Read = true
				changed++
			}
		}
		return nil
	})
	return changed, err
}
