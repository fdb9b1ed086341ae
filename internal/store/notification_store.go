package store

import (
	"context"

	"github.com/Ghost247-bot/ulster-sub001/internal/models"
)

type NotificationStore struct {
	db DB
}

func NewNotificationStore(db DB) *NotificationStore {
	return &NotificationStore{db: db}
}

type NotificationInput struct {
	ID      string
	UserID  string
	Title   string
	Message string
	Type    string
}

func (s *NotificationStore) Insert(ctx context.Context, tx Execer, input NotificationInput) error {
	query := `
		INSERT INTO notifications (id, user_id, title, message, type)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := tx.ExecContext(ctx, query, input.ID, input.UserID, input.Title, input.Message, input.Type)
	return err
}

func (s *NotificationStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Notification, error) {
	var rows []models.Notification
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, title, message, type, is_read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *NotificationStore) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE
	`, userID)
	return count, err
}

// MarkRead scopes the update to the owning user so one user cannot mark
// another's notification.
func (s *NotificationStore) MarkRead(ctx context.Context, notificationID, userID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE notifications
		SET is_read = TRUE
		WHERE id = $1 AND user_id = $2
	`, notificationID, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *NotificationStore) MarkAllRead(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE notifications
		SET is_read = TRUE
		WHERE user_id = $1 AND is_read = FALSE
	`, userID)
	return err
}
