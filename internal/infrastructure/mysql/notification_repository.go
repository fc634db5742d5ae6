package mysql

import (
	"context"
	"database/sql"

	"github.com/amenelu/mekina/internal/domain"
)

type MySQLNotificationRepository struct {
	db *sql.DB
}

func NewMySQLNotificationRepository(db *sql.DB) *MySQLNotificationRepository {
	return &MySQLNotificationRepository{db: db}
}

func (r *MySQLNotificationRepository) CreateNotification(ctx context.Context, n *domain.Notification) error {
	query := `
        INSERT INTO notifications (id, user_id, message, link, is_read, created_at)
        VALUES (?, ?, ?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		n.ID, n.UserID, n.Message, n.Link, n.IsRead, n.CreatedAt)
	return err
}

func (r *MySQLNotificationRepository) NotificationsForUser(ctx context.Context, userID string) ([]*domain.Notification, error) {
	query := `
        SELECT id, user_id, message, COALESCE(link, ''), is_read, created_at
        FROM notifications WHERE user_id = ?
        ORDER BY created_at DESC
    `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.Link, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, &n)
	}

	return notifications, rows.Err()
}

// MarkRead scopes the update to the owning user so one user cannot mark
// another's notifications.
func (r *MySQLNotificationRepository) MarkRead(ctx context.Context, notificationID, userID string) error {
	result, err := r.db.ExecContext(ctx, `
        UPDATE notifications SET is_read = TRUE WHERE id = ? AND user_id = ?
    `, notificationID, userID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MySQLNotificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
        SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = FALSE
    `, userID).Scan(&count)
	return count, err
}
