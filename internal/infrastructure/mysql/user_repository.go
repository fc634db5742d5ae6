package mysql

import (
	"context"
	"database/sql"

	"github.com/amenelu/mekina/internal/domain"
)

type MySQLUserRepository struct {
	db *sql.DB
}

func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{db: db}
}

const userSelect = `
        SELECT id, username, email, COALESCE(phone_number, ''), roles, points, created_at
        FROM users
    `

func scanUser(row interface{ Scan(...interface{}) error }, user *domain.User) error {
	var roles string
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PhoneNumber,
		&roles, &user.Points, &user.CreatedAt); err != nil {
		return err
	}
	user.Roles = domain.DecodeRoleSet(roles)
	return nil
}

func (r *MySQLUserRepository) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	var user domain.User
	err := scanUser(r.db.QueryRowContext(ctx, userSelect+" WHERE id = ?", userID), &user)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *MySQLUserRepository) GetUserByToken(ctx context.Context, token string) (*domain.User, error) {
	var user domain.User
	err := scanUser(r.db.QueryRowContext(ctx, userSelect+" WHERE api_token = ?", token), &user)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *MySQLUserRepository) UpdateUser(ctx context.Context, user *domain.User) error {
	result, err := r.db.ExecContext(ctx, `
        UPDATE users SET username = ?, email = ?, phone_number = ?, roles = ?, points = ?
        WHERE id = ?
    `, user.Username, user.Email, user.PhoneNumber, user.Roles.Encode(), user.Points, user.ID)
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

func (r *MySQLUserRepository) CountUsers(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}
