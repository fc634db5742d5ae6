package mysql

import (
	"context"
	"database/sql"

	"github.com/amenelu/mekina/internal/domain"
)

type MySQLTradeInRepository struct {
	db *sql.DB
}

func NewMySQLTradeInRepository(db *sql.DB) *MySQLTradeInRepository {
	return &MySQLTradeInRepository{db: db}
}

func (r *MySQLTradeInRepository) CreateTradeIn(ctx context.Context, tradeIn *domain.TradeIn) error {
	query := `
        INSERT INTO trade_ins (id, user_id, make, model, year, mileage, car_condition, vin, comments, status, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		tradeIn.ID, tradeIn.UserID, tradeIn.Make, tradeIn.Model,
		tradeIn.Year, tradeIn.Mileage, tradeIn.Condition, tradeIn.VIN,
		tradeIn.Comments, string(tradeIn.Status), tradeIn.CreatedAt)
	return err
}

const tradeInSelect = `
        SELECT id, user_id, make, model, year, mileage, car_condition,
               COALESCE(vin, ''), COALESCE(comments, ''), status, created_at
        FROM trade_ins
    `

func scanTradeIn(row interface{ Scan(...interface{}) error }, tradeIn *domain.TradeIn) error {
	var status string
	if err := row.Scan(&tradeIn.ID, &tradeIn.UserID, &tradeIn.Make, &tradeIn.Model,
		&tradeIn.Year, &tradeIn.Mileage, &tradeIn.Condition, &tradeIn.VIN,
		&tradeIn.Comments, &status, &tradeIn.CreatedAt); err != nil {
		return err
	}
	tradeIn.Status = domain.TradeInStatus(status)
	return nil
}

func (r *MySQLTradeInRepository) GetTradeIn(ctx context.Context, tradeInID string) (*domain.TradeIn, error) {
	var tradeIn domain.TradeIn
	err := scanTradeIn(r.db.QueryRowContext(ctx, tradeInSelect+" WHERE id = ?", tradeInID), &tradeIn)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tradeIn, nil
}

func (r *MySQLTradeInRepository) queryTradeIns(ctx context.Context, query string, args ...interface{}) ([]*domain.TradeIn, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tradeIns []*domain.TradeIn
	for rows.Next() {
		var tradeIn domain.TradeIn
		if err := scanTradeIn(rows, &tradeIn); err != nil {
			return nil, err
		}
		tradeIns = append(tradeIns, &tradeIn)
	}

	return tradeIns, rows.Err()
}

func (r *MySQLTradeInRepository) TradeInsForUser(ctx context.Context, userID string) ([]*domain.TradeIn, error) {
	return r.queryTradeIns(ctx, tradeInSelect+" WHERE user_id = ? ORDER BY created_at DESC", userID)
}

func (r *MySQLTradeInRepository) AllTradeIns(ctx context.Context) ([]*domain.TradeIn, error) {
	return r.queryTradeIns(ctx, tradeInSelect+" ORDER BY created_at DESC")
}

func (r *MySQLTradeInRepository) UpdateTradeInStatus(ctx context.Context, tradeInID string, status domain.TradeInStatus) error {
	result, err := r.db.ExecContext(ctx, `
        UPDATE trade_ins SET status = ? WHERE id = ?
    `, string(status), tradeInID)
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
