package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/amenelu/mekina/internal/domain"
)

type MySQLRequestRepository struct {
	db *sql.DB
}

func NewMySQLRequestRepository(db *sql.DB) *MySQLRequestRepository {
	return &MySQLRequestRepository{db: db}
}

func (r *MySQLRequestRepository) CreateRequest(ctx context.Context, request *domain.CarRequest) error {
	query := `
        INSERT INTO car_requests (id, user_id, make, model, min_year, max_mileage, notes, status, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		request.ID, request.UserID, request.Make, request.Model,
		request.MinYear, request.MaxMileage, request.Notes,
		string(request.Status), request.CreatedAt)
	return err
}

const requestSelect = `
        SELECT id, user_id, make, model, min_year, max_mileage, notes, status,
               COALESCE(accepted_bid_id, ''), created_at
        FROM car_requests
    `

func scanRequest(row interface{ Scan(...interface{}) error }, request *domain.CarRequest) error {
	var status string
	if err := row.Scan(&request.ID, &request.UserID, &request.Make, &request.Model,
		&request.MinYear, &request.MaxMileage, &request.Notes, &status,
		&request.AcceptedBidID, &request.CreatedAt); err != nil {
		return err
	}
	request.Status = domain.RequestStatus(status)
	return nil
}

func (r *MySQLRequestRepository) GetRequest(ctx context.Context, requestID string) (*domain.CarRequest, error) {
	var request domain.CarRequest
	err := scanRequest(r.db.QueryRowContext(ctx, requestSelect+" WHERE id = ?", requestID), &request)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *MySQLRequestRepository) ActiveRequests(ctx context.Context) ([]*domain.CarRequest, error) {
	rows, err := r.db.QueryContext(ctx, requestSelect+" WHERE status = ? ORDER BY created_at DESC",
		string(domain.RequestActive))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*domain.CarRequest
	for rows.Next() {
		var request domain.CarRequest
		if err := scanRequest(rows, &request); err != nil {
			return nil, err
		}
		requests = append(requests, &request)
	}

	return requests, rows.Err()
}

// PlaceDealerBid spends one of the dealer's points and records the bid in
// the same transaction. The point row is locked so two parallel bids cannot
// both spend the last point.
func (r *MySQLRequestRepository) PlaceDealerBid(ctx context.Context, bid *domain.DealerBid) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var points int
	err = tx.QueryRowContext(ctx, `SELECT points FROM users WHERE id = ? FOR UPDATE`, bid.DealerID).Scan(&points)
	if err == sql.ErrNoRows {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}
	if points <= 0 {
		return domain.ErrNoPoints
	}

	_, err = tx.ExecContext(ctx, `UPDATE users SET points = points - 1 WHERE id = ?`, bid.DealerID)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
        INSERT INTO dealer_bids (id, request_id, dealer_id, price, placed_at)
        VALUES (?, ?, ?, ?, ?)
    `, bid.ID, bid.RequestID, bid.DealerID, bid.Price, bid.PlacedAt)
	if err != nil {
		if isLockConflict(err) {
			return fmt.Errorf("%w: %v", domain.ErrConflict, err)
		}
		return err
	}

	return tx.Commit()
}

func (r *MySQLRequestRepository) BidsForRequest(ctx context.Context, requestID string) ([]*domain.DealerBid, error) {
	query := `
        SELECT id, request_id, dealer_id, price, placed_at
        FROM dealer_bids WHERE request_id = ?
        ORDER BY price ASC
    `

	rows, err := r.db.QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bids []*domain.DealerBid
	for rows.Next() {
		var bid domain.DealerBid
		if err := rows.Scan(&bid.ID, &bid.RequestID, &bid.DealerID, &bid.Price, &bid.PlacedAt); err != nil {
			return nil, err
		}
		bids = append(bids, &bid)
	}

	return bids, rows.Err()
}

func (r *MySQLRequestRepository) GetDealerBid(ctx context.Context, bidID string) (*domain.DealerBid, error) {
	var bid domain.DealerBid
	err := r.db.QueryRowContext(ctx, `
        SELECT id, request_id, dealer_id, price, placed_at
        FROM dealer_bids WHERE id = ?
    `, bidID).Scan(&bid.ID, &bid.RequestID, &bid.DealerID, &bid.Price, &bid.PlacedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &bid, nil
}

func (r *MySQLRequestRepository) AcceptBid(ctx context.Context, requestID, bidID string) error {
	result, err := r.db.ExecContext(ctx, `
        UPDATE car_requests SET status = ?, accepted_bid_id = ?
        WHERE id = ? AND status = ?
    `, string(domain.RequestCompleted), bidID, requestID, string(domain.RequestActive))
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
