package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/amenelu/mekina/internal/domain"

	_ "github.com/go-sql-driver/mysql"
)

type MySQLAuctionRepository struct {
	db *sql.DB
}

func NewMySQLAuctionRepository(db *sql.DB) *MySQLAuctionRepository {
	return &MySQLAuctionRepository{db: db}
}

const auctionColumns = `a.id, a.car_id, a.start_time, a.end_time, a.start_price, a.current_price,
		COALESCE(a.winner_id, ''), a.status, a.created_at, a.updated_at`

const carColumns = `c.id, c.make, c.model, c.year, c.description, c.owner_id, c.transmission,
		c.drivetrain, c.mileage, c.fuel_type, c.car_condition, c.body_type, c.listing_type,
		c.is_approved, c.created_at`

func scanAuction(row interface{ Scan(...interface{}) error }, auction *domain.Auction) error {
	var status int
	if err := row.Scan(&auction.ID, &auction.CarID, &auction.StartTime, &auction.EndTime,
		&auction.StartPrice, &auction.CurrentPrice, &auction.WinnerID, &status,
		&auction.CreatedAt, &auction.UpdatedAt); err != nil {
		return err
	}
	auction.Status = domain.AuctionStatus(status)
	return nil
}

func (r *MySQLAuctionRepository) CreateAuction(ctx context.Context, auction *domain.Auction) error {
	query := `
        INSERT INTO auctions (id, car_id, start_time, end_time, start_price, current_price, status, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		auction.ID, auction.CarID, auction.StartTime, auction.EndTime,
		auction.StartPrice, auction.CurrentPrice, int(auction.Status),
		auction.CreatedAt, auction.UpdatedAt)
	return err
}

func (r *MySQLAuctionRepository) GetAuction(ctx context.Context, auctionID string) (*domain.Auction, *domain.Car, error) {
	query := fmt.Sprintf(`
        SELECT %s, %s
        FROM auctions a JOIN cars c ON c.id = a.car_id
        WHERE a.id = ?
    `, auctionColumns, carColumns)

	var auction domain.Auction
	var car domain.Car
	var status int
	var listingType string

	err := r.db.QueryRowContext(ctx, query, auctionID).Scan(
		&auction.ID, &auction.CarID, &auction.StartTime, &auction.EndTime,
		&auction.StartPrice, &auction.CurrentPrice, &auction.WinnerID, &status,
		&auction.CreatedAt, &auction.UpdatedAt,
		&car.ID, &car.Make, &car.Model, &car.Year, &car.Description, &car.OwnerID,
		&car.Transmission, &car.Drivetrain, &car.Mileage, &car.FuelType,
		&car.Condition, &car.BodyType, &listingType, &car.IsApproved, &car.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	auction.Status = domain.AuctionStatus(status)
	car.ListingType = domain.ListingType(listingType)
	return &auction, &car, nil
}

func (r *MySQLAuctionRepository) GetAuctionByCar(ctx context.Context, carID string) (*domain.Auction, error) {
	var auction domain.Auction
	row := r.db.QueryRowContext(ctx, `
        SELECT id, car_id, start_time, end_time, start_price, current_price,
               COALESCE(winner_id, ''), status, created_at, updated_at
        FROM auctions WHERE car_id = ?
    `, carID)
	if err := scanAuction(row, &auction); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &auction, nil
}

func buildFilter(filter domain.AuctionFilter) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if filter.ApprovedOnly {
		clauses = append(clauses, "c.is_approved = TRUE")
	}
	if !filter.OpenAfter.IsZero() {
		clauses = append(clauses, "a.end_time > ?")
		args = append(args, filter.OpenAfter)
	}
	if filter.ExcludeID != "" {
		clauses = append(clauses, "a.id != ?")
		args = append(args, filter.ExcludeID)
	}
	if filter.Make != "" {
		clauses = append(clauses, "c.make = ?")
		args = append(args, filter.Make)
	}
	if filter.Model != "" {
		clauses = append(clauses, "c.model = ?")
		args = append(args, filter.Model)
	}
	if filter.MaxPrice > 0 {
		clauses = append(clauses, "a.current_price <= ?")
		args = append(args, filter.MaxPrice)
	}
	if filter.Condition != "" {
		clauses = append(clauses, "c.car_condition = ?")
		args = append(args, filter.Condition)
	}
	if filter.Transmission != "" {
		clauses = append(clauses, "c.transmission = ?")
		args = append(args, filter.Transmission)
	}
	if filter.Drivetrain != "" {
		clauses = append(clauses, "c.drivetrain = ?")
		args = append(args, filter.Drivetrain)
	}
	if filter.MaxMileage > 0 {
		clauses = append(clauses, "c.mileage <= ?")
		args = append(args, filter.MaxMileage)
	}
	if filter.FuelType != "" {
		clauses = append(clauses, "c.fuel_type = ?")
		args = append(args, filter.FuelType)
	}
	if filter.BodyType != "" {
		clauses = append(clauses, "c.body_type = ?")
		args = append(args, filter.BodyType)
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (r *MySQLAuctionRepository) QueryAuctions(ctx context.Context, filter domain.AuctionFilter) ([]*domain.AuctionSummary, error) {
	where, args := buildFilter(filter)

	order := " ORDER BY a.end_time ASC"
	if filter.Random {
		order = " ORDER BY RAND()"
	}

	query := fmt.Sprintf(`
        SELECT %s, %s
        FROM auctions a JOIN cars c ON c.id = a.car_id
    `, auctionColumns, carColumns) + where + order

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	return r.querySummaries(ctx, query, args...)
}

func (r *MySQLAuctionRepository) CountAuctions(ctx context.Context, filter domain.AuctionFilter) (int, error) {
	where, args := buildFilter(filter)
	query := `SELECT COUNT(*) FROM auctions a JOIN cars c ON c.id = a.car_id` + where

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *MySQLAuctionRepository) AllAuctions(ctx context.Context) ([]*domain.AuctionSummary, error) {
	query := fmt.Sprintf(`
        SELECT %s, %s
        FROM auctions a JOIN cars c ON c.id = a.car_id
        ORDER BY a.end_time DESC
    `, auctionColumns, carColumns)

	return r.querySummaries(ctx, query)
}

func (r *MySQLAuctionRepository) querySummaries(ctx context.Context, query string, args ...interface{}) ([]*domain.AuctionSummary, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []*domain.AuctionSummary
	for rows.Next() {
		var s domain.AuctionSummary
		var status int
		var listingType string

		err := rows.Scan(
			&s.Auction.ID, &s.Auction.CarID, &s.Auction.StartTime, &s.Auction.EndTime,
			&s.Auction.StartPrice, &s.Auction.CurrentPrice, &s.Auction.WinnerID, &status,
			&s.Auction.CreatedAt, &s.Auction.UpdatedAt,
			&s.Car.ID, &s.Car.Make, &s.Car.Model, &s.Car.Year, &s.Car.Description,
			&s.Car.OwnerID, &s.Car.Transmission, &s.Car.Drivetrain, &s.Car.Mileage,
			&s.Car.FuelType, &s.Car.Condition, &s.Car.BodyType, &listingType,
			&s.Car.IsApproved, &s.Car.CreatedAt)
		if err != nil {
			return nil, err
		}

		s.Auction.Status = domain.AuctionStatus(status)
		s.Car.ListingType = domain.ListingType(listingType)
		summaries = append(summaries, &s)
	}

	return summaries, rows.Err()
}

// PlaceBid serializes concurrent bidders on the auction row: the SELECT ...
// FOR UPDATE blocks a second writer until the first commits, so validate
// always sees the latest committed price.
func (r *MySQLAuctionRepository) PlaceBid(ctx context.Context, auctionID string, validate func(locked *domain.Auction, highest *domain.Bid) (*domain.Bid, error)) (*domain.Bid, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var auction domain.Auction
	row := tx.QueryRowContext(ctx, `
        SELECT id, car_id, start_time, end_time, start_price, current_price,
               COALESCE(winner_id, ''), status, created_at, updated_at
        FROM auctions WHERE id = ? FOR UPDATE
    `, auctionID)
	if err := scanAuction(row, &auction); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		if isLockConflict(err) {
			return nil, fmt.Errorf("%w: %v", domain.ErrConflict, err)
		}
		return nil, err
	}

	highest, err := highestBidTx(ctx, tx, auctionID)
	if err != nil {
		return nil, err
	}

	bid, err := validate(&auction, highest)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
        INSERT INTO bids (id, auction_id, user_id, amount, placed_at)
        VALUES (?, ?, ?, ?, ?)
    `, bid.ID, bid.AuctionID, bid.UserID, bid.Amount, bid.PlacedAt)
	if err != nil {
		if isLockConflict(err) {
			return nil, fmt.Errorf("%w: %v", domain.ErrConflict, err)
		}
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
        UPDATE auctions SET current_price = ?, updated_at = ? WHERE id = ?
    `, bid.Amount, time.Now(), auctionID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		if isLockConflict(err) {
			return nil, fmt.Errorf("%w: %v", domain.ErrConflict, err)
		}
		return nil, err
	}
	return bid, nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Ties on amount resolve to the earliest bid, so the first to reach a price
// keeps the lead.
const highestBidQuery = `
        SELECT id, auction_id, user_id, amount, placed_at
        FROM bids WHERE auction_id = ?
        ORDER BY amount DESC, placed_at ASC
        LIMIT 1
    `

func highestBidTx(ctx context.Context, q queryRower, auctionID string) (*domain.Bid, error) {
	var bid domain.Bid
	err := q.QueryRowContext(ctx, highestBidQuery, auctionID).Scan(
		&bid.ID, &bid.AuctionID, &bid.UserID, &bid.Amount, &bid.PlacedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &bid, nil
}

func (r *MySQLAuctionRepository) HighestBid(ctx context.Context, auctionID string) (*domain.Bid, error) {
	return highestBidTx(ctx, r.db, auctionID)
}

func (r *MySQLAuctionRepository) ListBids(ctx context.Context, auctionID string) ([]*domain.Bid, error) {
	query := `
        SELECT id, auction_id, user_id, amount, placed_at
        FROM bids WHERE auction_id = ?
        ORDER BY placed_at DESC
    `

	rows, err := r.db.QueryContext(ctx, query, auctionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bids []*domain.Bid
	for rows.Next() {
		var bid domain.Bid
		if err := rows.Scan(&bid.ID, &bid.AuctionID, &bid.UserID, &bid.Amount, &bid.PlacedAt); err != nil {
			return nil, err
		}
		bids = append(bids, &bid)
	}

	return bids, rows.Err()
}

func (r *MySQLAuctionRepository) CloseDueAuctions(ctx context.Context, now time.Time) ([]*domain.Auction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
        SELECT id, car_id, start_time, end_time, start_price, current_price,
               COALESCE(winner_id, ''), status, created_at, updated_at
        FROM auctions
        WHERE status = ? AND end_time <= ?
        FOR UPDATE
    `, int(domain.AuctionOpen), now)
	if err != nil {
		return nil, err
	}

	var due []*domain.Auction
	for rows.Next() {
		var auction domain.Auction
		if err := scanAuction(rows, &auction); err != nil {
			rows.Close()
			return nil, err
		}
		due = append(due, &auction)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for _, auction := range due {
		highest, err := highestBidTx(ctx, tx, auction.ID)
		if err != nil {
			return nil, err
		}

		winnerID := sql.NullString{}
		if highest != nil {
			winnerID = sql.NullString{String: highest.UserID, Valid: true}
			auction.WinnerID = highest.UserID
		}

		_, err = tx.ExecContext(ctx, `
            UPDATE auctions SET status = ?, winner_id = ?, updated_at = ? WHERE id = ?
        `, int(domain.AuctionClosed), winnerID, now, auction.ID)
		if err != nil {
			return nil, err
		}
		auction.Status = domain.AuctionClosed
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return due, nil
}

func (r *MySQLAuctionRepository) UpdateAuctionTerms(ctx context.Context, auctionID string, startPrice float64, endTime time.Time) error {
	// current_price stays at the highest bid when bids exist, otherwise it
	// follows the new start price, even downward.
	result, err := r.db.ExecContext(ctx, `
        UPDATE auctions
        SET start_price = ?,
            current_price = (SELECT COALESCE(MAX(amount), ?) FROM bids WHERE auction_id = ?),
            end_time = ?, updated_at = ?
        WHERE id = ?
    `, startPrice, startPrice, auctionID, endTime, time.Now(), auctionID)
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
