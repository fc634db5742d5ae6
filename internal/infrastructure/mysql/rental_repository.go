package mysql

import (
	"context"
	"database/sql"

	"github.com/amenelu/mekina/internal/domain"
)

type MySQLRentalRepository struct {
	db *sql.DB
}

func NewMySQLRentalRepository(db *sql.DB) *MySQLRentalRepository {
	return &MySQLRentalRepository{db: db}
}

func (r *MySQLRentalRepository) CreateRental(ctx context.Context, rental *domain.RentalListing) error {
	query := `
        INSERT INTO rental_listings (id, car_id, price_per_day, is_available)
        VALUES (?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		rental.ID, rental.CarID, rental.PricePerDay, rental.IsAvailable)
	return err
}

// AvailableRentals returns listings whose car has been approved.
func (r *MySQLRentalRepository) AvailableRentals(ctx context.Context) ([]*domain.RentalListing, error) {
	query := `
        SELECT r.id, r.car_id, r.price_per_day, r.is_available
        FROM rental_listings r JOIN cars c ON c.id = r.car_id
        WHERE r.is_available = TRUE AND c.is_approved = TRUE
    `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rentals []*domain.RentalListing
	for rows.Next() {
		var rental domain.RentalListing
		if err := rows.Scan(&rental.ID, &rental.CarID, &rental.PricePerDay, &rental.IsAvailable); err != nil {
			return nil, err
		}
		rentals = append(rentals, &rental)
	}

	return rentals, rows.Err()
}
