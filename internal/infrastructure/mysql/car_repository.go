package mysql

import (
	"context"
	"database/sql"

	"github.com/amenelu/mekina/internal/domain"
)

type MySQLCarRepository struct {
	db *sql.DB
}

func NewMySQLCarRepository(db *sql.DB) *MySQLCarRepository {
	return &MySQLCarRepository{db: db}
}

func (r *MySQLCarRepository) CreateCar(ctx context.Context, car *domain.Car) error {
	query := `
        INSERT INTO cars (id, make, model, year, description, owner_id, transmission,
                          drivetrain, mileage, fuel_type, car_condition, body_type,
                          listing_type, is_approved, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		car.ID, car.Make, car.Model, car.Year, car.Description, car.OwnerID,
		car.Transmission, car.Drivetrain, car.Mileage, car.FuelType,
		car.Condition, car.BodyType, string(car.ListingType), car.IsApproved,
		car.CreatedAt)
	return err
}

const carSelect = `
        SELECT id, make, model, year, description, owner_id, transmission,
               drivetrain, mileage, fuel_type, car_condition, body_type,
               listing_type, is_approved, created_at
        FROM cars
    `

func scanCar(row interface{ Scan(...interface{}) error }, car *domain.Car) error {
	var listingType string
	if err := row.Scan(&car.ID, &car.Make, &car.Model, &car.Year, &car.Description,
		&car.OwnerID, &car.Transmission, &car.Drivetrain, &car.Mileage,
		&car.FuelType, &car.Condition, &car.BodyType, &listingType,
		&car.IsApproved, &car.CreatedAt); err != nil {
		return err
	}
	car.ListingType = domain.ListingType(listingType)
	return nil
}

func (r *MySQLCarRepository) GetCar(ctx context.Context, carID string) (*domain.Car, error) {
	var car domain.Car
	err := scanCar(r.db.QueryRowContext(ctx, carSelect+" WHERE id = ?", carID), &car)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &car, nil
}

func (r *MySQLCarRepository) CarsByOwner(ctx context.Context, ownerID string) ([]*domain.Car, error) {
	return r.queryCars(ctx, carSelect+" WHERE owner_id = ? ORDER BY created_at DESC", ownerID)
}

func (r *MySQLCarRepository) PendingApproval(ctx context.Context) ([]*domain.Car, error) {
	return r.queryCars(ctx, carSelect+" WHERE is_approved = FALSE ORDER BY created_at DESC")
}

func (r *MySQLCarRepository) queryCars(ctx context.Context, query string, args ...interface{}) ([]*domain.Car, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cars []*domain.Car
	for rows.Next() {
		var car domain.Car
		if err := scanCar(rows, &car); err != nil {
			return nil, err
		}
		cars = append(cars, &car)
	}

	return cars, rows.Err()
}

func (r *MySQLCarRepository) ApproveCar(ctx context.Context, carID string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE cars SET is_approved = TRUE WHERE id = ?`, carID)
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

func (r *MySQLCarRepository) CountPendingApproval(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cars WHERE is_approved = FALSE`).Scan(&count)
	return count, err
}
