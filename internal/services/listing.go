package services

import (
	"context"
	"fmt"
	"time"

	"github.com/amenelu/mekina/internal/domain"
	"github.com/amenelu/mekina/pkg/logger"
	"github.com/amenelu/mekina/pkg/utils"
)

// ListingService handles car submission, admin approval and the admin
// back-office views.
type ListingService struct {
	cars     domain.CarStore
	users    domain.UserStore
	rentals  domain.RentalStore
	auctions domain.AuctionStore
	ledger   *AuctionLedger
	notifier domain.Notifier
	log      logger.Logger
}

func NewListingService(
	cars domain.CarStore,
	users domain.UserStore,
	rentals domain.RentalStore,
	auctions domain.AuctionStore,
	ledger *AuctionLedger,
	notifier domain.Notifier,
	log logger.Logger,
) *ListingService {
	return &ListingService{
		cars:     cars,
		users:    users,
		rentals:  rentals,
		auctions: auctions,
		ledger:   ledger,
		notifier: notifier,
		log:      log,
	}
}

// CarSubmission carries a seller's listing form. Auction fields apply only
// when the listing type is auction, rental fields only for rentals.
type CarSubmission struct {
	Make         string
	Model        string
	Year         int
	Description  string
	Transmission string
	Drivetrain   string
	Mileage      int
	FuelType     string
	Condition    string
	BodyType     string
	ListingType  domain.ListingType

	StartPrice float64
	EndTime    time.Time

	PricePerDay float64
}

// SubmitCar records a seller's car; it always enters unapproved and only
// becomes publicly visible after admin approval.
func (s *ListingService) SubmitCar(ctx context.Context, actor domain.Identity, sub CarSubmission) (*domain.Car, error) {
	if !actor.IsAuthenticated() {
		return nil, domain.ErrUnauthorized
	}
	if sub.Make == "" || sub.Model == "" || sub.Year < 1900 {
		return nil, fmt.Errorf("%w: make, model and year are required", domain.ErrInvalidInput)
	}

	switch sub.ListingType {
	case domain.ListingAuction, domain.ListingSale, domain.ListingRental:
	default:
		return nil, fmt.Errorf("%w: unknown listing type %q", domain.ErrInvalidInput, sub.ListingType)
	}

	car := &domain.Car{
		ID:           utils.GenerateID("car"),
		Make:         sub.Make,
		Model:        sub.Model,
		Year:         sub.Year,
		Description:  sub.Description,
		OwnerID:      actor.UserID,
		Transmission: sub.Transmission,
		Drivetrain:   sub.Drivetrain,
		Mileage:      sub.Mileage,
		FuelType:     sub.FuelType,
		Condition:    sub.Condition,
		BodyType:     sub.BodyType,
		ListingType:  sub.ListingType,
		IsApproved:   false,
		CreatedAt:    time.Now(),
	}

	if err := s.cars.CreateCar(ctx, car); err != nil {
		return nil, err
	}

	switch sub.ListingType {
	case domain.ListingAuction:
		if _, err := s.ledger.CreateAuction(ctx, car.ID, sub.StartPrice, sub.EndTime); err != nil {
			return nil, err
		}
	case domain.ListingRental:
		rental := &domain.RentalListing{
			ID:          utils.GenerateID("rental"),
			CarID:       car.ID,
			PricePerDay: sub.PricePerDay,
			IsAvailable: true,
		}
		if err := s.rentals.CreateRental(ctx, rental); err != nil {
			return nil, err
		}
	}

	s.log.Info("Car submitted", "car_id", car.ID, "owner_id", actor.UserID, "listing_type", sub.ListingType)
	return car, nil
}

func (s *ListingService) MyCars(ctx context.Context, actor domain.Identity) ([]*domain.Car, error) {
	if !actor.IsAuthenticated() {
		return nil, domain.ErrUnauthorized
	}
	return s.cars.CarsByOwner(ctx, actor.UserID)
}

// ApproveCar flips a pending car to approved and tells the owner.
func (s *ListingService) ApproveCar(ctx context.Context, actor domain.Identity, carID string) error {
	if !actor.Has(domain.RoleAdmin) {
		return domain.ErrForbidden
	}

	car, err := s.cars.GetCar(ctx, carID)
	if err != nil {
		return err
	}

	if err := s.cars.ApproveCar(ctx, carID); err != nil {
		return err
	}

	message := fmt.Sprintf("Your %d %s %s has been approved and is now live.", car.Year, car.Make, car.Model)
	link := "/seller/cars"
	if car.ListingType == domain.ListingAuction {
		if auction, err := s.auctions.GetAuctionByCar(ctx, carID); err == nil {
			link = "/auctions/" + auction.ID
		}
	}
	if err := s.notifier.Notify(ctx, car.OwnerID, message, link); err != nil {
		s.log.Error("Failed to notify owner of approval", "car_id", carID, "error", err)
	}

	s.log.Info("Car approved", "car_id", carID, "admin_id", actor.UserID)
	return nil
}

func (s *ListingService) PendingCars(ctx context.Context, actor domain.Identity) ([]*domain.Car, error) {
	if !actor.Has(domain.RoleAdmin) {
		return nil, domain.ErrForbidden
	}
	return s.cars.PendingApproval(ctx)
}

// DashboardStats mirrors the admin landing page counters.
type DashboardStats struct {
	UserCount        int `json:"user_count"`
	ActiveAuctions   int `json:"active_auction_count"`
	PendingApprovals int `json:"pending_approval_count"`
}

func (s *ListingService) Dashboard(ctx context.Context, actor domain.Identity) (*DashboardStats, error) {
	if !actor.Has(domain.RoleAdmin) {
		return nil, domain.ErrForbidden
	}

	users, err := s.users.CountUsers(ctx)
	if err != nil {
		return nil, err
	}

	active, err := s.auctions.CountAuctions(ctx, domain.AuctionFilter{OpenAfter: time.Now()})
	if err != nil {
		return nil, err
	}

	pending, err := s.cars.CountPendingApproval(ctx)
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		UserCount:        users,
		ActiveAuctions:   active,
		PendingApprovals: pending,
	}, nil
}

// UserEdit carries an admin's changes to a user's profile, roles and points.
type UserEdit struct {
	Username    string
	Email       string
	PhoneNumber string
	Roles       domain.RoleSet
	Points      int
}

// EditUser applies role and points changes. An admin cannot strip their own
// admin role.
func (s *ListingService) EditUser(ctx context.Context, actor domain.Identity, userID string, edit UserEdit) (*domain.User, error) {
	if !actor.Has(domain.RoleAdmin) {
		return nil, domain.ErrForbidden
	}

	if userID == actor.UserID && !edit.Roles.Has(domain.RoleAdmin) {
		return nil, fmt.Errorf("%w: you cannot remove your own admin role", domain.ErrInvalidInput)
	}
	if edit.Points < 0 {
		return nil, fmt.Errorf("%w: points cannot be negative", domain.ErrInvalidInput)
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Username = edit.Username
	user.Email = edit.Email
	user.PhoneNumber = edit.PhoneNumber
	user.Roles = edit.Roles
	user.Points = edit.Points

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("User updated", "user_id", userID, "admin_id", actor.UserID)
	return user, nil
}

func (s *ListingService) AvailableRentals(ctx context.Context) ([]*domain.RentalListing, error) {
	return s.rentals.AvailableRentals(ctx)
}
