package services

import (
	"context"
	"fmt"
	"time"

	"github.com/amenelu/mekina/internal/domain"
	"github.com/amenelu/mekina/pkg/logger"
	"github.com/amenelu/mekina/pkg/utils"
)

// RequestService handles customer car requests and the dealer bids placed
// against them, including the dealer points ledger.
type RequestService struct {
	store    domain.RequestStore
	users    domain.UserStore
	notifier domain.Notifier
	eventPub domain.EventPublisher
	log      logger.Logger
}

func NewRequestService(
	store domain.RequestStore,
	users domain.UserStore,
	notifier domain.Notifier,
	eventPub domain.EventPublisher,
	log logger.Logger,
) *RequestService {
	return &RequestService{
		store:    store,
		users:    users,
		notifier: notifier,
		eventPub: eventPub,
		log:      log,
	}
}

type RequestSubmission struct {
	Make       string
	Model      string
	MinYear    int
	MaxMileage int
	Notes      string
}

func (s *RequestService) CreateRequest(ctx context.Context, actor domain.Identity, sub RequestSubmission) (*domain.CarRequest, error) {
	if !actor.IsAuthenticated() {
		return nil, domain.ErrUnauthorized
	}
	if sub.Make == "" {
		return nil, fmt.Errorf("%w: make is required", domain.ErrInvalidInput)
	}

	request := &domain.CarRequest{
		ID:         utils.GenerateID("request"),
		UserID:     actor.UserID,
		Make:       sub.Make,
		Model:      sub.Model,
		MinYear:    sub.MinYear,
		MaxMileage: sub.MaxMileage,
		Notes:      sub.Notes,
		Status:     domain.RequestActive,
		CreatedAt:  time.Now(),
	}

	if err := s.store.CreateRequest(ctx, request); err != nil {
		return nil, err
	}

	s.log.Info("Car request created", "request_id", request.ID, "user_id", actor.UserID)
	return request, nil
}

// ActiveRequests lists open requests for the dealer dashboard. Admins share
// dealer access, matching the back-office convention.
func (s *RequestService) ActiveRequests(ctx context.Context, actor domain.Identity) ([]*domain.CarRequest, error) {
	if !actor.Has(domain.RoleDealer) && !actor.Has(domain.RoleAdmin) {
		return nil, domain.ErrForbidden
	}
	return s.store.ActiveRequests(ctx)
}

// PlaceDealerBid spends one of the dealer's points and records the offer; the
// requesting customer is notified out-of-band.
func (s *RequestService) PlaceDealerBid(ctx context.Context, actor domain.Identity, requestID string, price float64) (*domain.DealerBid, error) {
	if !actor.IsAuthenticated() {
		return nil, domain.ErrUnauthorized
	}
	if !actor.Has(domain.RoleDealer) && !actor.Has(domain.RoleAdmin) {
		return nil, domain.ErrForbidden
	}
	if price <= 0 {
		return nil, fmt.Errorf("%w: offer price must be positive", domain.ErrInvalidInput)
	}

	request, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != domain.RequestActive {
		return nil, domain.ErrNotFound
	}

	bid := &domain.DealerBid{
		ID:        utils.GenerateID("dbid"),
		RequestID: requestID,
		DealerID:  actor.UserID,
		Price:     price,
		PlacedAt:  time.Now(),
	}

	if err := s.store.PlaceDealerBid(ctx, bid); err != nil {
		return nil, err
	}

	message := fmt.Sprintf("A dealer offered %.2f ETB for your %s %s request.", price, request.Make, request.Model)
	if err := s.notifier.Notify(ctx, request.UserID, message, "/requests/"+requestID); err != nil {
		s.log.Error("Failed to notify customer of dealer bid", "request_id", requestID, "error", err)
	}

	s.log.Info("Dealer bid placed", "request_id", requestID, "dealer_id", actor.UserID, "price", price)
	return bid, nil
}

func (s *RequestService) BidsForRequest(ctx context.Context, actor domain.Identity, requestID string) ([]*domain.DealerBid, error) {
	request, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	// Only the requesting customer, dealers, and admins see the offer list.
	if request.UserID != actor.UserID && !actor.Has(domain.RoleDealer) && !actor.Has(domain.RoleAdmin) {
		return nil, domain.ErrForbidden
	}

	return s.store.BidsForRequest(ctx, requestID)
}

// AcceptBid completes the request with the chosen offer and tells the dealer.
func (s *RequestService) AcceptBid(ctx context.Context, actor domain.Identity, requestID, bidID string) error {
	if !actor.IsAuthenticated() {
		return domain.ErrUnauthorized
	}

	request, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if request.UserID != actor.UserID {
		return domain.ErrForbidden
	}
	if request.Status != domain.RequestActive {
		return fmt.Errorf("%w: request already completed", domain.ErrConflict)
	}

	bid, err := s.store.GetDealerBid(ctx, bidID)
	if err != nil {
		return err
	}
	if bid.RequestID != requestID {
		return domain.ErrNotFound
	}

	if err := s.store.AcceptBid(ctx, requestID, bidID); err != nil {
		return err
	}

	message := fmt.Sprintf("Your offer of %.2f ETB was accepted.", bid.Price)
	if err := s.notifier.Notify(ctx, bid.DealerID, message, "/requests/"+requestID); err != nil {
		s.log.Error("Failed to notify dealer of acceptance", "request_id", requestID, "error", err)
	}

	s.log.Info("Dealer bid accepted", "request_id", requestID, "bid_id", bidID)
	return nil
}
