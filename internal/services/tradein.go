package services

import (
	"context"
	"fmt"
	"time"

	"github.com/amenelu/mekina/internal/domain"
	"github.com/amenelu/mekina/pkg/logger"
	"github.com/amenelu/mekina/pkg/utils"
)

const tradeInCommentsMax = 1000

var tradeInConditions = map[string]struct{}{
	"Excellent": {},
	"Good":      {},
	"Fair":      {},
	"Poor":      {},
}

// TradeInService handles trade-in valuation requests: users describe the car
// they want to trade in and the back office works the queue.
type TradeInService struct {
	store    domain.TradeInStore
	notifier domain.Notifier
	log      logger.Logger
}

func NewTradeInService(store domain.TradeInStore, notifier domain.Notifier, log logger.Logger) *TradeInService {
	return &TradeInService{store: store, notifier: notifier, log: log}
}

type TradeInSubmission struct {
	Make      string
	Model     string
	Year      int
	Mileage   int
	Condition string
	VIN       string
	Comments  string
}

func (s *TradeInService) Submit(ctx context.Context, actor domain.Identity, sub TradeInSubmission) (*domain.TradeIn, error) {
	if !actor.IsAuthenticated() {
		return nil, domain.ErrUnauthorized
	}
	if sub.Make == "" || sub.Model == "" {
		return nil, fmt.Errorf("%w: make and model are required", domain.ErrInvalidInput)
	}
	if sub.Year < 1950 || sub.Year > time.Now().Year() {
		return nil, fmt.Errorf("%w: year must be between 1950 and the current year", domain.ErrInvalidInput)
	}
	if sub.Mileage < 0 {
		return nil, fmt.Errorf("%w: mileage cannot be negative", domain.ErrInvalidInput)
	}
	if _, ok := tradeInConditions[sub.Condition]; !ok {
		return nil, fmt.Errorf("%w: condition must be one of Excellent, Good, Fair, Poor", domain.ErrInvalidInput)
	}
	if sub.VIN != "" && len(sub.VIN) != 17 {
		return nil, fmt.Errorf("%w: VIN must be exactly 17 characters", domain.ErrInvalidInput)
	}
	if len(sub.Comments) > tradeInCommentsMax {
		return nil, fmt.Errorf("%w: comments cannot exceed %d characters", domain.ErrInvalidInput, tradeInCommentsMax)
	}

	tradeIn := &domain.TradeIn{
		ID:        utils.GenerateID("tradein"),
		UserID:    actor.UserID,
		Make:      sub.Make,
		Model:     sub.Model,
		Year:      sub.Year,
		Mileage:   sub.Mileage,
		Condition: sub.Condition,
		VIN:       sub.VIN,
		Comments:  sub.Comments,
		Status:    domain.TradeInPending,
		CreatedAt: time.Now(),
	}

	if err := s.store.CreateTradeIn(ctx, tradeIn); err != nil {
		return nil, err
	}

	s.log.Info("Trade-in submitted", "trade_in_id", tradeIn.ID, "user_id", actor.UserID)
	return tradeIn, nil
}

func (s *TradeInService) MyTradeIns(ctx context.Context, actor domain.Identity) ([]*domain.TradeIn, error) {
	if !actor.IsAuthenticated() {
		return nil, domain.ErrUnauthorized
	}
	return s.store.TradeInsForUser(ctx, actor.UserID)
}

// ReviewQueue is the admin view of every trade-in request.
func (s *TradeInService) ReviewQueue(ctx context.Context, actor domain.Identity) ([]*domain.TradeIn, error) {
	if !actor.Has(domain.RoleAdmin) {
		return nil, domain.ErrForbidden
	}
	return s.store.AllTradeIns(ctx)
}

// UpdateStatus moves a trade-in through the review pipeline and tells the
// requester.
func (s *TradeInService) UpdateStatus(ctx context.Context, actor domain.Identity, tradeInID string, status domain.TradeInStatus) error {
	if !actor.Has(domain.RoleAdmin) {
		return domain.ErrForbidden
	}

	switch status {
	case domain.TradeInPending, domain.TradeInReviewed, domain.TradeInContacted, domain.TradeInCompleted:
	default:
		return fmt.Errorf("%w: unknown trade-in status %q", domain.ErrInvalidInput, status)
	}

	tradeIn, err := s.store.GetTradeIn(ctx, tradeInID)
	if err != nil {
		return err
	}

	if err := s.store.UpdateTradeInStatus(ctx, tradeInID, status); err != nil {
		return err
	}

	message := fmt.Sprintf("Your trade-in request for the %d %s %s is now %s.", tradeIn.Year, tradeIn.Make, tradeIn.Model, status)
	if err := s.notifier.Notify(ctx, tradeIn.UserID, message, "/trade-in/"); err != nil {
		s.log.Error("Failed to notify user of trade-in update", "trade_in_id", tradeInID, "error", err)
	}

	s.log.Info("Trade-in status updated", "trade_in_id", tradeInID, "status", status, "admin_id", actor.UserID)
	return nil
}
