package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amenelu/mekina/internal/domain"
	"github.com/amenelu/mekina/pkg/logger"
	"github.com/amenelu/mekina/pkg/utils"
)

const similarLimit = 4

// AuctionLedger owns the auction lifecycle: creation, bid placement under
// explicit row locking, read views, and the similar-auctions cascade.
type AuctionLedger struct {
	store        domain.AuctionStore
	stateCache   domain.AuctionStateCache
	eventPub     domain.EventPublisher
	minIncrement float64
	maxRetries   int
	perPage      int
	log          logger.Logger
}

func NewAuctionLedger(
	store domain.AuctionStore,
	stateCache domain.AuctionStateCache,
	eventPub domain.EventPublisher,
	minIncrement float64,
	maxRetries int,
	perPage int,
	log logger.Logger,
) *AuctionLedger {
	return &AuctionLedger{
		store:        store,
		stateCache:   stateCache,
		eventPub:     eventPub,
		minIncrement: minIncrement,
		maxRetries:   maxRetries,
		perPage:      perPage,
		log:          log,
	}
}

// MinIncrement is the configured increment policy value.
func (l *AuctionLedger) MinIncrement() float64 {
	return l.minIncrement
}

func (l *AuctionLedger) CreateAuction(ctx context.Context, carID string, startPrice float64, endTime time.Time) (*domain.Auction, error) {
	now := time.Now()
	if !endTime.After(now) {
		return nil, fmt.Errorf("%w: end time must be in the future", domain.ErrInvalidInput)
	}
	if startPrice <= 0 {
		return nil, fmt.Errorf("%w: start price must be positive", domain.ErrInvalidInput)
	}

	auction := &domain.Auction{
		ID:           utils.GenerateID("auction"),
		CarID:        carID,
		StartTime:    now,
		EndTime:      endTime,
		StartPrice:   startPrice,
		CurrentPrice: startPrice,
		Status:       domain.AuctionOpen,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := l.store.CreateAuction(ctx, auction); err != nil {
		return nil, err
	}

	if err := l.stateCache.SetAuctionState(ctx, auction.ID, startPrice, domain.AuctionOpen); err != nil {
		l.log.Warn("Failed to prime auction state cache", "auction_id", auction.ID, "error", err)
	}

	l.log.Info("Auction created", "auction_id", auction.ID, "car_id", carID)
	return auction, nil
}

// PlaceBid accepts or rejects a bid attempt. Validation runs against the
// auction row held under a row lock; on lock conflict the attempt is retried
// with a refreshed price before surfacing ErrConflict.
func (l *AuctionLedger) PlaceBid(ctx context.Context, auctionID string, actor domain.Identity, amount float64) (*domain.Bid, error) {
	_, car, err := l.store.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if !car.IsApproved && !actor.Has(domain.RoleAdmin) {
		return nil, domain.ErrNotFound
	}

	if !actor.IsAuthenticated() {
		return nil, domain.ErrUnauthorized
	}

	var bid *domain.Bid
	for attempt := 0; ; attempt++ {
		bid, err = l.store.PlaceBid(ctx, auctionID, func(locked *domain.Auction, highest *domain.Bid) (*domain.Bid, error) {
			return l.validateBid(locked, highest, actor.UserID, amount)
		})
		if err == nil {
			break
		}
		if errors.Is(err, domain.ErrConflict) && attempt < l.maxRetries {
			l.log.Debug("Bid hit lock conflict, retrying", "auction_id", auctionID, "attempt", attempt+1)
			continue
		}
		return nil, err
	}

	if err := l.stateCache.SetAuctionState(ctx, auctionID, bid.Amount, domain.AuctionOpen); err != nil {
		l.log.Warn("Failed to refresh auction state cache", "auction_id", auctionID, "error", err)
	}

	if err := l.eventPub.PublishEvent(ctx, &domain.Event{
		Type:      domain.EventBidAccepted,
		AuctionID: auctionID,
		UserID:    bid.UserID,
		Amount:    bid.Amount,
		Timestamp: bid.PlacedAt,
	}); err != nil {
		l.log.Error("Failed to publish bid event", "auction_id", auctionID, "error", err)
	}

	l.log.Info("Bid accepted", "auction_id", auctionID, "user_id", actor.UserID, "amount", amount)
	return bid, nil
}

// validateBid holds the increment rules. It runs with the auction row locked,
// so the price it sees cannot move before the commit.
func (l *AuctionLedger) validateBid(auction *domain.Auction, highest *domain.Bid, userID string, amount float64) (*domain.Bid, error) {
	if auction.Status == domain.AuctionClosed || auction.Ended(time.Now()) {
		return nil, domain.ErrAuctionClosed
	}

	if highest != nil && highest.UserID == userID {
		return nil, domain.ErrAlreadyHighestBidder
	}

	minAcceptable := auction.StartPrice
	if highest != nil {
		minAcceptable = auction.CurrentPrice + l.minIncrement
	}

	if amount < minAcceptable {
		return nil, &domain.BidTooLowError{Minimum: minAcceptable}
	}

	return &domain.Bid{
		ID:        utils.GenerateID("bid"),
		AuctionID: auction.ID,
		UserID:    userID,
		Amount:    amount,
		PlacedAt:  time.Now(),
	}, nil
}

// AuctionPage is one page of the public listing.
type AuctionPage struct {
	Items   []*domain.AuctionSummary
	Total   int
	Page    int
	PerPage int
}

// ListActiveAuctions returns approved, not-yet-ended auctions matching the
// filter, paginated. Page numbers start at 1.
func (l *AuctionLedger) ListActiveAuctions(ctx context.Context, filter domain.AuctionFilter, page int) (*AuctionPage, error) {
	if page < 1 {
		page = 1
	}

	filter.ApprovedOnly = true
	filter.OpenAfter = time.Now()
	if filter.Limit <= 0 || filter.Limit > l.perPage {
		filter.Limit = l.perPage
	}
	filter.Offset = (page - 1) * filter.Limit

	total, err := l.store.CountAuctions(ctx, filter)
	if err != nil {
		return nil, err
	}

	items, err := l.store.QueryAuctions(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &AuctionPage{Items: items, Total: total, Page: page, PerPage: filter.Limit}, nil
}

// FilterAuctions serves the JSON filter endpoint: same active set, caller
// controls ordering and limit.
func (l *AuctionLedger) FilterAuctions(ctx context.Context, filter domain.AuctionFilter) ([]*domain.AuctionSummary, error) {
	filter.ApprovedOnly = true
	filter.OpenAfter = time.Now()
	return l.store.QueryAuctions(ctx, filter)
}

// AdminAuctions is the privileged view: every auction, approved or not,
// ended or not, newest end time first.
func (l *AuctionLedger) AdminAuctions(ctx context.Context, actor domain.Identity) ([]*domain.AuctionSummary, error) {
	if !actor.Has(domain.RoleAdmin) {
		return nil, domain.ErrForbidden
	}
	return l.store.AllAuctions(ctx)
}

func (l *AuctionLedger) AuctionDetail(ctx context.Context, auctionID string, actor domain.Identity) (*domain.AuctionDetail, error) {
	auction, car, err := l.store.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if !car.IsApproved && !actor.Has(domain.RoleAdmin) {
		return nil, domain.ErrNotFound
	}

	highest, err := l.store.HighestBid(ctx, auctionID)
	if err != nil {
		return nil, err
	}

	bids, err := l.store.ListBids(ctx, auctionID)
	if err != nil {
		return nil, err
	}

	similar, err := l.SimilarAuctions(ctx, auction, car)
	if err != nil {
		l.log.Error("Failed to load similar auctions", "auction_id", auctionID, "error", err)
		similar = nil
	}

	return &domain.AuctionDetail{
		Auction:    *auction,
		Car:        *car,
		HighestBid: highest,
		Bids:       bids,
		Similar:    similar,
	}, nil
}

// SimilarAuctions walks a fixed fallback cascade, most specific tier first;
// the first non-empty tier wins and each tier caps at four results.
func (l *AuctionLedger) SimilarAuctions(ctx context.Context, auction *domain.Auction, car *domain.Car) ([]*domain.AuctionSummary, error) {
	tiers := []domain.AuctionFilter{
		{Make: car.Make, Model: car.Model},
		{Make: car.Make, BodyType: car.BodyType},
		{Make: car.Make},
		{Random: true},
	}

	now := time.Now()
	for _, tier := range tiers {
		tier.ApprovedOnly = true
		tier.OpenAfter = now
		tier.ExcludeID = auction.ID
		tier.Limit = similarLimit

		results, err := l.store.QueryAuctions(ctx, tier)
		if err != nil {
			return nil, err
		}
		if len(results) > 0 {
			return results, nil
		}
	}

	return nil, nil
}

// UpdateTerms lets an admin adjust start price and end time. Auctions that
// already carry bids are locked down unless the caller forces the override.
func (l *AuctionLedger) UpdateTerms(ctx context.Context, auctionID string, actor domain.Identity, startPrice float64, endTime time.Time, force bool) error {
	if !actor.Has(domain.RoleAdmin) {
		return domain.ErrForbidden
	}

	highest, err := l.store.HighestBid(ctx, auctionID)
	if err != nil {
		return err
	}
	if highest != nil && !force {
		return fmt.Errorf("%w: auction already has bids", domain.ErrConflict)
	}

	return l.store.UpdateAuctionTerms(ctx, auctionID, startPrice, endTime)
}
