package services

import (
	"context"
	"fmt"
	"time"

	"github.com/amenelu/mekina/internal/domain"
	"github.com/amenelu/mekina/pkg/logger"

	"github.com/robfig/cron/v3"
)

// AuctionCloser sweeps for auctions whose end time has passed, closes them
// and assigns the winner from the highest bid. The source system never
// enforced closing; this sweeper is the settlement step layered on top.
type AuctionCloser struct {
	cron       *cron.Cron
	store      domain.AuctionStore
	stateCache domain.AuctionStateCache
	eventPub   domain.EventPublisher
	notifier   domain.Notifier
	log        logger.Logger
}

func NewAuctionCloser(
	store domain.AuctionStore,
	stateCache domain.AuctionStateCache,
	eventPub domain.EventPublisher,
	notifier domain.Notifier,
	log logger.Logger,
) *AuctionCloser {
	return &AuctionCloser{
		cron:       cron.New(cron.WithSeconds()),
		store:      store,
		stateCache: stateCache,
		eventPub:   eventPub,
		notifier:   notifier,
		log:        log,
	}
}

func (c *AuctionCloser) Start(ctx context.Context) error {
	c.log.Info("Starting auction closer")

	_, err := c.cron.AddFunc("@every 1m", func() {
		c.Sweep(ctx)
	})
	if err != nil {
		return err
	}

	c.cron.Start()
	return nil
}

func (c *AuctionCloser) Stop() error {
	c.log.Info("Stopping auction closer")
	c.cron.Stop()
	return nil
}

// Sweep closes every due auction once. Exported so tests and operators can
// trigger a pass without waiting on the schedule.
func (c *AuctionCloser) Sweep(ctx context.Context) {
	closed, err := c.store.CloseDueAuctions(ctx, time.Now())
	if err != nil {
		c.log.Error("Failed to close due auctions", "error", err)
		return
	}

	for _, auction := range closed {
		c.log.Info("Auction closed", "auction_id", auction.ID, "winner_id", auction.WinnerID)

		if err := c.stateCache.SetAuctionState(ctx, auction.ID, auction.CurrentPrice, domain.AuctionClosed); err != nil {
			c.log.Warn("Failed to update state cache", "auction_id", auction.ID, "error", err)
		}

		if err := c.eventPub.PublishEvent(ctx, &domain.Event{
			Type:      domain.EventAuctionClosed,
			AuctionID: auction.ID,
			UserID:    auction.WinnerID,
			Amount:    auction.CurrentPrice,
			Timestamp: time.Now(),
		}); err != nil {
			c.log.Error("Failed to publish close event", "auction_id", auction.ID, "error", err)
		}

		if auction.WinnerID != "" {
			message := fmt.Sprintf("You won the auction with a bid of %.2f ETB.", auction.CurrentPrice)
			link := "/auctions/" + auction.ID
			if err := c.notifier.Notify(ctx, auction.WinnerID, message, link); err != nil {
				c.log.Error("Failed to notify winner", "auction_id", auction.ID, "error", err)
			}
		}
	}
}
