package websocket

import (
	"github.com/amenelu/mekina/internal/domain"
)

// PushGateway fans marketplace events out to the right connections.
type PushGateway struct {
	connManager domain.ConnectionManager
}

func NewPushGateway(connManager domain.ConnectionManager) *PushGateway {
	return &PushGateway{connManager: connManager}
}

// HandleEvent routes one event from the pub/sub channel: auction-scoped
// events reach the auction room, user-scoped ones the user's connections.
func (g *PushGateway) HandleEvent(event *domain.Event) error {
	switch event.Type {
	case domain.EventBidAccepted:
		return g.connManager.BroadcastToRoom(auctionRoom(event.AuctionID), map[string]interface{}{
			"type":        "bid_update",
			"current_bid": event.Amount,
			"bidder_id":   event.UserID,
			"timestamp":   event.Timestamp,
		})

	case domain.EventAuctionClosed:
		room := auctionRoom(event.AuctionID)
		if err := g.connManager.BroadcastToRoom(room, map[string]interface{}{
			"type":      "auction_closed",
			"winner_id": event.UserID,
			"timestamp": event.Timestamp,
		}); err != nil {
			return err
		}
		return g.connManager.CloseRoom(room)

	case domain.EventNotification, domain.EventCarApproved,
		domain.EventDealerBid, domain.EventRequestAccepted:
		return g.connManager.NotifyUser(event.UserID, map[string]interface{}{
			"type":      "notification",
			"message":   event.Message,
			"link":      event.Link,
			"timestamp": event.Timestamp,
		})
	}

	return nil
}

func auctionRoom(auctionID string) string {
	return "auction:" + auctionID
}
