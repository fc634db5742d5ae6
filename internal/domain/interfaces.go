package domain

import (
	"context"
	"time"
)

// Repository interfaces

type AuctionStore interface {
	CreateAuction(ctx context.Context, auction *Auction) error
	// GetAuction returns the auction and its car, or ErrNotFound.
	GetAuction(ctx context.Context, auctionID string) (*Auction, *Car, error)
	GetAuctionByCar(ctx context.Context, carID string) (*Auction, error)
	QueryAuctions(ctx context.Context, filter AuctionFilter) ([]*AuctionSummary, error)
	CountAuctions(ctx context.Context, filter AuctionFilter) (int, error)
	// AllAuctions is the privileged admin view: every auction regardless of
	// approval or end time, ordered by end_time descending.
	AllAuctions(ctx context.Context) ([]*AuctionSummary, error)

	// PlaceBid runs validate against the auction row held under a row lock,
	// together with the highest bid at that instant, then inserts the returned
	// bid and moves current_price to its amount in the same transaction.
	// A nil error from validate commits; any error rolls back and is returned.
	PlaceBid(ctx context.Context, auctionID string, validate func(locked *Auction, highest *Bid) (*Bid, error)) (*Bid, error)

	HighestBid(ctx context.Context, auctionID string) (*Bid, error)
	// ListBids returns the full bid history, newest first.
	ListBids(ctx context.Context, auctionID string) ([]*Bid, error)

	// CloseDueAuctions marks every open auction whose end time has passed as
	// closed, assigning winner_id from the highest bid, atomically per
	// auction. It returns the auctions it closed.
	CloseDueAuctions(ctx context.Context, now time.Time) ([]*Auction, error)
	UpdateAuctionTerms(ctx context.Context, auctionID string, startPrice float64, endTime time.Time) error
}

type CarStore interface {
	CreateCar(ctx context.Context, car *Car) error
	GetCar(ctx context.Context, carID string) (*Car, error)
	CarsByOwner(ctx context.Context, ownerID string) ([]*Car, error)
	PendingApproval(ctx context.Context) ([]*Car, error)
	ApproveCar(ctx context.Context, carID string) error
	CountPendingApproval(ctx context.Context) (int, error)
}

type UserStore interface {
	GetUser(ctx context.Context, userID string) (*User, error)
	GetUserByToken(ctx context.Context, token string) (*User, error)
	UpdateUser(ctx context.Context, user *User) error
	CountUsers(ctx context.Context) (int, error)
}

type RentalStore interface {
	CreateRental(ctx context.Context, rental *RentalListing) error
	AvailableRentals(ctx context.Context) ([]*RentalListing, error)
}

type RequestStore interface {
	CreateRequest(ctx context.Context, request *CarRequest) error
	GetRequest(ctx context.Context, requestID string) (*CarRequest, error)
	ActiveRequests(ctx context.Context) ([]*CarRequest, error)
	// PlaceDealerBid inserts the bid and deducts one point from the dealer in
	// a single transaction; it fails with ErrNoPoints when the dealer's
	// balance is zero.
	PlaceDealerBid(ctx context.Context, bid *DealerBid) error
	BidsForRequest(ctx context.Context, requestID string) ([]*DealerBid, error)
	GetDealerBid(ctx context.Context, bidID string) (*DealerBid, error)
	AcceptBid(ctx context.Context, requestID, bidID string) error
}

type TradeInStore interface {
	CreateTradeIn(ctx context.Context, tradeIn *TradeIn) error
	GetTradeIn(ctx context.Context, tradeInID string) (*TradeIn, error)
	TradeInsForUser(ctx context.Context, userID string) ([]*TradeIn, error)
	// AllTradeIns is the back-office review queue, newest first.
	AllTradeIns(ctx context.Context) ([]*TradeIn, error)
	UpdateTradeInStatus(ctx context.Context, tradeInID string, status TradeInStatus) error
}

type QuestionStore interface {
	CreateQuestion(ctx context.Context, question *Question) error
	GetQuestion(ctx context.Context, questionID string) (*Question, error)
	// QuestionsForAuction returns the auction's Q&A thread, newest first.
	QuestionsForAuction(ctx context.Context, auctionID string) ([]*Question, error)
	// UnansweredForOwner returns open questions across every auction whose
	// car belongs to ownerID, newest first.
	UnansweredForOwner(ctx context.Context, ownerID string) ([]*Question, error)
	AnswerQuestion(ctx context.Context, questionID, answer string, answeredAt time.Time) error
}

type NotificationStore interface {
	CreateNotification(ctx context.Context, n *Notification) error
	NotificationsForUser(ctx context.Context, userID string) ([]*Notification, error)
	MarkRead(ctx context.Context, notificationID, userID string) error
	CountUnread(ctx context.Context, userID string) (int, error)
}

// Notifier delivers "notify user X with message M and link L": a persisted
// inbox row plus out-of-band push through the event channel.
type Notifier interface {
	Notify(ctx context.Context, userID, message, link string) error
}

// Event interfaces

type EventPublisher interface {
	PublishEvent(ctx context.Context, event *Event) error
}

type EventSubscriber interface {
	SubscribeToEvents(ctx context.Context, handler EventHandler) error
}

type EventHandler func(event *Event) error

// Cache interface

type AuctionStateCache interface {
	SetAuctionState(ctx context.Context, auctionID string, currentPrice float64, status AuctionStatus) error
	GetAuctionState(ctx context.Context, auctionID string) (float64, AuctionStatus, error)
}

// WebSocket interfaces

type WebSocketConnection interface {
	Send(message interface{}) error
	Close() error
	UserID() string
	Room() string
}

type ConnectionManager interface {
	RegisterConnection(userID, room string, conn WebSocketConnection) error
	UnregisterConnection(userID, room string) error
	BroadcastToRoom(room string, message interface{}) error
	NotifyUser(userID string, message interface{}) error
	CloseRoom(room string) error
}
