package domain

import (
	"time"
)

type ListingType string

const (
	ListingAuction ListingType = "auction"
	ListingSale    ListingType = "sale"
	ListingRental  ListingType = "rental"
)

type Car struct {
	ID           string
	Make         string
	Model        string
	Year         int
	Description  string
	OwnerID      string
	Transmission string
	Drivetrain   string
	Mileage      int
	FuelType     string
	Condition    string
	BodyType     string
	ListingType  ListingType
	IsApproved   bool
	CreatedAt    time.Time
}

type AuctionStatus int

const (
	AuctionOpen AuctionStatus = iota
	AuctionClosed
)

func (s AuctionStatus) String() string {
	switch s {
	case AuctionOpen:
		return "open"
	case AuctionClosed:
		return "closed"
	default:
		return "unknown"
	}
}

type Auction struct {
	ID           string
	CarID        string
	StartTime    time.Time
	EndTime      time.Time
	StartPrice   float64
	CurrentPrice float64
	WinnerID     string // set only at settlement, empty otherwise
	Status       AuctionStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Ended reports whether the auction's end time has passed. Status is only
// flipped to closed by the settlement sweeper, so reads compute this lazily.
func (a *Auction) Ended(now time.Time) bool {
	return !a.EndTime.After(now)
}

type Bid struct {
	ID        string
	AuctionID string
	UserID    string
	Amount    float64
	PlacedAt  time.Time
}

// AuctionSummary is the read-side join of an auction and its car, used by
// list endpoints and the similar-auctions cascade.
type AuctionSummary struct {
	Auction Auction
	Car     Car
}

type AuctionDetail struct {
	Auction    Auction
	Car        Car
	HighestBid *Bid
	Bids       []*Bid // newest first
	Similar    []*AuctionSummary
}

// AuctionFilter narrows QueryAuctions. Zero values mean "no constraint".
type AuctionFilter struct {
	Make         string
	Model        string
	MaxPrice     float64
	Condition    string
	Transmission string
	Drivetrain   string
	MaxMileage   int
	FuelType     string
	BodyType     string

	ApprovedOnly bool
	OpenAfter    time.Time // only auctions with end_time > OpenAfter
	ExcludeID    string

	Random bool // randomized order instead of end_time ascending
	Limit  int
	Offset int
}

type User struct {
	ID          string
	Username    string
	Email       string
	PhoneNumber string
	Roles       RoleSet
	Points      int // dealer bid credit
	CreatedAt   time.Time
}

type RentalListing struct {
	ID          string
	CarID       string
	PricePerDay float64
	IsAvailable bool
}

type RequestStatus string

const (
	RequestActive    RequestStatus = "active"
	RequestCompleted RequestStatus = "completed"
)

type CarRequest struct {
	ID            string
	UserID        string
	Make          string
	Model         string
	MinYear       int
	MaxMileage    int
	Notes         string
	Status        RequestStatus
	AcceptedBidID string
	CreatedAt     time.Time
}

type DealerBid struct {
	ID        string
	RequestID string
	DealerID  string
	Price     float64
	PlacedAt  time.Time
}

type TradeInStatus string

const (
	TradeInPending   TradeInStatus = "pending"
	TradeInReviewed  TradeInStatus = "reviewed"
	TradeInContacted TradeInStatus = "contacted"
	TradeInCompleted TradeInStatus = "completed"
)

// TradeIn is a valuation request: a user describes their current car and the
// back office reviews it and makes an offer offline.
type TradeIn struct {
	ID        string
	UserID    string
	Make      string
	Model     string
	Year      int
	Mileage   int
	Condition string
	VIN       string
	Comments  string
	Status    TradeInStatus
	CreatedAt time.Time
}

// Question is a public Q&A entry on an auction. AnsweredAt stays zero until
// the car's owner posts an answer.
type Question struct {
	ID         string
	AuctionID  string
	UserID     string
	Text       string
	Answer     string
	AskedAt    time.Time
	AnsweredAt time.Time
}

func (q *Question) Answered() bool {
	return !q.AnsweredAt.IsZero()
}

type Notification struct {
	ID        string
	UserID    string
	Message   string
	Link      string
	IsRead    bool
	CreatedAt time.Time
}

type EventType string

const (
	EventBidAccepted     EventType = "bid_accepted"
	EventAuctionClosed   EventType = "auction_closed"
	EventNotification    EventType = "notification"
	EventCarApproved     EventType = "car_approved"
	EventDealerBid       EventType = "dealer_bid"
	EventRequestAccepted EventType = "request_accepted"
)

// Event is the wire shape published on the redis channel and fanned out to
// websocket rooms by the realtime gateway.
type Event struct {
	Type      EventType `json:"type"`
	AuctionID string    `json:"auction_id,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	Amount    float64   `json:"amount,omitempty"`
	Message   string    `json:"message,omitempty"`
	Link      string    `json:"link,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
