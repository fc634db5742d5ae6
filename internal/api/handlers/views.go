package handlers

import (
	"time"

	"github.com/amenelu/mekina/internal/domain"
)

type carView struct {
	ID           string `json:"id"`
	Make         string `json:"make"`
	Model        string `json:"model"`
	Year         int    `json:"year"`
	Description  string `json:"description,omitempty"`
	Transmission string `json:"transmission,omitempty"`
	Drivetrain   string `json:"drivetrain,omitempty"`
	Mileage      int    `json:"mileage"`
	FuelType     string `json:"fuel_type,omitempty"`
	Condition    string `json:"condition,omitempty"`
	BodyType     string `json:"body_type,omitempty"`
	ListingType  string `json:"listing_type"`
	IsApproved   bool   `json:"is_approved"`
}

type auctionView struct {
	ID           string    `json:"id"`
	CarID        string    `json:"car_id"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	StartPrice   float64   `json:"start_price"`
	CurrentPrice float64   `json:"current_price"`
	WinnerID     string    `json:"winner_id,omitempty"`
	Status       string    `json:"status"`
}

type bidView struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	Amount   float64   `json:"amount"`
	PlacedAt time.Time `json:"placed_at"`
}

type summaryView struct {
	Auction auctionView `json:"auction"`
	Car     carView     `json:"car"`
}

type userView struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	PhoneNumber string   `json:"phone_number,omitempty"`
	Roles       []string `json:"roles"`
	Points      int      `json:"points"`
}

type rentalView struct {
	ID          string  `json:"id"`
	CarID       string  `json:"car_id"`
	PricePerDay float64 `json:"price_per_day"`
	IsAvailable bool    `json:"is_available"`
}

type requestView struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Make       string    `json:"make"`
	Model      string    `json:"model"`
	MinYear    int       `json:"min_year,omitempty"`
	MaxMileage int       `json:"max_mileage,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

type dealerBidView struct {
	ID        string    `json:"id"`
	RequestID string    `json:"request_id"`
	DealerID  string    `json:"dealer_id"`
	Price     float64   `json:"price"`
	PlacedAt  time.Time `json:"placed_at"`
}

type tradeInView struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Make      string    `json:"make"`
	Model     string    `json:"model"`
	Year      int       `json:"year"`
	Mileage   int       `json:"mileage"`
	Condition string    `json:"condition"`
	VIN       string    `json:"vin,omitempty"`
	Comments  string    `json:"comments,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type questionView struct {
	ID         string     `json:"id"`
	AuctionID  string     `json:"auction_id"`
	UserID     string     `json:"user_id"`
	Text       string     `json:"question_text"`
	Answer     string     `json:"answer_text,omitempty"`
	AskedAt    time.Time  `json:"asked_at"`
	AnsweredAt *time.Time `json:"answered_at,omitempty"`
}

type notificationView struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Link      string    `json:"link,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func toCarView(c *domain.Car) carView {
	return carView{
		ID:           c.ID,
		Make:         c.Make,
		Model:        c.Model,
		Year:         c.Year,
		Description:  c.Description,
		Transmission: c.Transmission,
		Drivetrain:   c.Drivetrain,
		Mileage:      c.Mileage,
		FuelType:     c.FuelType,
		Condition:    c.Condition,
		BodyType:     c.BodyType,
		ListingType:  string(c.ListingType),
		IsApproved:   c.IsApproved,
	}
}

func toAuctionView(a *domain.Auction) auctionView {
	return auctionView{
		ID:           a.ID,
		CarID:        a.CarID,
		StartTime:    a.StartTime,
		EndTime:      a.EndTime,
		StartPrice:   a.StartPrice,
		CurrentPrice: a.CurrentPrice,
		WinnerID:     a.WinnerID,
		Status:       a.Status.String(),
	}
}

func toBidView(b *domain.Bid) bidView {
	return bidView{ID: b.ID, UserID: b.UserID, Amount: b.Amount, PlacedAt: b.PlacedAt}
}

func toSummaryViews(items []*domain.AuctionSummary) []summaryView {
	views := make([]summaryView, 0, len(items))
	for _, item := range items {
		views = append(views, summaryView{
			Auction: toAuctionView(&item.Auction),
			Car:     toCarView(&item.Car),
		})
	}
	return views
}

func toUserView(u *domain.User) userView {
	roles := make([]string, 0, len(u.Roles))
	for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleDealer, domain.RoleRentalCompany} {
		if u.Roles.Has(role) {
			roles = append(roles, string(role))
		}
	}
	return userView{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		Roles:       roles,
		Points:      u.Points,
	}
}
