package handlers

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/amenelu/mekina/internal/api/middleware"
	"github.com/amenelu/mekina/internal/domain"
	"github.com/amenelu/mekina/internal/services"
	"github.com/amenelu/mekina/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AuctionHandler serves the public auction surface: the paginated listing,
// the detail view with its bid history and similar-auctions strip, the filter
// endpoint, and bid placement in both form and JSON flavors.
type AuctionHandler struct {
	ledger *services.AuctionLedger
	log    logger.Logger
}

func NewAuctionHandler(ledger *services.AuctionLedger, log logger.Logger) *AuctionHandler {
	return &AuctionHandler{ledger: ledger, log: log}
}

func (h *AuctionHandler) Register(e *echo.Echo) {
	g := e.Group("/auctions")
	g.GET("/", h.List)
	g.GET("/:id", h.Detail)
	g.POST("/:id", h.PlaceBidForm)
	g.GET("/api/filter", h.Filter)
	g.POST("/api/auctions/:id/bid", h.PlaceBidJSON)
}

func (h *AuctionHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))

	result, err := h.ledger.ListActiveAuctions(c.Request().Context(), filterFromQuery(c), page)
	if err != nil {
		return fail(c, h.log, err)
	}

	return ok(c, echo.Map{
		"status":   "ok",
		"auctions": toSummaryViews(result.Items),
		"total":    result.Total,
		"page":     result.Page,
		"per_page": result.PerPage,
	})
}

func (h *AuctionHandler) Detail(c echo.Context) error {
	identity := middleware.IdentityFrom(c)

	detail, err := h.ledger.AuctionDetail(c.Request().Context(), c.Param("id"), identity)
	if err != nil {
		return fail(c, h.log, err)
	}

	bids := make([]bidView, 0, len(detail.Bids))
	for _, b := range detail.Bids {
		bids = append(bids, toBidView(b))
	}

	resp := echo.Map{
		"status":        "ok",
		"auction":       toAuctionView(&detail.Auction),
		"car":           toCarView(&detail.Car),
		"bids":          bids,
		"similar":       toSummaryViews(detail.Similar),
		"min_next_bid":  h.minNextBid(detail),
		"highest_bid":   nil,
		"is_authorized": identity.IsAuthenticated(),
	}
	if detail.HighestBid != nil {
		resp["highest_bid"] = toBidView(detail.HighestBid)
	}

	return ok(c, resp)
}

// minNextBid mirrors the increment rule so clients can pre-fill the bid form.
func (h *AuctionHandler) minNextBid(detail *domain.AuctionDetail) float64 {
	if detail.HighestBid == nil {
		return detail.Auction.StartPrice
	}
	return detail.Auction.CurrentPrice + h.ledger.MinIncrement()
}

func (h *AuctionHandler) Filter(c echo.Context) error {
	results, err := h.ledger.FilterAuctions(c.Request().Context(), filterFromQuery(c))
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, echo.Map{"status": "ok", "auctions": toSummaryViews(results)})
}

// PlaceBidForm accepts the listing page's form post. Amount arrives as a form
// field; a malformed value is the bidder's error, not a server fault.
func (h *AuctionHandler) PlaceBidForm(c echo.Context) error {
	amount, err := strconv.ParseFloat(c.FormValue("amount"), 64)
	if err != nil {
		return fail(c, h.log, fmt.Errorf("%w: bid amount must be a number", domain.ErrInvalidInput))
	}
	return h.placeBid(c, amount)
}

type bidRequest struct {
	Amount float64 `json:"amount"`
}

func (h *AuctionHandler) PlaceBidJSON(c echo.Context) error {
	var req bidRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, h.log, fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput))
	}
	return h.placeBid(c, req.Amount)
}

func (h *AuctionHandler) placeBid(c echo.Context, amount float64) error {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fail(c, h.log, fmt.Errorf("%w: bid amount must be a positive number", domain.ErrInvalidInput))
	}

	identity := middleware.IdentityFrom(c)
	bid, err := h.ledger.PlaceBid(c.Request().Context(), c.Param("id"), identity, amount)
	if err != nil {
		return fail(c, h.log, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{"status": "ok", "bid": toBidView(bid)})
}

// filterFromQuery reads the shared filter query parameters. Absent or
// unparsable numeric params fall back to "no constraint".
func filterFromQuery(c echo.Context) domain.AuctionFilter {
	filter := domain.AuctionFilter{
		Make:         c.QueryParam("make"),
		Model:        c.QueryParam("model"),
		Condition:    c.QueryParam("condition"),
		Transmission: c.QueryParam("transmission"),
		Drivetrain:   c.QueryParam("drivetrain"),
		FuelType:     c.QueryParam("fuel_type"),
		BodyType:     c.QueryParam("body_type"),
	}
	if v, err := strconv.ParseFloat(c.QueryParam("max_price"), 64); err == nil && v > 0 {
		filter.MaxPrice = v
	}
	if v, err := strconv.Atoi(c.QueryParam("max_mileage")); err == nil && v > 0 {
		filter.MaxMileage = v
	}
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 {
		filter.Limit = v
	}
	if v, err := strconv.ParseBool(c.QueryParam("random")); err == nil {
		filter.Random = v
	}
	return filter
}
