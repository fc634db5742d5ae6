package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/amenelu/mekina/internal/api/middleware"
	"github.com/amenelu/mekina/internal/domain"
	"github.com/amenelu/mekina/internal/services"
	"github.com/amenelu/mekina/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RequestHandler serves the car-request marketplace: customers post what they
// are looking for, dealers spend points to bid, and the customer accepts one.
type RequestHandler struct {
	requests *services.RequestService
	log      logger.Logger
}

func NewRequestHandler(requests *services.RequestService, log logger.Logger) *RequestHandler {
	return &RequestHandler{requests: requests, log: log}
}

func (h *RequestHandler) Register(e *echo.Echo) {
	g := e.Group("/requests")
	g.POST("/", h.Create)
	g.GET("/active", h.Active)
	g.POST("/:id/bids", h.PlaceBid)
	g.GET("/:id/bids", h.Bids)
	g.POST("/:id/accept/:bidID", h.Accept)
}

type requestSubmissionRequest struct {
	Make       string `json:"make"`
	Model      string `json:"model"`
	MinYear    int    `json:"min_year"`
	MaxMileage int    `json:"max_mileage"`
	Notes      string `json:"notes"`
}

func (h *RequestHandler) Create(c echo.Context) error {
	var req requestSubmissionRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, h.log, errInvalidBody)
	}

	request, err := h.requests.CreateRequest(c.Request().Context(), middleware.IdentityFrom(c), services.RequestSubmission{
		Make:       req.Make,
		Model:      req.Model,
		MinYear:    req.MinYear,
		MaxMileage: req.MaxMileage,
		Notes:      req.Notes,
	})
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"status": "ok", "request": toRequestView(request)})
}

func (h *RequestHandler) Active(c echo.Context) error {
	requests, err := h.requests.ActiveRequests(c.Request().Context(), middleware.IdentityFrom(c))
	if err != nil {
		return fail(c, h.log, err)
	}

	views := make([]requestView, 0, len(requests))
	for _, request := range requests {
		views = append(views, toRequestView(request))
	}
	return ok(c, echo.Map{"status": "ok", "requests": views})
}

func (h *RequestHandler) PlaceBid(c echo.Context) error {
	price, err := strconv.ParseFloat(c.FormValue("price"), 64)
	if err != nil {
		var body struct {
			Price float64 `json:"price"`
		}
		if bindErr := c.Bind(&body); bindErr != nil || body.Price == 0 {
			return fail(c, h.log, fmt.Errorf("%w: price must be a number", domain.ErrInvalidInput))
		}
		price = body.Price
	}

	bid, err := h.requests.PlaceDealerBid(c.Request().Context(), middleware.IdentityFrom(c), c.Param("id"), price)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"status": "ok", "bid": toDealerBidView(bid)})
}

func (h *RequestHandler) Bids(c echo.Context) error {
	bids, err := h.requests.BidsForRequest(c.Request().Context(), middleware.IdentityFrom(c), c.Param("id"))
	if err != nil {
		return fail(c, h.log, err)
	}

	views := make([]dealerBidView, 0, len(bids))
	for _, bid := range bids {
		views = append(views, toDealerBidView(bid))
	}
	return ok(c, echo.Map{"status": "ok", "bids": views})
}

func (h *RequestHandler) Accept(c echo.Context) error {
	identity := middleware.IdentityFrom(c)
	if err := h.requests.AcceptBid(c.Request().Context(), identity, c.Param("id"), c.Param("bidID")); err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, echo.Map{"status": "ok"})
}

func toRequestView(r *domain.CarRequest) requestView {
	return requestView{
		ID:         r.ID,
		UserID:     r.UserID,
		Make:       r.Make,
		Model:      r.Model,
		MinYear:    r.MinYear,
		MaxMileage: r.MaxMileage,
		Notes:      r.Notes,
		Status:     string(r.Status),
		CreatedAt:  r.CreatedAt,
	}
}

func toDealerBidView(b *domain.DealerBid) dealerBidView {
	return dealerBidView{
		ID:        b.ID,
		RequestID: b.RequestID,
		DealerID:  b.DealerID,
		Price:     b.Price,
		PlacedAt:  b.PlacedAt,
	}
}
