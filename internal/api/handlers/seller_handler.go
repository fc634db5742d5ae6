package handlers

import (
	"net/http"
	"time"

	"github.com/amenelu/mekina/internal/api/middleware"
	"github.com/amenelu/mekina/internal/domain"
	"github.com/amenelu/mekina/internal/services"
	"github.com/amenelu/mekina/pkg/logger"

	"github.com/labstack/echo/v4"
)

// SellerHandler covers the seller side: submitting a car for listing and
// reviewing one's own submissions.
type SellerHandler struct {
	listings *services.ListingService
	log      logger.Logger
}

func NewSellerHandler(listings *services.ListingService, log logger.Logger) *SellerHandler {
	return &SellerHandler{listings: listings, log: log}
}

func (h *SellerHandler) Register(e *echo.Echo) {
	g := e.Group("/seller")
	g.POST("/cars", h.SubmitCar)
	g.GET("/cars", h.MyCars)
}

type carSubmissionRequest struct {
	Make         string  `json:"make"`
	Model        string  `json:"model"`
	Year         int     `json:"year"`
	Description  string  `json:"description"`
	Transmission string  `json:"transmission"`
	Drivetrain   string  `json:"drivetrain"`
	Mileage      int     `json:"mileage"`
	FuelType     string  `json:"fuel_type"`
	Condition    string  `json:"condition"`
	BodyType     string  `json:"body_type"`
	ListingType  string  `json:"listing_type"`
	StartPrice   float64 `json:"start_price"`
	EndTime      string  `json:"end_time"`
	PricePerDay  float64 `json:"price_per_day"`
}

func (h *SellerHandler) SubmitCar(c echo.Context) error {
	var req carSubmissionRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, h.log, errInvalidBody)
	}

	sub := services.CarSubmission{
		Make:         req.Make,
		Model:        req.Model,
		Year:         req.Year,
		Description:  req.Description,
		Transmission: req.Transmission,
		Drivetrain:   req.Drivetrain,
		Mileage:      req.Mileage,
		FuelType:     req.FuelType,
		Condition:    req.Condition,
		BodyType:     req.BodyType,
		ListingType:  domain.ListingType(req.ListingType),
		StartPrice:   req.StartPrice,
		PricePerDay:  req.PricePerDay,
	}
	if req.EndTime != "" {
		endTime, err := time.Parse(time.RFC3339, req.EndTime)
		if err != nil {
			return fail(c, h.log, errInvalidEndTime)
		}
		sub.EndTime = endTime
	}

	car, err := h.listings.SubmitCar(c.Request().Context(), middleware.IdentityFrom(c), sub)
	if err != nil {
		return fail(c, h.log, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{"status": "ok", "car": toCarView(car)})
}

func (h *SellerHandler) MyCars(c echo.Context) error {
	cars, err := h.listings.MyCars(c.Request().Context(), middleware.IdentityFrom(c))
	if err != nil {
		return fail(c, h.log, err)
	}

	views := make([]carView, 0, len(cars))
	for _, car := range cars {
		views = append(views, toCarView(car))
	}
	return ok(c, echo.Map{"status": "ok", "cars": views})
}
