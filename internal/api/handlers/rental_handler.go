package handlers

import (
	"github.com/amenelu/mekina/internal/domain"
	"github.com/amenelu/mekina/internal/services"
	"github.com/amenelu/mekina/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RentalHandler is the read side of rental listings.
type RentalHandler struct {
	listings *services.ListingService
	log      logger.Logger
}

func NewRentalHandler(listings *services.ListingService, log logger.Logger) *RentalHandler {
	return &RentalHandler{listings: listings, log: log}
}

func (h *RentalHandler) Register(e *echo.Echo) {
	e.GET("/rentals/", h.List)
}

func (h *RentalHandler) List(c echo.Context) error {
	rentals, err := h.listings.AvailableRentals(c.Request().Context())
	if err != nil {
		return fail(c, h.log, err)
	}

	views := make([]rentalView, 0, len(rentals))
	for _, rental := range rentals {
		views = append(views, toRentalView(rental))
	}
	return ok(c, echo.Map{"status": "ok", "rentals": views})
}

func toRentalView(r *domain.RentalListing) rentalView {
	return rentalView{
		ID:          r.ID,
		CarID:       r.CarID,
		PricePerDay: r.PricePerDay,
		IsAvailable: r.IsAvailable,
	}
}
