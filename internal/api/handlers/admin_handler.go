package handlers

import (
	"time"

	"github.com/amenelu/mekina/internal/api/middleware"
	"github.com/amenelu/mekina/internal/domain"
	"github.com/amenelu/mekina/internal/services"
	"github.com/amenelu/mekina/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AdminHandler exposes the privileged surface: the dashboard counters, the
// approval queue, the full auction list, auction term edits and user edits.
// Role checks live in the services; the handler only shapes requests.
type AdminHandler struct {
	ledger   *services.AuctionLedger
	listings *services.ListingService
	log      logger.Logger
}

func NewAdminHandler(ledger *services.AuctionLedger, listings *services.ListingService, log logger.Logger) *AdminHandler {
	return &AdminHandler{ledger: ledger, listings: listings, log: log}
}

func (h *AdminHandler) Register(e *echo.Echo) {
	g := e.Group("/admin")
	g.GET("/dashboard", h.Dashboard)
	g.GET("/cars/pending", h.PendingCars)
	g.POST("/cars/:id/approve", h.ApproveCar)
	g.GET("/auctions", h.Auctions)
	g.PUT("/auctions/:id", h.UpdateAuction)
	g.PUT("/users/:id", h.EditUser)
}

func (h *AdminHandler) Dashboard(c echo.Context) error {
	stats, err := h.listings.Dashboard(c.Request().Context(), middleware.IdentityFrom(c))
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, echo.Map{
		"status":            "ok",
		"user_count":        stats.UserCount,
		"active_auctions":   stats.ActiveAuctions,
		"pending_approvals": stats.PendingApprovals,
	})
}

func (h *AdminHandler) PendingCars(c echo.Context) error {
	cars, err := h.listings.PendingCars(c.Request().Context(), middleware.IdentityFrom(c))
	if err != nil {
		return fail(c, h.log, err)
	}

	views := make([]carView, 0, len(cars))
	for _, car := range cars {
		views = append(views, toCarView(car))
	}
	return ok(c, echo.Map{"status": "ok", "cars": views})
}

func (h *AdminHandler) ApproveCar(c echo.Context) error {
	if err := h.listings.ApproveCar(c.Request().Context(), middleware.IdentityFrom(c), c.Param("id")); err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, echo.Map{"status": "ok"})
}

func (h *AdminHandler) Auctions(c echo.Context) error {
	auctions, err := h.ledger.AdminAuctions(c.Request().Context(), middleware.IdentityFrom(c))
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, echo.Map{"status": "ok", "auctions": toSummaryViews(auctions)})
}

type updateAuctionRequest struct {
	StartPrice float64 `json:"start_price"`
	EndTime    string  `json:"end_time"`
	Force      bool    `json:"force"`
}

func (h *AdminHandler) UpdateAuction(c echo.Context) error {
	var req updateAuctionRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, h.log, errInvalidBody)
	}
	endTime, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		return fail(c, h.log, errInvalidEndTime)
	}

	identity := middleware.IdentityFrom(c)
	if err := h.ledger.UpdateTerms(c.Request().Context(), c.Param("id"), identity, req.StartPrice, endTime, req.Force); err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, echo.Map{"status": "ok"})
}

type editUserRequest struct {
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	PhoneNumber string   `json:"phone_number"`
	Roles       []string `json:"roles"`
	Points      int      `json:"points"`
}

func (h *AdminHandler) EditUser(c echo.Context) error {
	var req editUserRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, h.log, errInvalidBody)
	}

	roles := make(domain.RoleSet, len(req.Roles))
	for _, role := range req.Roles {
		roles.Add(domain.Role(role))
	}

	edit := services.UserEdit{
		Username:    req.Username,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Roles:       roles,
		Points:      req.Points,
	}

	user, err := h.listings.EditUser(c.Request().Context(), middleware.IdentityFrom(c), c.Param("id"), edit)
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, echo.Map{"status": "ok", "user": toUserView(user)})
}
