package handlers

import (
	"net/http"

	"github.com/amenelu/mekina/internal/api/middleware"
	"github.com/amenelu/mekina/internal/domain"
	"github.com/amenelu/mekina/internal/services"
	"github.com/amenelu/mekina/pkg/logger"

	"github.com/labstack/echo/v4"
)

// TradeInHandler serves trade-in valuation requests: users submit their
// current car, admins work the review queue.
type TradeInHandler struct {
	tradeIns *services.TradeInService
	log      logger.Logger
}

func NewTradeInHandler(tradeIns *services.TradeInService, log logger.Logger) *TradeInHandler {
	return &TradeInHandler{tradeIns: tradeIns, log: log}
}

func (h *TradeInHandler) Register(e *echo.Echo) {
	g := e.Group("/trade-in")
	g.POST("/", h.Submit)
	g.GET("/", h.Mine)

	e.GET("/admin/trade-ins", h.ReviewQueue)
	e.PUT("/admin/trade-ins/:id", h.UpdateStatus)
}

type tradeInSubmissionRequest struct {
	Make      string `json:"make"`
	Model     string `json:"model"`
	Year      int    `json:"year"`
	Mileage   int    `json:"mileage"`
	Condition string `json:"condition"`
	VIN       string `json:"vin"`
	Comments  string `json:"comments"`
}

func (h *TradeInHandler) Submit(c echo.Context) error {
	var req tradeInSubmissionRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, h.log, errInvalidBody)
	}

	tradeIn, err := h.tradeIns.Submit(c.Request().Context(), middleware.IdentityFrom(c), services.TradeInSubmission{
		Make:      req.Make,
		Model:     req.Model,
		Year:      req.Year,
		Mileage:   req.Mileage,
		Condition: req.Condition,
		VIN:       req.VIN,
		Comments:  req.Comments,
	})
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"status": "ok", "trade_in": toTradeInView(tradeIn)})
}

func (h *TradeInHandler) Mine(c echo.Context) error {
	tradeIns, err := h.tradeIns.MyTradeIns(c.Request().Context(), middleware.IdentityFrom(c))
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, echo.Map{"status": "ok", "trade_ins": toTradeInViews(tradeIns)})
}

func (h *TradeInHandler) ReviewQueue(c echo.Context) error {
	tradeIns, err := h.tradeIns.ReviewQueue(c.Request().Context(), middleware.IdentityFrom(c))
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, echo.Map{"status": "ok", "trade_ins": toTradeInViews(tradeIns)})
}

func (h *TradeInHandler) UpdateStatus(c echo.Context) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, h.log, errInvalidBody)
	}

	err := h.tradeIns.UpdateStatus(c.Request().Context(), middleware.IdentityFrom(c),
		c.Param("id"), domain.TradeInStatus(req.Status))
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, echo.Map{"status": "ok"})
}

func toTradeInView(t *domain.TradeIn) tradeInView {
	return tradeInView{
		ID:        t.ID,
		UserID:    t.UserID,
		Make:      t.Make,
		Model:     t.Model,
		Year:      t.Year,
		Mileage:   t.Mileage,
		Condition: t.Condition,
		VIN:       t.VIN,
		Comments:  t.Comments,
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt,
	}
}

func toTradeInViews(tradeIns []*domain.TradeIn) []tradeInView {
	views := make([]tradeInView, 0, len(tradeIns))
	for _, tradeIn := range tradeIns {
		views = append(views, toTradeInView(tradeIn))
	}
	return views
}
