package handlers

import (
	"github.com/amenelu/mekina/internal/api/middleware"
	"github.com/amenelu/mekina/internal/domain"
	"github.com/amenelu/mekina/internal/services"
	"github.com/amenelu/mekina/pkg/logger"

	"github.com/labstack/echo/v4"
)

// NotificationHandler serves the persisted inbox backing the realtime push:
// anything pushed over the websocket is also readable here later.
type NotificationHandler struct {
	notifications *services.NotificationService
	log           logger.Logger
}

func NewNotificationHandler(notifications *services.NotificationService, log logger.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, log: log}
}

func (h *NotificationHandler) Register(e *echo.Echo) {
	g := e.Group("/notifications")
	g.GET("/", h.Inbox)
	g.GET("/unread_count", h.UnreadCount)
	g.POST("/:id/read", h.MarkRead)
}

func (h *NotificationHandler) Inbox(c echo.Context) error {
	notifications, err := h.notifications.Inbox(c.Request().Context(), middleware.IdentityFrom(c))
	if err != nil {
		return fail(c, h.log, err)
	}

	views := make([]notificationView, 0, len(notifications))
	for _, n := range notifications {
		views = append(views, toNotificationView(n))
	}
	return ok(c, echo.Map{"status": "ok", "notifications": views})
}

func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	count, err := h.notifications.UnreadCount(c.Request().Context(), middleware.IdentityFrom(c))
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, echo.Map{"status": "ok", "unread": count})
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	if err := h.notifications.MarkRead(c.Request().Context(), middleware.IdentityFrom(c), c.Param("id")); err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, echo.Map{"status": "ok"})
}

func toNotificationView(n *domain.Notification) notificationView {
	return notificationView{
		ID:        n.ID,
		Message:   n.Message,
		Link:      n.Link,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}
