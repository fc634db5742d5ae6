package handlers

import (
	"net/http"

	"github.com/amenelu/mekina/internal/api/middleware"
	"github.com/amenelu/mekina/internal/domain"
	"github.com/amenelu/mekina/internal/services"
	"github.com/amenelu/mekina/pkg/logger"

	"github.com/labstack/echo/v4"
)

// QuestionHandler serves the auction Q&A thread.
type QuestionHandler struct {
	questions *services.QuestionService
	log       logger.Logger
}

func NewQuestionHandler(questions *services.QuestionService, log logger.Logger) *QuestionHandler {
	return &QuestionHandler{questions: questions, log: log}
}

func (h *QuestionHandler) Register(e *echo.Echo) {
	e.GET("/auctions/:id/questions", h.ForAuction)
	e.POST("/auctions/:id/questions", h.Ask)
	e.GET("/seller/questions", h.Unanswered)
	e.POST("/questions/:id/answer", h.Answer)
}

func (h *QuestionHandler) Ask(c echo.Context) error {
	var req struct {
		Text string `json:"question_text"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, h.log, errInvalidBody)
	}

	question, err := h.questions.Ask(c.Request().Context(), c.Param("id"), middleware.IdentityFrom(c), req.Text)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"status": "ok", "question": toQuestionView(question)})
}

func (h *QuestionHandler) ForAuction(c echo.Context) error {
	questions, err := h.questions.ForAuction(c.Request().Context(), c.Param("id"), middleware.IdentityFrom(c))
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, echo.Map{"status": "ok", "questions": toQuestionViews(questions)})
}

func (h *QuestionHandler) Unanswered(c echo.Context) error {
	questions, err := h.questions.Unanswered(c.Request().Context(), middleware.IdentityFrom(c))
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, echo.Map{"status": "ok", "questions": toQuestionViews(questions)})
}

func (h *QuestionHandler) Answer(c echo.Context) error {
	var req struct {
		Answer string `json:"answer_text"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, h.log, errInvalidBody)
	}

	question, err := h.questions.Answer(c.Request().Context(), c.Param("id"), middleware.IdentityFrom(c), req.Answer)
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, echo.Map{"status": "ok", "question": toQuestionView(question)})
}

func toQuestionView(q *domain.Question) questionView {
	view := questionView{
		ID:        q.ID,
		AuctionID: q.AuctionID,
		UserID:    q.UserID,
		Text:      q.Text,
		Answer:    q.Answer,
		AskedAt:   q.AskedAt,
	}
	if q.Answered() {
		answeredAt := q.AnsweredAt
		view.AnsweredAt = &answeredAt
	}
	return view
}

func toQuestionViews(questions []*domain.Question) []questionView {
	views := make([]questionView, 0, len(questions))
	for _, question := range questions {
		views = append(views, toQuestionView(question))
	}
	return views
}
