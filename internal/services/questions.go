package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/amenelu/mekina/internal/domain"
	"github.com/amenelu/mekina/pkg/logger"
	"github.com/amenelu/mekina/pkg/utils"
)

// QuestionService runs the public Q&A thread on auctions: any signed-in user
// can ask, only the car's owner answers.
type QuestionService struct {
	store    domain.QuestionStore
	auctions domain.AuctionStore
	notifier domain.Notifier
	log      logger.Logger
}

func NewQuestionService(
	store domain.QuestionStore,
	auctions domain.AuctionStore,
	notifier domain.Notifier,
	log logger.Logger,
) *QuestionService {
	return &QuestionService{store: store, auctions: auctions, notifier: notifier, log: log}
}

func (s *QuestionService) Ask(ctx context.Context, auctionID string, actor domain.Identity, text string) (*domain.Question, error) {
	_, car, err := s.auctions.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if !car.IsApproved && !actor.Has(domain.RoleAdmin) {
		return nil, domain.ErrNotFound
	}

	if !actor.IsAuthenticated() {
		return nil, domain.ErrUnauthorized
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: question text is required", domain.ErrInvalidInput)
	}

	question := &domain.Question{
		ID:        utils.GenerateID("question"),
		AuctionID: auctionID,
		UserID:    actor.UserID,
		Text:      text,
		AskedAt:   time.Now(),
	}

	if err := s.store.CreateQuestion(ctx, question); err != nil {
		return nil, err
	}

	message := fmt.Sprintf("New question on your %s %s auction.", car.Make, car.Model)
	if err := s.notifier.Notify(ctx, car.OwnerID, message, "/auctions/"+auctionID); err != nil {
		s.log.Error("Failed to notify owner of question", "auction_id", auctionID, "error", err)
	}

	s.log.Info("Question asked", "question_id", question.ID, "auction_id", auctionID, "user_id", actor.UserID)
	return question, nil
}

// ForAuction returns the auction's Q&A thread, subject to the same
// visibility rule as the auction itself.
func (s *QuestionService) ForAuction(ctx context.Context, auctionID string, actor domain.Identity) ([]*domain.Question, error) {
	_, car, err := s.auctions.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if !car.IsApproved && !actor.Has(domain.RoleAdmin) {
		return nil, domain.ErrNotFound
	}
	return s.store.QuestionsForAuction(ctx, auctionID)
}

// Unanswered lists the open questions on the caller's own auctions, for the
// seller dashboard.
func (s *QuestionService) Unanswered(ctx context.Context, actor domain.Identity) ([]*domain.Question, error) {
	if !actor.IsAuthenticated() {
		return nil, domain.ErrUnauthorized
	}
	return s.store.UnansweredForOwner(ctx, actor.UserID)
}

// Answer posts the owner's answer and tells the asker. A question can only
// be answered once.
func (s *QuestionService) Answer(ctx context.Context, questionID string, actor domain.Identity, answer string) (*domain.Question, error) {
	if !actor.IsAuthenticated() {
		return nil, domain.ErrUnauthorized
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, fmt.Errorf("%w: answer text is required", domain.ErrInvalidInput)
	}

	question, err := s.store.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}

	_, car, err := s.auctions.GetAuction(ctx, question.AuctionID)
	if err != nil {
		return nil, err
	}
	if car.OwnerID != actor.UserID && !actor.Has(domain.RoleAdmin) {
		return nil, domain.ErrForbidden
	}
	if question.Answered() {
		return nil, fmt.Errorf("%w: question already answered", domain.ErrConflict)
	}

	answeredAt := time.Now()
	if err := s.store.AnswerQuestion(ctx, questionID, answer, answeredAt); err != nil {
		return nil, err
	}
	question.Answer = answer
	question.AnsweredAt = answeredAt

	message := fmt.Sprintf("The seller answered your question on the %s %s auction.", car.Make, car.Model)
	if err := s.notifier.Notify(ctx, question.UserID, message, "/auctions/"+question.AuctionID); err != nil {
		s.log.Error("Failed to notify asker of answer", "question_id", questionID, "error", err)
	}

	s.log.Info("Question answered", "question_id", questionID, "owner_id", actor.UserID)
	return question, nil
}
