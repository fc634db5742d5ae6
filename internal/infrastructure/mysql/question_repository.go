package mysql

import (
	"context"
	"database/sql"
	"time"

	"github.com/amenelu/mekina/internal/domain"
)

type MySQLQuestionRepository struct {
	db *sql.DB
}

func NewMySQLQuestionRepository(db *sql.DB) *MySQLQuestionRepository {
	return &MySQLQuestionRepository{db: db}
}

func (r *MySQLQuestionRepository) CreateQuestion(ctx context.Context, question *domain.Question) error {
	query := `
        INSERT INTO questions (id, auction_id, user_id, question_text, asked_at)
        VALUES (?, ?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		question.ID, question.AuctionID, question.UserID, question.Text, question.AskedAt)
	return err
}

const questionColumns = `q.id, q.auction_id, q.user_id, q.question_text,
               COALESCE(q.answer_text, ''), q.asked_at, q.answered_at`

func scanQuestion(row interface{ Scan(...interface{}) error }, question *domain.Question) error {
	var answeredAt sql.NullTime
	if err := row.Scan(&question.ID, &question.AuctionID, &question.UserID,
		&question.Text, &question.Answer, &question.AskedAt, &answeredAt); err != nil {
		return err
	}
	if answeredAt.Valid {
		question.AnsweredAt = answeredAt.Time
	}
	return nil
}

func (r *MySQLQuestionRepository) GetQuestion(ctx context.Context, questionID string) (*domain.Question, error) {
	var question domain.Question
	err := scanQuestion(r.db.QueryRowContext(ctx, `
        SELECT `+questionColumns+` FROM questions q WHERE q.id = ?
    `, questionID), &question)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *MySQLQuestionRepository) queryQuestions(ctx context.Context, query string, args ...interface{}) ([]*domain.Question, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []*domain.Question
	for rows.Next() {
		var question domain.Question
		if err := scanQuestion(rows, &question); err != nil {
			return nil, err
		}
		questions = append(questions, &question)
	}

	return questions, rows.Err()
}

func (r *MySQLQuestionRepository) QuestionsForAuction(ctx context.Context, auctionID string) ([]*domain.Question, error) {
	return r.queryQuestions(ctx, `
        SELECT `+questionColumns+` FROM questions q
        WHERE q.auction_id = ?
        ORDER BY q.asked_at DESC
    `, auctionID)
}

func (r *MySQLQuestionRepository) UnansweredForOwner(ctx context.Context, ownerID string) ([]*domain.Question, error) {
	return r.queryQuestions(ctx, `
        SELECT `+questionColumns+` FROM questions q
        JOIN auctions a ON a.id = q.auction_id
        JOIN cars c ON c.id = a.car_id
        WHERE c.owner_id = ? AND q.answer_text IS NULL
        ORDER BY q.asked_at DESC
    `, ownerID)
}

func (r *MySQLQuestionRepository) AnswerQuestion(ctx context.Context, questionID, answer string, answeredAt time.Time) error {
	result, err := r.db.ExecContext(ctx, `
        UPDATE questions SET answer_text = ?, answered_at = ?
        WHERE id = ? AND answer_text IS NULL
    `, answer, answeredAt, questionID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
