package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ideaforge/ideaforge/internal/model"
)

// IdeaRepo provides access to the 'ideas' table. Ideas own document
// version chains; the orchestrator loads an idea before any document
// operation to verify existence and ownership.
type IdeaRepo struct{ DB *sql.DB }

func NewIdeaRepo(db *sql.DB) *IdeaRepo { return &IdeaRepo{DB: db} }

// Create inserts an idea and returns its ID.
func (r *IdeaRepo) Create(ctx context.Context, userID uint64, kind model.IdeaKind, title, description string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO ideas (user_id, kind, title, description) VALUES (?,?,?,?)",
		userID, kind, title, description)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// FindByID fetches an idea by primary key. Returns ErrIdeaNotFound
// when no row exists.
func (r *IdeaRepo) FindByID(ctx context.Context, id uint64) (model.Idea, error) {
	var (
		i        model.Idea
		score    sql.NullInt64
		feedback sql.NullString
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,user_id,kind,title,description,analysis_score,analysis_feedback,created_at,updated_at FROM ideas WHERE id=? LIMIT 1",
		id).Scan(&i.ID, &i.UserID, &i.Kind, &i.Title, &i.Description, &score, &feedback, &i.CreatedAt, &i.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return i, ErrIdeaNotFound
	}
	if err != nil {
		return i, err
	}
	if score.Valid {
		n := int(score.Int64)
		i.AnalysisScore = &n
	}
	if feedback.Valid {
		f := feedback.String
		i.AnalysisFeedback = &f
	}
	return i, nil
}

// ListByUser returns all ideas owned by a user, newest first.
func (r *IdeaRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Idea, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,user_id,kind,title,description,analysis_score,analysis_feedback,created_at,updated_at FROM ideas WHERE user_id=? ORDER BY created_at DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Idea
	for rows.Next() {
		var (
			i        model.Idea
			score    sql.NullInt64
			feedback sql.NullString
		)
		if err := rows.Scan(&i.ID, &i.UserID, &i.Kind, &i.Title, &i.Description, &score, &feedback, &i.CreatedAt, &i.UpdatedAt); err != nil {
			return nil, err
		}
		if score.Valid {
			n := int(score.Int64)
			i.AnalysisScore = &n
		}
		if feedback.Valid {
			f := feedback.String
			i.AnalysisFeedback = &f
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

// SetAnalysis records the AI analysis score and feedback for an idea.
func (r *IdeaRepo) SetAnalysis(ctx context.Context, id uint64, score int, feedback string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE ideas SET analysis_score=?, analysis_feedback=? WHERE id=?",
		score, feedback, id)
	return err
}
