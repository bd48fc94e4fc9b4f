package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/ideaforge/ideaforge/internal/model"
)

// DocumentRepo is the append-only store behind document version
// chains. It only ever inserts rows; updates and deletes are
// deliberately absent so that every prior version survives for the
// history and restore features. The documents table carries a unique
// key on (idea_id, document_type, version), which is what resolves
// two concurrent "next version" writers: the second insert fails and
// surfaces as ErrVersionConflict.
type DocumentRepo struct{ DB *sql.DB }

func NewDocumentRepo(db *sql.DB) *DocumentRepo { return &DocumentRepo{DB: db} }

const documentColumns = "id,idea_id,user_id,document_type,title,content,version,created_at"

// Save inserts a new immutable document row.
func (r *DocumentRepo) Save(ctx context.Context, d model.Document) (model.Document, error) {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO documents (id, idea_id, user_id, document_type, title, content, version, created_at) VALUES (?,?,?,?,?,?,?,?)",
		d.ID, d.IdeaID, d.UserID, d.DocumentType, d.Title, d.Content, d.Version, d.CreatedAt)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.Document{}, ErrVersionConflict
		}
		return model.Document{}, err
	}
	return d, nil
}

// FindLatestVersion returns the row with the highest version for the
// (idea, type) key, or ErrDocumentNotFound when the chain is empty.
func (r *DocumentRepo) FindLatestVersion(ctx context.Context, ideaID uint64, docType model.DocumentType) (model.Document, error) {
	var d model.Document
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE idea_id=? AND document_type=? ORDER BY version DESC LIMIT 1",
		ideaID, docType).Scan(&d.ID, &d.IdeaID, &d.UserID, &d.DocumentType, &d.Title, &d.Content, &d.Version, &d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return d, ErrDocumentNotFound
	}
	return d, err
}

// FindAllVersions returns every row of a chain, newest version first.
// An empty chain yields an empty slice, not an error; callers that
// need at-least-one semantics check length themselves.
func (r *DocumentRepo) FindAllVersions(ctx context.Context, ideaID uint64, docType model.DocumentType) ([]model.Document, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE idea_id=? AND document_type=? ORDER BY version DESC",
		ideaID, docType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Document
	for rows.Next() {
		var d model.Document
		if err := rows.Scan(&d.ID, &d.IdeaID, &d.UserID, &d.DocumentType, &d.Title, &d.Content, &d.Version, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
