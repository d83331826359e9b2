package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/dbx"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, ownerID int64, content string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO notes (user_id, content) VALUES (?, ?)`, ownerID, content)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) ListByOwner(ctx context.Context, ownerID int64) ([]models.Note, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, user_id, content FROM notes WHERE user_id = ? ORDER BY id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return scanNotes(rows)
}

func (r *SQLiteRepository) Get(ctx context.Context, noteID, ownerID int64) (*models.Note, error) {
	n := &models.Note{}
	err := r.db.QueryRowContext(ctx, `SELECT id, user_id, content FROM notes WHERE id = ? AND user_id = ?`, noteID, ownerID).
		Scan(&n.ID, &n.UserID, &n.Content)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, noteID, ownerID int64, content string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE notes SET content = ? WHERE id = ? AND user_id = ?`, content, noteID, ownerID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affectedOne(res)
}

func (r *SQLiteRepository) Delete(ctx context.Context, noteID, ownerID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ? AND user_id = ?`, noteID, ownerID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affectedOne(res)
}
