// Package notes provides the owner-scoped note store. Every statement filters
// on user_id, so a caller can never read or change another owner's row.
package notes

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/gophnotes/internal/server/models"
)

type Repository interface {
	Insert(ctx context.Context, ownerID int64, content string) (int64, error)
	// ListByOwner returns notes in insertion order (ascending id).
	ListByOwner(ctx context.Context, ownerID int64) ([]models.Note, error)
	// Get returns common.ErrorNotFound unless a row matches both ids.
	Get(ctx context.Context, noteID, ownerID int64) (*models.Note, error)
	// Update and Delete report whether a row matching both ids was changed.
	Update(ctx context.Context, noteID, ownerID int64, content string) (bool, error)
	Delete(ctx context.Context, noteID, ownerID int64) (bool, error)
}

func affectedOne(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("unexpected rows affected: %d", n)
	}
}

func scanNotes(rows *sql.Rows) ([]models.Note, error) {
	defer rows.Close()

	result := make([]models.Note, 0)
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.ID, &n.UserID, &n.Content); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
