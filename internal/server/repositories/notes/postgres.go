package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/dbx"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

// characterNotInRepertoire is the SQLSTATE Postgres reports for text it
// cannot store, such as a NUL byte or invalid UTF-8.
const characterNotInRepertoire = "22021"

func writeError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == characterNotInRepertoire {
		return fmt.Errorf("%w: %s", common.ErrValidation, pgErr.Message)
	}
	return fmt.Errorf("db error: %w", err)
}

// PostgresRepository implements note storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, ownerID int64, content string) (int64, error) {
	query :=
		`INSERT INTO notes (user_id, content)
		 VALUES ($1, $2)
		 RETURNING id
		 `

	var id int64
	if err := r.db.QueryRowContext(ctx, query, ownerID, content).Scan(&id); err != nil {
		return 0, writeError(err)
	}
	return id, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID int64) ([]models.Note, error) {
	query := `SELECT id, user_id, content FROM notes WHERE user_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return scanNotes(rows)
}

func (r *PostgresRepository) Get(ctx context.Context, noteID, ownerID int64) (*models.Note, error) {
	query := `SELECT id, user_id, content FROM notes WHERE id = $1 AND user_id = $2`

	n := &models.Note{}
	err := r.db.QueryRowContext(ctx, query, noteID, ownerID).Scan(&n.ID, &n.UserID, &n.Content)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) Update(ctx context.Context, noteID, ownerID int64, content string) (bool, error) {
	query := `UPDATE notes SET content = $1 WHERE id = $2 AND user_id = $3`

	res, err := r.db.ExecContext(ctx, query, content, noteID, ownerID)
	if err != nil {
		return false, writeError(err)
	}
	return affectedOne(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, noteID, ownerID int64) (bool, error) {
	query := `DELETE FROM notes WHERE id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, noteID, ownerID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affectedOne(res)
}
