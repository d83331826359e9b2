package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/repomanager"
	"golang.org/x/sync/singleflight"
)

// NoteCache is a read-through cache of per-owner note lists. Invalidate
// advances the owner's generation; Set only writes when the generation it is
// given is still current, so a fill that raced a mutation is dropped.
type NoteCache interface {
	// Get reports a miss with ok == false.
	Get(ctx context.Context, userID int64) (notes []models.Note, ok bool, err error)
	Generation(ctx context.Context, userID int64) (int64, error)
	Set(ctx context.Context, userID, gen int64, notes []models.Note) (written bool, err error)
	Invalidate(ctx context.Context, userID int64) error
}

// Exporter publishes a snapshot of an owner's notes and returns a URL to it.
type Exporter interface {
	Export(ctx context.Context, userID int64, notes []models.Note) (string, error)
}

// NoteService runs owner-scoped note operations. Every method takes the
// caller's identity explicitly; a nil identity yields common.ErrUnauthenticated.
type NoteService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	cache       NoteCache
	exporter    Exporter
	sf          singleflight.Group
}

// NewNoteService builds the service. cache and exporter may be nil, which
// disables caching and export respectively.
func NewNoteService(db *sql.DB, m repomanager.RepositoryManager, cache NoteCache, exporter Exporter, l logging.Logger) *NoteService {
	return &NoteService{
		db:          db,
		repomanager: m,
		logger:      l.With("module", "note_service"),
		cache:       cache,
		exporter:    exporter,
	}
}

// ListNotes returns the caller's notes in insertion order.
func (s *NoteService) ListNotes(ctx context.Context, identity *models.Identity) ([]models.Note, error) {
	if identity == nil {
		return nil, common.ErrUnauthenticated
	}

	if s.cache == nil {
		return s.listFromStore(ctx, identity.UserID)
	}

	cached, ok, err := s.cache.Get(ctx, identity.UserID)
	if err != nil {
		s.logger.Warn(ctx, "note cache read failed", "user_id", identity.UserID, "error", err)
	} else if ok {
		return cached, nil
	}

	gen, err := s.cache.Generation(ctx, identity.UserID)
	if err != nil {
		s.logger.Warn(ctx, "note cache generation read failed", "user_id", identity.UserID, "error", err)
		return s.listFromStore(ctx, identity.UserID)
	}

	// Callers only share a fill that started in the generation they observed.
	key := strconv.FormatInt(identity.UserID, 10) + ":" + strconv.FormatInt(gen, 10)
	ch := s.sf.DoChan(key, func() (any, error) {
		fillCtx := context.WithoutCancel(ctx)
		notes, err := s.listFromStore(fillCtx, identity.UserID)
		if err != nil {
			return nil, err
		}
		if _, err := s.cache.Set(fillCtx, identity.UserID, gen, notes); err != nil {
			s.logger.Warn(fillCtx, "note cache write failed", "user_id", identity.UserID, "error", err)
		}
		return notes, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]models.Note), nil
	}
}

// AddNote stores content verbatim. Content that is blank after trimming
// yields common.ErrValidation and nothing is stored.
func (s *NoteService) AddNote(ctx context.Context, identity *models.Identity, content string) (int64, error) {
	if identity == nil {
		return 0, common.ErrUnauthenticated
	}
	if strings.TrimSpace(content) == "" {
		return 0, fmt.Errorf("%w: note content is empty", common.ErrValidation)
	}

	id, err := s.repomanager.Notes(s.db).Insert(ctx, identity.UserID, content)
	if err != nil {
		return 0, fmt.Errorf("error adding note: %w", err)
	}

	s.invalidate(ctx, identity.UserID)
	s.logger.Debug(ctx, "note added", "user_id", identity.UserID, "note_id", id)
	return id, nil
}

// GetNote returns one of the caller's notes.
func (s *NoteService) GetNote(ctx context.Context, identity *models.Identity, noteID int64) (*models.Note, error) {
	if identity == nil {
		return nil, common.ErrUnauthenticated
	}

	n, err := s.repomanager.Notes(s.db).Get(ctx, noteID, identity.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrNotFoundOrForbidden
		}
		return nil, fmt.Errorf("error getting note: %w", err)
	}
	return n, nil
}

// EditNote replaces the content of one of the caller's notes. A note that
// does not exist and a note owned by someone else are indistinguishable.
func (s *NoteService) EditNote(ctx context.Context, identity *models.Identity, noteID int64, content string) error {
	if identity == nil {
		return common.ErrUnauthenticated
	}

	ok, err := s.repomanager.Notes(s.db).Update(ctx, noteID, identity.UserID, content)
	if err != nil {
		return fmt.Errorf("error editing note: %w", err)
	}
	if !ok {
		return common.ErrNotFoundOrForbidden
	}

	s.invalidate(ctx, identity.UserID)
	s.logger.Debug(ctx, "note edited", "user_id", identity.UserID, "note_id", noteID)
	return nil
}

// DeleteNote removes one of the caller's notes, with the same ownership
// contract as EditNote.
func (s *NoteService) DeleteNote(ctx context.Context, identity *models.Identity, noteID int64) error {
	if identity == nil {
		return common.ErrUnauthenticated
	}

	ok, err := s.repomanager.Notes(s.db).Delete(ctx, noteID, identity.UserID)
	if err != nil {
		return fmt.Errorf("error deleting note: %w", err)
	}
	if !ok {
		return common.ErrNotFoundOrForbidden
	}

	s.invalidate(ctx, identity.UserID)
	s.logger.Debug(ctx, "note deleted", "user_id", identity.UserID, "note_id", noteID)
	return nil
}

// ExportNotes publishes the caller's notes and returns a download URL.
// It reads from the store, never from the cache.
func (s *NoteService) ExportNotes(ctx context.Context, identity *models.Identity) (string, error) {
	if identity == nil {
		return "", common.ErrUnauthenticated
	}
	if s.exporter == nil {
		return "", common.ErrExportDisabled
	}

	notes, err := s.listFromStore(ctx, identity.UserID)
	if err != nil {
		return "", err
	}

	url, err := s.exporter.Export(ctx, identity.UserID, notes)
	if err != nil {
		return "", fmt.Errorf("error exporting notes: %w", err)
	}

	s.logger.Info(ctx, "notes exported", "user_id", identity.UserID, "count", len(notes))
	return url, nil
}

func (s *NoteService) listFromStore(ctx context.Context, userID int64) ([]models.Note, error) {
	notes, err := s.repomanager.Notes(s.db).ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing notes: %w", err)
	}
	return notes, nil
}

func (s *NoteService) invalidate(ctx context.Context, userID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.logger.Warn(ctx, "note cache invalidation failed", "user_id", userID, "error", err)
	}
}
