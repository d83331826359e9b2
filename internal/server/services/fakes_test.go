package services

import (
	"context"
	"database/sql"
	"sync"

	"github.com/dmitrijs2005/gophnotes/internal/dbx"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	notesrepo "github.com/dmitrijs2005/gophnotes/internal/server/repositories/notes"
	usersrepo "github.com/dmitrijs2005/gophnotes/internal/server/repositories/users"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

type fakeUsersRepo struct {
	createOut *models.User
	createErr error
	created   *models.User

	getOut *models.User
	getErr error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.created = u
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createOut, nil
}

func (f *fakeUsersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

type fakeNotesRepo struct {
	insertID  int64
	insertErr error
	inserted  []string

	listOut    []models.Note
	listErr    error
	listCalls  int
	listCtxErr error
	// afterList runs once, after the first list snapshot is taken.
	afterList func()

	getOut *models.Note
	getErr error

	updateOK  bool
	updateErr error

	deleteOK  bool
	deleteErr error

	mu sync.Mutex
}

func (f *fakeNotesRepo) Insert(ctx context.Context, ownerID int64, content string) (int64, error) {
	f.inserted = append(f.inserted, content)
	return f.insertID, f.insertErr
}

func (f *fakeNotesRepo) ListByOwner(ctx context.Context, ownerID int64) ([]models.Note, error) {
	f.mu.Lock()
	f.listCalls++
	out, err := f.listOut, f.listErr
	hook := f.afterList
	f.afterList = nil
	f.mu.Unlock()

	if hook != nil {
		hook()
	}

	f.mu.Lock()
	f.listCtxErr = ctx.Err()
	f.mu.Unlock()
	return out, err
}

func (f *fakeNotesRepo) setList(notes []models.Note) {
	f.mu.Lock()
	f.listOut = notes
	f.mu.Unlock()
}

func (f *fakeNotesRepo) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func (f *fakeNotesRepo) Get(ctx context.Context, noteID, ownerID int64) (*models.Note, error) {
	return f.getOut, f.getErr
}

func (f *fakeNotesRepo) Update(ctx context.Context, noteID, ownerID int64, content string) (bool, error) {
	return f.updateOK, f.updateErr
}

func (f *fakeNotesRepo) Delete(ctx context.Context, noteID, ownerID int64) (bool, error) {
	return f.deleteOK, f.deleteErr
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	n *fakeNotesRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository       { return m.u }
func (m *fakeRepoManager) Notes(db dbx.DBTX) notesrepo.Repository       { return m.n }

type fakeBinder struct {
	bound    *models.Identity
	bindErr  error
	clearErr error
	cleared  int
}

func (b *fakeBinder) Bind(identity *models.Identity) error {
	if b.bindErr != nil {
		return b.bindErr
	}
	b.bound = identity
	return nil
}

func (b *fakeBinder) Clear() error {
	b.cleared++
	if b.clearErr != nil {
		return b.clearErr
	}
	b.bound = nil
	return nil
}

type fakeCache struct {
	data        map[int64][]models.Note
	gen         map[int64]int64
	genErr      error
	getErr      error
	setErr      error
	invErr      error
	invalidated []int64
	mu          sync.Mutex
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[int64][]models.Note{}, gen: map[int64]int64{}}
}

func (c *fakeCache) Get(ctx context.Context, userID int64) ([]models.Note, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	n, ok := c.data[userID]
	return n, ok, nil
}

func (c *fakeCache) Generation(ctx context.Context, userID int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.genErr != nil {
		return 0, c.genErr
	}
	return c.gen[userID], nil
}

func (c *fakeCache) Set(ctx context.Context, userID, gen int64, notes []models.Note) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return false, c.setErr
	}
	if c.gen[userID] != gen {
		return false, nil
	}
	c.data[userID] = notes
	return true, nil
}

func (c *fakeCache) Invalidate(ctx context.Context, userID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, userID)
	c.gen[userID]++
	delete(c.data, userID)
	return c.invErr
}

type fakeExporter struct {
	url    string
	err    error
	gotFor int64
	got    []models.Note
}

func (e *fakeExporter) Export(ctx context.Context, userID int64, notes []models.Note) (string, error) {
	e.gotFor = userID
	e.got = notes
	if e.err != nil {
		return "", e.err
	}
	return e.url, nil
}

