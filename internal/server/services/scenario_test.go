package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/dmitrijs2005/gophnotes/internal/server/migrations/sqlitetest"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteServices(t *testing.T) (*AuthService, *NoteService) {
	t.Helper()
	db := sqlitetest.New(t)
	rm := repomanager.NewSQLiteRepositoryManager()
	return NewAuthService(db, rm, testConfig(), logging.Nop{}),
		NewNoteService(db, rm, nil, nil, logging.Nop{})
}

func contents(notes []models.Note) []string {
	out := make([]string, 0, len(notes))
	for _, n := range notes {
		out = append(out, n.Content)
	}
	return out
}

func TestSQLite_DuplicateRegistrationKeepsFirstPassword(t *testing.T) {
	as, _ := newSQLiteServices(t)
	ctx := context.Background()

	_, err := as.Register(ctx, "alice", "pw1")
	require.NoError(t, err)

	_, err = as.Register(ctx, "alice", "pw2")
	assert.ErrorIs(t, err, common.ErrDuplicateUsername)

	id, err := as.Authenticate(ctx, "alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "alice", id.Username)

	_, err = as.Authenticate(ctx, "alice", "pw2")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestSQLite_UsernamesAreCaseSensitive(t *testing.T) {
	as, _ := newSQLiteServices(t)
	ctx := context.Background()

	_, err := as.Register(ctx, "alice", "pw")
	require.NoError(t, err)
	_, err = as.Register(ctx, "Alice", "pw")
	require.NoError(t, err)

	_, err = as.Authenticate(ctx, "ALICE", "pw")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestSQLite_UnknownUserAndWrongPasswordLookAlike(t *testing.T) {
	as, _ := newSQLiteServices(t)
	ctx := context.Background()

	_, err := as.Register(ctx, "alice", "pw")
	require.NoError(t, err)

	_, errWrong := as.Authenticate(ctx, "alice", "nope")
	_, errUnknown := as.Authenticate(ctx, "mallory", "pw")
	assert.ErrorIs(t, errWrong, common.ErrInvalidCredentials)
	assert.ErrorIs(t, errUnknown, common.ErrInvalidCredentials)
	assert.Equal(t, errWrong.Error(), errUnknown.Error())
}

func TestSQLite_NotesAreOwnerScoped(t *testing.T) {
	as, ns := newSQLiteServices(t)
	ctx := context.Background()

	_, err := as.Register(ctx, "alice", "a")
	require.NoError(t, err)
	_, err = as.Register(ctx, "bob", "b")
	require.NoError(t, err)
	a, err := as.Authenticate(ctx, "alice", "a")
	require.NoError(t, err)
	b, err := as.Authenticate(ctx, "bob", "b")
	require.NoError(t, err)

	noteID, err := ns.AddNote(ctx, a, "secret plan")
	require.NoError(t, err)

	_, err = ns.AddNote(ctx, a, "   ")
	assert.ErrorIs(t, err, common.ErrValidation)

	list, err := ns.ListNotes(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, []string{"secret plan"}, contents(list))

	list, err = ns.ListNotes(ctx, b)
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.ErrorIs(t, ns.EditNote(ctx, b, noteID, "hijacked"), common.ErrNotFoundOrForbidden)
	assert.ErrorIs(t, ns.DeleteNote(ctx, b, noteID), common.ErrNotFoundOrForbidden)
	_, err = ns.GetNote(ctx, b, noteID)
	assert.ErrorIs(t, err, common.ErrNotFoundOrForbidden)

	n, err := ns.GetNote(ctx, a, noteID)
	require.NoError(t, err)
	assert.Equal(t, "secret plan", n.Content)

	require.NoError(t, ns.DeleteNote(ctx, a, noteID))
	assert.ErrorIs(t, ns.DeleteNote(ctx, a, noteID), common.ErrNotFoundOrForbidden)
	assert.ErrorIs(t, ns.EditNote(ctx, a, noteID, "x"), common.ErrNotFoundOrForbidden)
}

func TestSQLite_BobEditsHisNote(t *testing.T) {
	as, ns := newSQLiteServices(t)
	ctx := context.Background()

	_, err := as.Register(ctx, "bob", "pw")
	require.NoError(t, err)
	bob, err := as.Login(ctx, &fakeBinder{}, "bob", "pw")
	require.NoError(t, err)

	id, err := ns.AddNote(ctx, bob, "buy milk")
	require.NoError(t, err)
	_, err = ns.AddNote(ctx, bob, "call mom")
	require.NoError(t, err)

	require.NoError(t, ns.EditNote(ctx, bob, id, "buy oat milk"))

	list, err := ns.ListNotes(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, []string{"buy oat milk", "call mom"}, contents(list))
}
