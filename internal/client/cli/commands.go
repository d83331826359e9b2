package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/client/client"
	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/filex"
)

var errUsage = errors.New("usage")

func (a *App) credentials() (string, []byte, error) {
	userName, err := GetSimpleText(a.reader, "Enter username:", a.out)
	if err != nil {
		return "", nil, err
	}
	password, err := ReadSecret(a.reader, a.out)
	if err != nil {
		return "", nil, err
	}
	return userName, password, nil
}

// report prints err in user terms and returns it.
func (a *App) report(action string, err error) error {
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		a.printf("%s failed: not logged in or wrong credentials\n", action)
	case errors.Is(err, client.ErrUnavailable):
		a.printf("%s failed: server unavailable\n", action)
	default:
		a.printf("%s failed: %v\n", action, err)
	}
	return err
}

func (a *App) Register(ctx context.Context) error {
	userName, password, err := a.credentials()
	if err != nil {
		return a.report("Registration", err)
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.callCtx(ctx)
	defer cancel()

	if _, err := a.api.Register(ctx, userName, string(password)); err != nil {
		if errors.Is(err, client.ErrAlreadyExists) {
			a.printf("Username already exists. Please choose another.\n")
			return err
		}
		return a.report("Registration", err)
	}

	a.printf("Registration successful! Please login.\n")
	return nil
}

func (a *App) Login(ctx context.Context) error {
	userName, password, err := a.credentials()
	if err != nil {
		return a.report("Login", err)
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.callCtx(ctx)
	defer cancel()

	if err := a.api.Login(ctx, userName, string(password)); err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			a.printf("Invalid username or password\n")
			return err
		}
		return a.report("Login", err)
	}

	a.userName = userName
	a.printf("Logged in as %s\n", userName)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.api.Logout()
	a.userName = ""
	a.printf("Logged out\n")
	return nil
}

func (a *App) List(ctx context.Context) error {
	ctx, cancel := a.callCtx(ctx)
	defer cancel()

	notes, err := a.api.ListNotes(ctx)
	if err != nil {
		return a.report("List", err)
	}

	if len(notes) == 0 {
		a.printf("No notes yet.\n")
		return nil
	}
	for _, n := range notes {
		a.printf("[%d] %s\n", n.ID, n.Content)
	}
	return nil
}

// noteText returns the words after the command, or prompts for a
// multi-line body when there are none.
func (a *App) noteText(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	return GetMultiline(a.reader, "Enter note text:", a.out)
}

func (a *App) Add(ctx context.Context, args []string) error {
	content, err := a.noteText(args)
	if err != nil {
		return a.report("Add", err)
	}
	if strings.TrimSpace(content) == "" {
		a.printf("Nothing to add\n")
		return nil
	}

	ctx, cancel := a.callCtx(ctx)
	defer cancel()

	id, err := a.api.AddNote(ctx, content)
	if err != nil {
		return a.report("Add", err)
	}
	a.printf("Added note %d\n", id)
	return nil
}

func parseID(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, errUsage
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid note id %q", args[0])
	}
	return id, nil
}

func (a *App) Edit(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if errors.Is(err, errUsage) {
		a.printf("Usage: edit <id> [text]\n")
		return err
	}
	if err != nil {
		return a.report("Edit", err)
	}

	content, err := a.noteText(args[1:])
	if err != nil {
		return a.report("Edit", err)
	}

	ctx, cancel := a.callCtx(ctx)
	defer cancel()

	if err := a.api.EditNote(ctx, id, content); err != nil {
		if errors.Is(err, client.ErrNotFound) {
			a.printf("Note not found or unauthorized.\n")
			return err
		}
		return a.report("Edit", err)
	}
	a.printf("Updated note %d\n", id)
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if errors.Is(err, errUsage) {
		a.printf("Usage: delete <id>\n")
		return err
	}
	if err != nil {
		return a.report("Delete", err)
	}

	ctx, cancel := a.callCtx(ctx)
	defer cancel()

	if err := a.api.DeleteNote(ctx, id); err != nil {
		if errors.Is(err, client.ErrNotFound) {
			a.printf("Note not found or unauthorized.\n")
			return err
		}
		return a.report("Delete", err)
	}
	a.printf("Deleted note %d\n", id)
	return nil
}

// Export asks the server for a download link and saves the file under the
// configured export directory.
func (a *App) Export(ctx context.Context, args []string) error {
	ctx, cancel := a.callCtx(ctx)
	defer cancel()

	url, err := a.api.ExportNotes(ctx)
	if err != nil {
		if errors.Is(err, client.ErrExportDisabled) {
			a.printf("Export is not enabled on the server\n")
			return err
		}
		return a.report("Export", err)
	}

	data, err := a.download(ctx, url)
	if err != nil {
		return a.report("Download", err)
	}

	name := fmt.Sprintf("notes-%s.json", time.Now().Format("20060102-150405"))
	if len(args) > 0 {
		name = args[0]
	}

	path, err := filex.WriteFile(a.config.ExportDir, name, data)
	if err != nil {
		return a.report("Export", err)
	}
	a.printf("Exported to %s\n", path)
	return nil
}
