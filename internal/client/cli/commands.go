package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
)

var errUsage = errors.New("usage")

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func usage(s string) error {
	return fmt.Errorf("%w: %s", errUsage, s)
}

// Login prompts for the login (or email) and password and opens a session.
func (a *App) Login(ctx context.Context, _ []string) error {
	login, err := getSimpleText(a.reader, "Enter login or email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	if err := a.client.Login(ctx, login, string(password)); err != nil {
		return err
	}

	a.userName = login
	printlnFn("Login successful")
	return nil
}

func (a *App) Logout(ctx context.Context, _ []string) error {
	err := a.client.Logout(ctx)
	a.userName = ""
	return err
}

// List prints one "name<TAB>size" line per stored file.
func (a *App) List(ctx context.Context, args []string) error {
	limit := 0
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return usage("list [limit]")
		}
		limit = n
	}

	files, err := a.client.List(ctx, limit)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		printlnFn("No files")
		return nil
	}
	for _, f := range files {
		fmt.Fprintf(a.out, "%s\t%d\n", f.Filename, f.Size)
	}
	return nil
}

// Upload sends a local file. The stored name defaults to the local base name.
func (a *App) Upload(ctx context.Context, args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return usage("upload <local> [name]")
	}
	local := args[0]
	name := filepath.Base(local)
	if len(args) == 2 {
		name = args[1]
	}

	f, err := a.fs.Open(local)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := a.client.Upload(ctx, name, f); err != nil {
		return err
	}
	printlnFn("Uploaded", name)
	return nil
}

// Download fetches a stored file into a local path, by default the base name
// of the stored file in the working directory. A failed transfer leaves no
// local file behind.
func (a *App) Download(ctx context.Context, args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return usage("download <name> [local]")
	}
	name := args[0]
	local := path.Base(name)
	if len(args) == 2 {
		local = args[1]
	}

	f, err := a.fs.OpenFile(local, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}

	err = a.client.Download(ctx, name, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = a.fs.Remove(local)
		return err
	}

	printlnFn("Saved", name, "to", local)
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("delete <name>")
	}
	if err := a.client.Delete(ctx, args[0]); err != nil {
		return err
	}
	printlnFn("Deleted", args[0])
	return nil
}

func (a *App) Rename(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("rename <old> <new>")
	}
	if err := a.client.Rename(ctx, args[0], args[1]); err != nil {
		return err
	}
	printlnFn("Renamed", args[0], "to", args[1])
	return nil
}
