package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/dmitrijs2005/cloudstore/internal/client/client"
	"github.com/dmitrijs2005/cloudstore/internal/client/config"
	"github.com/spf13/afero"
)

// fileClient is the part of client.CloudClient the commands use.
type fileClient interface {
	LoggedIn() bool
	Login(ctx context.Context, login, password string) error
	Logout(ctx context.Context) error
	List(ctx context.Context, limit int) ([]client.FileInfo, error)
	Upload(ctx context.Context, name string, r io.Reader) error
	Download(ctx context.Context, name string, w io.Writer) error
	Delete(ctx context.Context, name string) error
	Rename(ctx context.Context, oldName, newName string) error
}

type App struct {
	config   *config.Config
	client   fileClient
	fs       afero.Fs
	reader   *bufio.Reader
	out      io.Writer
	userName string
}

func NewApp(c *config.Config) (*App, error) {
	return &App{
		config: c,
		client: client.NewCloudClient(c.ServerURL, c.RequestTimeout),
		fs:     afero.NewOsFs(),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

func (a *App) Run(ctx context.Context) {
	printlnFn("cloudstore CLI (type 'help' for commands), server", a.config.ServerURL)
	runREPL(ctx, a, a.getStatus, a.reader)
	if a.isLoggedIn() {
		_ = a.Logout(ctx, nil)
	}
}

func (a *App) isLoggedIn() bool {
	return a.client.LoggedIn()
}

func (a *App) getStatus() string {
	if a.userName == "" || !a.isLoggedIn() {
		return "(anonymous)"
	}
	return "(" + a.userName + ")"
}
