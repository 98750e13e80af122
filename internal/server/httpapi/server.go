// Package httpapi exposes the storage engine and account operations over
// HTTP. Every file route takes the credential from the auth-token or
// Authorization header and passes it to the services unchanged.
package httpapi

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/dmitrijs2005/cloudstore/internal/logging"
	"github.com/dmitrijs2005/cloudstore/internal/server/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
)

const shutdownTimeout = 5 * time.Second

// Users is the account side used by the API.
type Users interface {
	Login(ctx context.Context, identifier, password string) (string, error)
	Logout(ctx context.Context, credential string) error
}

// Storage is the storage engine used by the API.
type Storage interface {
	Upload(ctx context.Context, credential, filename string, r io.Reader) (*models.File, error)
	Download(ctx context.Context, credential, filename string) (*models.File, io.ReadCloser, error)
	Delete(ctx context.Context, credential, filename string) error
	Rename(ctx context.Context, credential, oldName, newName string) (*models.File, error)
	List(ctx context.Context, credential string, limit int) ([]models.FileInfo, error)
}

type Server struct {
	address  string
	users    Users
	storage  Storage
	logger   logging.Logger
	validate *validator.Validate

	// File parts that arrive before their name are spooled here, at most
	// maxUpload bytes each.
	spool     afero.Fs
	spoolDir  string
	maxUpload int64
}

// NewServer creates the API server. maxUpload bounds the spooled copy of an
// upload whose name is sent after the content.
func NewServer(a string, l logging.Logger, us Users, ss Storage, maxUpload int64) *Server {
	return &Server{
		address:   a,
		logger:    l.With("module", "http_server"),
		users:     us,
		storage:   ss,
		validate:  validator.New(),
		spool:     afero.NewOsFs(),
		spoolDir:  os.TempDir(),
		maxUpload: maxUpload,
	}
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(s.withLogging)
	r.Use(middleware.Recoverer)
	r.Use(preflight)

	r.Post("/login", s.login)
	r.Post("/logout", s.logout)
	r.Get("/list", s.list)

	r.Post("/file", s.upload)
	r.Get("/file", s.download)
	r.Delete("/file", s.delete)
	r.Put("/file", s.rename)

	return r
}

// Run serves until ctx is cancelled, then shuts the server down gracefully.
func (s *Server) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
