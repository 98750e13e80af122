package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"path/filepath"
	"strconv"

	"github.com/dmitrijs2005/cloudstore/internal/common"
	"github.com/dmitrijs2005/cloudstore/internal/filex"
	"github.com/dmitrijs2005/cloudstore/internal/server/auth"
	"github.com/dmitrijs2005/cloudstore/internal/server/models"
	"github.com/google/uuid"
)

const (
	filenameParam = "filename"
	fileField     = "file"

	// maxJSONBody bounds login and rename request bodies.
	maxJSONBody = 1 << 20
)

type loginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	AuthToken string `json:"auth-token"`
}

type renameRequest struct {
	Filename string `json:"filename" validate:"required"`
}

// decodeBody reads a JSON body into v and validates it. Any failure is
// common.ErrInvalidArgument.
func (s *Server) decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: bad request body: %v", common.ErrInvalidArgument, err)
	}
	if err := s.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidArgument, err)
	}
	return nil
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := s.decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	token, err := s.users.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set(common.CredentialHeaderNames[0], token)
	writeJSON(w, http.StatusOK, loginResponse{AuthToken: token})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.users.Logout(r.Context(), auth.CredentialFromHeader(r.Header)); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, r, fmt.Errorf("%w: limit must be an integer", common.ErrInvalidArgument))
			return
		}
		limit = n
	}

	items, err := s.storage.List(r.Context(), auth.CredentialFromHeader(r.Header), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if items == nil {
		items = []models.FileInfo{}
	}
	writeJSON(w, http.StatusOK, items)
}

// upload stores the "file" part of a multipart body. The name comes from the
// filename query parameter or from a "filename" form field. When the field
// is sent before the file part the content is streamed straight into the
// engine; otherwise it is spooled to a temporary file until the name shows
// up.
func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	filename := r.URL.Query().Get(filenameParam)
	credential := auth.CredentialFromHeader(r.Header)

	mr, err := r.MultipartReader()
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: multipart body expected: %v", common.ErrInvalidArgument, err))
		return
	}

	var spooled string
	defer func() {
		if spooled == "" {
			return
		}
		if _, err := filex.RemoveIfExists(s.spool, spooled); err != nil {
			s.logger.Warn(r.Context(), "spooled upload not removed", "path", spooled, "error", err)
		}
	}()

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			s.writeError(w, r, fmt.Errorf("%w: bad multipart body: %v", common.ErrInvalidArgument, err))
			return
		}

		switch part.FormName() {
		case filenameParam:
			if filename == "" {
				b, err := io.ReadAll(io.LimitReader(part, maxJSONBody))
				if err != nil {
					_ = part.Close()
					s.writeError(w, r, fmt.Errorf("%w: bad multipart body: %v", common.ErrInvalidArgument, err))
					return
				}
				filename = string(b)
			}
		case fileField:
			if spooled != "" {
				_ = part.Close()
				s.writeError(w, r, fmt.Errorf("%w: more than one %q part", common.ErrInvalidArgument, fileField))
				return
			}
			if filename != "" {
				err := s.store(r, credential, filename, part)
				_ = part.Close()
				s.finishUpload(w, r, err)
				return
			}
			if spooled, err = s.spoolPart(part); err != nil {
				_ = part.Close()
				s.writeError(w, r, err)
				return
			}
		}
		_ = part.Close()
	}

	if spooled == "" {
		s.writeError(w, r, fmt.Errorf("%w: missing %q part", common.ErrInvalidArgument, fileField))
		return
	}

	f, err := s.spool.Open(spooled)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: reopen spooled upload: %v", common.ErrIOFailure, err))
		return
	}
	defer f.Close()

	s.finishUpload(w, r, s.store(r, credential, filename, f))
}

func (s *Server) store(r *http.Request, credential, filename string, body io.Reader) error {
	_, err := s.storage.Upload(r.Context(), credential, filename, body)
	return err
}

func (s *Server) finishUpload(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// spoolPart copies part into a new temporary file and returns its path.
func (s *Server) spoolPart(part io.Reader) (string, error) {
	p := filepath.Join(s.spoolDir, "cloudstore-upload-"+uuid.NewString())
	if _, err := filex.WriteLimited(s.spool, p, part, s.maxUpload); err != nil {
		if errors.Is(err, filex.ErrTooLarge) {
			return "", fmt.Errorf("%w: limit is %d bytes", common.ErrSizeExceeded, s.maxUpload)
		}
		return "", fmt.Errorf("%w: spool upload: %v", common.ErrIOFailure, err)
	}
	return p, nil
}

func (s *Server) download(w http.ResponseWriter, r *http.Request) {
	filename := r.URL.Query().Get(filenameParam)

	rec, body, err := s.storage.Download(r.Context(), auth.CredentialFromHeader(r.Header), filename)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": path.Base(rec.Filename)}))
	w.Header().Set("Content-Length", strconv.FormatInt(rec.Size, 10))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, body); err != nil {
		// Headers are gone; the client sees a short body.
		s.logger.Error(r.Context(), "download interrupted", "filename", rec.Filename, "error", err)
	}
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	filename := r.URL.Query().Get(filenameParam)

	if err := s.storage.Delete(r.Context(), auth.CredentialFromHeader(r.Header), filename); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) rename(w http.ResponseWriter, r *http.Request) {
	filename := r.URL.Query().Get(filenameParam)

	var req renameRequest
	if err := s.decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if _, err := s.storage.Rename(r.Context(), auth.CredentialFromHeader(r.Header), filename, req.Filename); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
