package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/cloudstore/internal/common"
	"github.com/go-resty/resty/v2"
)

// FileInfo is one row of a listing.
type FileInfo struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

type errorBody struct {
	Message string `json:"message"`
	ID      int    `json:"id"`
}

type CloudClient struct {
	http *resty.Client

	mu    sync.RWMutex
	token string
}

func NewCloudClient(baseURL string, timeout time.Duration) *CloudClient {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout)
	return &CloudClient{http: c}
}

// LoggedIn reports whether a token is held.
func (c *CloudClient) LoggedIn() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != ""
}

func (c *CloudClient) setToken(t string) {
	c.mu.Lock()
	c.token = t
	c.mu.Unlock()
}

// authed starts a request carrying the held credential.
func (c *CloudClient) authed(ctx context.Context) (*resty.Request, error) {
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()

	if token == "" {
		return nil, ErrNotLoggedIn
	}
	return c.http.R().
		SetContext(ctx).
		SetHeader(common.CredentialHeaderNames[0], common.BearerPrefix+token).
		SetError(&errorBody{}), nil
}

// check turns a transport failure or a non-2xx answer into an error.
func check(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !resp.IsError() {
		return nil
	}

	apiErr := &APIError{Status: resp.StatusCode()}
	if body, ok := resp.Error().(*errorBody); ok && body != nil {
		apiErr.Message = body.Message
	}
	return apiErr
}

// Login exchanges login and password for an access token and keeps it.
func (c *CloudClient) Login(ctx context.Context, login, password string) error {
	var out struct {
		AuthToken string `json:"auth-token"`
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"login": login, "password": password}).
		SetResult(&out).
		SetError(&errorBody{}).
		Post("/login")
	if err := check(resp, err); err != nil {
		return err
	}
	if out.AuthToken == "" {
		return fmt.Errorf("%w: empty token in login answer", common.ErrorInternal)
	}

	c.setToken(out.AuthToken)
	return nil
}

// Logout tells the server and drops the token even when the call fails.
func (c *CloudClient) Logout(ctx context.Context) error {
	req, err := c.authed(ctx)
	if err != nil {
		return err
	}
	defer c.setToken("")

	return check(req.Post("/logout"))
}

// List returns up to limit files; limit <= 0 leaves the choice to the server.
func (c *CloudClient) List(ctx context.Context, limit int) ([]FileInfo, error) {
	req, err := c.authed(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(limit))
	}

	var out []FileInfo
	if err := check(req.SetResult(&out).Get("/list")); err != nil {
		return nil, err
	}
	return out, nil
}

// Upload sends r as the content of name.
func (c *CloudClient) Upload(ctx context.Context, name string, r io.Reader) error {
	req, err := c.authed(ctx)
	if err != nil {
		return err
	}

	return check(req.
		SetQueryParam("filename", name).
		SetFileReader("file", path.Base(name), r).
		Post("/file"))
}

// Download streams the content of name into w.
func (c *CloudClient) Download(ctx context.Context, name string, w io.Writer) error {
	req, err := c.authed(ctx)
	if err != nil {
		return err
	}

	resp, err := req.
		SetQueryParam("filename", name).
		SetDoNotParseResponse(true).
		Get("/file")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.IsError() {
		apiErr := &APIError{Status: resp.StatusCode()}
		var eb errorBody
		if json.NewDecoder(io.LimitReader(body, 1<<16)).Decode(&eb) == nil {
			apiErr.Message = eb.Message
		}
		return apiErr
	}

	if _, err := io.Copy(w, body); err != nil {
		return fmt.Errorf("read download: %w", err)
	}
	return nil
}

func (c *CloudClient) Delete(ctx context.Context, name string) error {
	req, err := c.authed(ctx)
	if err != nil {
		return err
	}
	return check(req.SetQueryParam("filename", name).Delete("/file"))
}

func (c *CloudClient) Rename(ctx context.Context, oldName, newName string) error {
	req, err := c.authed(ctx)
	if err != nil {
		return err
	}
	return check(req.
		SetQueryParam("filename", oldName).
		SetBody(map[string]string{"filename": newName}).
		Put("/file"))
}
