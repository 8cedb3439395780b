// Package client talks to the brand catalog API on behalf of a signed-in
// user and keeps that user's session between runs.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"brandcatalog/internal/app"
	"brandcatalog/internal/model"
)

// ErrLoginRequired is returned by private operations when no session is held.
var ErrLoginRequired = errors.New("login required")

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
	Details []app.FieldError
}

func (e *APIError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
	}
	parts := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		parts = append(parts, d.Field+" "+d.Message)
	}
	return fmt.Sprintf("%s (HTTP %d): %s", e.Message, e.Status, strings.Join(parts, "; "))
}

type SessionStore interface {
	Load() (Session, error)
	Save(s Session) error
	Clear() error
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	store      SessionStore
	session    Session
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New restores any stored session, the way the browser reads localStorage
// on page load.
func New(baseURL string, store SessionStore, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		store:      store,
	}
	for _, opt := range opts {
		opt(c)
	}
	session, err := store.Load()
	if err != nil {
		return nil, err
	}
	c.session = session
	return c, nil
}

func (c *Client) Session() Session {
	return c.session
}

func (c *Client) IsAuthenticated() bool {
	return c.session.IsAuthenticated()
}

// RequireSession is the private-route gate.
func (c *Client) RequireSession() error {
	if !c.session.IsAuthenticated() {
		return ErrLoginRequired
	}
	return nil
}

type authResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    *model.User `json:"user"`
}

// Login exchanges credentials for a token and stores the new session. A
// failed login leaves the previous session untouched.
func (c *Client) Login(ctx context.Context, username, password string) (*model.User, error) {
	var resp authResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", false, app.LoginInput{Username: username, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	return c.adopt(resp)
}

func (c *Client) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	var resp authResponse
	input := app.RegisterInput{Username: username, Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", false, input, &resp); err != nil {
		return nil, err
	}
	return c.adopt(resp)
}

func (c *Client) adopt(resp authResponse) (*model.User, error) {
	if resp.Token == "" || resp.User == nil {
		return nil, errors.New("server returned no session")
	}
	session := Session{Token: resp.Token, User: resp.User}
	if err := c.store.Save(session); err != nil {
		return nil, err
	}
	c.session = session
	return resp.User, nil
}

func (c *Client) Logout() error {
	c.session = Session{}
	return c.store.Clear()
}

// Me asks the server who the stored token belongs to.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", true, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

type ListParams struct {
	Page   int
	Limit  int
	Search string
}

func (c *Client) ListBrands(ctx context.Context, p ListParams) (*app.BrandPage, error) {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	path := "/api/brands"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var page app.BrandPage
	if err := c.do(ctx, http.MethodGet, path, true, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetBrand(ctx context.Context, id uint) (*model.Brand, error) {
	var brand model.Brand
	if err := c.do(ctx, http.MethodGet, brandPath(id), true, nil, &brand); err != nil {
		return nil, err
	}
	return &brand, nil
}

func (c *Client) CreateBrand(ctx context.Context, input app.BrandInput) (*model.Brand, error) {
	var brand model.Brand
	if err := c.do(ctx, http.MethodPost, "/api/brands", true, input, &brand); err != nil {
		return nil, err
	}
	return &brand, nil
}

func (c *Client) UpdateBrand(ctx context.Context, id uint, input app.BrandInput) (*model.Brand, error) {
	var brand model.Brand
	if err := c.do(ctx, http.MethodPut, brandPath(id), true, input, &brand); err != nil {
		return nil, err
	}
	return &brand, nil
}

func (c *Client) DeleteBrand(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, brandPath(id), true, nil, nil)
}

func brandPath(id uint) string {
	return "/api/brands/" + strconv.FormatUint(uint64(id), 10)
}

func (c *Client) do(ctx context.Context, method, path string, private bool, in, out any) error {
	if private {
		if err := c.RequireSession(); err != nil {
			return err
		}
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request failed: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if private {
		req.Header.Set("Authorization", "Bearer "+c.session.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response failed: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	var body struct {
		Error   string           `json:"error"`
		Details []app.FieldError `json:"details"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		apiErr.Message = body.Error
		apiErr.Details = body.Details
	}
	return apiErr
}
