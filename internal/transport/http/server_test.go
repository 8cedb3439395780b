package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brandcatalog/internal/app"
	"brandcatalog/internal/bootstrap"
	"brandcatalog/internal/config"
	"brandcatalog/internal/logging"
	"brandcatalog/internal/pkg/jwtutil"
	httptransport "brandcatalog/internal/transport/http"
)

type testServer struct {
	t      *testing.T
	router *gin.Engine
	app    *bootstrap.App
}

func newTestServer(t *testing.T, mutate func(cfg *config.Config)) *testServer {
	t.Helper()
	cfg := config.Default()
	cfg.App.GinMode = gin.TestMode
	cfg.App.WebDir = t.TempDir()
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Storage.Driver = bootstrap.DriverMemory
	cfg.Storage.Seed = true
	cfg.RateLimit.Enabled = false
	if mutate != nil {
		mutate(cfg)
	}

	a, err := bootstrap.New(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return &testServer{t: t, router: httptransport.NewRouter(a), app: a}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login() string {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": app.SeedUsername,
		"password": app.SeedPassword,
	})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		Token string `json:"token"`
	}
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type errorBody struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Details []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"details"`
}

type brandJSON struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	LogoURL     *string `json:"logo_url"`
	Website     *string `json:"website"`
	FoundedYear *int    `json:"founded_year"`
	Country     *string `json:"country"`
	Industry    *string `json:"industry"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

type pageJSON struct {
	Brands     []brandJSON `json:"brands"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	TotalPages int         `json:"totalPages"`
	HasNext    bool        `json:"hasNext"`
	HasPrev    bool        `json:"hasPrev"`
}

func TestLogin_SeededAdmin(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "admin", "password": "admin123"})
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["token"])
	assert.NotEmpty(t, body["message"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "admin", user["username"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "PasswordHash")
}

func TestLogin_ByEmail(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "admin@example.com", "password": "admin123"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogin_FailuresLookTheSame(t *testing.T) {
	s := newTestServer(t, nil)

	wrong := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "admin", "password": "nope-nope"})
	unknown := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "ghost", "password": "admin123"})

	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, wrong.Body.String(), unknown.Body.String())
}

func TestLogin_MissingFields(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "admin"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[errorBody](t, rec)
	require.Len(t, body.Details, 1)
	assert.Equal(t, "password", body.Details[0].Field)
}

func TestRegister(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var body struct {
		Token string `json:"token"`
		User  struct {
			ID       uint   `json:"id"`
			Username string `json:"username"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "alice", body.User.Username)

	me := s.do(http.MethodGet, "/api/auth/me", body.Token, nil)
	require.Equal(t, http.StatusOK, me.Code)
	assert.Contains(t, me.Body.String(), `"username":"alice"`)
}

func TestRegister_ExistingUsernameConflicts(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "admin",
		"email":    "fresh@example.com",
		"password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// The seeded password still works, so the stored row is unchanged.
	s.login()
}

func TestRegister_ShortPassword(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "bob",
		"email":    "bob@example.com",
		"password": "12345",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[errorBody](t, rec)
	require.Len(t, body.Details, 1)
	assert.Equal(t, "password", body.Details[0].Field)

	login := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "bob", "password": "12345"})
	assert.Equal(t, http.StatusUnauthorized, login.Code)
}

func TestRegister_PasswordByteLimit(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "longpw",
		"email":    "longpw@example.com",
		"password": strings.Repeat("p", 80),
	})
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	body := decode[errorBody](t, rec)
	require.Len(t, body.Details, 1)
	assert.Equal(t, "password", body.Details[0].Field)
	assert.Equal(t, "must be at most 72 bytes", body.Details[0].Message)

	// Multi-byte characters count by their encoded size.
	rec = s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "longpw",
		"email":    "longpw@example.com",
		"password": strings.Repeat("é", 37),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "longpw",
		"email":    "longpw@example.com",
		"password": strings.Repeat("p", 72),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	login := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": app.SeedUsername,
		"password": strings.Repeat("p", 80),
	})
	assert.Equal(t, http.StatusUnauthorized, login.Code, login.Body.String())
}

func TestRegister_MalformedJSON(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthGate(t *testing.T) {
	s := newTestServer(t, nil)
	identity := jwtutil.Identity{UserID: 1, Username: "admin", Email: "admin@example.com"}
	expired, err := s.app.Tokens.WithClock(func() time.Time { return time.Now().Add(-48 * time.Hour) }).Issue(identity)
	require.NoError(t, err)
	foreign, err := jwtutil.NewService("other-secret").Issue(identity)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic YWRtaW46YWRtaW4xMjM=", http.StatusUnauthorized},
		{"empty bearer", "Bearer ", http.StatusUnauthorized},
		{"malformed token", "Bearer not.a.jwt", http.StatusForbidden},
		{"expired token", "Bearer " + expired, http.StatusForbidden},
		{"foreign signature", "Bearer " + foreign, http.StatusForbidden},
		{"valid token", "Bearer " + s.login(), http.StatusOK},
		{"lowercase scheme", "bearer " + s.login(), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/brands", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			s.router.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.status != http.StatusOK {
				assert.NotEmpty(t, decode[errorBody](t, rec).Error)
			}
		})
	}
}

func TestRequiredRole(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) { cfg.Auth.RequiredRole = "admin" })
	token := s.login()

	rec := s.do(http.MethodGet, "/api/brands", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	withRole, err := s.app.Tokens.Issue(jwtutil.Identity{UserID: 1, Username: "admin", Role: "admin"})
	require.NoError(t, err)
	rec = s.do(http.MethodGet, "/api/brands", withRole, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBrands_CRUD(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.login()

	created := s.do(http.MethodPost, "/api/brands", token, map[string]any{
		"name":         "Adidas",
		"website":      "https://www.adidas.com",
		"founded_year": 1949,
		"country":      "",
	})
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	brand := decode[brandJSON](t, created)
	assert.Equal(t, "Adidas", brand.Name)
	assert.Nil(t, brand.Description)
	assert.Nil(t, brand.Country)
	require.NotNil(t, brand.FoundedYear)
	assert.Equal(t, 1949, *brand.FoundedYear)

	got := s.do(http.MethodGet, fmt.Sprintf("/api/brands/%d", brand.ID), token, nil)
	require.Equal(t, http.StatusOK, got.Code)
	assert.Equal(t, brand, decode[brandJSON](t, got))

	updated := s.do(http.MethodPut, fmt.Sprintf("/api/brands/%d", brand.ID), token, map[string]any{
		"name":     "adidas AG",
		"industry": "Sports",
	})
	require.Equal(t, http.StatusOK, updated.Code, updated.Body.String())
	after := decode[brandJSON](t, updated)
	assert.Equal(t, "adidas AG", after.Name)
	assert.Nil(t, after.Website, "update replaces every field")
	assert.Nil(t, after.FoundedYear)
	assert.Equal(t, brand.CreatedAt, after.CreatedAt)

	history := s.do(http.MethodGet, fmt.Sprintf("/api/brands/%d/events", brand.ID), token, nil)
	require.Equal(t, http.StatusOK, history.Code)
	events := decode[struct {
		Events []struct {
			Action        string `json:"action"`
			ActorUsername string `json:"actor_username"`
		} `json:"events"`
	}](t, history)
	require.Len(t, events.Events, 2)
	assert.Equal(t, "updated", events.Events[0].Action)
	assert.Equal(t, "admin", events.Events[0].ActorUsername)

	deleted := s.do(http.MethodDelete, fmt.Sprintf("/api/brands/%d", brand.ID), token, nil)
	require.Equal(t, http.StatusOK, deleted.Code)
	assert.Contains(t, deleted.Body.String(), "message")

	gone := s.do(http.MethodGet, fmt.Sprintf("/api/brands/%d", brand.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, gone.Code)
}

func TestBrands_MissingIDs(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.login()
	before := decode[pageJSON](t, s.do(http.MethodGet, "/api/brands", token, nil))

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/brands/9999", token, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/brands/abc", token, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPut, "/api/brands/9999", token, map[string]any{"name": "X"}).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPut, "/api/brands/9999", token, map[string]any{}).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/api/brands/9999", token, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/api/brands/-1", token, nil).Code)

	after := decode[pageJSON](t, s.do(http.MethodGet, "/api/brands", token, nil))
	assert.Equal(t, before, after)
}

func TestBrands_ValidationRejectsAndStoresNothing(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.login()

	rec := s.do(http.MethodPost, "/api/brands", token, map[string]any{
		"name":         "Old Co",
		"founded_year": 1700,
		"logo_url":     "not-a-url",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[errorBody](t, rec)
	fields := []string{}
	for _, d := range body.Details {
		fields = append(fields, d.Field)
	}
	assert.ElementsMatch(t, []string{"founded_year", "logo_url"}, fields)

	future := s.do(http.MethodPost, "/api/brands", token, map[string]any{"name": "Future Co", "founded_year": time.Now().Year() + 1})
	assert.Equal(t, http.StatusBadRequest, future.Code)

	page := decode[pageJSON](t, s.do(http.MethodGet, "/api/brands", token, nil))
	assert.EqualValues(t, 3, page.Total)
}

func TestBrands_ListPaging(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.login()

	for i := 0; i < 9; i++ {
		rec := s.do(http.MethodPost, "/api/brands", token, map[string]any{"name": fmt.Sprintf("Brand %d", i)})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	first := decode[pageJSON](t, s.do(http.MethodGet, "/api/brands?page=abc&limit=0", token, nil))
	assert.Equal(t, 1, first.Page)
	assert.Len(t, first.Brands, 10)
	assert.EqualValues(t, 12, first.Total)
	assert.Equal(t, 2, first.TotalPages)
	assert.True(t, first.HasNext)
	assert.False(t, first.HasPrev)
	assert.Equal(t, "Brand 8", first.Brands[0].Name)

	all := decode[pageJSON](t, s.do(http.MethodGet, "/api/brands?limit=12", token, nil))
	assert.Len(t, all.Brands, 12)
	assert.False(t, all.HasNext)

	beyond := decode[pageJSON](t, s.do(http.MethodGet, "/api/brands?page=5&limit=5", token, nil))
	assert.Empty(t, beyond.Brands)
	assert.NotNil(t, beyond.Brands)
	assert.False(t, beyond.HasNext)
	assert.True(t, beyond.HasPrev)

	search := decode[pageJSON](t, s.do(http.MethodGet, "/api/brands?search=soft%20drinks", token, nil))
	require.Len(t, search.Brands, 1)
	assert.Equal(t, "Coca-Cola", search.Brands[0].Name)
	assert.EqualValues(t, 1, search.Total)
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) {
		cfg.RateLimit.Enabled = true
		cfg.RateLimit.MaxRequests = 2
	})

	for i := 0; i < 2; i++ {
		rec := s.do(http.MethodGet, "/api", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := s.do(http.MethodGet, "/api", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, decode[errorBody](t, rec).Error)
}

func TestRootAndFallbacks(t *testing.T) {
	s := newTestServer(t, nil)

	info := s.do(http.MethodGet, "/api", "", nil)
	require.Equal(t, http.StatusOK, info.Code)
	assert.Contains(t, info.Body.String(), httptransport.APIVersion)
	assert.NotEmpty(t, info.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", info.Header().Get("X-Content-Type-Options"))

	missing := s.do(http.MethodGet, "/api/nothing-here", "", nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.Equal(t, "route not found", decode[errorBody](t, missing).Error)

	health := s.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, health.Code)
	assert.Contains(t, health.Body.String(), `"status":"ok"`)
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) { cfg.App.FrontendURL = "http://localhost:3000" })

	req := httptest.NewRequest(http.MethodOptions, "/api/brands", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestAPIDocs_CoverRegisteredRoutes(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(http.MethodGet, "/api-docs", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	rec = s.do(http.MethodGet, "/api-docs/openapi.json", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	doc := decode[struct {
		Info struct {
			Version string `json:"version"`
		} `json:"info"`
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}](t, rec)
	assert.Equal(t, httptransport.APIVersion, doc.Info.Version)

	for _, route := range s.router.Routes() {
		if !strings.HasPrefix(route.Path, "/api/") && route.Path != "/api" && route.Path != "/healthz" {
			continue
		}
		path := strings.ReplaceAll(route.Path, ":id", "{id}")
		require.Contains(t, doc.Paths, path, "route %s %s", route.Method, route.Path)
		assert.Contains(t, doc.Paths[path], strings.ToLower(route.Method), "route %s %s", route.Method, route.Path)
	}
}
