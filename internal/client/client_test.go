package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brandcatalog/internal/app"
	"brandcatalog/internal/bootstrap"
	"brandcatalog/internal/config"
	"brandcatalog/internal/logging"
	httptransport "brandcatalog/internal/transport/http"
)

func newAPI(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := config.Default()
	cfg.App.GinMode = gin.TestMode
	cfg.App.WebDir = t.TempDir()
	cfg.Auth.JWTSecret = "client-test-secret"
	cfg.Storage.Driver = bootstrap.DriverMemory
	cfg.RateLimit.Enabled = false

	a, err := bootstrap.New(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	srv := httptest.NewServer(httptransport.NewRouter(a))
	t.Cleanup(func() {
		srv.Close()
		_ = a.Close()
	})
	return srv
}

func newClient(t *testing.T, baseURL string) (*Client, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	c, err := New(baseURL, NewFileStore(path))
	require.NoError(t, err)
	return c, path
}

func TestClient_PrivateCallsNeedSession(t *testing.T) {
	srv := newAPI(t)
	c, _ := newClient(t, srv.URL)

	assert.False(t, c.IsAuthenticated())
	_, err := c.ListBrands(context.Background(), ListParams{})
	assert.ErrorIs(t, err, ErrLoginRequired)
	assert.ErrorIs(t, c.DeleteBrand(context.Background(), 1), ErrLoginRequired)
}

func TestClient_LoginPersistsAndRestores(t *testing.T) {
	srv := newAPI(t)
	ctx := context.Background()
	c, path := newClient(t, srv.URL)

	user, err := c.Login(ctx, app.SeedUsername, app.SeedPassword)
	require.NoError(t, err)
	assert.Equal(t, app.SeedUsername, user.Username)
	assert.True(t, c.IsAuthenticated())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	restored, err := New(srv.URL, NewFileStore(path))
	require.NoError(t, err)
	assert.True(t, restored.IsAuthenticated())
	assert.Equal(t, c.Session().Token, restored.Session().Token)

	me, err := restored.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, app.SeedEmail, me.Email)

	require.NoError(t, restored.Logout())
	assert.False(t, restored.IsAuthenticated())
	_, err = os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestClient_LoginFailureKeepsNoSession(t *testing.T) {
	srv := newAPI(t)
	c, _ := newClient(t, srv.URL)

	_, err := c.Login(context.Background(), "admin", "wrong-password")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.NotEmpty(t, apiErr.Message)
	assert.False(t, c.IsAuthenticated())
}

func TestClient_BrandLifecycle(t *testing.T) {
	srv := newAPI(t)
	ctx := context.Background()
	c, _ := newClient(t, srv.URL)
	_, err := c.Login(ctx, app.SeedUsername, app.SeedPassword)
	require.NoError(t, err)

	year := 1958
	created, err := c.CreateBrand(ctx, app.BrandInput{Name: "Lego", FoundedYear: &year})
	require.NoError(t, err)
	assert.Equal(t, "Lego", created.Name)

	page, err := c.ListBrands(ctx, ListParams{Page: 1, Limit: 2, Search: "lego"})
	require.NoError(t, err)
	require.Len(t, page.Brands, 1)
	assert.Equal(t, created.ID, page.Brands[0].ID)

	updated, err := c.UpdateBrand(ctx, created.ID, app.BrandInput{Name: "LEGO Group"})
	require.NoError(t, err)
	assert.Equal(t, "LEGO Group", updated.Name)
	assert.Nil(t, updated.FoundedYear)

	got, err := c.GetBrand(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "LEGO Group", got.Name)

	require.NoError(t, c.DeleteBrand(ctx, created.ID))
	_, err = c.GetBrand(ctx, created.ID)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestClient_ValidationDetails(t *testing.T) {
	srv := newAPI(t)
	ctx := context.Background()
	c, _ := newClient(t, srv.URL)
	_, err := c.Login(ctx, app.SeedUsername, app.SeedPassword)
	require.NoError(t, err)

	_, err = c.CreateBrand(ctx, app.BrandInput{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.Len(t, apiErr.Details, 1)
	assert.Equal(t, "name", apiErr.Details[0].Field)
	assert.Contains(t, apiErr.Error(), "name is required")
}

func TestClient_Register(t *testing.T) {
	srv := newAPI(t)
	c, _ := newClient(t, srv.URL)

	user, err := c.Register(context.Background(), "carol", "carol@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "carol", user.Username)
	assert.True(t, c.IsAuthenticated())
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

	_, err := NewFileStore(path).Load()
	assert.Error(t, err)
}
