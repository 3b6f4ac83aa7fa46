package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pilotify/pilotify-api/internal/config"
	"github.com/pilotify/pilotify-api/internal/models"
	"github.com/pilotify/pilotify-api/internal/realtime"
	"github.com/pilotify/pilotify-api/internal/testutil"
	"github.com/pilotify/pilotify-api/internal/utils"
)

func newTestApp(t *testing.T) (*config.Config, *Deps) {
	cfg := config.Default()
	cfg.JWT.Secret = "server-test"
	return cfg, &Deps{Config: cfg, DB: testutil.OpenDB(t), Hub: realtime.NewHub(nil)}
}

func TestHealthz(t *testing.T) {
	_, d := newTestApp(t)
	resp, err := New(*d).Test(httptest.NewRequest(http.MethodGet, "/healthz", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestActivityStreamRequiresSessionAndUpgrade(t *testing.T) {
	cfg, d := newTestApp(t)
	app := New(*d)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ws/activities", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	u := testutil.User(t, d.DB, models.RoleInnovator, "Ivy Innovator")
	tok, err := utils.SignJWT(cfg.JWT.Secret, u.ID.String(), string(u.Role), 5)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/ws/activities", nil)
	req.AddCookie(&http.Cookie{Name: cfg.JWT.CookieName, Value: tok})
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	_, d := newTestApp(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/offers", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := New(*d).Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
}
