package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pilotify/pilotify-api/internal/config"
	"github.com/pilotify/pilotify-api/internal/models"
	"github.com/pilotify/pilotify-api/internal/server"
	"github.com/pilotify/pilotify-api/internal/testutil"
)

type googleProfile struct {
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// fakeGoogle issues the authorization code itself as the access token, so
// userinfo can answer with the profile registered for that code.
func fakeGoogle(t *testing.T, profiles map[string]googleProfile) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": r.PostForm.Get("code"),
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		p, ok := profiles[strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")]
		if !ok {
			http.Error(w, "unknown token", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(p)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newGoogleEnv(t *testing.T, profiles map[string]googleProfile) *env {
	t.Helper()
	g := fakeGoogle(t, profiles)
	return newEnvWith(t, server.Deps{}, func(c *config.Config) {
		c.Google = config.GoogleConfig{
			ClientID:     "client",
			ClientSecret: "secret",
			RedirectURL:  "http://localhost:8080/api/auth/google/callback",
			AuthURL:      g.URL + "/auth",
			TokenURL:     g.URL + "/token",
			UserInfoURL:  g.URL + "/userinfo",
		}
	})
}

func (e *env) callback(code, state string, cookies map[string]string) *http.Response {
	e.t.Helper()
	q := url.Values{"code": {code}, "state": {state}}
	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?"+q.Encode(), nil)
	for k, v := range cookies {
		req.AddCookie(&http.Cookie{Name: k, Value: v})
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)
	resp.Body.Close()
	return resp
}

func cookieValue(resp *http.Response, name string) (string, bool) {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}

func TestGoogleStart(t *testing.T) {
	e := newGoogleEnv(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/start?next=//evil.example", nil)
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)

	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(loc.Path, "/auth"))
	assert.Equal(t, "client", loc.Query().Get("client_id"))

	state, ok := cookieValue(resp, "oauth_state")
	require.True(t, ok)
	assert.Equal(t, state, loc.Query().Get("state"))
	next, _ := cookieValue(resp, "oauth_next")
	assert.Equal(t, "/", next)

	off := newEnv(t)
	assert.Equal(t, http.StatusNotFound, off.do(http.MethodGet, "/api/auth/google/start", nil, nil).Status)
}

func TestGoogleCallback(t *testing.T) {
	e := newGoogleEnv(t, map[string]googleProfile{
		"new":        {Email: "New.Person@Example.com", VerifiedEmail: true, Name: "New Person"},
		"existing":   {Email: "ivy.innovator@example.com", VerifiedEmail: true, Name: "Ivy"},
		"unverified": {Email: "sketchy@example.com", VerifiedEmail: false},
	})
	inno := testutil.User(t, e.db, models.RoleInnovator, "Ivy Innovator")
	front := e.cfg.App.FrontendBaseURL

	t.Run("state mismatch", func(t *testing.T) {
		resp := e.callback("new", "abc", map[string]string{"oauth_state": "xyz"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp = e.callback("new", "abc", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unverified email", func(t *testing.T) {
		resp := e.callback("unverified", "s1", map[string]string{"oauth_state": "s1"})
		require.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
		assert.True(t, strings.HasPrefix(resp.Header.Get("Location"), front+"/auth/login?err="))
		_, ok := cookieValue(resp, e.cfg.JWT.CookieName)
		assert.False(t, ok)

		var n int64
		require.NoError(t, e.db.Model(&models.User{}).Where("email = ?", "sketchy@example.com").Count(&n).Error)
		assert.Zero(t, n)
	})

	t.Run("unknown code", func(t *testing.T) {
		resp := e.callback("bogus", "s1", map[string]string{"oauth_state": "s1"})
		require.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
		assert.True(t, strings.HasPrefix(resp.Header.Get("Location"), front+"/auth/login?err="))
	})

	t.Run("new user is corporate", func(t *testing.T) {
		resp := e.callback("new", "s2", map[string]string{"oauth_state": "s2", "oauth_next": "/projects"})
		require.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
		assert.Equal(t, front+"/projects", resp.Header.Get("Location"))
		tok, ok := cookieValue(resp, e.cfg.JWT.CookieName)
		require.True(t, ok)
		assert.NotEmpty(t, tok)

		var u models.User
		require.NoError(t, e.db.First(&u, "email = ?", "new.person@example.com").Error)
		assert.Equal(t, models.RoleCorporate, u.Role)
		assert.Equal(t, "New Person", u.Name)
	})

	t.Run("existing user keeps role", func(t *testing.T) {
		resp := e.callback("existing", "s3", map[string]string{"oauth_state": "s3", "oauth_next": "//evil.example"})
		require.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
		assert.Equal(t, front+"/", resp.Header.Get("Location"))

		var u models.User
		require.NoError(t, e.db.First(&u, "id = ?", inno.ID).Error)
		assert.Equal(t, models.RoleInnovator, u.Role)

		var n int64
		require.NoError(t, e.db.Model(&models.User{}).Where("email = ?", inno.Email).Count(&n).Error)
		assert.EqualValues(t, 1, n)
	})

	t.Run("relative next", func(t *testing.T) {
		resp := e.callback("existing", "s4", map[string]string{"oauth_state": "s4", "oauth_next": "https://evil.example"})
		require.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
		assert.Equal(t, front+"/", resp.Header.Get("Location"))
	})
}
