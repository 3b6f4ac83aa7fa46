package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/pilotify/pilotify-api/internal/config"
	"github.com/pilotify/pilotify-api/internal/db"
	"github.com/pilotify/pilotify-api/internal/models"
	"github.com/pilotify/pilotify-api/internal/utils"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleOAuthHandler signs users in with Google. New accounts are created
// as CORPORATE; existing accounts keep their role.
type GoogleOAuthHandler struct {
	Auth            *AuthHandler
	Google          config.GoogleConfig
	FrontendBaseURL string
	// Endpoint defaults to google.Endpoint; UserInfoURL to Google's v2 API.
	Endpoint    oauth2.Endpoint
	UserInfoURL string
}

func (h *GoogleOAuthHandler) Routes(r fiber.Router) {
	r.Get("/auth/google/start", h.GoogleStart)
	r.Get("/auth/google/callback", h.GoogleCallback)
}

func (h *GoogleOAuthHandler) oauthCfg() *oauth2.Config {
	ep := h.Endpoint
	if ep.AuthURL == "" {
		ep = google.Endpoint
	}
	return &oauth2.Config{
		ClientID:     h.Google.ClientID,
		ClientSecret: h.Google.ClientSecret,
		RedirectURL:  h.Google.RedirectURL,
		Endpoint:     ep,
		Scopes:       []string{"openid", "email", "profile"},
	}
}

func randomState(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

func (h *GoogleOAuthHandler) tempCookie(c *fiber.Ctx, name, value string, maxAge int) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HTTPOnly: true,
		Secure:   h.Auth.CookieSecure,
		SameSite: "Lax",
		MaxAge:   maxAge,
	})
}

func (h *GoogleOAuthHandler) GoogleStart(c *fiber.Ctx) error {
	if !h.Google.Enabled() {
		return fiber.NewError(fiber.StatusNotFound, "google sign-in is not configured")
	}
	next := c.Query("next", "/")
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		next = "/"
	}
	st := randomState(32)

	h.tempCookie(c, "oauth_state", st, 10*60)
	h.tempCookie(c, "oauth_next", next, 10*60)

	return c.Redirect(h.oauthCfg().AuthCodeURL(st, oauth2.AccessTypeOnline), http.StatusTemporaryRedirect)
}

type googleUserInfo struct {
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func (h *GoogleOAuthHandler) fail(c *fiber.Ctx, msg string) error {
	return c.Redirect(h.FrontendBaseURL+"/auth/login?err="+url.QueryEscape(msg), http.StatusTemporaryRedirect)
}

func (h *GoogleOAuthHandler) GoogleCallback(c *fiber.Ctx) error {
	if !h.Google.Enabled() {
		return fiber.NewError(fiber.StatusNotFound, "google sign-in is not configured")
	}
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing code/state")
	}
	if st := c.Cookies("oauth_state"); st == "" || st != state {
		return fiber.NewError(fiber.StatusBadRequest, "invalid state")
	}
	next := c.Cookies("oauth_next")
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		next = "/"
	}

	gu, err := h.fetchUser(c, code)
	if err != nil {
		zap.L().Warn("google sign-in failed", zap.Error(err))
		return h.fail(c, "Google sign-in failed")
	}

	email := strings.ToLower(strings.TrimSpace(gu.Email))
	if email == "" || !gu.VerifiedEmail {
		return h.fail(c, "Google account has no verified email")
	}

	gdb := h.Auth.DB.WithContext(c.UserContext())
	var u models.User
	err = gdb.Where("email = ?", email).First(&u).Error
	switch {
	case db.IsNotFound(err):
		// unusable password; the account can only sign in through Google
		hashed, herr := utils.HashPassword(randomState(24))
		if herr != nil {
			return herr
		}
		u = models.User{
			Name:              strings.TrimSpace(gu.Name),
			Email:             email,
			Password:          hashed,
			Role:              models.RoleCorporate,
			ProfilePictureURL: gu.Picture,
		}
		if u.Name == "" {
			u.Name = email
		}
		if err := gdb.Create(&u).Error; err != nil {
			return fmt.Errorf("create google user: %w", err)
		}
	case err != nil:
		return err
	}

	if err := h.Auth.setSession(c, &u); err != nil {
		return err
	}
	h.tempCookie(c, "oauth_state", "", -1)
	h.tempCookie(c, "oauth_next", "", -1)

	return c.Redirect(h.FrontendBaseURL+next, http.StatusTemporaryRedirect)
}

func (h *GoogleOAuthHandler) fetchUser(c *fiber.Ctx, code string) (*googleUserInfo, error) {
	cfg := h.oauthCfg()
	tok, err := cfg.Exchange(c.UserContext(), code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	infoURL := h.UserInfoURL
	if infoURL == "" {
		infoURL = googleUserInfoURL
	}
	resp, err := cfg.Client(c.UserContext(), tok).Get(infoURL)
	if err != nil {
		return nil, fmt.Errorf("userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo: status %d", resp.StatusCode)
	}

	var gu googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&gu); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	return &gu, nil
}
