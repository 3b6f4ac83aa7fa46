package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pilotify/pilotify-api/internal/models"
	"github.com/pilotify/pilotify-api/internal/policy"
	"github.com/pilotify/pilotify-api/internal/utils"
)

const (
	secret = "test-secret"
	cookie = "pilotify_session"
)

type thing struct{ owner uuid.UUID }

func newApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zap.NewNop())})
	app.Use(RequestLogger(zap.NewNop()))

	strict := app.Group("/strict", JWTFromCookie(secret, cookie), AttachIdentity())
	strict.Get("/me", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"id": ActorFrom(c).ID, "role": c.Locals("role")})
	})

	soft := app.Group("/soft", TryJWTFromCookie(secret, cookie), AttachIdentity())
	soft.Get("/categories", Authorize(policy.Category, policy.List, nil), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"anonymous": ActorFrom(c) == nil})
	})

	owner := uuid.MustParse("11111111-1111-4111-8111-111111111111")
	load := func(c *fiber.Ctx) (any, *policy.Target, error) {
		switch c.Params("id") {
		case "present":
			return &thing{owner: owner}, &policy.Target{OwnerID: owner}, nil
		case "bad":
			return nil, nil, policy.BadRequest("invalid id")
		case "boom":
			return nil, nil, errors.New("db down")
		}
		return nil, nil, nil
	}
	soft.Delete("/offers/:id", Authorize(policy.Offer, policy.Delete, load), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"owner": Loaded[thing](c).owner})
	})
	soft.Get("/admin", RequireRoles(models.RoleAdmin), func(c *fiber.Ctx) error { return c.SendString("ok") })
	soft.Post("/invalid", func(c *fiber.Ctx) error {
		return policy.Invalid(map[string][]string{"title": {"Title is required"}})
	})
	return app
}

func token(t *testing.T, id uuid.UUID, role models.Role) string {
	t.Helper()
	tok, err := utils.SignJWT(secret, id.String(), string(role), 60)
	require.NoError(t, err)
	return tok
}

func do(t *testing.T, app *fiber.App, method, path, tok string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if tok != "" {
		req.AddCookie(&http.Cookie{Name: cookie, Value: tok})
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	var body map[string]any
	_ = json.Unmarshal(raw, &body)
	return resp.StatusCode, body
}

func TestJWTFromCookie(t *testing.T) {
	app := newApp()
	id := uuid.New()

	status, _ := do(t, app, http.MethodGet, "/strict/me", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = do(t, app, http.MethodGet, "/strict/me", "garbage")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := do(t, app, http.MethodGet, "/strict/me", token(t, id, "innovator"))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, id.String(), body["id"])
	assert.Equal(t, "INNOVATOR", body["role"])
}

func TestBearerFallback(t *testing.T) {
	app := newApp()
	req := httptest.NewRequest(http.MethodGet, "/strict/me", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, uuid.New(), models.RoleAdmin))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUnknownRoleRejected(t *testing.T) {
	status, _ := do(t, newApp(), http.MethodGet, "/strict/me", token(t, uuid.New(), "superuser"))
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAuthorizePublic(t *testing.T) {
	status, body := do(t, newApp(), http.MethodGet, "/soft/categories", "garbage")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["anonymous"])
}

func TestAuthorizeItem(t *testing.T) {
	app := newApp()
	owner := uuid.MustParse("11111111-1111-4111-8111-111111111111")
	ownerTok := token(t, owner, models.RoleInnovator)
	otherTok := token(t, uuid.New(), models.RoleInnovator)

	tests := []struct {
		name   string
		path   string
		tok    string
		status int
	}{
		{"anonymous", "/soft/offers/present", "", http.StatusUnauthorized},
		{"anonymous before not found", "/soft/offers/missing", "", http.StatusUnauthorized},
		{"malformed id", "/soft/offers/bad", otherTok, http.StatusBadRequest},
		{"not found before forbidden", "/soft/offers/missing", otherTok, http.StatusNotFound},
		{"non-owner", "/soft/offers/present", otherTok, http.StatusForbidden},
		{"owner", "/soft/offers/present", ownerTok, http.StatusOK},
		{"admin", "/soft/offers/present", token(t, uuid.New(), models.RoleAdmin), http.StatusOK},
		{"loader failure", "/soft/offers/boom", ownerTok, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(t, app, http.MethodDelete, tt.path, tt.tok)
			assert.Equal(t, tt.status, status)
			if status != http.StatusOK {
				assert.Equal(t, false, body["success"])
				assert.NotEmpty(t, body["message"])
			}
		})
	}

	_, body := do(t, app, http.MethodDelete, "/soft/offers/boom", ownerTok)
	assert.Equal(t, "Internal server error", body["message"])
}

func TestRequireRoles(t *testing.T) {
	app := newApp()
	status, _ := do(t, app, http.MethodGet, "/soft/admin", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	status, body := do(t, app, http.MethodGet, "/soft/admin", token(t, uuid.New(), models.RoleCorporate))
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "forbidden: insufficient role", body["message"])
	status, _ = do(t, app, http.MethodGet, "/soft/admin", token(t, uuid.New(), models.RoleAdmin))
	assert.Equal(t, http.StatusOK, status)
}

func TestInvalidRendersFieldErrors(t *testing.T) {
	status, body := do(t, newApp(), http.MethodPost, "/soft/invalid", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Validation error", body["message"])
	assert.Equal(t, map[string]any{"title": []any{"Title is required"}}, body["errors"])
}
