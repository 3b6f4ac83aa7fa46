package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/pilotify/pilotify-api/internal/db"
	"github.com/pilotify/pilotify-api/internal/models"
	"github.com/pilotify/pilotify-api/internal/policy"
	"github.com/pilotify/pilotify-api/internal/utils"
)

type AuthHandler struct {
	DB           *gorm.DB
	JWTSecret    string
	Expires      int
	CookieName   string
	CookieSecure bool
}

func (h *AuthHandler) Routes(r fiber.Router) {
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)
	r.Post("/auth/logout", h.Logout)
	r.Get("/auth/me", h.Me)
}

func (h *AuthHandler) setSession(c *fiber.Ctx, u *models.User) error {
	token, err := utils.SignJWT(h.JWTSecret, u.ID.String(), string(u.Role), h.Expires)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     h.CookieName,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   h.CookieSecure,
		SameSite: "Lax",
		MaxAge:   h.Expires * 60,
	})
	return nil
}

func (h *AuthHandler) clearSession(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     h.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   h.CookieSecure,
		SameSite: "Lax",
	})
}

type RegisterReq struct {
	Name        string `json:"name" validate:"required,max=191"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	Role        string `json:"role" validate:"required,oneof=CORPORATE INNOVATOR"`
	CompanyName string `json:"company_name"`
	ContactInfo string `json:"contact_info"`
}

// Register is open to corporates and innovators. Admins are created by
// other admins only.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterReq
	if err := c.BodyParser(&req); err != nil {
		return policy.BadRequest("invalid body")
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Role = strings.ToUpper(strings.TrimSpace(req.Role))
	if err := validate.Struct(&req); err != nil {
		return bindErr(err)
	}

	pw, err := utils.HashPassword(req.Password)
	if err != nil {
		return err
	}
	u := models.User{
		Name:        req.Name,
		Email:       req.Email,
		Password:    pw,
		Role:        models.Role(req.Role),
		CompanyName: strings.TrimSpace(req.CompanyName),
		ContactInfo: strings.TrimSpace(req.ContactInfo),
	}
	if err := h.DB.WithContext(c.UserContext()).Create(&u).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return policy.Invalid(FieldErrors{"email": {"email is already registered"}})
		}
		return err
	}

	if err := h.setSession(c, &u); err != nil {
		return err
	}
	return created(c, "Register successful", fiber.Map{"user": u})
}

type LoginReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginReq
	if err := bind(c, &req); err != nil {
		return err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var u models.User
	if err := h.DB.WithContext(c.UserContext()).Where("email = ?", email).First(&u).Error; err != nil {
		if db.IsNotFound(err) {
			return policy.Unauthorized("invalid email or password")
		}
		return err
	}
	if !utils.CheckPassword(u.Password, req.Password) {
		return policy.Unauthorized("invalid email or password")
	}

	if err := h.setSession(c, &u); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Login successful",
		"data":    fiber.Map{"user": u},
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.clearSession(c)
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logout successful",
	})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	a := actor(c)
	if a == nil {
		return policy.Unauthorized("authentication required")
	}
	u, err := first[models.User](c.UserContext(), h.DB, a.ID)
	if err != nil {
		return err
	}
	if u == nil {
		return policy.Unauthorized("user no longer exists")
	}
	return ok(c, u)
}
