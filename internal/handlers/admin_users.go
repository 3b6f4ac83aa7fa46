package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/pilotify/pilotify-api/internal/middleware"
	"github.com/pilotify/pilotify-api/internal/models"
	"github.com/pilotify/pilotify-api/internal/policy"
	"github.com/pilotify/pilotify-api/internal/utils"
)

type AdminUserHandler struct {
	DB *gorm.DB
}

func NewAdminUserHandler(db *gorm.DB) *AdminUserHandler {
	return &AdminUserHandler{DB: db}
}

// Routes registers the /admin-only probe.
func (h *AdminUserHandler) Routes(r fiber.Router) {
	r.Get("/admin-only", middleware.Authorize(policy.AdminArea, policy.Read, nil), h.AdminOnly)
}

func (h *AdminUserHandler) AdminRoutes(r fiber.Router) {
	load := byID(h.DB, "id", userTarget)
	r.Get("/users", middleware.Authorize(policy.UserAdmin, policy.List, nil), h.List)
	r.Post("/users", middleware.Authorize(policy.UserAdmin, policy.Create, nil), h.Create)
	r.Get("/users/:id", middleware.Authorize(policy.UserAdmin, policy.Read, load), h.Get)
	r.Put("/users/:id", middleware.Authorize(policy.UserAdmin, policy.Update, load), h.Update)
	r.Delete("/users/:id", middleware.Authorize(policy.UserAdmin, policy.Delete, load), h.Delete)
}

func (h *AdminUserHandler) AdminOnly(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Welcome, admin",
	})
}

func (h *AdminUserHandler) List(c *fiber.Ctx) error {
	users := []models.User{}
	if err := h.DB.WithContext(c.UserContext()).Order("created_at DESC").Find(&users).Error; err != nil {
		return err
	}
	return ok(c, users)
}

type adminCreateUserReq struct {
	Email             string `json:"email" validate:"required,email"`
	Password          string `json:"password" validate:"required,min=6"`
	Name              string `json:"name" validate:"required,max=191"`
	Role              string `json:"role" validate:"required,oneof=ADMIN CORPORATE INNOVATOR"`
	CompanyName       string `json:"company_name"`
	ContactInfo       string `json:"contact_info"`
	ProfilePictureURL string `json:"profile_picture_url"`
	CompanyLogoURL    string `json:"company_logo_url"`
}

func (h *AdminUserHandler) Create(c *fiber.Ctx) error {
	var req adminCreateUserReq
	if err := bind(c, &req); err != nil {
		return err
	}
	pw, err := utils.HashPassword(req.Password)
	if err != nil {
		return err
	}
	u := models.User{
		Email:             strings.ToLower(strings.TrimSpace(req.Email)),
		Password:          pw,
		Name:              strings.TrimSpace(req.Name),
		Role:              models.Role(req.Role),
		CompanyName:       req.CompanyName,
		ContactInfo:       req.ContactInfo,
		ProfilePictureURL: req.ProfilePictureURL,
		CompanyLogoURL:    req.CompanyLogoURL,
	}
	if err := h.DB.WithContext(c.UserContext()).Create(&u).Error; err != nil {
		return conflictOr(err, "email is already registered", "create user")
	}
	return created(c, "User created", u)
}

func (h *AdminUserHandler) Get(c *fiber.Ctx) error {
	return ok(c, middleware.Loaded[models.User](c))
}

type adminUpdateUserReq struct {
	updateProfileReq
	Email    *string `json:"email" validate:"omitempty,email"`
	Role     *string `json:"role" validate:"omitempty,oneof=ADMIN CORPORATE INNOVATOR"`
	Password *string `json:"password" validate:"omitempty,min=6"`
}

func (h *AdminUserHandler) Update(c *fiber.Ctx) error {
	u := middleware.Loaded[models.User](c)
	var req adminUpdateUserReq
	if err := bind(c, &req); err != nil {
		return err
	}
	req.apply(u)
	if s, set := trimmed(req.Email); set && s != "" {
		u.Email = strings.ToLower(s)
	}
	if req.Role != nil {
		u.Role = models.Role(*req.Role)
	}
	if req.Password != nil {
		pw, err := utils.HashPassword(*req.Password)
		if err != nil {
			return err
		}
		u.Password = pw
	}
	if err := h.DB.WithContext(c.UserContext()).Save(u).Error; err != nil {
		return conflictOr(err, "email is already registered", "update user")
	}
	return ok(c, u)
}

// Delete removes the user; foreign keys cascade to everything they own.
func (h *AdminUserHandler) Delete(c *fiber.Ctx) error {
	u := middleware.Loaded[models.User](c)
	if err := h.DB.WithContext(c.UserContext()).Delete(u).Error; err != nil {
		return err
	}
	return deleted(c, "User deleted")
}
