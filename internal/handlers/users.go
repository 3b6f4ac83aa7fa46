package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/pilotify/pilotify-api/internal/middleware"
	"github.com/pilotify/pilotify-api/internal/models"
	"github.com/pilotify/pilotify-api/internal/policy"
)

const searchLimit = 10

type UserHandler struct {
	DB *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{DB: db}
}

func userTarget(u *models.User) *policy.Target { return &policy.Target{OwnerID: u.ID} }

// Routes registers the fixed paths before /users/:id so they are not
// captured by the parameter.
func (h *UserHandler) Routes(r fiber.Router) {
	load := byID(h.DB, "id", userTarget)
	r.Get("/users/search", middleware.Authorize(policy.UserSearch, policy.List, nil), h.Search)
	r.Put("/users/update-last-viewed-activities", middleware.Authorize(policy.Activity, policy.Update, nil), h.UpdateLastViewedActivities)
	r.Get("/users/:id", middleware.Authorize(policy.User, policy.Read, load), h.Get)
	r.Put("/users/:id", middleware.Authorize(policy.User, policy.Update, load), h.Update)
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	return ok(c, middleware.Loaded[models.User](c))
}

type updateProfileReq struct {
	Name              *string `json:"name" validate:"omitempty,max=191"`
	CompanyName       *string `json:"company_name" validate:"omitempty,max=191"`
	ContactInfo       *string `json:"contact_info"`
	ProfilePictureURL *string `json:"profile_picture_url" validate:"omitempty,max=512"`
	CompanyLogoURL    *string `json:"company_logo_url" validate:"omitempty,max=512"`
}

func (req *updateProfileReq) apply(u *models.User) {
	if s, set := trimmed(req.Name); set && s != "" {
		u.Name = s
	}
	if s, set := trimmed(req.CompanyName); set {
		u.CompanyName = s
	}
	if s, set := trimmed(req.ContactInfo); set {
		u.ContactInfo = s
	}
	if s, set := trimmed(req.ProfilePictureURL); set {
		u.ProfilePictureURL = s
	}
	if s, set := trimmed(req.CompanyLogoURL); set {
		u.CompanyLogoURL = s
	}
}

func (h *UserHandler) Update(c *fiber.Ctx) error {
	u := middleware.Loaded[models.User](c)
	var req updateProfileReq
	if err := bind(c, &req); err != nil {
		return err
	}
	req.apply(u)
	if err := h.DB.WithContext(c.UserContext()).Save(u).Error; err != nil {
		return err
	}
	return ok(c, u)
}

// Search matches name or email, case-insensitively, optionally narrowed
// by role.
func (h *UserHandler) Search(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("query"))
	role := strings.ToUpper(strings.TrimSpace(c.Query("role")))
	if query == "" && role == "" {
		return policy.BadRequest("query or role is required")
	}

	tx := h.DB.WithContext(c.UserContext()).Model(&models.User{})
	if query != "" {
		like := "%" + strings.ToLower(query) + "%"
		tx = tx.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}
	if role != "" {
		if !models.Role(role).Valid() {
			return policy.BadRequest("unknown role")
		}
		tx = tx.Where("role = ?", role)
	}

	users := []models.User{}
	if err := tx.Order("name ASC").Limit(searchLimit).Find(&users).Error; err != nil {
		return err
	}
	return ok(c, users)
}

// UpdateLastViewedActivities moves the caller's feed watermark to now.
func (h *UserHandler) UpdateLastViewedActivities(c *fiber.Ctx) error {
	a := actor(c)
	now := time.Now().UTC()
	if err := h.DB.WithContext(c.UserContext()).
		Model(&models.User{}).
		Where("id = ?", a.ID).
		Update("last_viewed_activities_at", now).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Last viewed activities updated",
		"data":    fiber.Map{"last_viewed_activities_at": now},
	})
}
