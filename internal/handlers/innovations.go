package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/pilotify/pilotify-api/internal/middleware"
	"github.com/pilotify/pilotify-api/internal/models"
	"github.com/pilotify/pilotify-api/internal/policy"
)

// InnovationHandler serves the public innovation showcase.
type InnovationHandler struct {
	DB *gorm.DB
}

func NewInnovationHandler(db *gorm.DB) *InnovationHandler {
	return &InnovationHandler{DB: db}
}

func innovationTarget(i *models.Innovation) *policy.Target { return &policy.Target{OwnerID: i.OwnerID} }

func (h *InnovationHandler) Routes(r fiber.Router) {
	load := byID(h.DB, "id", innovationTarget, "Owner")
	r.Get("/innovations", middleware.Authorize(policy.Innovation, policy.List, nil), h.List)
	r.Post("/innovations", middleware.Authorize(policy.Innovation, policy.Create, nil), h.Create)
	r.Get("/innovations/:id", middleware.Authorize(policy.Innovation, policy.Read, load), h.Get)
	r.Put("/innovations/:id", middleware.Authorize(policy.Innovation, policy.Update, load), h.Update)
	r.Delete("/innovations/:id", middleware.Authorize(policy.Innovation, policy.Delete, load), h.Delete)
}

func (h *InnovationHandler) List(c *fiber.Ctx) error {
	items := []models.Innovation{}
	if err := h.DB.WithContext(c.UserContext()).
		Preload("Owner").
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		return err
	}
	return ok(c, items)
}

type innovationReq struct {
	Title       *string `json:"title" validate:"omitempty,max=255"`
	Description *string `json:"description"`
	Category    *string `json:"category" validate:"omitempty,max=191"`
}

func (h *InnovationHandler) Create(c *fiber.Ctx) error {
	var req innovationReq
	if err := bind(c, &req); err != nil {
		return err
	}
	title, _ := trimmed(req.Title)
	if title == "" {
		return policy.Invalid(FieldErrors{"title": {"title is required"}})
	}
	desc, _ := trimmed(req.Description)
	cat, _ := trimmed(req.Category)

	item := models.Innovation{Title: title, Description: desc, Category: cat, OwnerID: actor(c).ID}
	gdb := h.DB.WithContext(c.UserContext())
	if err := gdb.Create(&item).Error; err != nil {
		return err
	}
	if err := gdb.Preload("Owner").First(&item, "id = ?", item.ID).Error; err != nil {
		return err
	}
	return created(c, "Innovation created", item)
}

func (h *InnovationHandler) Get(c *fiber.Ctx) error {
	return ok(c, middleware.Loaded[models.Innovation](c))
}

// Update keeps the stored value for any field sent empty.
func (h *InnovationHandler) Update(c *fiber.Ctx) error {
	item := middleware.Loaded[models.Innovation](c)
	var req innovationReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if s, _ := trimmed(req.Title); s != "" {
		item.Title = s
	}
	if s, _ := trimmed(req.Description); s != "" {
		item.Description = s
	}
	if s, _ := trimmed(req.Category); s != "" {
		item.Category = s
	}
	if err := h.DB.WithContext(c.UserContext()).Omit("Owner").Save(item).Error; err != nil {
		return err
	}
	return ok(c, item)
}

func (h *InnovationHandler) Delete(c *fiber.Ctx) error {
	item := middleware.Loaded[models.Innovation](c)
	if err := h.DB.WithContext(c.UserContext()).Delete(&models.Innovation{}, "id = ?", item.ID).Error; err != nil {
		return err
	}
	return deleted(c, "Innovation deleted")
}
