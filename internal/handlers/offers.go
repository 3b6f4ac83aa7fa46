package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pilotify/pilotify-api/internal/middleware"
	"github.com/pilotify/pilotify-api/internal/models"
	"github.com/pilotify/pilotify-api/internal/policy"
)

type OfferHandler struct {
	DB *gorm.DB
}

func NewOfferHandler(db *gorm.DB) *OfferHandler {
	return &OfferHandler{DB: db}
}

func offerTarget(o *models.Offer) *policy.Target { return &policy.Target{OwnerID: o.OwnerID} }

func (h *OfferHandler) Routes(r fiber.Router) {
	load := byID(h.DB, "id", offerTarget, "Owner", "Category")
	r.Get("/offers", middleware.Authorize(policy.Offer, policy.List, nil), h.List)
	r.Post("/offers", middleware.Authorize(policy.Offer, policy.Create, nil), h.Create)
	r.Get("/offers/:id", middleware.Authorize(policy.Offer, policy.Read, load), h.Get)
	r.Put("/offers/:id", middleware.Authorize(policy.Offer, policy.Update, load), h.Update)
	r.Delete("/offers/:id", middleware.Authorize(policy.Offer, policy.Delete, load), h.Delete)
}

// List filters by search (title or description), category_id and status,
// sorts by latest, price_low or price_high, and paginates.
func (h *OfferHandler) List(c *fiber.Ctx) error {
	search := strings.TrimSpace(c.Query("search"))
	categoryID := strings.TrimSpace(c.Query("category_id"))
	status := strings.TrimSpace(c.Query("status"))

	filter := func(tx *gorm.DB) *gorm.DB {
		if search != "" {
			like := "%" + strings.ToLower(search) + "%"
			tx = tx.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
		}
		if categoryID != "" {
			tx = tx.Where("category_id = ?", categoryID)
		}
		if status != "" {
			tx = tx.Where("status = ?", status)
		}
		return tx
	}

	if categoryID != "" {
		if _, err := uuid.Parse(categoryID); err != nil {
			return policy.BadRequest("invalid category_id")
		}
	}
	if status != "" && !models.OfferStatus(status).Valid() {
		return policy.BadRequest("unknown status")
	}

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	gdb := h.DB.WithContext(c.UserContext())
	var total int64
	if err := filter(gdb.Model(&models.Offer{})).Count(&total).Error; err != nil {
		return err
	}

	q := filter(gdb.Model(&models.Offer{})).Preload("Owner").Preload("Category")
	switch c.Query("sort") {
	case "price_low":
		q = q.Order("price ASC")
	case "price_high":
		q = q.Order("price DESC")
	default:
		q = q.Order("created_at DESC")
	}

	offers := []models.Offer{}
	if err := q.Offset((page - 1) * limit).Limit(limit).Find(&offers).Error; err != nil {
		return err
	}

	totalPages := (total + int64(limit) - 1) / int64(limit)
	return c.JSON(fiber.Map{
		"success": true,
		"data":    offers,
		"meta": fiber.Map{
			"page":        page,
			"limit":       limit,
			"total_items": total,
			"total_pages": totalPages,
		},
	})
}

type createOfferReq struct {
	Title        string     `json:"title" validate:"required,max=255"`
	Description  string     `json:"description" validate:"required"`
	CategoryID   *uuid.UUID `json:"category_id"`
	Price        float64    `json:"price" validate:"required,gt=0"`
	Duration     string     `json:"duration" validate:"required"`
	Deliverables string     `json:"deliverables" validate:"required"`
	ContactEmail string     `json:"contact_email" validate:"required,email"`
	Status       string     `json:"status" validate:"omitempty,oneof=AVAILABLE UNAVAILABLE ARCHIVED"`
}

func (h *OfferHandler) categoryExists(c *fiber.Ctx, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	cat, err := first[models.Category](c.UserContext(), h.DB, *id)
	if err != nil {
		return err
	}
	if cat == nil {
		return policy.Invalid(FieldErrors{"category_id": {"category does not exist"}})
	}
	return nil
}

func (h *OfferHandler) Create(c *fiber.Ctx) error {
	var req createOfferReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.categoryExists(c, req.CategoryID); err != nil {
		return err
	}

	o := models.Offer{
		Title:        strings.TrimSpace(req.Title),
		Description:  strings.TrimSpace(req.Description),
		CategoryID:   req.CategoryID,
		Price:        req.Price,
		Duration:     strings.TrimSpace(req.Duration),
		Deliverables: strings.TrimSpace(req.Deliverables),
		ContactEmail: strings.TrimSpace(req.ContactEmail),
		Status:       models.OfferStatus(req.Status),
		OwnerID:      actor(c).ID,
	}
	gdb := h.DB.WithContext(c.UserContext())
	if err := gdb.Create(&o).Error; err != nil {
		return err
	}
	if err := gdb.Preload("Owner").Preload("Category").First(&o, "id = ?", o.ID).Error; err != nil {
		return err
	}
	return created(c, "Offer created", o)
}

func (h *OfferHandler) Get(c *fiber.Ctx) error {
	return ok(c, middleware.Loaded[models.Offer](c))
}

type updateOfferReq struct {
	Title        *string    `json:"title" validate:"omitempty,max=255"`
	Description  *string    `json:"description"`
	CategoryID   *uuid.UUID `json:"category_id"`
	Price        *float64   `json:"price" validate:"omitempty,gt=0"`
	Duration     *string    `json:"duration"`
	Deliverables *string    `json:"deliverables"`
	ContactEmail *string    `json:"contact_email" validate:"omitempty,email"`
	Status       *string    `json:"status"`
}

func (h *OfferHandler) Update(c *fiber.Ctx) error {
	o := middleware.Loaded[models.Offer](c)
	var req updateOfferReq
	if err := bind(c, &req); err != nil {
		return err
	}

	if req.Status != nil {
		next := models.OfferStatus(strings.TrimSpace(*req.Status))
		switch o.Status.TransitionTo(next) {
		case models.TransitionUnknown:
			return policy.BadRequest("unknown status " + string(next))
		case models.TransitionInvalid:
			return policy.Conflict("cannot change offer status from " + string(o.Status) + " to " + string(next))
		}
		o.Status = next
	}
	if req.CategoryID != nil {
		if err := h.categoryExists(c, req.CategoryID); err != nil {
			return err
		}
		o.CategoryID = req.CategoryID
		o.Category = nil
	}
	if s, set := trimmed(req.Title); set && s != "" {
		o.Title = s
	}
	if s, set := trimmed(req.Description); set && s != "" {
		o.Description = s
	}
	if req.Price != nil {
		o.Price = *req.Price
	}
	if s, set := trimmed(req.Duration); set && s != "" {
		o.Duration = s
	}
	if s, set := trimmed(req.Deliverables); set && s != "" {
		o.Deliverables = s
	}
	if s, set := trimmed(req.ContactEmail); set && s != "" {
		o.ContactEmail = s
	}

	gdb := h.DB.WithContext(c.UserContext())
	if err := gdb.Omit("Owner", "Category").Save(o).Error; err != nil {
		return err
	}
	if err := gdb.Preload("Owner").Preload("Category").First(o, "id = ?", o.ID).Error; err != nil {
		return err
	}
	return ok(c, o)
}

func (h *OfferHandler) Delete(c *fiber.Ctx) error {
	o := middleware.Loaded[models.Offer](c)
	if err := h.DB.WithContext(c.UserContext()).Delete(&models.Offer{}, "id = ?", o.ID).Error; err != nil {
		return err
	}
	return deleted(c, "Offer deleted")
}
