package handlers

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pilotify/pilotify-api/internal/cache"
	"github.com/pilotify/pilotify-api/internal/middleware"
	"github.com/pilotify/pilotify-api/internal/models"
	"github.com/pilotify/pilotify-api/internal/policy"
)

const (
	categoriesCacheKey = "categories:public"
	categoriesCacheTTL = 10 * time.Minute
)

type CategoryHandler struct {
	DB    *gorm.DB
	Cache cache.Cache
}

func NewCategoryHandler(db *gorm.DB, c cache.Cache) *CategoryHandler {
	if c == nil {
		c = cache.Nop{}
	}
	return &CategoryHandler{DB: db, Cache: c}
}

func categoryTarget(*models.Category) *policy.Target { return &policy.Target{} }

// Routes registers the public list. AdminRoutes expects a router already
// mounted under /admin.
func (h *CategoryHandler) Routes(r fiber.Router) {
	r.Get("/categories", middleware.Authorize(policy.Category, policy.List, nil), h.GetCategories)
}

func (h *CategoryHandler) AdminRoutes(r fiber.Router) {
	load := byID(h.DB, "id", categoryTarget)
	r.Get("/categories", middleware.Authorize(policy.Category, policy.List, nil), h.AdminList)
	r.Post("/categories", middleware.Authorize(policy.Category, policy.Create, nil), h.Create)
	r.Get("/categories/:id", middleware.Authorize(policy.Category, policy.Read, load), h.Get)
	r.Put("/categories/:id", middleware.Authorize(policy.Category, policy.Update, load), h.Update)
	r.Delete("/categories/:id", middleware.Authorize(policy.Category, policy.Delete, load), h.Delete)
}

type categoryItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GetCategories returns {id, name} pairs ordered by name, served from the
// cache when possible.
func (h *CategoryHandler) GetCategories(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if raw, err := h.Cache.Get(ctx, categoriesCacheKey); err == nil {
		var items []categoryItem
		if json.Unmarshal([]byte(raw), &items) == nil {
			return ok(c, items)
		}
	} else if !errors.Is(err, cache.ErrMiss) {
		logger().Warn("category cache read", zap.Error(err))
	}

	items := []categoryItem{}
	if err := h.DB.WithContext(ctx).
		Model(&models.Category{}).
		Select("id", "name").
		Order("name ASC").
		Scan(&items).Error; err != nil {
		return err
	}

	if b, err := json.Marshal(items); err == nil {
		if err := h.Cache.Set(ctx, categoriesCacheKey, string(b), categoriesCacheTTL); err != nil {
			logger().Warn("category cache write", zap.Error(err))
		}
	}
	return ok(c, items)
}

func (h *CategoryHandler) invalidate(c *fiber.Ctx) {
	if err := h.Cache.Del(c.UserContext(), categoriesCacheKey); err != nil {
		logger().Warn("category cache invalidate", zap.Error(err))
	}
}

func (h *CategoryHandler) AdminList(c *fiber.Ctx) error {
	categories := []models.Category{}
	if err := h.DB.WithContext(c.UserContext()).Order("name ASC").Find(&categories).Error; err != nil {
		return err
	}
	return ok(c, categories)
}

type categoryReq struct {
	Name string `json:"name" validate:"required,max=191"`
}

func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	var req categoryReq
	if err := bind(c, &req); err != nil {
		return err
	}
	cat := models.Category{Name: strings.TrimSpace(req.Name)}
	if err := h.DB.WithContext(c.UserContext()).Create(&cat).Error; err != nil {
		return conflictOr(err, "category already exists", "create category")
	}
	h.invalidate(c)
	return created(c, "Category created", cat)
}

func (h *CategoryHandler) Get(c *fiber.Ctx) error {
	return ok(c, middleware.Loaded[models.Category](c))
}

func (h *CategoryHandler) Update(c *fiber.Ctx) error {
	cat := middleware.Loaded[models.Category](c)
	var req categoryReq
	if err := bind(c, &req); err != nil {
		return err
	}
	cat.Name = strings.TrimSpace(req.Name)
	if err := h.DB.WithContext(c.UserContext()).Save(cat).Error; err != nil {
		return conflictOr(err, "category already exists", "update category")
	}
	h.invalidate(c)
	return ok(c, cat)
}

func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	cat := middleware.Loaded[models.Category](c)
	if err := h.DB.WithContext(c.UserContext()).Delete(cat).Error; err != nil {
		return err
	}
	h.invalidate(c)
	return deleted(c, "Category deleted")
}
