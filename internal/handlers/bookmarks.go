package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pilotify/pilotify-api/internal/db"
	"github.com/pilotify/pilotify-api/internal/middleware"
	"github.com/pilotify/pilotify-api/internal/models"
	"github.com/pilotify/pilotify-api/internal/policy"
)

const duplicateBookmark = "already bookmarked"

type BookmarkHandler struct {
	DB *gorm.DB
}

func NewBookmarkHandler(db *gorm.DB) *BookmarkHandler {
	return &BookmarkHandler{DB: db}
}

func bookmarkTarget(b *models.Bookmark) *policy.Target { return &policy.Target{OwnerID: b.UserID} }

func (h *BookmarkHandler) Routes(r fiber.Router) {
	r.Get("/bookmarks", middleware.Authorize(policy.Bookmark, policy.List, nil), h.List)
	r.Post("/bookmarks", middleware.Authorize(policy.Bookmark, policy.Create, nil), h.Create)
	r.Delete("/bookmarks/:id", middleware.Authorize(policy.Bookmark, policy.Delete, byID(h.DB, "id", bookmarkTarget)), h.Delete)
}

func withBookmarkTargets(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Offer.Category").
		Preload("Offer.Owner").
		Preload("PilotProject.Corporate").
		Preload("PilotProject.Innovator")
}

// List returns the caller's own bookmarks, newest first.
func (h *BookmarkHandler) List(c *fiber.Ctx) error {
	bookmarks := []models.Bookmark{}
	if err := withBookmarkTargets(h.DB.WithContext(c.UserContext())).
		Where("user_id = ?", actor(c).ID).
		Order("created_at DESC").
		Find(&bookmarks).Error; err != nil {
		return err
	}
	return ok(c, bookmarks)
}

type createBookmarkReq struct {
	OfferID        *uuid.UUID `json:"offer_id"`
	PilotProjectID *uuid.UUID `json:"pilot_project_id"`
}

// Create bookmarks exactly one offer or pilot project.
func (h *BookmarkHandler) Create(c *fiber.Ctx) error {
	var req createBookmarkReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if (req.OfferID == nil) == (req.PilotProjectID == nil) {
		return policy.BadRequest("provide exactly one of offer_id or pilot_project_id")
	}

	ctx := c.UserContext()
	gdb := h.DB.WithContext(ctx)
	me := actor(c).ID
	dup := gdb.Model(&models.Bookmark{}).Where("user_id = ?", me)

	if req.OfferID != nil {
		o, err := first[models.Offer](ctx, h.DB, *req.OfferID)
		if err != nil {
			return err
		}
		if o == nil {
			return policy.NotFound("offer not found")
		}
		dup = dup.Where("offer_id = ?", *req.OfferID)
	} else {
		p, err := first[models.PilotProject](ctx, h.DB, *req.PilotProjectID)
		if err != nil {
			return err
		}
		if p == nil {
			return policy.NotFound("pilot project not found")
		}
		dup = dup.Where("pilot_project_id = ?", *req.PilotProjectID)
	}

	var existing models.Bookmark
	err := dup.First(&existing).Error
	switch {
	case err == nil:
		return policy.Conflict(duplicateBookmark)
	case !db.IsNotFound(err):
		return err
	}

	b := models.Bookmark{UserID: me, OfferID: req.OfferID, PilotProjectID: req.PilotProjectID}
	if err := gdb.Create(&b).Error; err != nil {
		return conflictOr(err, duplicateBookmark, "create bookmark")
	}
	if err := withBookmarkTargets(gdb).First(&b, "id = ?", b.ID).Error; err != nil {
		return err
	}
	return created(c, "Bookmark created", b)
}

func (h *BookmarkHandler) Delete(c *fiber.Ctx) error {
	b := middleware.Loaded[models.Bookmark](c)
	if err := h.DB.WithContext(c.UserContext()).Delete(&models.Bookmark{}, "id = ?", b.ID).Error; err != nil {
		return err
	}
	return deleted(c, "Bookmark deleted")
}
