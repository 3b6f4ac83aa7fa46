package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/pilotify/pilotify-api/internal/activity"
	"github.com/pilotify/pilotify-api/internal/db"
	"github.com/pilotify/pilotify-api/internal/middleware"
	"github.com/pilotify/pilotify-api/internal/models"
	"github.com/pilotify/pilotify-api/internal/policy"
	"github.com/pilotify/pilotify-api/internal/realtime"
)

const duplicateReview = "you have already reviewed this pilot project"

type ReviewHandler struct {
	DB       *gorm.DB
	Notifier realtime.Notifier
}

func NewReviewHandler(db *gorm.DB, n realtime.Notifier) *ReviewHandler {
	return &ReviewHandler{DB: db, Notifier: n}
}

func reviewTarget(r *models.Review) *policy.Target { return &policy.Target{OwnerID: r.ReviewerID} }

func (h *ReviewHandler) Routes(r fiber.Router) {
	load := byID(h.DB, "id", reviewTarget, "Reviewer", "PilotProject")
	r.Get("/reviews", middleware.Authorize(policy.Review, policy.List, projectFromQuery(h.DB)), h.List)
	r.Post("/reviews", middleware.Authorize(policy.Review, policy.Create, h.loadCreate), h.Create)
	r.Get("/reviews/:id", middleware.Authorize(policy.Review, policy.Read, load), h.Get)
	r.Put("/reviews/:id", middleware.Authorize(policy.Review, policy.Update, load), h.Update)
	r.Delete("/reviews/:id", middleware.Authorize(policy.Review, policy.Delete, load), h.Delete)
}

func (h *ReviewHandler) List(c *fiber.Ctx) error {
	p := middleware.Loaded[models.PilotProject](c)
	reviews := []models.Review{}
	if err := h.DB.WithContext(c.UserContext()).
		Preload("Reviewer").
		Where("pilot_project_id = ?", p.ID).
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		return err
	}
	return ok(c, reviews)
}

type createReviewReq struct {
	PilotProjectID     uuid.UUID      `json:"pilot_project_id" validate:"required"`
	Rating             int            `json:"rating" validate:"required,min=1,max=5"`
	Comment            string         `json:"comment"`
	EvaluationCriteria datatypes.JSON `json:"evaluation_criteria"`
}

type reviewCreate struct {
	req     createReviewReq
	project *models.PilotProject
}

func (h *ReviewHandler) loadCreate(c *fiber.Ctx) (any, *policy.Target, error) {
	var req createReviewReq
	if err := bind(c, &req); err != nil {
		return nil, nil, err
	}
	p, err := first[models.PilotProject](c.UserContext(), h.DB, req.PilotProjectID)
	if err != nil || p == nil {
		return nil, nil, err
	}
	return &reviewCreate{req: req, project: p}, projectTarget(p), nil
}

// Create accepts one review per participant, and only once the project is
// Completed. The unique index settles concurrent duplicates.
func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	in := middleware.Loaded[reviewCreate](c)
	me := actor(c).ID

	if in.project.Status != models.ProjectCompleted {
		return policy.Conflict("pilot project must be Completed before it can be reviewed")
	}

	gdb := h.DB.WithContext(c.UserContext())
	var existing models.Review
	err := gdb.Where("pilot_project_id = ? AND reviewer_id = ?", in.project.ID, me).First(&existing).Error
	switch {
	case err == nil:
		return policy.Conflict(duplicateReview)
	case !db.IsNotFound(err):
		return err
	}

	rv := models.Review{
		PilotProjectID:     in.project.ID,
		ReviewerID:         me,
		Rating:             in.req.Rating,
		Comment:            strings.TrimSpace(in.req.Comment),
		EvaluationCriteria: in.req.EvaluationCriteria,
	}
	if err := gdb.Create(&rv).Error; err != nil {
		return conflictOr(err, duplicateReview, "create review")
	}
	if err := gdb.Preload("Reviewer").Preload("PilotProject").First(&rv, "id = ?", rv.ID).Error; err != nil {
		return err
	}

	other := in.project.CorporateID
	if other == me {
		other = in.project.InnovatorID
	}
	pushEvents(h.Notifier, other, activity.ReviewEvents(other, []models.Review{rv}))

	return created(c, "Review created", rv)
}

func (h *ReviewHandler) Get(c *fiber.Ctx) error {
	return ok(c, middleware.Loaded[models.Review](c))
}

type updateReviewReq struct {
	Rating             *int           `json:"rating" validate:"omitempty,min=1,max=5"`
	Comment            *string        `json:"comment"`
	EvaluationCriteria datatypes.JSON `json:"evaluation_criteria"`
}

func (h *ReviewHandler) Update(c *fiber.Ctx) error {
	rv := middleware.Loaded[models.Review](c)
	var req updateReviewReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Rating != nil {
		rv.Rating = *req.Rating
	}
	if s, set := trimmed(req.Comment); set {
		rv.Comment = s
	}
	// absent and explicit null both keep the stored criteria
	if len(req.EvaluationCriteria) > 0 && string(req.EvaluationCriteria) != "null" {
		rv.EvaluationCriteria = req.EvaluationCriteria
	}
	if err := h.DB.WithContext(c.UserContext()).Omit("Reviewer", "PilotProject").Save(rv).Error; err != nil {
		return err
	}
	return ok(c, rv)
}

func (h *ReviewHandler) Delete(c *fiber.Ctx) error {
	rv := middleware.Loaded[models.Review](c)
	if err := h.DB.WithContext(c.UserContext()).Delete(&models.Review{}, "id = ?", rv.ID).Error; err != nil {
		return err
	}
	return deleted(c, "Review deleted")
}
