package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pilotify/pilotify-api/internal/activity"
	"github.com/pilotify/pilotify-api/internal/db"
	"github.com/pilotify/pilotify-api/internal/middleware"
	"github.com/pilotify/pilotify-api/internal/models"
	"github.com/pilotify/pilotify-api/internal/policy"
	"github.com/pilotify/pilotify-api/internal/realtime"
)

const duplicateReaction = "you already reacted with this type"

type CommentHandler struct {
	DB       *gorm.DB
	Notifier realtime.Notifier
}

func NewCommentHandler(db *gorm.DB, n realtime.Notifier) *CommentHandler {
	return &CommentHandler{DB: db, Notifier: n}
}

func commentTarget(cm *models.Comment) *policy.Target { return &policy.Target{OwnerID: cm.UserID} }

func reactionTarget(r *models.Reaction) *policy.Target { return &policy.Target{OwnerID: r.UserID} }

func (h *CommentHandler) Routes(r fiber.Router) {
	load := byID(h.DB, "id", commentTarget, "PilotProject", "User")
	r.Get("/comments", middleware.Authorize(policy.Comment, policy.List, projectFromQuery(h.DB)), h.List)
	r.Post("/comments", middleware.Authorize(policy.Comment, policy.Create, h.loadCreate), h.Create)
	r.Delete("/comments/:id", middleware.Authorize(policy.Comment, policy.Delete, load), h.Delete)
	r.Post("/comments/:id/reactions", middleware.Authorize(policy.Reaction, policy.Create, load), h.React)
	r.Delete("/comments/:id/reactions/:reactionId", middleware.Authorize(policy.Reaction, policy.Delete, h.loadReaction), h.Unreact)
}

type commentView struct {
	models.Comment
	ReactionCounts map[string]int `json:"reaction_counts"`
	UserReaction   *string        `json:"user_reaction"`
}

func viewComment(cm models.Comment, me uuid.UUID) commentView {
	v := commentView{Comment: cm, ReactionCounts: map[string]int{}}
	for _, r := range cm.Reactions {
		v.ReactionCounts[r.Type]++
		if r.UserID == me && v.UserReaction == nil {
			t := r.Type
			v.UserReaction = &t
		}
	}
	return v
}

// List returns the project's comments oldest first, each with per-type
// reaction counts and the caller's own reaction.
func (h *CommentHandler) List(c *fiber.Ctx) error {
	p := middleware.Loaded[models.PilotProject](c)
	var comments []models.Comment
	if err := h.DB.WithContext(c.UserContext()).
		Preload("User").
		Preload("Reactions", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at ASC") }).
		Preload("Reactions.User").
		Where("pilot_project_id = ?", p.ID).
		Order("created_at ASC").
		Find(&comments).Error; err != nil {
		return err
	}

	me := actor(c).ID
	out := make([]commentView, 0, len(comments))
	for _, cm := range comments {
		out = append(out, viewComment(cm, me))
	}
	return ok(c, out)
}

type createCommentReq struct {
	PilotProjectID uuid.UUID `json:"pilot_project_id" validate:"required"`
	Text           string    `json:"text" validate:"required"`
}

type commentCreate struct {
	req     createCommentReq
	project *models.PilotProject
}

func (h *CommentHandler) loadCreate(c *fiber.Ctx) (any, *policy.Target, error) {
	var req createCommentReq
	if err := bind(c, &req); err != nil {
		return nil, nil, err
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, nil, policy.Invalid(FieldErrors{"text": {"text is required"}})
	}
	p, err := first[models.PilotProject](c.UserContext(), h.DB, req.PilotProjectID)
	if err != nil || p == nil {
		return nil, nil, err
	}
	return &commentCreate{req: req, project: p}, projectTarget(p), nil
}

func (h *CommentHandler) Create(c *fiber.Ctx) error {
	in := middleware.Loaded[commentCreate](c)
	me := actor(c).ID

	cm := models.Comment{
		PilotProjectID: in.project.ID,
		UserID:         me,
		Text:           strings.TrimSpace(in.req.Text),
	}
	gdb := h.DB.WithContext(c.UserContext())
	if err := gdb.Create(&cm).Error; err != nil {
		return err
	}
	if err := gdb.Preload("User").First(&cm, "id = ?", cm.ID).Error; err != nil {
		return err
	}

	other := in.project.CorporateID
	if other == me {
		other = in.project.InnovatorID
	}
	push(h.Notifier, other, "comment", cm)

	return created(c, "Comment created", viewComment(cm, me))
}

func (h *CommentHandler) Delete(c *fiber.Ctx) error {
	cm := middleware.Loaded[models.Comment](c)
	if err := h.DB.WithContext(c.UserContext()).Delete(&models.Comment{}, "id = ?", cm.ID).Error; err != nil {
		return err
	}
	return deleted(c, "Comment deleted")
}

type reactReq struct {
	Type string `json:"type" validate:"required,max=32"`
}

// React adds one reaction of a given type per user per comment. A user may
// react with several different types.
func (h *CommentHandler) React(c *fiber.Ctx) error {
	cm := middleware.Loaded[models.Comment](c)
	var req reactReq
	if err := bind(c, &req); err != nil {
		return err
	}
	typ := strings.TrimSpace(req.Type)
	if typ == "" {
		return policy.Invalid(FieldErrors{"type": {"type is required"}})
	}
	me := actor(c).ID

	gdb := h.DB.WithContext(c.UserContext())
	var existing models.Reaction
	err := gdb.Where("comment_id = ? AND user_id = ? AND type = ?", cm.ID, me, typ).First(&existing).Error
	switch {
	case err == nil:
		return policy.Conflict(duplicateReaction)
	case !db.IsNotFound(err):
		return err
	}

	rx := models.Reaction{CommentID: cm.ID, UserID: me, Type: typ}
	if err := gdb.Create(&rx).Error; err != nil {
		return conflictOr(err, duplicateReaction, "create reaction")
	}
	if err := gdb.Preload("User").First(&rx, "id = ?", rx.ID).Error; err != nil {
		return err
	}

	if cm.UserID != me {
		withComment := rx
		withComment.Comment = cm
		pushEvents(h.Notifier, cm.UserID, activity.ReactionEvents([]models.Reaction{withComment}))
	}

	return created(c, "Reaction added", rx)
}

// loadReaction resolves :reactionId and requires it to belong to :id.
func (h *CommentHandler) loadReaction(c *fiber.Ctx) (any, *policy.Target, error) {
	commentID, err := paramID(c, "id")
	if err != nil {
		return nil, nil, err
	}
	reactionID, err := paramID(c, "reactionId")
	if err != nil {
		return nil, nil, err
	}
	rx, err := first[models.Reaction](c.UserContext(), h.DB, reactionID)
	if err != nil || rx == nil || rx.CommentID != commentID {
		return nil, nil, err
	}
	return rx, reactionTarget(rx), nil
}

func (h *CommentHandler) Unreact(c *fiber.Ctx) error {
	rx := middleware.Loaded[models.Reaction](c)
	if err := h.DB.WithContext(c.UserContext()).Delete(&models.Reaction{}, "id = ?", rx.ID).Error; err != nil {
		return err
	}
	return deleted(c, "Reaction removed")
}
