package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pilotify/pilotify-api/internal/activity"
	"github.com/pilotify/pilotify-api/internal/middleware"
	"github.com/pilotify/pilotify-api/internal/models"
	"github.com/pilotify/pilotify-api/internal/policy"
	"github.com/pilotify/pilotify-api/internal/realtime"
)

type PilotProjectHandler struct {
	DB       *gorm.DB
	Notifier realtime.Notifier
}

func NewPilotProjectHandler(db *gorm.DB, n realtime.Notifier) *PilotProjectHandler {
	return &PilotProjectHandler{DB: db, Notifier: n}
}

func projectTarget(p *models.PilotProject) *policy.Target {
	return &policy.Target{Participants: p.Participants()}
}

func (h *PilotProjectHandler) Routes(r fiber.Router) {
	load := byID(h.DB, "id", projectTarget, "Corporate", "Innovator")
	r.Get("/pilot-projects", middleware.Authorize(policy.PilotProject, policy.List, nil), h.List)
	r.Post("/pilot-projects", middleware.Authorize(policy.PilotProject, policy.Create, h.loadCreate), h.Create)
	r.Get("/pilot-projects/:id", middleware.Authorize(policy.PilotProject, policy.Read, load), h.Get)
	r.Put("/pilot-projects/:id", middleware.Authorize(policy.PilotProject, policy.Update, load), h.Update)
	r.Delete("/pilot-projects/:id", middleware.Authorize(policy.PilotProject, policy.Delete, load), h.Delete)
}

// List returns only the projects the caller takes part in.
func (h *PilotProjectHandler) List(c *fiber.Ctx) error {
	me := actor(c).ID
	q := h.DB.WithContext(c.UserContext()).
		Preload("Corporate").
		Preload("Innovator").
		Where("corporate_id = ? OR innovator_id = ?", me, me)
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		if !models.ProjectStatus(status).Valid() {
			return policy.BadRequest("unknown status")
		}
		q = q.Where("status = ?", status)
	}

	projects := []models.PilotProject{}
	if err := q.Order("created_at DESC").Find(&projects).Error; err != nil {
		return err
	}
	return ok(c, projects)
}

type createProjectReq struct {
	Title       string    `json:"title" validate:"required,max=255"`
	Description string    `json:"description"`
	CorporateID uuid.UUID `json:"corporate_id" validate:"required"`
	InnovatorID uuid.UUID `json:"innovator_id" validate:"required"`
}

// loadCreate validates the body and exposes its two participants as the
// policy target, so the caller must be one of them.
func (h *PilotProjectHandler) loadCreate(c *fiber.Ctx) (any, *policy.Target, error) {
	var req createProjectReq
	if err := bind(c, &req); err != nil {
		return nil, nil, err
	}
	return &req, &policy.Target{Participants: []uuid.UUID{req.CorporateID, req.InnovatorID}}, nil
}

func (h *PilotProjectHandler) checkParty(c *fiber.Ctx, id uuid.UUID, role models.Role, field string) error {
	u, err := first[models.User](c.UserContext(), h.DB, id)
	if err != nil {
		return err
	}
	if u == nil || u.Role != role {
		return policy.Invalid(FieldErrors{field: {field + " must reference a " + string(role) + " user"}})
	}
	return nil
}

func (h *PilotProjectHandler) Create(c *fiber.Ctx) error {
	req := middleware.Loaded[createProjectReq](c)
	if err := h.checkParty(c, req.CorporateID, models.RoleCorporate, "corporate_id"); err != nil {
		return err
	}
	if err := h.checkParty(c, req.InnovatorID, models.RoleInnovator, "innovator_id"); err != nil {
		return err
	}

	p := models.PilotProject{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		CorporateID: req.CorporateID,
		InnovatorID: req.InnovatorID,
	}
	gdb := h.DB.WithContext(c.UserContext())
	if err := gdb.Create(&p).Error; err != nil {
		return err
	}
	if err := gdb.Preload("Corporate").Preload("Innovator").First(&p, "id = ?", p.ID).Error; err != nil {
		return err
	}

	other := p.InnovatorID
	if other == actor(c).ID {
		other = p.CorporateID
	}
	pushEvents(h.Notifier, other, activity.ProjectEvents(other, []models.PilotProject{p}))

	return created(c, "Pilot project created", p)
}

func (h *PilotProjectHandler) Get(c *fiber.Ctx) error {
	return ok(c, middleware.Loaded[models.PilotProject](c))
}

type updateProjectReq struct {
	Title       *string `json:"title" validate:"omitempty,max=255"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

// Update keeps stored title and description when sent empty. Status
// changes follow the project state machine.
func (h *PilotProjectHandler) Update(c *fiber.Ctx) error {
	p := middleware.Loaded[models.PilotProject](c)
	var req updateProjectReq
	if err := bind(c, &req); err != nil {
		return err
	}

	if s, _ := trimmed(req.Status); s != "" {
		next := models.ProjectStatus(s)
		switch p.Status.TransitionTo(next) {
		case models.TransitionUnknown:
			return policy.BadRequest("unknown status " + s)
		case models.TransitionInvalid:
			return policy.Conflict("cannot change project status from " + string(p.Status) + " to " + s)
		}
		p.Status = next
	}
	if s, _ := trimmed(req.Title); s != "" {
		p.Title = s
	}
	if s, _ := trimmed(req.Description); s != "" {
		p.Description = s
	}

	if err := h.DB.WithContext(c.UserContext()).Omit("Corporate", "Innovator").Save(p).Error; err != nil {
		return err
	}
	return ok(c, p)
}

func (h *PilotProjectHandler) Delete(c *fiber.Ctx) error {
	p := middleware.Loaded[models.PilotProject](c)
	if err := h.DB.WithContext(c.UserContext()).Delete(&models.PilotProject{}, "id = ?", p.ID).Error; err != nil {
		return err
	}
	return deleted(c, "Pilot project deleted")
}
