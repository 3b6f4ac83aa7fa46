package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pilotify/pilotify-api/internal/middleware"
	"github.com/pilotify/pilotify-api/internal/models"
	"github.com/pilotify/pilotify-api/internal/policy"
)

type TaskHandler struct {
	DB *gorm.DB
}

func NewTaskHandler(db *gorm.DB) *TaskHandler {
	return &TaskHandler{DB: db}
}

func taskTarget(t *models.Task) *policy.Target {
	tg := &policy.Target{AssigneeID: t.AssignedToID}
	if t.PilotProject != nil {
		tg.Participants = t.PilotProject.Participants()
	}
	return tg
}

func (h *TaskHandler) Routes(r fiber.Router) {
	load := byID(h.DB, "id", taskTarget, "PilotProject", "AssignedTo")
	r.Get("/tasks", middleware.Authorize(policy.Task, policy.List, projectFromQuery(h.DB)), h.List)
	r.Post("/tasks", middleware.Authorize(policy.Task, policy.Create, h.loadCreate), h.Create)
	r.Get("/tasks/:id", middleware.Authorize(policy.Task, policy.Read, load), h.Get)
	r.Put("/tasks/:id", middleware.Authorize(policy.Task, policy.Update, load), h.Update)
	r.Delete("/tasks/:id", middleware.Authorize(policy.Task, policy.Delete, load), h.Delete)
}

// projectFromQuery loads the project named by ?pilot_project_id=.
func projectFromQuery(gdb *gorm.DB) middleware.Loader {
	return func(c *fiber.Ctx) (any, *policy.Target, error) {
		id, err := queryID(c, "pilot_project_id")
		if err != nil {
			return nil, nil, err
		}
		p, err := first[models.PilotProject](c.UserContext(), gdb, id)
		if err != nil || p == nil {
			return nil, nil, err
		}
		return p, projectTarget(p), nil
	}
}

func (h *TaskHandler) List(c *fiber.Ctx) error {
	p := middleware.Loaded[models.PilotProject](c)
	tasks := []models.Task{}
	if err := h.DB.WithContext(c.UserContext()).
		Preload("AssignedTo").
		Where("pilot_project_id = ?", p.ID).
		Order("created_at DESC").
		Find(&tasks).Error; err != nil {
		return err
	}
	return ok(c, tasks)
}

type createTaskReq struct {
	PilotProjectID uuid.UUID  `json:"pilot_project_id" validate:"required"`
	Title          string     `json:"title" validate:"required,max=255"`
	Description    string     `json:"description"`
	Status         string     `json:"status" validate:"omitempty,oneof=OPEN IN_PROGRESS DONE"`
	Priority       string     `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	DueDate        *time.Time `json:"due_date"`
	AssignedToID   *uuid.UUID `json:"assigned_to_id"`
}

type taskCreate struct {
	req     createTaskReq
	project *models.PilotProject
}

func (h *TaskHandler) loadCreate(c *fiber.Ctx) (any, *policy.Target, error) {
	var req createTaskReq
	if err := bind(c, &req); err != nil {
		return nil, nil, err
	}
	p, err := first[models.PilotProject](c.UserContext(), h.DB, req.PilotProjectID)
	if err != nil || p == nil {
		return nil, nil, err
	}
	return &taskCreate{req: req, project: p}, projectTarget(p), nil
}

func (h *TaskHandler) assigneeExists(c *fiber.Ctx, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	u, err := first[models.User](c.UserContext(), h.DB, *id)
	if err != nil {
		return err
	}
	if u == nil {
		return policy.Invalid(FieldErrors{"assigned_to_id": {"assignee does not exist"}})
	}
	return nil
}

func (h *TaskHandler) Create(c *fiber.Ctx) error {
	in := middleware.Loaded[taskCreate](c)
	req := in.req
	if err := h.assigneeExists(c, req.AssignedToID); err != nil {
		return err
	}

	t := models.Task{
		PilotProjectID: in.project.ID,
		Title:          strings.TrimSpace(req.Title),
		Description:    strings.TrimSpace(req.Description),
		Status:         models.TaskStatus(req.Status),
		Priority:       models.TaskPriority(req.Priority),
		DueDate:        req.DueDate,
		AssignedToID:   req.AssignedToID,
	}
	gdb := h.DB.WithContext(c.UserContext())
	if err := gdb.Create(&t).Error; err != nil {
		return err
	}
	if err := gdb.Preload("AssignedTo").First(&t, "id = ?", t.ID).Error; err != nil {
		return err
	}
	return created(c, "Task created", t)
}

func (h *TaskHandler) Get(c *fiber.Ctx) error {
	return ok(c, middleware.Loaded[models.Task](c))
}

type updateTaskReq struct {
	Title        *string    `json:"title" validate:"omitempty,max=255"`
	Description  *string    `json:"description"`
	Status       *string    `json:"status"`
	Priority     *string    `json:"priority"`
	DueDate      *time.Time `json:"due_date"`
	AssignedToID *uuid.UUID `json:"assigned_to_id"`
}

func (h *TaskHandler) Update(c *fiber.Ctx) error {
	t := middleware.Loaded[models.Task](c)
	var req updateTaskReq
	if err := bind(c, &req); err != nil {
		return err
	}

	if s, _ := trimmed(req.Status); s != "" {
		next := models.TaskStatus(s)
		switch t.Status.TransitionTo(next) {
		case models.TransitionUnknown:
			return policy.BadRequest("unknown status " + s)
		case models.TransitionInvalid:
			return policy.Conflict("cannot change task status from " + string(t.Status) + " to " + s)
		}
		t.Status = next
	}
	if s, _ := trimmed(req.Priority); s != "" {
		if !models.TaskPriority(s).Valid() {
			return policy.BadRequest("unknown priority " + s)
		}
		t.Priority = models.TaskPriority(s)
	}
	if s, _ := trimmed(req.Title); s != "" {
		t.Title = s
	}
	if s, set := trimmed(req.Description); set {
		t.Description = s
	}
	if req.DueDate != nil {
		t.DueDate = req.DueDate
	}
	if req.AssignedToID != nil {
		if err := h.assigneeExists(c, req.AssignedToID); err != nil {
			return err
		}
		t.AssignedToID = req.AssignedToID
	}

	gdb := h.DB.WithContext(c.UserContext())
	if err := gdb.Omit("PilotProject", "AssignedTo").Save(t).Error; err != nil {
		return err
	}
	t.AssignedTo = nil
	if err := gdb.Preload("AssignedTo").First(t, "id = ?", t.ID).Error; err != nil {
		return err
	}
	return ok(c, t)
}

func (h *TaskHandler) Delete(c *fiber.Ctx) error {
	t := middleware.Loaded[models.Task](c)
	if err := h.DB.WithContext(c.UserContext()).Delete(&models.Task{}, "id = ?", t.ID).Error; err != nil {
		return err
	}
	return deleted(c, "Task deleted")
}
