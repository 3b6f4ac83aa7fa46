package handlers

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pilotify/pilotify-api/internal/activity"
	"github.com/pilotify/pilotify-api/internal/db"
	"github.com/pilotify/pilotify-api/internal/middleware"
	"github.com/pilotify/pilotify-api/internal/policy"
	"github.com/pilotify/pilotify-api/internal/realtime"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type FieldErrors map[string][]string

func (e FieldErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	}
	return fe.Field() + " is invalid"
}

// bind parses the JSON body into req and runs its validate tags.
func bind(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return policy.BadRequest("invalid body")
	}
	if err := validate.Struct(req); err != nil {
		return bindErr(err)
	}
	return nil
}

func bindErr(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}
	errs := FieldErrors{}
	for _, fe := range verrs {
		errs.Add(fe.Field(), fieldMessage(fe))
	}
	return policy.Invalid(errs)
}

func paramID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, policy.BadRequest("invalid id")
	}
	return id, nil
}

func queryID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return uuid.Nil, policy.Invalid(FieldErrors{name: {name + " is required"}})
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, policy.Invalid(FieldErrors{name: {name + " must be a valid id"}})
	}
	return id, nil
}

// first loads one row by primary key. A missing row is (nil, nil).
func first[T any](ctx context.Context, gdb *gorm.DB, id uuid.UUID, preloads ...string) (*T, error) {
	var row T
	tx := gdb.WithContext(ctx)
	for _, p := range preloads {
		tx = tx.Preload(p)
	}
	if err := tx.First(&row, "id = ?", id).Error; err != nil {
		if db.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("load %T: %w", row, err)
	}
	return &row, nil
}

// byID builds a Loader for the :param route segment.
func byID[T any](gdb *gorm.DB, param string, target func(*T) *policy.Target, preloads ...string) middleware.Loader {
	return func(c *fiber.Ctx) (any, *policy.Target, error) {
		id, err := paramID(c, param)
		if err != nil {
			return nil, nil, err
		}
		row, err := first[T](c.UserContext(), gdb, id, preloads...)
		if err != nil || row == nil {
			return nil, nil, err
		}
		return row, target(row), nil
	}
}

func actor(c *fiber.Ctx) *policy.Actor {
	return middleware.ActorFrom(c)
}

func ok(c *fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

func created(c *fiber.Ctx, message string, data any) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func deleted(c *fiber.Ctx, message string) error {
	return c.JSON(fiber.Map{
		"success": true,
		"message": message,
	})
}

// conflictOr maps a unique violation to 409 and wraps anything else.
func conflictOr(err error, message, op string) error {
	if db.IsUniqueViolation(err) {
		return policy.Conflict(message)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func trimmed(p *string) (string, bool) {
	if p == nil {
		return "", false
	}
	s := strings.TrimSpace(*p)
	return s, true
}

// push sends a feed notice without failing the request.
func push(n realtime.Notifier, to uuid.UUID, typ string, payload any) {
	if n == nil || to == uuid.Nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	n.Notify(ctx, to, realtime.Notice{Type: typ, Activity: payload})
}

func pushEvents(n realtime.Notifier, to uuid.UUID, events []activity.Event) {
	for _, e := range events {
		push(n, to, "activity", e)
	}
}

func logger() *zap.Logger { return zap.L().Named("handlers") }
