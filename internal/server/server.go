// Package server assembles the Fiber application.
package server

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/pilotify/pilotify-api/internal/cache"
	"github.com/pilotify/pilotify-api/internal/config"
	"github.com/pilotify/pilotify-api/internal/handlers"
	"github.com/pilotify/pilotify-api/internal/middleware"
	"github.com/pilotify/pilotify-api/internal/models"
	"github.com/pilotify/pilotify-api/internal/realtime"
)

// Deps are the long-lived collaborators shared by every handler. Cache and
// Notifier are optional.
type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Log      *zap.Logger
	Hub      *realtime.Hub
	Notifier realtime.Notifier
	Cache    cache.Cache
}

func New(d Deps) *fiber.App {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Cache == nil {
		d.Cache = cache.Nop{}
	}
	if d.Notifier == nil && d.Hub != nil {
		d.Notifier = realtime.HubNotifier{Hub: d.Hub}
	}
	cfg := d.Config
	origins := cfg.App.AllowOrigins
	if len(origins) == 0 {
		origins = []string{cfg.App.FrontendBaseURL}
	}

	app := fiber.New(fiber.Config{
		AppName:      "pilotify-api",
		ErrorHandler: middleware.ErrorHandler(d.Log),
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(d.Log.Named("http")))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(origins, ","),
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "Content-Length",
		AllowCredentials: true,
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true, "message": "ok"})
	})

	authH := &handlers.AuthHandler{
		DB:           d.DB,
		JWTSecret:    cfg.JWT.Secret,
		Expires:      cfg.JWT.ExpiresMin,
		CookieName:   cfg.JWT.CookieName,
		CookieSecure: cfg.JWT.CookieSecure,
	}
	googleH := &handlers.GoogleOAuthHandler{
		Auth:            authH,
		Google:          cfg.Google,
		FrontendBaseURL: cfg.App.FrontendBaseURL,
		UserInfoURL:     cfg.Google.UserInfoURL,
	}
	if cfg.Google.AuthURL != "" && cfg.Google.TokenURL != "" {
		googleH.Endpoint = oauth2.Endpoint{
			AuthURL:   cfg.Google.AuthURL,
			TokenURL:  cfg.Google.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		}
	}
	categoryH := handlers.NewCategoryHandler(d.DB, d.Cache)
	adminUserH := handlers.NewAdminUserHandler(d.DB)

	api := app.Group("/api",
		middleware.TryJWTFromCookie(cfg.JWT.Secret, cfg.JWT.CookieName),
		middleware.AttachIdentity(),
	)

	authH.Routes(api)
	googleH.Routes(api)
	categoryH.Routes(api)

	// /admin-only shares the /admin prefix, so it goes in first.
	adminUserH.Routes(api)
	admin := api.Group("/admin", middleware.RequireRoles(models.RoleAdmin))
	categoryH.AdminRoutes(admin)
	adminUserH.AdminRoutes(admin)

	handlers.NewUserHandler(d.DB).Routes(api)
	handlers.NewOfferHandler(d.DB).Routes(api)
	handlers.NewInnovationHandler(d.DB).Routes(api)
	handlers.NewPilotProjectHandler(d.DB, d.Notifier).Routes(api)
	handlers.NewTaskHandler(d.DB).Routes(api)
	handlers.NewReviewHandler(d.DB, d.Notifier).Routes(api)
	handlers.NewCommentHandler(d.DB, d.Notifier).Routes(api)
	handlers.NewBookmarkHandler(d.DB).Routes(api)
	handlers.NewActivityHandler(d.DB, cfg.Activity.Limit).Routes(api)

	if d.Hub != nil {
		handlers.NewStreamHandler(d.Hub).Routes(app,
			middleware.JWTFromCookie(cfg.JWT.Secret, cfg.JWT.CookieName),
			middleware.AttachIdentity(),
		)
	}

	return app
}
