package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ouvidoria/config"
	"ouvidoria/contact"
	"ouvidoria/handlers/api"
	"ouvidoria/handlers/web"
	"ouvidoria/middleware"
	"ouvidoria/storage"
	"ouvidoria/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/storage/memory/v2"
)

const contentSecurityPolicy = "default-src 'self'; script-src 'self' 'unsafe-inline' https://unpkg.com; style-src 'self' 'unsafe-inline'; connect-src 'self';"

// newSubmitter picks the submission backend from the config
func newSubmitter(cfg *config.Config) contact.Submitter {
	if cfg.Submit.Mode == config.SubmitModeWebhook {
		return contact.NewWebhookSubmitter(cfg.Submit.WebhookURL, cfg.Submit.Timeout, nil)
	}
	return contact.NewMockSubmitter(cfg.Submit.Delay)
}

// newCatalog builds the message catalog, applying the override file if set
func newCatalog(cfg *config.Config) (*utils.Catalog, error) {
	catalog := utils.NewCatalog()
	if cfg.Form.Messages == "" {
		return catalog, nil
	}

	dir, file := filepath.Split(cfg.Form.Messages)
	if dir == "" {
		dir = "."
	}
	if err := catalog.LoadOverrides(os.DirFS(dir), file); err != nil {
		return nil, err
	}
	return catalog, nil
}

// NewApp wires the application. The returned cleanup releases the session
// storage.
func NewApp(cfg *config.Config, submitter contact.Submitter) (*fiber.App, func(), error) {
	catalog, err := newCatalog(cfg)
	if err != nil {
		return nil, nil, err
	}

	policy, err := contact.ParsePhonePolicy(cfg.Form.PhonePolicy)
	if err != nil {
		return nil, nil, err
	}
	validator, err := contact.NewValidator(catalog, policy)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build validator: %w", err)
	}
	reducer := contact.NewReducer(validator)
	service := contact.NewService(reducer, submitter, utils.Log)

	backing := memory.New(memory.Config{GCInterval: time.Minute})
	store := session.New(session.Config{
		Storage:        backing,
		Expiration:     cfg.Session.Expiration,
		CookieSecure:   cfg.Session.CookieSecure,
		CookieHTTPOnly: true,
		CookieSameSite: fiber.CookieSameSiteLaxMode,
	})
	forms := storage.NewFormStore(store, reducer)

	app := fiber.New(fiber.Config{
		Views:        web.NewEngine(catalog),
		ViewsLayout:  "layouts/main",
		ErrorHandler: middleware.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())
	app.Use(helmet.New(helmet.Config{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "SAMEORIGIN",
		ReferrerPolicy:        "no-referrer",
		ContentSecurityPolicy: contentSecurityPolicy,
	}))
	app.Use(middleware.SecurityHeaders(cfg.GetSecurityHeaders()))
	app.Use(middleware.RateLimiter(middleware.RateLimitConfig{
		Requests: cfg.RateLimit.Requests,
		Window:   cfg.RateLimit.Window,
		Message:  catalog.T(utils.MsgRateLimited),
	}))

	app.Static("/assets", "./assets", fiber.Static{
		Compress:      true,
		CacheDuration: 24 * time.Hour,
	})

	csrf := middleware.DefaultCSRFConfig()
	csrf.CookieSecure = cfg.Session.CookieSecure

	contactHandler := web.NewContactHandler(forms, service, catalog)
	liveHandler := web.NewLiveHandler(service, catalog)
	apiContact := api.NewContactHandler(validator)
	messagesHandler := api.NewMessagesHandler(catalog)

	app.Get("/", middleware.CSRFToken(csrf), contactHandler.ShowForm)

	form := app.Group("/contact", middleware.CSRFToken(csrf), middleware.CSRFProtection(csrf))
	{
		form.Post("/input", contactHandler.HandleInput)
		form.Post("/blur", contactHandler.HandleBlur)

		submit := []fiber.Handler{contactHandler.HandleSubmit}
		if cfg.RateLimit.SubmitRequests > 0 {
			limiter := middleware.RateLimiter(middleware.RateLimitConfig{
				Requests: cfg.RateLimit.SubmitRequests,
				Window:   cfg.RateLimit.Window,
				Message:  catalog.T(utils.MsgRateLimited),
			})
			submit = append([]fiber.Handler{limiter}, submit...)
		}
		form.Post("/submit", submit...)
	}

	app.Get("/ws", liveHandler.Upgrade, liveHandler.Serve())

	apiRoutes := app.Group("/api")
	{
		apiRoutes.Post("/phone/format", apiContact.FormatPhone)
		apiRoutes.Post("/validate", apiContact.Validate)
		apiRoutes.Get("/messages", messagesHandler.GetMessages)
	}

	app.Get("/health", api.Health)

	app.Use(func(c *fiber.Ctx) error {
		return utils.NotFoundError(catalog.T(utils.MsgNotFound), nil)
	})

	cleanup := func() {
		if err := backing.Close(); err != nil {
			utils.Log.Warn("Failed to close session storage: %v", err)
		}
	}
	return app, cleanup, nil
}

func main() {
	cfg, err := config.LoadConfig("config.toml")
	if err != nil {
		utils.Log.Error("Failed to load config: %v", err)
		os.Exit(1)
	}

	level, err := utils.ParseLogLevel(cfg.Server.LogLevel)
	if err != nil {
		utils.Log.Warn("Invalid log level, using info: %v", err)
		level = utils.INFO
	}
	utils.Log.SetLevel(level)
	utils.Log.Info("Initializing ouvidoria...")

	app, cleanup, err := NewApp(cfg, newSubmitter(cfg))
	if err != nil {
		utils.Log.Error("Failed to initialize: %v", err)
		os.Exit(1)
	}
	defer cleanup()

	addr := cfg.ListenAddr()
	utils.Log.WithFields(map[string]interface{}{
		"addr":   addr,
		"submit": cfg.Submit.Mode,
		"phone":  cfg.Form.PhonePolicy,
	}).Info("Starting server")

	if cfg.SSL.Enabled {
		err = app.ListenTLS(addr, cfg.SSL.CertFile, cfg.SSL.KeyFile)
	} else {
		err = app.Listen(addr)
	}
	if err != nil {
		utils.Log.Error("Error starting server: %v", err)
	}
}
