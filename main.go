package main

import (
	"log"
	"regexp"

	"eshop/apperr"
	"eshop/auth"
	"eshop/config"
	"eshop/db"
	"eshop/routes"
	"eshop/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// exemptions is the explicit allow-list of requests served without a
// credential. Everything not listed here requires an admin token.
func exemptions(apiBase string) []auth.Rule {
	get := []string{fiber.MethodGet, fiber.MethodOptions}
	return []auth.Rule{
		{Pattern: regexp.MustCompile(`^` + apiBase + `/products`), Methods: get},
		{Pattern: regexp.MustCompile(`^` + apiBase + `/categories`), Methods: get},
		{Pattern: regexp.MustCompile(`^/public/uploads`), Methods: get},
		{Path: apiBase + "/users/login", Methods: []string{fiber.MethodPost}},
		{Path: apiBase + "/users/register", Methods: []string{fiber.MethodPost}},
		{Path: "/ws"},
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	// Initialize database
	db.InitDatabase(cfg.DBPath)

	store, err := storage.NewDiskStore(cfg.UploadDir)
	if err != nil {
		log.Fatal(err)
	}

	gate, err := auth.NewGate(auth.GateConfig{
		Secret:     cfg.Secret,
		Exemptions: exemptions(cfg.APIBase),
	})
	if err != nil {
		log.Fatal(err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: apperr.Handler(cfg.Production()),
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())
	app.Use(gate)

	// Serve uploaded files
	app.Static("/public/uploads", cfg.UploadDir)

	// Setup routes
	routes.SetupRoutes(app, cfg, store)

	// Start server
	log.Fatal(app.Listen(":" + cfg.Port))
}
