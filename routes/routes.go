package routes

import (
	"eshop/config"
	"eshop/storage"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

func SetupRoutes(app *fiber.App, cfg *config.Config, store storage.Store) {
	startBroadcast()

	// Mount WebSocket endpoint for product change events
	app.Get("/ws", eventsHandler)

	api := app.Group(cfg.APIBase)

	// Product routes
	products := api.Group("/products")
	products.Get("/", getAllProducts)
	products.Get("/get/count", getProductCount)
	products.Get("/get/featured/:count", getFeaturedProducts)
	products.Get("/:id", getProduct)
	products.Post("/", createProduct(store))
	products.Put("/gallery-images/:id", updateGalleryImages(store))
	products.Put("/:id", updateProduct(store))
	products.Delete("/:id", deleteProduct)

	// Category routes
	categories := api.Group("/categories")
	categories.Get("/", getAllCategories)
	categories.Get("/:id", getCategory)
	categories.Post("/", createCategory)
	categories.Put("/:id", updateCategory)
	categories.Delete("/:id", deleteCategory)

	// User routes
	users := api.Group("/users")
	users.Post("/login", loginUser(cfg))
	users.Post("/register", registerUser)
	users.Get("/get/count", getUserCount)
	users.Get("/", getAllUsers)
	users.Get("/:id", getUser)
	users.Delete("/:id", deleteUser)

	// Order routes
	orders := api.Group("/orders")
	orders.Get("/get/count", getOrderCount)
	orders.Get("/get/totalsales", getTotalSales)
	orders.Get("/get/userorders/:userid", getUserOrders)
	orders.Get("/", getAllOrders)
	orders.Post("/", createOrder)
	orders.Get("/:id", getOrder)
	orders.Put("/:id", updateOrder)
	orders.Delete("/:id", deleteOrder)
}
