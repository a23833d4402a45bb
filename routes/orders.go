package routes

import (
	"errors"

	"eshop/apperr"
	"eshop/db"
	"eshop/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type orderItemRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity" validate:"required,min=1"`
}

type orderRequest struct {
	UserID           uint               `json:"user_id" validate:"required"`
	ShippingAddress1 string             `json:"shipping_address1" validate:"required"`
	ShippingAddress2 string             `json:"shipping_address2"`
	City             string             `json:"city" validate:"required"`
	Zip              string             `json:"zip" validate:"required"`
	Country          string             `json:"country" validate:"required"`
	Phone            string             `json:"phone" validate:"required"`
	OrderItems       []orderItemRequest `json:"order_items" validate:"required,min=1,dive"`
}

func getAllOrders(c *fiber.Ctx) error {
	var orders []models.Order
	if err := db.DB.
		Preload("OrderItems.Product.Category").
		Preload("OrderItems.Product").
		Preload("OrderItems").
		Order("created_at desc").
		Find(&orders).Error; err != nil {
		return apperr.Wrap(apperr.Persistence, "failed to get orders", err)
	}
	return c.JSON(orders)
}

func getOrder(c *fiber.Ctx) error {
	id := c.Params("id")
	var order models.Order
	if err := db.DB.
		Preload("OrderItems.Product.Category").
		Preload("OrderItems.Product").
		Preload("OrderItems").
		First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "order not found")
		}
		return apperr.Wrap(apperr.Persistence, "failed to get order", err)
	}
	return c.JSON(order)
}

// CreateOrder computes the total price server-side from the referenced
// product prices; the client never supplies it.
func createOrder(c *fiber.Ctx) error {
	req := new(orderRequest)
	if err := c.BodyParser(req); err != nil {
		return apperr.Wrap(apperr.Validation, "failed to parse request body", err)
	}
	if err := validate.Struct(req); err != nil {
		return apperr.Wrap(apperr.Validation, "invalid order payload", err)
	}

	var total float64
	items := make([]models.OrderItem, 0, len(req.OrderItems))
	for _, item := range req.OrderItems {
		var product models.Product
		if err := db.DB.First(&product, item.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.Validation, "invalid product in order")
			}
			return apperr.Wrap(apperr.Persistence, "failed to check product", err)
		}
		total += product.Price * float64(item.Quantity)
		items = append(items, models.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	order := models.Order{
		Status:           "Pending",
		TotalPrice:       total,
		UserID:           req.UserID,
		ShippingAddress1: req.ShippingAddress1,
		ShippingAddress2: req.ShippingAddress2,
		City:             req.City,
		Zip:              req.Zip,
		Country:          req.Country,
		Phone:            req.Phone,
		OrderItems:       items,
	}

	if err := db.DB.Create(&order).Error; err != nil {
		return apperr.Wrap(apperr.Persistence, "the order cannot be created", err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// UpdateOrder only moves the order status
func updateOrder(c *fiber.Ctx) error {
	id := c.Params("id")

	var req struct {
		Status string `json:"status" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return apperr.Wrap(apperr.Validation, "failed to parse request body", err)
	}
	if err := validate.Struct(&req); err != nil {
		return apperr.Wrap(apperr.Validation, "status is required", err)
	}

	var order models.Order
	if err := db.DB.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "order not found")
		}
		return apperr.Wrap(apperr.Persistence, "failed to find order", err)
	}

	if err := db.DB.Model(&order).Update("status", req.Status).Error; err != nil {
		return apperr.Wrap(apperr.Persistence, "the order cannot be updated", err)
	}
	return c.JSON(order)
}

func deleteOrder(c *fiber.Ctx) error {
	id := c.Params("id")

	var order models.Order
	if err := db.DB.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "the order was not found")
		}
		return apperr.Wrap(apperr.Persistence, "failed to find order", err)
	}

	// Items go with their order
	if err := db.DB.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
		return apperr.Wrap(apperr.Persistence, "failed to delete order items", err)
	}
	if err := db.DB.Delete(&order).Error; err != nil {
		return apperr.Wrap(apperr.Persistence, "failed to delete order", err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "the order was deleted",
	})
}

func getOrderCount(c *fiber.Ctx) error {
	var total int64
	if err := db.DB.Model(&models.Order{}).Count(&total).Error; err != nil {
		return apperr.Wrap(apperr.Persistence, "failed to count orders", err)
	}
	return c.JSON(fiber.Map{"orderCount": total})
}

func getTotalSales(c *fiber.Ctx) error {
	var totalSales float64
	if err := db.DB.Model(&models.Order{}).
		Select("COALESCE(SUM(total_price), 0)").
		Scan(&totalSales).Error; err != nil {
		return apperr.Wrap(apperr.Persistence, "failed to compute total sales", err)
	}
	return c.JSON(fiber.Map{"totalsales": totalSales})
}

func getUserOrders(c *fiber.Ctx) error {
	userID := c.Params("userid")

	var orders []models.Order
	if err := db.DB.
		Preload("OrderItems.Product.Category").
		Preload("OrderItems.Product").
		Preload("OrderItems").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&orders).Error; err != nil {
		return apperr.Wrap(apperr.Persistence, "failed to get user orders", err)
	}
	return c.JSON(orders)
}
