package routes

import (
	"errors"

	"eshop/apperr"
	"eshop/db"
	"eshop/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func getAllCategories(c *fiber.Ctx) error {
	var categories []models.Category
	if err := db.DB.Find(&categories).Error; err != nil {
		return apperr.Wrap(apperr.Persistence, "failed to get categories", err)
	}
	return c.JSON(categories)
}

func getCategory(c *fiber.Ctx) error {
	id := c.Params("id")
	var category models.Category
	if err := db.DB.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "category not found")
		}
		return apperr.Wrap(apperr.Persistence, "failed to get category", err)
	}
	return c.JSON(category)
}

func createCategory(c *fiber.Ctx) error {
	category := new(models.Category)
	if err := c.BodyParser(category); err != nil {
		return apperr.Wrap(apperr.Validation, "failed to parse request body", err)
	}
	if err := validate.Struct(category); err != nil {
		return apperr.Wrap(apperr.Validation, "invalid category payload", err)
	}

	// Products are never written through this endpoint
	category.Products = nil

	if err := db.DB.Create(&category).Error; err != nil {
		return apperr.Wrap(apperr.Persistence, "the category cannot be created", err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

func updateCategory(c *fiber.Ctx) error {
	id := c.Params("id")
	category := new(models.Category)
	if err := c.BodyParser(category); err != nil {
		return apperr.Wrap(apperr.Validation, "failed to parse request body", err)
	}

	var existing models.Category
	if err := db.DB.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "category not found")
		}
		return apperr.Wrap(apperr.Persistence, "failed to find category", err)
	}

	category.Products = nil
	if err := db.DB.Model(&existing).Updates(category).Error; err != nil {
		return apperr.Wrap(apperr.Persistence, "the category cannot be updated", err)
	}
	return c.JSON(existing)
}

func deleteCategory(c *fiber.Ctx) error {
	id := c.Params("id")

	// Detach products first so they survive the category removal
	if err := db.DB.Model(&models.Product{}).Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
		return apperr.Wrap(apperr.Persistence, "failed to detach products", err)
	}

	result := db.DB.Delete(&models.Category{}, id)
	if result.Error != nil {
		return apperr.Wrap(apperr.Persistence, "failed to delete category", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "the category was not found")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "the category was deleted",
	})
}
