package routes

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"eshop/apperr"
	"eshop/db"
	"eshop/models"
	"eshop/storage"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// uploadsPath is the public prefix under which stored images are served.
const uploadsPath = "/public/uploads"

type productForm struct {
	Name            string  `form:"name" validate:"required"`
	Description     string  `form:"description" validate:"required"`
	RichDescription string  `form:"rich_description"`
	Brand           string  `form:"brand"`
	Price           float64 `form:"price" validate:"required,gt=0"`
	CategoryID      uint    `form:"category" validate:"required"`
	CountInStock    int     `form:"count_in_stock" validate:"gte=0"`
	Rating          float64 `form:"rating" validate:"gte=0,lte=5"`
	NumReviews      int     `form:"num_reviews" validate:"gte=0"`
	IsFeatured      bool    `form:"is_featured"`
}

type productUpdateForm struct {
	Name            string  `form:"name"`
	Description     string  `form:"description"`
	RichDescription string  `form:"rich_description"`
	Brand           string  `form:"brand"`
	Price           float64 `form:"price" validate:"omitempty,gt=0"`
	CategoryID      uint    `form:"category" validate:"required"`
	CountInStock    int     `form:"count_in_stock" validate:"gte=0"`
	Rating          float64 `form:"rating" validate:"gte=0,lte=5"`
	NumReviews      int     `form:"num_reviews" validate:"gte=0"`
	IsFeatured      bool    `form:"is_featured"`
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, apperr.Wrap(apperr.Validation, "invalid product id", err)
	}
	return uint(id), nil
}

// uploadsURL builds the public URL an uploaded file is served under.
func uploadsURL(c *fiber.Ctx, storedName string) string {
	return fmt.Sprintf("%s://%s%s/%s", c.Protocol(), c.Hostname(), uploadsPath, storedName)
}

// resolveCategory validates the category reference before anything is written.
func resolveCategory(id uint) (models.Category, error) {
	var category models.Category
	if err := db.DB.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return category, apperr.New(apperr.Validation, "invalid category")
		}
		return category, apperr.Wrap(apperr.Persistence, "failed to check category", err)
	}
	return category, nil
}

// GetAllProducts - GET /products?categories=1,2
func getAllProducts(c *fiber.Ctx) error {
	query := db.DB.Preload("Category")

	if filter := c.Query("categories"); filter != "" {
		var ids []uint
		for _, raw := range strings.Split(filter, ",") {
			id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
			if err != nil {
				return apperr.Wrap(apperr.Validation, "invalid category id", err)
			}
			ids = append(ids, uint(id))
		}
		query = query.Where("category_id IN ?", ids)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return apperr.Wrap(apperr.Persistence, "failed to get products", err)
	}
	return c.JSON(products)
}

// GetProduct - GET /products/:id
func getProduct(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}

	var product models.Product
	if err := db.DB.Preload("Category").First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "product not found")
		}
		return apperr.Wrap(apperr.Persistence, "failed to get product", err)
	}
	return c.JSON(product)
}

// GetProductCount - GET /products/get/count
func getProductCount(c *fiber.Ctx) error {
	var total int64
	if err := db.DB.Model(&models.Product{}).Count(&total).Error; err != nil {
		return apperr.Wrap(apperr.Persistence, "failed to count products", err)
	}
	return c.JSON(fiber.Map{"productCount": total})
}

// GetFeaturedProducts - GET /products/get/featured/:count
func getFeaturedProducts(c *fiber.Ctx) error {
	count, err := strconv.Atoi(c.Params("count"))
	if err != nil || count < 0 {
		return apperr.New(apperr.Validation, "invalid count parameter")
	}

	var products []models.Product
	if err := db.DB.Where("is_featured = ?", true).Limit(count).Find(&products).Error; err != nil {
		return apperr.Wrap(apperr.Persistence, "failed to get featured products", err)
	}
	return c.JSON(products)
}

// CreateProduct - POST /products (multipart: product fields + one "image" file)
func createProduct(store storage.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form := new(productForm)
		if err := c.BodyParser(form); err != nil {
			return apperr.Wrap(apperr.Validation, "failed to parse request body", err)
		}
		if err := validate.Struct(form); err != nil {
			return apperr.Wrap(apperr.Validation, "invalid product payload", err)
		}

		category, err := resolveCategory(form.CategoryID)
		if err != nil {
			return err
		}

		fh, err := c.FormFile("image")
		if err != nil {
			return apperr.New(apperr.Validation, "no image in the request")
		}

		storedName, err := store.Save(storage.FromMultipart(fh))
		if err != nil {
			if errors.Is(err, storage.ErrUnsupportedType) {
				return apperr.Wrap(apperr.Validation, "invalid image type", err)
			}
			return apperr.Wrap(apperr.Storage, "failed to store image", err)
		}

		product := models.Product{
			Name:            form.Name,
			Description:     form.Description,
			RichDescription: form.RichDescription,
			Image:           uploadsURL(c, storedName),
			Brand:           form.Brand,
			Price:           form.Price,
			CategoryID:      form.CategoryID,
			CountInStock:    form.CountInStock,
			Rating:          form.Rating,
			NumReviews:      form.NumReviews,
			IsFeatured:      form.IsFeatured,
		}

		if err := db.DB.Create(&product).Error; err != nil {
			return apperr.Wrap(apperr.Persistence, "the product cannot be created", err)
		}
		product.Category = category

		publishProductEvent("created", product)
		return c.Status(fiber.StatusCreated).JSON(product)
	}
}

// UpdateProduct - PUT /products/:id (multipart, image optional)
func updateProduct(store storage.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c.Params("id"))
		if err != nil {
			return err
		}

		var existing models.Product
		if err := db.DB.First(&existing, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.NotFound, "product not found")
			}
			return apperr.Wrap(apperr.Persistence, "failed to find product", err)
		}

		form := new(productUpdateForm)
		if err := c.BodyParser(form); err != nil {
			return apperr.Wrap(apperr.Validation, "failed to parse request body", err)
		}
		if err := validate.Struct(form); err != nil {
			return apperr.Wrap(apperr.Validation, "invalid product payload", err)
		}

		if _, err := resolveCategory(form.CategoryID); err != nil {
			return err
		}

		// If no new file is supplied the existing image URL is kept.
		imageURL := existing.Image
		if fh, err := c.FormFile("image"); err == nil {
			storedName, err := store.Save(storage.FromMultipart(fh))
			if err != nil {
				if errors.Is(err, storage.ErrUnsupportedType) {
					return apperr.Wrap(apperr.Validation, "invalid image type", err)
				}
				return apperr.Wrap(apperr.Storage, "failed to store image", err)
			}
			imageURL = uploadsURL(c, storedName)
		}

		updates := models.Product{
			Name:            form.Name,
			Description:     form.Description,
			RichDescription: form.RichDescription,
			Image:           imageURL,
			Brand:           form.Brand,
			Price:           form.Price,
			CategoryID:      form.CategoryID,
			CountInStock:    form.CountInStock,
			Rating:          form.Rating,
			NumReviews:      form.NumReviews,
			IsFeatured:      form.IsFeatured,
		}

		if err := db.DB.Model(&existing).Updates(updates).Error; err != nil {
			return apperr.Wrap(apperr.Persistence, "the product cannot be updated", err)
		}

		var updated models.Product
		if err := db.DB.Preload("Category").First(&updated, id).Error; err != nil {
			return apperr.Wrap(apperr.Persistence, "failed to reload product", err)
		}

		publishProductEvent("updated", updated)
		return c.JSON(updated)
	}
}

// UpdateGalleryImages - PUT /products/gallery-images/:id (up to 10 "images" files)
func updateGalleryImages(store storage.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c.Params("id"))
		if err != nil {
			return err
		}

		var product models.Product
		if err := db.DB.First(&product, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.NotFound, "product not found")
			}
			return apperr.Wrap(apperr.Persistence, "failed to find product", err)
		}

		form, err := c.MultipartForm()
		if err != nil {
			return apperr.Wrap(apperr.Validation, "failed to parse request body", err)
		}
		files := form.File["images"]
		if len(files) == 0 {
			return apperr.New(apperr.Validation, "no images in the request")
		}
		if len(files) > 10 {
			return apperr.New(apperr.Validation, "a maximum of 10 images is allowed")
		}

		// Type-check the whole batch before storing anything, so a
		// partially-invalid batch writes nothing.
		for _, fh := range files {
			if _, ok := storage.Extension(fh.Header.Get("Content-Type")); !ok {
				return apperr.New(apperr.Validation, "invalid image type")
			}
		}

		urls := make([]string, 0, len(files))
		for _, fh := range files {
			storedName, err := store.Save(storage.FromMultipart(fh))
			if err != nil {
				return apperr.Wrap(apperr.Storage, "failed to store image", err)
			}
			urls = append(urls, uploadsURL(c, storedName))
		}

		if err := db.DB.Model(&product).Updates(models.Product{Images: urls}).Error; err != nil {
			return apperr.Wrap(apperr.Persistence, "the product cannot be updated", err)
		}
		product.Images = urls

		publishProductEvent("updated", product)
		return c.JSON(product)
	}
}

// DeleteProduct - DELETE /products/:id
func deleteProduct(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}

	result := db.DB.Delete(&models.Product{}, id)
	if result.Error != nil {
		return apperr.Wrap(apperr.Persistence, "failed to delete product", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "the product was not found")
	}

	publishProductEvent("deleted", models.Product{ID: id})
	return c.JSON(fiber.Map{
		"success": true,
		"message": "the product was deleted",
	})
}
