package routes

import (
	"errors"
	"time"

	"eshop/apperr"
	"eshop/auth"
	"eshop/config"
	"eshop/db"
	"eshop/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const tokenTTL = 24 * time.Hour

type registerRequest struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	Phone     string `json:"phone"`
	IsAdmin   bool   `json:"is_admin"`
	Street    string `json:"street"`
	Apartment string `json:"apartment"`
	Zip       string `json:"zip"`
	City      string `json:"city"`
	Country   string `json:"country"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func registerUser(c *fiber.Ctx) error {
	req := new(registerRequest)
	if err := c.BodyParser(req); err != nil {
		return apperr.Wrap(apperr.Validation, "failed to parse request body", err)
	}
	if err := validate.Struct(req); err != nil {
		return apperr.Wrap(apperr.Validation, "invalid user payload", err)
	}

	var existing models.User
	if err := db.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return apperr.New(apperr.Validation, "email already in use")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Wrap(apperr.Persistence, "failed to check email", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Wrap(apperr.Persistence, "failed to hash password", err)
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Phone:        req.Phone,
		IsAdmin:      req.IsAdmin,
		Street:       req.Street,
		Apartment:    req.Apartment,
		Zip:          req.Zip,
		City:         req.City,
		Country:      req.Country,
	}
	if err := db.DB.Create(&user).Error; err != nil {
		return apperr.Wrap(apperr.Persistence, "the user cannot be created", err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

func loginUser(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := new(loginRequest)
		if err := c.BodyParser(req); err != nil {
			return apperr.Wrap(apperr.Validation, "failed to parse request body", err)
		}
		if err := validate.Struct(req); err != nil {
			return apperr.Wrap(apperr.Validation, "email and password are required", err)
		}

		var user models.User
		if err := db.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.Auth, "invalid email or password")
			}
			return apperr.Wrap(apperr.Persistence, "failed to find user", err)
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			return apperr.New(apperr.Auth, "invalid email or password")
		}

		token, err := auth.GenerateToken(cfg.Secret, user.ID, user.IsAdmin, tokenTTL)
		if err != nil {
			return apperr.Wrap(apperr.Persistence, "failed to issue token", err)
		}

		return c.JSON(fiber.Map{
			"user":  user.Email,
			"token": token,
		})
	}
}

func getAllUsers(c *fiber.Ctx) error {
	var users []models.User
	if err := db.DB.Find(&users).Error; err != nil {
		return apperr.Wrap(apperr.Persistence, "failed to get users", err)
	}
	return c.JSON(users)
}

func getUser(c *fiber.Ctx) error {
	id := c.Params("id")
	var user models.User
	if err := db.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "user not found")
		}
		return apperr.Wrap(apperr.Persistence, "failed to get user", err)
	}
	return c.JSON(user)
}

func deleteUser(c *fiber.Ctx) error {
	id := c.Params("id")

	result := db.DB.Delete(&models.User{}, id)
	if result.Error != nil {
		return apperr.Wrap(apperr.Persistence, "failed to delete user", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "the user was not found")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "the user was deleted",
	})
}

func getUserCount(c *fiber.Ctx) error {
	var total int64
	if err := db.DB.Model(&models.User{}).Count(&total).Error; err != nil {
		return apperr.Wrap(apperr.Persistence, "failed to count users", err)
	}
	return c.JSON(fiber.Map{"userCount": total})
}
