package models

import "time"

type Product struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `json:"name" validate:"required"`
	Description     string    `json:"description" validate:"required"`
	RichDescription string    `json:"rich_description"`
	Image           string    `json:"image"`
	Images          []string  `json:"images" gorm:"type:text;serializer:json"`
	Brand           string    `json:"brand"`
	Price           float64   `json:"price" validate:"required,gt=0"`
	CategoryID      uint      `json:"category_id" validate:"required"` // Foreign key to Category
	Category        Category  `gorm:"foreignKey:CategoryID" json:"category"`
	CountInStock    int       `json:"count_in_stock" validate:"gte=0"`
	Rating          float64   `json:"rating" validate:"gte=0,lte=5"`
	NumReviews      int       `json:"num_reviews" validate:"gte=0"`
	IsFeatured      bool      `json:"is_featured"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
