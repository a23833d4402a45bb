package models

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `json:"name" validate:"required"`
	Email        string    `gorm:"unique" json:"email" validate:"required,email"`
	PasswordHash string    `json:"-"`
	Phone        string    `json:"phone"`
	IsAdmin      bool      `json:"is_admin"`
	Street       string    `json:"street"`
	Apartment    string    `json:"apartment"`
	Zip          string    `json:"zip"`
	City         string    `json:"city"`
	Country      string    `json:"country"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	Orders       []Order   `gorm:"foreignKey:UserID" json:"orders,omitempty"`
}
