package models

import "time"

type Order struct {
	ID               uint        `gorm:"primaryKey" json:"id"`
	Status           string      `gorm:"default:Pending" json:"status"`
	TotalPrice       float64     `json:"total_price"`
	UserID           uint        `json:"user_id"`
	ShippingAddress1 string      `json:"shipping_address1"`
	ShippingAddress2 string      `json:"shipping_address2,omitempty" gorm:"default:null"`
	City             string      `json:"city"`
	Zip              string      `json:"zip"`
	Country          string      `json:"country"`
	Phone            string      `json:"phone"`
	CreatedAt        time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
	OrderItems       []OrderItem `gorm:"foreignKey:OrderID" json:"order_items"`
}

type OrderItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `json:"order_id"`
	ProductID uint      `json:"product_id"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
	Product   Product   `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
