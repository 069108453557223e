package models

import (
	"github.com/shopspring/decimal"
	"time"
)

const DefaultOrderStatus = "Pending"

type Order struct {
	Model
	OrderItems       []OrderItem     `gorm:"foreignKey:OrderID" json:"orderItems"`
	ShippingAddress1 string          `gorm:"not null" json:"shippingAddress1"`
	ShippingAddress2 string          `json:"shippingAddress2"`
	City             string          `gorm:"not null" json:"city"`
	Zip              string          `gorm:"not null" json:"zip"`
	Country          string          `gorm:"not null" json:"country"`
	Phone            string          `gorm:"not null" json:"phone"`
	Status           string          `gorm:"not null;default:Pending" json:"status"`
	TotalPrice       decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"totalPrice"`
	UserID           string          `gorm:"type:char(36);index" json:"userId"`
	User             *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	DateOrdered      time.Time       `gorm:"index" json:"dateOrdered"`
}
