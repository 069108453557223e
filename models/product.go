package models

import (
	"github.com/shopspring/decimal"
	"time"
)

type Product struct {
	Model
	Name            string          `gorm:"not null" json:"name"`
	Description     string          `gorm:"not null" json:"description"`
	RichDescription string          `json:"richDescription"`
	Image           string          `json:"image"`
	Images          []string        `gorm:"serializer:json" json:"images"`
	Brand           string          `json:"brand"`
	Price           decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"price"`
	CategoryID      string          `gorm:"type:char(36);not null;index" json:"categoryId"`
	Category        *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	CountInStock    int             `gorm:"not null" json:"countInStock"`
	Rating          float64         `json:"rating"`
	NumReviews      int             `json:"numReviews"`
	IsFeatured      bool            `gorm:"index" json:"isFeatured"`
	DateCreated     time.Time       `gorm:"autoCreateTime" json:"dateCreated"`
}
