package models

// 訂單明細，由所屬訂單建立與刪除
type OrderItem struct {
	Model
	OrderID   *string  `gorm:"type:char(36);index" json:"-"`
	Position  int      `gorm:"not null" json:"-"`
	Quantity  int      `gorm:"not null" json:"quantity"`
	ProductID string   `gorm:"type:char(36);not null" json:"productId"`
	Product   *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}
