package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"time"
)

func init() {
	//金額以數字輸出而非字串
	decimal.MarshalJSONWithoutQuotes = true
}

// 所有文件共用的欄位，ID為UUID字串
type Model struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (m *Model) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// 檢查ID格式是否正確
func IsValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
