package models

type Category struct {
	Model
	Name  string `gorm:"not null" json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}
