package models

import "gorm.io/gorm"

type Branch struct {
	gorm.Model
	Code      string `json:"code" gorm:"unique"`
	Name      string `json:"name" gorm:"unique"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
	IsActive  bool   `json:"is_active" gorm:"default:true"`
	CreatedBy int
	UpdatedBy int
	DeletedBy int
}
