package models

import "gorm.io/gorm"

type User struct {
	gorm.Model
	Username string `json:"username" gorm:"unique"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Email    string `json:"email" gorm:"unique"`
	Roles    []Role `gorm:"many2many:user_roles;"`
	// Branches the user belongs to, used for branch scoping of transfer
	// actions (dispatch from, receive at).
	Branches  []Branch `gorm:"many2many:user_branches;"`
	IsActive  bool     `json:"is_active" gorm:"default:true"`
	CreatedBy int
	UpdatedBy int
	DeletedBy int
}

// Role Model
type Role struct {
	gorm.Model
	Name         string
	Description  string
	Capabilities []Capability `gorm:"many2many:role_capabilities;"`
}

// Capability Model, e.g. TRANSFER.APPROVE
type Capability struct {
	gorm.Model
	Code        string `gorm:"unique"`
	Description string
}
