// database/seeder.go
package database

import (
	"log"

	"fiber-erp/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func RunSeeders(db *gorm.DB) {
	SeedCapabilities(db)
	SeedRoles(db)
	SeedBranches(db)
	SeedUserMaster(db)
}

func SeedCapabilities(db *gorm.DB) {
	capabilities := []models.Capability{
		{Code: "TRANSFER.APPROVE", Description: "Approve a pending transfer"},
		{Code: "TRANSFER.REJECT", Description: "Reject a pending transfer"},
		{Code: "TRANSFER.DISPATCH", Description: "Dispatch an approved transfer"},
		{Code: "TRANSFER.RECEIVE", Description: "Receive an in-transit transfer"},
		{Code: "TRANSFER.CANCEL", Description: "Cancel a transfer administratively"},
		{Code: "BRANCH.MANAGE", Description: "Create and update branches"},
		{Code: "USER.MANAGE", Description: "Create and update users"},
	}

	for _, c := range capabilities {
		var existing models.Capability
		if err := db.Where("code = ?", c.Code).First(&existing).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				db.Create(&c)
			}
		}
	}
}

func SeedRoles(db *gorm.DB) {
	roles := map[string][]string{
		"admin": {
			"TRANSFER.APPROVE", "TRANSFER.REJECT", "TRANSFER.DISPATCH",
			"TRANSFER.RECEIVE", "TRANSFER.CANCEL", "BRANCH.MANAGE", "USER.MANAGE",
		},
		"branch_operator": {"TRANSFER.DISPATCH", "TRANSFER.RECEIVE"},
		"supervisor":      {"TRANSFER.APPROVE", "TRANSFER.REJECT"},
	}

	for name, codes := range roles {
		var existing models.Role
		if err := db.Where("name = ?", name).First(&existing).Error; err != gorm.ErrRecordNotFound {
			continue
		}

		var capabilities []models.Capability
		db.Where("code IN ?", codes).Find(&capabilities)

		role := models.Role{Name: name, Capabilities: capabilities}
		if err := db.Create(&role).Error; err != nil {
			log.Printf("Failed to seed role %s: %v", name, err)
		}
	}
}

func SeedBranches(db *gorm.DB) {
	branches := []models.Branch{
		{Code: "HQ", Name: "Head Office", IsActive: true},
		{Code: "BR01", Name: "Branch 01", IsActive: true},
		{Code: "BR02", Name: "Branch 02", IsActive: true},
	}

	for _, b := range branches {
		var existing models.Branch
		if err := db.Where("code = ?", b.Code).First(&existing).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				db.Create(&b)
			}
		}
	}
}

func SeedUserMaster(db *gorm.DB) {
	var existing models.User
	if err := db.Where("username = ?", "admin").First(&existing).Error; err != gorm.ErrRecordNotFound {
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash seed password: %v", err)
	}

	var adminRole models.Role
	db.Where("name = ?", "admin").First(&adminRole)

	var branches []models.Branch
	db.Find(&branches)

	user := models.User{
		Username: "admin",
		Password: string(hashed),
		Name:     "Administrator",
		Email:    "admin@localhost",
		Roles:    []models.Role{adminRole},
		Branches: branches,
		IsActive: true,
	}

	if err := db.Create(&user).Error; err != nil {
		log.Fatalf("Failed to seed admin user: %v", err)
	}
}
