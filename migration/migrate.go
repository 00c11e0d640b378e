package migration

import (
	"fiber-erp/models"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Capability{},
		&models.Branch{},
		&models.Transfer{},
		&models.TransferLog{},
	)
}
