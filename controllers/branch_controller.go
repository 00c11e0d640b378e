package controllers

import (
	"fiber-erp/models"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type BranchController struct {
	DB *gorm.DB
}

var branchInput struct {
	Code    string `json:"code" validate:"required,min=2"`
	Name    string `json:"name" validate:"required,min=3"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

func (c *BranchController) GetAllBranches(ctx *fiber.Ctx) error {
	var branches []models.Branch
	if err := c.DB.Where("is_active = ?", true).Find(&branches).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve branches",
		})
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Branches retrieved successfully",
		"data":    branches,
	})
}

func (c *BranchController) CreateBranch(ctx *fiber.Ctx) error {
	if err := ctx.BodyParser(&branchInput); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	validate := validator.New()
	if err := validate.Struct(branchInput); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	userID, _ := ctx.Locals("userID").(float64)

	branch := models.Branch{
		Code:      branchInput.Code,
		Name:      branchInput.Name,
		Address:   branchInput.Address,
		Phone:     branchInput.Phone,
		IsActive:  true,
		CreatedBy: int(userID),
	}

	if err := c.DB.Create(&branch).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Branch created successfully",
		"data":    branch,
	})
}
