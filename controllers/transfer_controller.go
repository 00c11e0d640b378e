package controllers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"fiber-erp/models"
	"fiber-erp/repositories"
	"fiber-erp/types"
	"fiber-erp/workflow"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type TransferController struct {
	DB *gorm.DB
}

func (c *TransferController) buildEngine() (*workflow.Service, *workflow.Query) {
	store := repositories.NewTransferRepository(c.DB)
	directory := repositories.NewDirectoryRepository(c.DB)
	gate := workflow.NewGate(directory, directory, nil)
	return workflow.NewService(store, gate, directory), workflow.NewQuery(store)
}

func statusForWorkflowError(err error) int {
	switch workflow.KindOf(err) {
	case workflow.KindValidation:
		return fiber.StatusBadRequest
	case workflow.KindNotFound:
		return fiber.StatusNotFound
	case workflow.KindForbidden:
		return fiber.StatusForbidden
	case workflow.KindInvalidTransition:
		return fiber.StatusUnprocessableEntity
	case workflow.KindConflict:
		return fiber.StatusConflict
	case workflow.KindUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func actorFromContext(ctx *fiber.Ctx) (uint, error) {
	userID, ok := ctx.Locals("userID").(float64)
	if !ok {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized: Invalid user ID")
	}
	return uint(userID), nil
}

func (c *TransferController) CreateTransfer(ctx *fiber.Ctx) error {
	actorID, err := actorFromContext(ctx)
	if err != nil {
		return err
	}

	var input models.FormCreateTransfer
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	service, _ := c.buildEngine()
	transfer, err := service.Create(ctx.Context(), workflow.CreateTransferInput{
		TransferType: models.TransferType(input.TransferType),
		FromBranchID: input.FromBranchID,
		ToBranchID:   input.ToBranchID,
		Reason:       input.Reason,
		ActorID:      actorID,
	})
	if err != nil {
		return ctx.Status(statusForWorkflowError(err)).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Transfer created successfully",
		"data":    transfer,
	})
}

type transitionFunc func(ctx context.Context, id types.SnowflakeID, actorID uint, remarks string) (*models.Transfer, error)

func (c *TransferController) applyTransition(ctx *fiber.Ctx, message string, fn func(*workflow.Service) transitionFunc) error {
	actorID, err := actorFromContext(ctx)
	if err != nil {
		return err
	}

	id, err := strconv.ParseInt(ctx.Params("id"), 10, 64)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid transfer id"})
	}

	var input models.FormTransferAction
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&input); err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
	}

	service, _ := c.buildEngine()
	transfer, err := fn(service)(ctx.Context(), types.SnowflakeID(id), actorID, input.Remarks)
	if err != nil {
		return ctx.Status(statusForWorkflowError(err)).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    transfer,
	})
}

func (c *TransferController) ApproveTransfer(ctx *fiber.Ctx) error {
	return c.applyTransition(ctx, "Transfer approved successfully", func(s *workflow.Service) transitionFunc { return s.Approve })
}

func (c *TransferController) RejectTransfer(ctx *fiber.Ctx) error {
	return c.applyTransition(ctx, "Transfer rejected successfully", func(s *workflow.Service) transitionFunc { return s.Reject })
}

func (c *TransferController) DispatchTransfer(ctx *fiber.Ctx) error {
	return c.applyTransition(ctx, "Transfer dispatched successfully", func(s *workflow.Service) transitionFunc { return s.Dispatch })
}

func (c *TransferController) ReceiveTransfer(ctx *fiber.Ctx) error {
	return c.applyTransition(ctx, "Transfer received successfully", func(s *workflow.Service) transitionFunc { return s.Receive })
}

func (c *TransferController) CancelTransfer(ctx *fiber.Ctx) error {
	return c.applyTransition(ctx, "Transfer cancelled successfully", func(s *workflow.Service) transitionFunc { return s.Cancel })
}

func filterFromQuery(ctx *fiber.Ctx) workflow.Filter {
	var f workflow.Filter
	if v := ctx.Query("branch_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			branchID := uint(id)
			f.BranchID = &branchID
		}
	}
	if v := ctx.Query("type"); v != "" {
		transferType := models.TransferType(v)
		f.Type = &transferType
	}
	if v := ctx.Query("status"); v != "" {
		status := models.TransferStatus(v)
		f.Status = &status
	}
	return f
}

func (c *TransferController) GetAllTransfers(ctx *fiber.Ctx) error {
	_, query := c.buildEngine()
	transfers, err := query.List(ctx.Context(), filterFromQuery(ctx))
	if err != nil {
		return ctx.Status(statusForWorkflowError(err)).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"transfers": transfers},
	})
}

func (c *TransferController) GetTransferByID(ctx *fiber.Ctx) error {
	id, err := strconv.ParseInt(ctx.Params("id"), 10, 64)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid transfer id"})
	}

	_, query := c.buildEngine()
	transfer, logs, err := query.Get(ctx.Context(), types.SnowflakeID(id))
	if err != nil {
		return ctx.Status(statusForWorkflowError(err)).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"transfer": transfer, "logs": logs},
	})
}

// ExportTransfers writes the filtered transfer register as an Excel file.
func (c *TransferController) ExportTransfers(ctx *fiber.Ctx) error {
	_, query := c.buildEngine()
	transfers, err := query.List(ctx.Context(), filterFromQuery(ctx))
	if err != nil {
		return ctx.Status(statusForWorkflowError(err)).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	f := excelize.NewFile()
	sheet := "Sheet1"

	f.SetCellValue(sheet, "A1", "Transfer Code")
	f.SetCellValue(sheet, "B1", "Type")
	f.SetCellValue(sheet, "C1", "From Branch")
	f.SetCellValue(sheet, "D1", "To Branch")
	f.SetCellValue(sheet, "E1", "Status")
	f.SetCellValue(sheet, "F1", "Reason")
	f.SetCellValue(sheet, "G1", "Requested At")

	for i, item := range transfers {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", i+2), item.TransferCode)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", i+2), string(item.TransferType))
		f.SetCellValue(sheet, fmt.Sprintf("C%d", i+2), item.FromBranchID)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", i+2), item.ToBranchID)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", i+2), string(item.Status))
		f.SetCellValue(sheet, fmt.Sprintf("F%d", i+2), item.Reason)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", i+2), item.RequestedAt.Format("2006-01-02 15:04:05"))
	}

	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", `attachment; filename="transfers.xlsx"`)

	if err := f.Write(ctx.Response().BodyWriter()); err != nil {
		return ctx.Status(http.StatusInternalServerError).SendString("Failed to generate Excel")
	}

	return nil
}
