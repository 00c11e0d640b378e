package routes

import (
	"fiber-erp/config"
	"fiber-erp/controllers"
	"fiber-erp/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupTransferRoutes(app *fiber.App) {
	transferController := &controllers.TransferController{}
	api := app.Group(config.MAIN_ROUTES+"/transfers", middleware.AuthMiddleware)
	api.Use(middleware.InjectDBMiddleware(transferController))

	api.Post("/", transferController.CreateTransfer)
	api.Get("/", transferController.GetAllTransfers)
	api.Get("/export", transferController.ExportTransfers)
	api.Get("/:id", transferController.GetTransferByID)
	api.Post("/:id/approve", transferController.ApproveTransfer)
	api.Post("/:id/reject", transferController.RejectTransfer)
	api.Post("/:id/dispatch", transferController.DispatchTransfer)
	api.Post("/:id/receive", transferController.ReceiveTransfer)
	api.Post("/:id/cancel", transferController.CancelTransfer)
}
