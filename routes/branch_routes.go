package routes

import (
	"fiber-erp/config"
	"fiber-erp/controllers"
	"fiber-erp/database"
	"fiber-erp/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupBranchRoutes(app *fiber.App) {
	branchController := &controllers.BranchController{}
	api := app.Group(config.MAIN_ROUTES+"/branches", middleware.AuthMiddleware)
	api.Use(middleware.InjectDBMiddleware(branchController))

	db, _ := database.GetDBConnection(config.DBName)
	authMiddleware := &middleware.AuthMiddlewareStruct{DB: db}

	api.Get("/", branchController.GetAllBranches)
	api.Post("/", authMiddleware.CheckCapability("BRANCH.MANAGE"), branchController.CreateBranch)
}
