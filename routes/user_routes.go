package routes

import (
	"fiber-erp/config"
	"fiber-erp/controllers"
	"fiber-erp/database"
	"fiber-erp/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App) {
	userController := &controllers.UserController{}
	api := app.Group(config.MAIN_ROUTES+"/users", middleware.AuthMiddleware)
	api.Use(middleware.InjectDBMiddleware(userController))

	db, _ := database.GetDBConnection(config.DBName)
	authMiddleware := &middleware.AuthMiddlewareStruct{DB: db}

	api.Get("/", authMiddleware.CheckCapability("USER.MANAGE"), userController.GetAllUsers)
}
