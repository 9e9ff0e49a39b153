package main

import (
	"log"
	"strings"

	"attendance-backend/internal/attendance"
	"attendance-backend/internal/auth"
	"attendance-backend/internal/config"
	"attendance-backend/internal/database"
	"attendance-backend/internal/employee"
	"attendance-backend/internal/models"
	"attendance-backend/internal/notification"
	"attendance-backend/internal/request"
	"attendance-backend/internal/settings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)
	notification.Configure(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unexpected server error",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public: bootstrap gate and login
	api.Get("/system/status", auth.SystemStatusHandler())
	api.Post("/auth/setup", auth.SetupHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Attendance ledger
	protected.Post("/attendance/clock-in", attendance.ClockInHandler())
	protected.Post("/attendance/clock-out", attendance.ClockOutHandler())
	protected.Get("/attendance/today", attendance.TodayHandler())
	protected.Get("/attendance/records", attendance.RecordsHandler())
	protected.Get("/attendance/report",
		auth.RequireRole(models.RoleManager, models.RoleAdmin),
		attendance.ReportHandler())

	// Leave requests
	protected.Post("/leave-requests", request.CreateLeaveHandler())
	protected.Get("/leave-requests", request.ListLeaveHandler())
	protected.Post("/leave-requests/:id/approve",
		auth.RequireRole(models.RoleManager, models.RoleAdmin),
		request.ApproveLeaveHandler())
	protected.Post("/leave-requests/:id/reject",
		auth.RequireRole(models.RoleManager, models.RoleAdmin),
		request.RejectLeaveHandler())

	// Overtime requests
	protected.Post("/overtime-requests", request.CreateOvertimeHandler())
	protected.Get("/overtime-requests", request.ListOvertimeHandler())
	protected.Post("/overtime-requests/:id/approve",
		auth.RequireRole(models.RoleManager, models.RoleAdmin),
		request.ApproveOvertimeHandler())
	protected.Post("/overtime-requests/:id/reject",
		auth.RequireRole(models.RoleManager, models.RoleAdmin),
		request.RejectOvertimeHandler())

	// Employee administration
	protected.Get("/employees", employee.ListEmployeesHandler())
	protected.Get("/employees/:id", employee.GetEmployeeHandler())
	protected.Post("/employees",
		auth.RequireRole(models.RoleManager, models.RoleAdmin),
		employee.CreateEmployeeHandler())
	protected.Put("/employees/:id",
		auth.RequireRole(models.RoleManager, models.RoleAdmin),
		employee.UpdateEmployeeHandler())
	protected.Delete("/employees/:id",
		auth.RequireRole(models.RoleManager, models.RoleAdmin),
		employee.DeactivateEmployeeHandler())

	// Settings: reads for everyone (pickers), mutations admin-only
	protected.Get("/settings", settings.GetSettingsHandler())
	protected.Get("/settings/departments", settings.ListDepartmentsHandler())
	protected.Get("/settings/leave-types", settings.ListLeaveTypesHandler())

	adminSettings := protected.Group("/settings")
	adminSettings.Use(auth.RequireRole(models.RoleAdmin))
	adminSettings.Put("", settings.UpdateSettingsHandler())
	adminSettings.Post("/departments", settings.AddDepartmentHandler())
	adminSettings.Put("/departments/:id", settings.UpdateDepartmentHandler())
	adminSettings.Delete("/departments/:id", settings.DeleteDepartmentHandler())
	adminSettings.Post("/leave-types", settings.AddLeaveTypeHandler())
	adminSettings.Put("/leave-types/:id", settings.UpdateLeaveTypeHandler())
	adminSettings.Delete("/leave-types/:id", settings.DeleteLeaveTypeHandler())

	// Email audit log
	protected.Get("/email-logs",
		auth.RequireRole(models.RoleAdmin),
		notification.ListEmailLogsHandler())

	log.Println("Server listening on port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
