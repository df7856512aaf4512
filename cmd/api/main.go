package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-procurement-ws/internal/handler"
	"go-procurement-ws/internal/middleware"
	"go-procurement-ws/internal/model"
	"go-procurement-ws/internal/repository"
	"go-procurement-ws/internal/service"
	"go-procurement-ws/internal/ws"
	"go-procurement-ws/pkg/database"
	pkgjwt "go-procurement-ws/pkg/jwt"
	"go-procurement-ws/pkg/mailer"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// 2. Setup Database
	db := database.ConnectDB()
	db.AutoMigrate(
		&model.Department{},
		&model.User{},
		&model.RoleGrant{},
		&model.Supplier{},
		&model.PurchaseRequest{},
		&model.PurchaseOrder{},
		&model.ApprovalHistory{},
		&model.Notification{},
		&model.BudgetAlert{},
	)

	// 3. Seed default admin user
	seedAdmin(db)

	// 4. Setup WebSocket Hub and side-effect dispatcher
	wsHub := ws.NewHub()
	go wsHub.Run()

	dispatcher := service.NewDispatcher(256)
	go dispatcher.Run()

	// 5. Outbound email channel
	mail := mailer.NewSMTPMailer(mailer.ConfigFromEnv())

	// 6. Dependency Injection (Wiring Layers)
	userRepo := repository.NewUserRepo(db)
	departmentRepo := repository.NewDepartmentRepo(db)
	supplierRepo := repository.NewSupplierRepo(db)
	requestRepo := repository.NewRequestRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	historyRepo := repository.NewApprovalHistoryRepo(db)
	notificationRepo := repository.NewNotificationRepo(db)
	alertRepo := repository.NewBudgetAlertRepo(db)

	notifier := service.NewNotificationService(notificationRepo, userRepo, wsHub, mail)
	router := service.NewApprovalRouter(userRepo)
	guard := service.NewAuthorizationGuard(userRepo, requestRepo)
	approvalService := service.NewApprovalService(requestRepo, supplierRepo, historyRepo, router, guard, notifier, dispatcher, mail)
	requestService := service.NewRequestService(requestRepo, supplierRepo, historyRepo, approvalService)
	budgetMonitor := service.NewBudgetMonitor(departmentRepo, orderRepo, alertRepo, userRepo, notifier)
	orderService := service.NewOrderService(orderRepo, requestRepo, userRepo, budgetMonitor, dispatcher)
	authService := service.NewAuthService(userRepo, wsHub)
	userService := service.NewUserService(userRepo, departmentRepo)
	dashService := service.NewDashboardService(requestRepo, departmentRepo, orderRepo)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	requestHandler := handler.NewRequestHandler(requestService, approvalService)
	orderHandler := handler.NewOrderHandler(orderService)
	notificationHandler := handler.NewNotificationHandler(notificationRepo)
	departmentHandler := handler.NewDepartmentHandler(departmentRepo)
	supplierHandler := handler.NewSupplierHandler(supplierRepo)
	dashHandler := handler.NewDashboardHandler(dashService)

	// 7. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Procurement Platform v1.0",
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 8. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/validate-token", authHandler.ValidateToken)
	auth.Post("/heartbeat", middleware.RequireAuth(userRepo), authHandler.Heartbeat)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(userRepo))

	adminOnly := middleware.RequireRole(model.RoleSystemAdmin)
	managerUp := middleware.RequireRole(model.RoleManager, model.RoleSeniorManager, model.RoleSystemAdmin)

	// Dashboard
	protected.Get("/dashboard/requests", managerUp, dashHandler.GetRequestStats)
	protected.Get("/dashboard/spend", managerUp, dashHandler.GetDepartmentSpend)

	// Purchase requests and approval actions
	protected.Get("/requests", managerUp, requestHandler.GetRequests)
	protected.Get("/requests/mine", requestHandler.GetMyRequests)
	protected.Post("/requests", requestHandler.CreateRequest)
	protected.Get("/requests/:id", requestHandler.GetRequest)
	protected.Get("/requests/:id/history", managerUp, requestHandler.GetApprovalHistory)
	protected.Post("/requests/:id/submit", requestHandler.SubmitRequest)
	protected.Post("/requests/:id/approve", requestHandler.ApproveRequest)
	protected.Post("/requests/:id/reject", requestHandler.RejectRequest)

	// Purchase orders
	protected.Get("/orders", managerUp, orderHandler.GetOrders)
	protected.Post("/orders", managerUp, orderHandler.CreateOrder)
	protected.Put("/orders/:id/status", managerUp, orderHandler.UpdateOrderStatus)

	// Notifications
	protected.Get("/notifications", notificationHandler.GetNotifications)
	protected.Get("/notifications/unread-count", notificationHandler.GetUnreadCount)
	protected.Put("/notifications/read-all", notificationHandler.MarkAllRead)
	protected.Put("/notifications/:id/read", notificationHandler.MarkRead)

	// Departments
	protected.Get("/departments", departmentHandler.GetDepartments)
	protected.Post("/departments", adminOnly, departmentHandler.CreateDepartment)
	protected.Put("/departments/:id", adminOnly, departmentHandler.UpdateDepartment)
	protected.Delete("/departments/:id", adminOnly, departmentHandler.DeleteDepartment)

	// Suppliers
	protected.Get("/suppliers", supplierHandler.GetSuppliers)
	protected.Post("/suppliers", managerUp, supplierHandler.CreateSupplier)
	protected.Put("/suppliers/:id", managerUp, supplierHandler.UpdateSupplier)

	// User Management
	protected.Get("/users", userHandler.GetUsers)
	protected.Get("/users/:id", userHandler.GetUser)
	protected.Post("/users", adminOnly, userHandler.CreateUser)
	protected.Put("/users/:id", adminOnly, userHandler.UpdateUser)
	protected.Delete("/users/:id", adminOnly, userHandler.DeleteUser)
	protected.Put("/users/:id/role-grants", adminOnly, userHandler.UpdateRoleGrants)

	// WebSocket Route (token identifies the user behind the connection)
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			claims, err := pkgjwt.ValidateToken(c.Query("token"))
			if err != nil {
				return c.SendStatus(fiber.StatusUnauthorized)
			}
			c.Locals("ws_user_id", claims.UserID)
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		userID, _ := c.Locals("ws_user_id").(uuid.UUID)
		client := &ws.Client{UserID: userID, Conn: c}
		wsHub.Register <- client
		defer func() { wsHub.Unregister <- client }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 9. Graceful Shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}
	dispatcher.Stop()

	log.Println("Server exited")
}

// seedAdmin creates the default system admin user if it doesn't exist
func seedAdmin(db *gorm.DB) {
	userRepo := repository.NewUserRepo(db)

	_, err := userRepo.FindByEmail("admin@example.com")
	if err == nil {
		return
	}

	admin := &model.User{
		Email:    "admin@example.com",
		FullName: "System Administrator",
		Role:     model.RoleSystemAdmin,
		IsActive: true,
	}
	admin.CreatedBy = "system"
	admin.UpdatedBy = "system"

	if err := admin.SetPassword("admin123"); err != nil {
		log.Printf("Warning: Failed to hash admin password: %v", err)
		return
	}

	if err := userRepo.Create(admin); err != nil {
		log.Printf("Warning: Failed to create admin user: %v", err)
	} else {
		log.Println("✅ Admin user created: admin@example.com / admin123 (SYSTEM_ADMIN)")
	}
}
