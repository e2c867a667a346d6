package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ekantin/canteen-app/controllers"
	"github.com/ekantin/canteen-app/middlewares"
	"github.com/ekantin/canteen-app/models"
	"github.com/ekantin/canteen-app/services"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	menuCache := services.NewMenuCache()
	topupSvc := services.NewTopupService(db)

	userCtrl := controllers.NewUserController(db)
	menuCtrl := controllers.NewMenuController(db, menuCache)
	orderCtrl := controllers.NewOrderController(db, menuCache)
	txCtrl := controllers.NewTransactionController(db, topupSvc)
	parentCtrl := controllers.NewParentController(db)
	reportCtrl := controllers.NewReportController(db)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// Menu browsing needs no login.
	r.GET("/menus", menuCtrl.GetMenuItems)

	// Payment gateway notification callback (signature checked in handler).
	r.POST("/topups/callback", txCtrl.HandleTopupCallback)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/")
	auth.Use(middlewares.AuthMiddleware())
	{
		auth.POST("/auth/logout", userCtrl.Logout)
		auth.GET("/profile", userCtrl.GetProfile)

		// Orders: placement is student-only, viewing is role-scoped inside
		// the handlers.
		auth.POST("/orders", middlewares.RequireRoles(models.RoleStudent), orderCtrl.CreateOrder)
		auth.GET("/orders", orderCtrl.GetOrders)
		auth.GET("/orders/:order_id", orderCtrl.GetOrderByID)

		// Balance, limits, history. Access is checked per student inside
		// the handlers (own record, linked parent, or staff).
		auth.GET("/students/:student_id/balance", txCtrl.GetBalance)
		auth.GET("/students/:student_id/transactions", txCtrl.GetTransactions)
		auth.POST("/students/:student_id/topup", middlewares.RequireRoles(models.RoleParent), txCtrl.Topup)
		auth.POST("/students/:student_id/topup/qris", txCtrl.CreateQRISTopup)
		auth.PATCH("/students/:student_id/spending-limit", middlewares.RequireRoles(models.RoleParent), txCtrl.UpdateSpendingLimit)

		// Parent dashboard
		auth.GET("/parent/students", middlewares.RequireRoles(models.RoleParent), parentCtrl.GetMyStudents)
	}

	// Canteen manager routes
	manager := r.Group("/manager")
	manager.Use(middlewares.AuthMiddleware(), middlewares.RequireRoles(models.RoleCanteenManager))
	{
		manager.GET("/menus", menuCtrl.GetAllMenuItems)
		manager.POST("/menus", menuCtrl.CreateMenuItem)
		manager.GET("/menus/:menu_id", menuCtrl.GetMenuItemByID)
		manager.PATCH("/menus/:menu_id", menuCtrl.UpdateMenuItem)

		manager.PATCH("/orders/:order_id/status", orderCtrl.UpdateOrderStatus)
		manager.POST("/pickup", orderCtrl.PickupOrder)

		manager.GET("/reports/transactions", reportCtrl.GetTransactionReport)
		manager.GET("/reports/sales", reportCtrl.GetSalesReport)
		manager.GET("/reports/export-pdf", reportCtrl.ExportPDF)
	}

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(middlewares.AuthMiddleware(), middlewares.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/users", userCtrl.GetAllUsers)
		admin.POST("/parent-students", parentCtrl.LinkParentStudent)
		admin.GET("/dashboard/stats", reportCtrl.GetDashboardStats)
	}

	// Live canteen display (manager/admin dashboards)
	ws := r.Group("/ws")
	ws.Use(middlewares.WebSocketAuthMiddleware())
	{
		ws.GET("/:role", controllers.DisplayHandler)
	}

	return r
}
