// Package server wires services, handlers, and middleware into the HTTP router.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"fintrack/internal/config"
	"fintrack/internal/handlers"
	"fintrack/internal/middleware"
	"fintrack/internal/services"
)

// Services is the full service graph behind the API.
type Services struct {
	Users         services.UserServicer
	Categories    services.CategoryServicer
	Transactions  services.TransactionServicer
	Budgets       services.BudgetServicer
	Notifications services.NotificationServicer
	Reminders     services.ReminderServicer
	Reports       services.ReportServicer
	Audit         services.AuditServicer
}

// NewServices builds every service on top of db.
func NewServices(db *gorm.DB, cfg *config.Config) *Services {
	notifications := services.NewNotificationService(db, cfg.NotificationTTL, cfg.Currency)
	budgets := services.NewBudgetService(db, services.NewSpendingAggregator(db), notifications, cfg.DefaultAlertThreshold)

	return &Services{
		Users:         services.NewUserService(db),
		Categories:    services.NewCategoryService(db),
		Transactions:  services.NewTransactionService(db, budgets),
		Budgets:       budgets,
		Notifications: notifications,
		Reminders:     services.NewReminderService(db, notifications),
		Reports:       services.NewReportService(db, budgets),
		Audit:         services.NewAuditService(db),
	}
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(svc *Services, cfg *config.Config) *gin.Engine {
	authHandler := handlers.NewAuthHandler(svc.Users, svc.Audit)
	categoryHandler := handlers.NewCategoryHandler(svc.Categories)
	transactionHandler := handlers.NewTransactionHandler(svc.Transactions)
	budgetHandler := handlers.NewBudgetHandler(svc.Budgets, svc.Audit)
	notificationHandler := handlers.NewNotificationHandler(svc.Notifications)
	reminderHandler := handlers.NewReminderHandler(svc.Reminders)
	reportHandler := handlers.NewReportHandler(svc.Reports)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(cors())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.RefreshToken)
	auth.POST("/logout", middleware.AuthMiddleware(), authHandler.Logout)

	// Internal routes, guarded by the pipeline API key
	internal := v1.Group("/internal")
	internal.Use(middleware.InternalAPIKeyMiddleware(cfg.PipelineAPIKey))
	internal.POST("/reminders/process", reminderHandler.ProcessDueReminders)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/overview", budgetHandler.GetOverview)
	budgets.POST("/check-alerts", budgetHandler.CheckAlerts)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)

	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetUserCategories)
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetUserTransactions)
	transactions.GET("/dashboard", reportHandler.GetDashboard)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	notifications := protected.Group("/notifications")
	notifications.GET("", notificationHandler.GetNotifications)
	notifications.GET("/unread-count", notificationHandler.GetUnreadCount)
	notifications.PATCH("/mark-read", notificationHandler.MarkAsRead)
	notifications.PATCH("/mark-all-read", notificationHandler.MarkAllAsRead)
	notifications.DELETE("/:id", notificationHandler.DeleteNotification)

	reminders := protected.Group("/reminders")
	reminders.POST("", reminderHandler.CreateReminder)
	reminders.GET("", reminderHandler.GetReminders)
	reminders.GET("/templates", reminderHandler.GetTemplates)
	reminders.GET("/:id", reminderHandler.GetReminder)
	reminders.PUT("/:id", reminderHandler.UpdateReminder)
	reminders.PATCH("/:id/toggle", reminderHandler.ToggleReminder)
	reminders.DELETE("/:id", reminderHandler.DeleteReminder)

	reports := protected.Group("/reports")
	reports.GET("/summary", reportHandler.GetSummary)
	reports.GET("/trends", reportHandler.GetTrends)
	reports.GET("/top-categories", reportHandler.GetTopCategories)
	reports.GET("/budget-progress", reportHandler.GetBudgetProgress)
	reports.GET("/insights", reportHandler.GetInsights)

	return router
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
