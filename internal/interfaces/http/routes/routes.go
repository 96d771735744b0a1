// internal/interfaces/http/routes/routes.go
package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/interfaces/http/handlers"
	"github.com/your-org/pos-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// SetupRoutes wires every route group under /api/v1
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	logger := newLogger(cfg)

	SetupAuthRoutes(rg, db, cfg)
	SetupProductRoutes(rg, db, cfg)
	SetupCategoryRoutes(rg, db, cfg)
	SetupSupplierRoutes(rg, db, cfg)
	SetupClientRoutes(rg, db, cfg)
	SetupSaleRoutes(rg, db, cfg, logger)
	SetupStockRoutes(rg, db, cfg, logger)
	SetupFinancialRoutes(rg, db, cfg)
	SetupPurchaseRoutes(rg, db, cfg, logger)
	SetupPromotionRoutes(rg, db, cfg)
	SetupAdminRoutes(rg, db, cfg, logger)
}

// newLogger builds the shared service logger from config
func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}

// SetupAuthRoutes sets up authentication related routes
func SetupAuthRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	authHandler := handlers.NewAuthHandler(db, cfg)

	auth := rg.Group("/auth")
	{
		// Public auth endpoints
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)

		// Protected auth endpoints
		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.POST("/logout", authHandler.Logout)
			protected.GET("/profile", authHandler.GetProfile)
			protected.PUT("/profile", authHandler.UpdateProfile)
			protected.PUT("/password", authHandler.ChangePassword)
		}
	}
}

// SetupProductRoutes sets up product related routes
func SetupProductRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	productHandler := handlers.NewProductHandler(db, cfg)

	products := rg.Group("/products")
	products.Use(middleware.AuthMiddleware(cfg))
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/low-stock", productHandler.GetLowStockProducts)
		products.GET("/barcode/:barcode", productHandler.GetProductByBarcode)
		products.GET("/:id", productHandler.GetProduct)
		products.POST("", productHandler.CreateProduct)
		products.PUT("/:id", productHandler.UpdateProduct)
		products.DELETE("/:id", productHandler.DeleteProduct)
	}
}

// SetupCategoryRoutes sets up category related routes
func SetupCategoryRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	categoryHandler := handlers.NewCategoryHandler(db, cfg)

	categories := rg.Group("/categories")
	categories.Use(middleware.AuthMiddleware(cfg))
	{
		categories.GET("", categoryHandler.GetCategories)
		categories.GET("/:id", categoryHandler.GetCategory)
		categories.POST("", categoryHandler.CreateCategory)
		categories.PUT("/:id", categoryHandler.UpdateCategory)
		categories.DELETE("/:id", categoryHandler.DeleteCategory)
	}
}

// SetupSupplierRoutes sets up supplier related routes
func SetupSupplierRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	supplierHandler := handlers.NewSupplierHandler(db, cfg)

	suppliers := rg.Group("/suppliers")
	suppliers.Use(middleware.AuthMiddleware(cfg))
	{
		suppliers.GET("", supplierHandler.GetSuppliers)
		suppliers.GET("/:id", supplierHandler.GetSupplier)
		suppliers.POST("", supplierHandler.CreateSupplier)
		suppliers.PUT("/:id", supplierHandler.UpdateSupplier)
		suppliers.DELETE("/:id", supplierHandler.DeleteSupplier)
	}
}

// SetupClientRoutes sets up client related routes
func SetupClientRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	clientHandler := handlers.NewClientHandler(db, cfg)

	clients := rg.Group("/clients")
	clients.Use(middleware.AuthMiddleware(cfg))
	{
		clients.GET("", clientHandler.GetClients)
		clients.GET("/:id", clientHandler.GetClient)
		clients.POST("", clientHandler.CreateClient)
		clients.PUT("/:id", clientHandler.UpdateClient)
		clients.DELETE("/:id", clientHandler.DeleteClient)
		clients.POST("/:id/settle", clientHandler.SettleDebt)
	}
}

// SetupSaleRoutes sets up sale related routes
func SetupSaleRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config, logger *logrus.Logger) {
	saleHandler := handlers.NewSaleHandler(db, cfg, logger)

	sales := rg.Group("/sales")
	sales.Use(middleware.AuthMiddleware(cfg))
	{
		sales.GET("", saleHandler.GetSales)
		sales.GET("/:id", saleHandler.GetSale)
		sales.POST("", saleHandler.CreateSale)
		sales.PUT("/:id/cancel", saleHandler.CancelSale)
		sales.PUT("/:id/pay", saleHandler.MarkPaid)
	}
}

// SetupStockRoutes sets up stock movement routes
func SetupStockRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config, logger *logrus.Logger) {
	stockHandler := handlers.NewStockHandler(db, cfg, logger)

	stock := rg.Group("/stock")
	stock.Use(middleware.AuthMiddleware(cfg))
	{
		stock.GET("/movements", stockHandler.GetMovements)
		stock.POST("/movements", stockHandler.RecordMovement)
	}
}

// SetupFinancialRoutes sets up payable/receivable routes
func SetupFinancialRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	financialHandler := handlers.NewFinancialHandler(db, cfg)

	financial := rg.Group("/financial/accounts")
	financial.Use(middleware.AuthMiddleware(cfg))
	{
		financial.GET("", financialHandler.GetAccounts)
		financial.GET("/:id", financialHandler.GetAccount)
		financial.POST("", financialHandler.CreateAccount)
		financial.PUT("/:id/pay", financialHandler.PayAccount)
		financial.PUT("/:id/cancel", financialHandler.CancelAccount)
	}
}

// SetupPurchaseRoutes sets up purchase order routes
func SetupPurchaseRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config, logger *logrus.Logger) {
	purchaseHandler := handlers.NewPurchaseHandler(db, cfg, logger)

	orders := rg.Group("/purchase-orders")
	orders.Use(middleware.AuthMiddleware(cfg))
	{
		orders.GET("", purchaseHandler.GetOrders)
		orders.GET("/:id", purchaseHandler.GetOrder)
		orders.POST("", purchaseHandler.CreateOrder)
		orders.PUT("/:id/receive", purchaseHandler.ReceiveOrder)
		orders.PUT("/:id/cancel", purchaseHandler.CancelOrder)
	}
}

// SetupPromotionRoutes sets up promotion routes
func SetupPromotionRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	promotionHandler := handlers.NewPromotionHandler(db, cfg)

	promotions := rg.Group("/promotions")
	promotions.Use(middleware.AuthMiddleware(cfg))
	{
		promotions.GET("", promotionHandler.GetPromotions)
		promotions.GET("/:id", promotionHandler.GetPromotion)
		promotions.POST("", promotionHandler.CreatePromotion)
		promotions.PUT("/:id", promotionHandler.UpdatePromotion)
		promotions.DELETE("/:id", promotionHandler.DeletePromotion)
	}
}

// SetupAdminRoutes sets up admin related routes
func SetupAdminRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config, logger *logrus.Logger) {
	userAdminHandler := handlers.NewUserAdminHandler(db, cfg)
	auditHandler := handlers.NewAuditHandler(db, cfg, logger)

	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg)) // Require authentication
	admin.Use(middleware.AdminMiddleware())   // Require admin privileges
	{
		// User management
		users := admin.Group("/users")
		{
			users.GET("", userAdminHandler.GetUsers)
			users.GET("/:id", userAdminHandler.GetUser)
			users.PUT("/:id/status", userAdminHandler.UpdateUserStatus)
			users.PUT("/:id/admin", userAdminHandler.ToggleUserAdmin)
		}

		// Audit trail
		admin.GET("/audit-logs", auditHandler.GetLogs)
	}
}
