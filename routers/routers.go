package routers

import (
	"net/http"
	"time"

	"restaurant-pos/cache"
	"restaurant-pos/handlers"
	"restaurant-pos/jwt"
	"restaurant-pos/logger"
	"restaurant-pos/middleware"
	"restaurant-pos/orders"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Dependencies struct {
	DB         *gorm.DB
	Orders     *orders.Service
	MenuCache  *cache.MenuCache
	Tokens     *jwt.Manager
	Logger     *logger.Logger
	UploadsDir string
	CORSOrigin string
}

func SetupRouters(deps Dependencies) *gin.Engine {
	db, log := deps.DB, deps.Logger
	if deps.CORSOrigin == "" {
		deps.CORSOrigin = "*"
	}
	if deps.UploadsDir == "" {
		deps.UploadsDir = "./uploads"
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(log))
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", deps.CORSOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Authorization, X-Request-ID")
		c.Next()
	})
	_ = router.SetTrustedProxies(nil)

	// menu images
	router.Static("/uploads", deps.UploadsDir)

	router.OPTIONS("/*path", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Route not found"})
	})

	router.Use(middleware.AuthMiddleware(db, deps.Tokens, log))

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":    "OK",
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			})
		})

		api.POST("/auth/login", func(c *gin.Context) {
			handlers.LoginHandler(c, db, deps.Tokens, log)
		})

		api.GET("/categories", func(c *gin.Context) {
			handlers.GetCategoryListHandler(c, db, log)
		})
		api.GET("/menu", func(c *gin.Context) {
			handlers.GetMenuHandler(c, db, deps.MenuCache, log)
		})
		api.GET("/menu/:id", func(c *gin.Context) {
			handlers.GetMenuItemHandler(c, db, log)
		})
		api.GET("/tables", func(c *gin.Context) {
			handlers.GetTableListHandler(c, db, log)
		})

		// customers order from the table without logging in
		api.POST("/orders", func(c *gin.Context) {
			handlers.CreateOrderHandler(c, deps.Orders, log)
		})
		api.GET("/orders/:id", func(c *gin.Context) {
			handlers.GetOrderDataHandler(c, deps.Orders, log)
		})

		loginRequired := api.Group("")
		loginRequired.Use(middleware.CheckLoginMiddleware())
		{
			loginRequired.POST("/auth/logout", func(c *gin.Context) {
				handlers.LogOutHandler(c, db, log)
			})
			loginRequired.GET("/auth/me", func(c *gin.Context) {
				handlers.GetProfileHandler(c, db, log)
			})
		}

		staff := api.Group("")
		staff.Use(middleware.CheckLoginMiddleware(), middleware.CheckStaffPermissionMiddleware())
		{
			staff.GET("/orders", func(c *gin.Context) {
				handlers.GetOrderListHandler(c, deps.Orders, log)
			})
			staff.PUT("/orders/:id/status", func(c *gin.Context) {
				handlers.UpdateOrderStatusHandler(c, deps.Orders, log)
			})

			staff.POST("/categories", func(c *gin.Context) {
				handlers.CreateCategoryHandler(c, db, log)
			})
			staff.PUT("/categories/:id", func(c *gin.Context) {
				handlers.UpdateCategoryHandler(c, db, deps.MenuCache, log)
			})
			staff.DELETE("/categories/:id", func(c *gin.Context) {
				handlers.DeleteCategoryHandler(c, db, deps.MenuCache, log)
			})

			staff.POST("/menu", func(c *gin.Context) {
				handlers.CreateMenuItemHandler(c, db, deps.MenuCache, log)
			})
			staff.PUT("/menu/:id", func(c *gin.Context) {
				handlers.UpdateMenuItemHandler(c, db, deps.MenuCache, log)
			})
			staff.DELETE("/menu/:id", func(c *gin.Context) {
				handlers.DeleteMenuItemHandler(c, db, deps.MenuCache, log)
			})
			staff.GET("/admin/menu", func(c *gin.Context) {
				handlers.GetAdminMenuHandler(c, db, log)
			})
			staff.POST("/admin/image", func(c *gin.Context) {
				handlers.UploadImageHandler(c, deps.UploadsDir, log)
			})

			staff.PUT("/tables/:tableNumber/status", func(c *gin.Context) {
				handlers.UpdateTableStatusHandler(c, db, log)
			})

			staff.GET("/stats/dashboard", func(c *gin.Context) {
				handlers.GetDashboardStatsHandler(c, db, log)
			})
		}

		adminRequired := api.Group("/admin/users")
		adminRequired.Use(middleware.CheckLoginMiddleware(), middleware.CheckAdminPermissionMiddleware())
		{
			adminRequired.GET("", func(c *gin.Context) {
				handlers.GetStaffListHandler(c, db, log)
			})
			adminRequired.POST("", func(c *gin.Context) {
				handlers.CreateStaffUserHandler(c, db, log)
			})
		}
	}

	return router
}
