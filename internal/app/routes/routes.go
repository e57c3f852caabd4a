package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lucasmrt/dondirect/internal/app/controllers"
	"github.com/lucasmrt/dondirect/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	associationController *controllers.AssociationController,
	donationController *controllers.DonationController,
	identity *middleware.IdentityMiddleware,
) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.Use(identity.Identify())

	// --- Auth routes ---
	auth := api.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/session", authController.ProviderSession)
		auth.GET("/user", middleware.RequireAuth(), authController.CurrentUser)
	}
	api.POST("/logout", authController.Logout)

	// --- Current-user routes ---
	user := api.Group("/user")
	user.Use(middleware.RequireAuth())
	{
		user.POST("/update-type", authController.UpdateUserType)
		user.GET("/association", associationController.Own)
	}

	// --- Association directory ---
	associations := api.Group("/associations")
	{
		// Browse, search and filter are public.
		associations.GET("", associationController.List)
		associations.GET("/search/:query", associationController.Search)
		associations.GET("/category/:category", associationController.GetByCategory)
		associations.GET("/:id", associationController.GetByID)
		associations.GET("/:id/stats", associationController.Stats)

		associationsProtected := associations.Group("")
		associationsProtected.Use(middleware.RequireAuth())
		{
			associationsProtected.POST("", associationController.Create)
			associationsProtected.PATCH("/:id", associationController.Update)
			associationsProtected.POST("/:id/verify", associationController.Verify)
			associationsProtected.GET("/stats", associationController.OwnStats)
		}
	}

	// --- Donation ledger ---
	donations := api.Group("/donations")
	{
		// Donating never requires an account.
		donations.POST("", donationController.Create)

		donationsProtected := donations.Group("")
		donationsProtected.Use(middleware.RequireAuth())
		{
			donationsProtected.GET("/:id/receipt", donationController.Receipt)
			donationsProtected.GET("/email/:email", donationController.GetByEmail)
			donationsProtected.GET("/user", donationController.GetMine)
			donationsProtected.GET("/association", donationController.GetReceived)
		}
	}
}
