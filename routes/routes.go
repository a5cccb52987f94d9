package routes

import (
	"time"

	"mingle/handlers"
	"mingle/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:   []string{"Content-Length", "Content-Type"},
		MaxAge:          12 * time.Hour,
	}))

	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "Mingle API is running"})
	})

	authLimiter := middleware.NewIPRateLimiter(20, time.Minute)

	users := router.Group("/api/users")
	users.POST("/register", authLimiter.Middleware(), handlers.RegisterUser)
	users.POST("/login", authLimiter.Middleware(), handlers.LoginUser)
	users.GET("/me", middleware.JWTAuthMiddleware(), handlers.GetMe)

	events := router.Group("/api/events")
	events.Use(middleware.JWTAuthMiddleware())

	// Literal sub-paths register before the generic /:id pattern.
	events.POST("", handlers.CreateEvent)
	events.GET("", handlers.GetEvents)
	events.GET("/expired", handlers.GetExpiredEvents)
	events.GET("/most-active", handlers.GetMostActiveEvent)
	events.GET("/:id", handlers.GetEventByID)
	events.PUT("/:id", handlers.UpdateEvent)
	events.DELETE("/:id", handlers.DeleteEvent)
	events.POST("/:id/like", handlers.LikeEvent)
	events.POST("/:id/dislike", handlers.DislikeEvent)
	events.POST("/:id/comment", handlers.CommentOnEvent)
	events.POST("/:id/attend", handlers.AttendEvent)

	return router
}
