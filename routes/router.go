package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/inkstream/inkstream/cache"
	"github.com/inkstream/inkstream/config"
	"github.com/inkstream/inkstream/controllers"
	"github.com/inkstream/inkstream/middleware"
	"github.com/inkstream/inkstream/utils"
)

// SetupRouter wires routes, middlewares, and controllers. The page cache is
// injected so tests can use the in-memory store.
func SetupRouter(db *gorm.DB, store cache.Store) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(utils.RequestLogger())
	r.Use(utils.Recovery())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// Record PV after each request
	r.Use(middleware.PageViewRecorder(db))

	r.Static("/static", "./static")

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	postController := controllers.NewPostController(db, store)
	profileController := controllers.NewProfileController(db)
	groupController := controllers.NewGroupController(db)
	statsController := controllers.NewStatsController(db)

	// Public pages. OptionalAuth lets logged-in visitors see follow state.
	r.GET("/", postController.Index)
	r.GET("/group/:slug", postController.GroupPosts)
	r.GET("/profile/:username", middleware.OptionalAuth(), profileController.Profile)
	r.GET("/posts/:id", postController.PostDetail)
	r.GET("/groups", groupController.ListGroups)
	r.GET("/stats", statsController.GetStats)

	authGroup := r.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/signup", authController.Register)
	authGroup.GET("/login", authController.LoginPage)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.LoginRequired(), authController.Logout)
	authGroup.GET("/me", middleware.LoginRequired(), authController.Me)
	authGroup.POST("/password-reset", authController.PasswordResetRequest)
	authGroup.POST("/password-reset/confirm", authController.PasswordResetConfirm)
	authGroup.GET("/oauth/github/login", authController.OAuthRedirect)
	authGroup.GET("/oauth/github/callback", authController.OAuthCallback)

	protected := r.Group("")
	protected.Use(middleware.LoginRequired())
	protected.GET("/create", postController.PostCreate)
	protected.POST("/create", postController.PostCreate)
	protected.GET("/posts/:id/edit", postController.PostEdit)
	protected.POST("/posts/:id/edit", postController.PostEdit)
	protected.POST("/posts/:id/comment", postController.AddComment)
	protected.GET("/follow", profileController.FollowIndex)
	protected.GET("/profile/:username/follow", profileController.ProfileFollow)
	protected.GET("/profile/:username/unfollow", profileController.ProfileUnfollow)
	protected.POST("/groups", groupController.CreateGroup)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "page not found")
	})

	return r
}
