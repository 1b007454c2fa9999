package routes

import (
	"net/http"

	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/config"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/handlers"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/metrics"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// HandlerDependencies holds every handler the router mounts
type HandlerDependencies struct {
	AuthHandler           *handlers.AuthHandler
	UserHandler           *handlers.UserHandler
	RewardHandler         *handlers.RewardHandler
	RaffleHandler         *handlers.RaffleHandler
	SurveyHandler         *handlers.SurveyHandler
	TriviaHandler         *handlers.TriviaHandler
	PurchaseHandler       *handlers.PurchaseHandler
	NotificationHandler   *handlers.NotificationHandler
	SystemSettingsHandler *handlers.SystemSettingsHandler

	TokenParser middleware.TokenParser
	Metrics     *metrics.Metrics
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, deps HandlerDependencies) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.Server.AllowedHosts))
	router.Use(middleware.MetricsMiddleware(deps.Metrics))
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	api := router.Group("/api/v1")

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
	auth := api.Group("/auth")
	auth.Use(limiter.Middleware())
	{
		auth.POST("/register", deps.AuthHandler.Register)
		auth.POST("/login", deps.AuthHandler.Login)
	}

	protected := api.Group("")
	protected.Use(middleware.JWTAuthMiddleware(deps.TokenParser))
	{
		me := protected.Group("/me")
		{
			me.GET("", deps.UserHandler.GetMe)
			me.GET("/access", deps.UserHandler.GetAccess)
			me.POST("/subscription", deps.UserHandler.Subscribe)
			me.DELETE("/subscription", deps.UserHandler.CancelSubscription)
			me.GET("/rewards", deps.RewardHandler.ListUserRewards)
			me.POST("/rewards/:id/use", deps.RewardHandler.UseReward)
			me.GET("/raffles", deps.RaffleHandler.ListParticipations)
			me.GET("/raffles/results", deps.RaffleHandler.CheckResults)
			me.GET("/purchases", deps.PurchaseHandler.ListPurchases)
		}

		points := protected.Group("/points")
		{
			points.GET("/balance", deps.UserHandler.GetBalance)
			points.GET("/transactions", deps.UserHandler.GetTransactions)
		}

		rewards := protected.Group("/rewards")
		{
			rewards.GET("", deps.RewardHandler.ListRewards)
			rewards.GET("/:id", deps.RewardHandler.GetReward)
			rewards.POST("/:id/redeem", deps.RewardHandler.Redeem)
		}

		raffles := protected.Group("/raffles")
		{
			raffles.GET("", deps.RaffleHandler.ListRaffles)
			raffles.GET("/:id", deps.RaffleHandler.GetRaffle)
			raffles.POST("/:id/participate", deps.RaffleHandler.Participate)
		}

		surveys := protected.Group("/surveys")
		{
			surveys.GET("", deps.SurveyHandler.ListSurveys)
			surveys.GET("/:id", deps.SurveyHandler.GetSurvey)
			surveys.POST("/:id/responses", deps.SurveyHandler.Submit)
		}

		trivia := protected.Group("/trivia")
		{
			trivia.GET("/questions", deps.TriviaHandler.ListQuestions)
			trivia.POST("/questions/:id/answer", deps.TriviaHandler.Answer)
			trivia.GET("/stats", deps.TriviaHandler.Stats)
		}

		packages := protected.Group("/packages")
		{
			packages.GET("", deps.PurchaseHandler.ListPackages)
			packages.POST("/:id/purchase", deps.PurchaseHandler.Purchase)
		}

		notifications := protected.Group("/notifications")
		{
			notifications.GET("", deps.NotificationHandler.List)
			notifications.GET("/unread-count", deps.NotificationHandler.UnreadCount)
			notifications.POST("/read-all", deps.NotificationHandler.MarkAllRead)
			notifications.POST("/:id/read", deps.NotificationHandler.MarkRead)
			notifications.DELETE("/:id", deps.NotificationHandler.Delete)
		}

		admin := protected.Group("/admin")
		admin.Use(middleware.AdminOnly())
		{
			admin.POST("/rewards", deps.RewardHandler.CreateReward)
			admin.PUT("/rewards/:id", deps.RewardHandler.UpdateReward)
			admin.POST("/raffles", deps.RaffleHandler.CreateRaffle)
			admin.POST("/raffles/:id/draw", deps.RaffleHandler.DrawRaffle)
			admin.POST("/participations/:id/winner", deps.RaffleHandler.MarkWinner)
			admin.POST("/surveys", deps.SurveyHandler.CreateSurvey)
			admin.POST("/trivia/questions", deps.TriviaHandler.CreateQuestion)
			admin.POST("/packages", deps.PurchaseHandler.CreatePackage)
			admin.POST("/points/grant", deps.UserHandler.GrantPoints)
			admin.GET("/settings", deps.SystemSettingsHandler.GetSettings)
			admin.PUT("/settings", deps.SystemSettingsHandler.UpdateSettings)
		}
	}

	return router
}
