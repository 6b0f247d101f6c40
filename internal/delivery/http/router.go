package http

import (
	"github.com/gin-gonic/gin"

	"github.com/lusohub/lusohub-backend/internal/delivery/http/handler"
	"github.com/lusohub/lusohub-backend/internal/delivery/http/middleware"
)

type Router struct {
	quizHandler    *handler.QuizHandler
	compatHandler  *handler.CompatibilityHandler
	matchHandler   *handler.MatchHandler
	authMiddleware *middleware.AuthMiddleware
}

func NewRouter(
	quizHandler *handler.QuizHandler,
	compatHandler *handler.CompatibilityHandler,
	matchHandler *handler.MatchHandler,
	authMiddleware *middleware.AuthMiddleware,
) *Router {
	return &Router{
		quizHandler:    quizHandler,
		compatHandler:  compatHandler,
		matchHandler:   matchHandler,
		authMiddleware: authMiddleware,
	}
}

func (r *Router) Setup() *gin.Engine {
	router := gin.Default()

	// Health check (supports both GET and HEAD)
	healthHandler := func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	// API v1
	v1 := router.Group("/api/v1")
	{
		protected := v1.Group("")
		protected.Use(r.authMiddleware.RequireAuth())
		{
			// Quiz routes
			quiz := protected.Group("/quiz")
			{
				quiz.POST("/submit", r.quizHandler.SubmitQuiz)
				quiz.GET("/preferences", r.quizHandler.GetMyPreferences)
				quiz.DELETE("/preferences", r.quizHandler.DeleteMyPreferences)
			}

			// Compatibility routes
			protected.GET("/compatibility/:user_id", r.compatHandler.GetCompatibility)

			// Match routes
			protected.GET("/matches", r.matchHandler.GetMatches)
		}
	}

	return router
}
