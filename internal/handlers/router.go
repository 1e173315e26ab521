package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/middleware"
	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	quizHandler       *QuizHandler
	managementHandler *ManagementHandler
	services          services.ServiceManager
	authenticate      gin.HandlerFunc
}

// NewHandlerManager wires the handlers. authenticate resolves the caller identity; nil leaves
// every request anonymous.
func NewHandlerManager(
	serviceManager services.ServiceManager,
	authenticate gin.HandlerFunc,
	logger utils.Logger,
) *HandlerManager {
	if authenticate == nil {
		authenticate = func(c *gin.Context) { c.Next() }
	}
	return &HandlerManager{
		quizHandler:       NewQuizHandler(serviceManager, logger),
		managementHandler: NewManagementHandler(serviceManager, logger),
		services:          serviceManager,
		authenticate:      authenticate,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.HealthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(hm.authenticate)
	{
		v1.GET("/collections", hm.quizHandler.ListCollections)

		questions := v1.Group("/questions")
		{
			questions.GET("", hm.quizHandler.ListQuestions)
			questions.GET("/preview", hm.quizHandler.GetPreviewQuestions)
		}

		answers := v1.Group("/answers")
		{
			answers.POST("", hm.quizHandler.SubmitAnswer)
			answers.GET("/:questionId/latest", middleware.RequireUser(), hm.quizHandler.GetLatestAnswer)
		}

		results := v1.Group("/results")
		{
			results.GET("/collections/:id/review", middleware.RequireUser(), hm.quizHandler.GetCollectionReview)
			results.POST("/sessions/:sessionId/complete", hm.quizHandler.CompleteSession)
		}

		v1.GET("/progress", middleware.RequireUser(), hm.quizHandler.GetUserProgress)

		management := v1.Group("/management", middleware.RequireAdmin())
		{
			management.POST("/collections", hm.managementHandler.CreateCollection)
			management.POST("/questions", hm.managementHandler.CreateQuestion)
			management.GET("/progress", hm.managementHandler.ListUserProgress)
			management.GET("/progress/export", hm.managementHandler.ExportProgress)
			management.POST("/progress/:userId/collections/:collectionId/recompute", hm.managementHandler.RecomputeProgress)
		}
	}
}

// HealthCheck reports liveness together with store reachability.
func (hm *HandlerManager) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := hm.services.Health(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": "quiz-service",
			"error":   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "quiz-service",
	})
}
