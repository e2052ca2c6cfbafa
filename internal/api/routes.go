package api

import (
	"net/http"

	"gymkeeper/gym-app/internal/domain"
	"gymkeeper/gym-app/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	catalogService service.CatalogService,
	templateService service.TemplateService,
	assignmentService service.AssignmentService,
	logService service.TrainingLogService,
	progressService service.ProgressService,
) {
	authHandler := NewAuthHandler(authService)
	catalogHandler := NewCatalogHandler(catalogService)
	templateHandler := NewTemplateHandler(templateService)
	assignmentHandler := NewAssignmentHandler(assignmentService)
	logHandler := NewLogHandler(logService, progressService)

	authMiddleware := AuthMiddleware(jwtSecret)
	trainerOnly := RoleMiddleware(domain.RoleTrainer)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userIDStr, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userIDStr, "role": role})
		})

		// --- Exercise Catalog (trainer-managed) ---
		catalogGroup := protected.Group("/catalog")
		{
			catalogGroup.POST("", trainerOnly, catalogHandler.CreateExercise)
			catalogGroup.GET("", catalogHandler.ListExercises)
			catalogGroup.GET("/:id", catalogHandler.GetExercise)
			catalogGroup.PUT("/:id", trainerOnly, catalogHandler.UpdateExercise)
			catalogGroup.DELETE("/:id", trainerOnly, catalogHandler.DeleteExercise)

			catalogGroup.POST("/:id/images/upload-url", trainerOnly, catalogHandler.RequestImageUpload)
			catalogGroup.POST("/:id/images", trainerOnly, catalogHandler.AttachImage)
			catalogGroup.DELETE("/:id/images", trainerOnly, catalogHandler.RemoveImage)
		}

		// --- Workout Templates (trainer-managed) ---
		templateGroup := protected.Group("/templates")
		templateGroup.Use(trainerOnly)
		{
			templateGroup.POST("", templateHandler.CreateTemplate)
			templateGroup.GET("", templateHandler.ListTemplates)
			templateGroup.GET("/:id", templateHandler.GetTemplate)
			templateGroup.PUT("/:id", templateHandler.UpdateTemplate)
			templateGroup.DELETE("/:id", templateHandler.DeactivateTemplate)

			templateGroup.POST("/:id/days", templateHandler.AddDay)
			templateGroup.PUT("/:id/days/:dayId", templateHandler.UpdateDay)
			templateGroup.DELETE("/:id/days/:dayId", templateHandler.RemoveDay)

			templateGroup.POST("/:id/days/:dayId/exercises", templateHandler.AddExerciseToDay)
			templateGroup.PUT("/:id/days/:dayId/exercises/:exerciseId", templateHandler.UpdateDayExercise)
			templateGroup.DELETE("/:id/days/:dayId/exercises/:exerciseId", templateHandler.RemoveDayExercise)
		}

		// --- Assignments ---
		// Assigning is trainer-only; reads are allowed for the participant
		// themselves (enforced inside the handler).
		assignGroup := protected.Group("/participants/:participantId")
		{
			assignGroup.POST("/assignments", trainerOnly, assignmentHandler.AssignTemplate)
			assignGroup.GET("/assignments/active", assignmentHandler.GetActiveAssignment)
			assignGroup.GET("/assignments", assignmentHandler.GetAssignmentHistory)
		}

		// --- Training Logs ---
		logGroup := protected.Group("/logs")
		{
			logGroup.POST("", logHandler.RecordLog)
			logGroup.PUT("/:id", logHandler.UpdateLog)
			logGroup.DELETE("/:id", logHandler.DeleteLog)
		}

		// --- Progress History ---
		progressGroup := protected.Group("/progress")
		{
			progressGroup.GET("/exercises/:snapshotExerciseId/history", logHandler.GetExerciseHistory)
			progressGroup.GET("/exercises/:snapshotExerciseId/last", logHandler.GetLastLog)
		}
	}
}
