package app

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"exam_admin_backend/docs"
	"exam_admin_backend/internal/config"
	"exam_admin_backend/internal/middleware"
	"exam_admin_backend/internal/model"
	"exam_admin_backend/pkg/monitoring"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)
	}

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/users/me", c.user.Me)
	}

	// Registrars and above manage exams, questions and candidates.
	registrar := router.Group("/api/admin")
	registrar.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Registrar, model.Grader))
	{
		registrar.POST("/exams", c.exam.Create)
		registrar.GET("/exams", c.exam.List)
		registrar.GET("/exams/:id", c.exam.Get)
		registrar.PUT("/exams/:id", c.exam.Update)
		registrar.DELETE("/exams/:id", c.exam.Delete)
		registrar.GET("/exams/:id/questions", c.exam.ListQuestions)
		registrar.PUT("/exams/:id/questions", c.exam.ReplaceQuestions)
		registrar.GET("/exams/:id/import-eligibility", c.exam.ImportEligibility)

		registrar.POST("/questions", c.question.Create)
		registrar.GET("/questions", c.question.List)
		registrar.GET("/questions/:id", c.question.Get)
		registrar.PUT("/questions/:id", c.question.Update)
		registrar.DELETE("/questions/:id", c.question.Delete)

		registrar.POST("/candidates", c.candidate.Create)
		registrar.GET("/candidates", c.candidate.List)
		registrar.GET("/candidates/:id", c.candidate.Get)
		registrar.PUT("/candidates/:id", c.candidate.Update)
		registrar.DELETE("/candidates/:id", c.candidate.Delete)
		registrar.GET("/candidates/:id/grades", c.candidate.Grades)
	}

	// Graders run imports and manage grades.
	grader := router.Group("/api/admin")
	grader.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Grader))
	{
		grader.POST("/exams/:id/grades/import", c.grade.Import)
		grader.GET("/exams/:id/grades", c.grade.ListByExam)
		grader.GET("/grades/:id", c.grade.Get)
		grader.DELETE("/grades/:id", c.grade.Delete)
	}

	// Admin-only user management.
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		admin.GET("/users", c.user.List)
		admin.PUT("/users/:id/disabled", c.user.SetDisabled)
	}
}
