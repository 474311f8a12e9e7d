package employee

import (
	"employee-api/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	logger *zap.Logger,
) {
	employees := r.Group("/employees")
	employees.Use(middleware.ContextLogger(logger))
	{
		// Static paths first so they never shadow /:employee_id.
		employees.GET("/avg-salary", handler.AverageSalary)
		employees.GET("/search", handler.SearchBySkill)
		employees.GET("/department-stats", handler.DepartmentStats)
		employees.GET("/salary-distribution", handler.SalaryDistribution)
		employees.GET("/health", handler.Health)

		employees.GET("", handler.List)
		employees.GET("/:employee_id", handler.GetByID)

		employees.POST("",
			middleware.RateLimitByIP(1, 5),
			handler.Create,
		)

		employees.PUT("/:employee_id",
			middleware.RateLimitByIP(2, 5),
			handler.Update,
		)

		employees.DELETE("/:employee_id",
			middleware.RateLimitByIP(0.5, 2),
			handler.Delete,
		)
	}
}
