package employee

import (
	"net/http"
	"strconv"

	"employee-api/internal/shared/apperror"
	"employee-api/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("employee.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("employee request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Create(c *gin.Context) {
	h.logger.Debug("http create employee")
	var req CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http create employee validation failed", zap.Error(err))
		mapped := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, mapped.Status, mapped.Code, mapped.Message, nil)
		return
	}

	resp, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) GetByID(c *gin.Context) {
	ctx := c.Request.Context()
	employeeID := c.Param("employee_id")
	h.logger.Debug("http get employee by id", zap.String("employee_id", employeeID))

	resp, err := h.service.GetByID(ctx, employeeID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) List(c *gin.Context) {
	ctx := c.Request.Context()

	q := ListEmployeesQuery{
		Department: c.Query("department"),
		Limit:      defaultPageLimit,
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "limit must be a valid integer", nil)
			return
		}
		q.Limit = limit
	}
	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "offset must be a valid integer", nil)
			return
		}
		q.Offset = offset
	}

	// Out-of-range values fall back to defaults rather than failing.
	if q.Limit < 1 || q.Limit > maxPageLimit {
		q.Limit = defaultPageLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	resp, err := h.service.List(ctx, q)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	employeeID := c.Param("employee_id")
	h.logger.Debug("http update employee", zap.String("employee_id", employeeID))

	var req UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http update employee validation failed", zap.Error(err))
		mapped := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, mapped.Status, mapped.Code, mapped.Message, nil)
		return
	}

	resp, err := h.service.Update(ctx, employeeID, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	employeeID := c.Param("employee_id")
	h.logger.Debug("http delete employee", zap.String("employee_id", employeeID))

	if err := h.service.Delete(ctx, employeeID); err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true, "employee_id": employeeID})
}

func (h *Handler) SearchBySkill(c *gin.Context) {
	ctx := c.Request.Context()
	skill := c.Query("skill")

	resp, err := h.service.SearchBySkill(ctx, skill)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) AverageSalary(c *gin.Context) {
	ctx := c.Request.Context()

	averages, err := h.service.AverageSalaryByDepartment(ctx)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, averages)
}

func (h *Handler) DepartmentStats(c *gin.Context) {
	ctx := c.Request.Context()

	stats, err := h.service.DepartmentStatistics(ctx)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, DepartmentStatsResponse{
		Statistics:       stats,
		TotalDepartments: len(stats),
	})
}

func (h *Handler) SalaryDistribution(c *gin.Context) {
	ctx := c.Request.Context()

	dist, err := h.service.SalaryDistribution(ctx)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dist)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
