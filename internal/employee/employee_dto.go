package employee

import "employee-api/internal/shared/response"

type CreateEmployeeRequest struct {
	EmployeeID  string   `json:"employee_id" binding:"required"`
	Name        string   `json:"name" binding:"required"`
	Email       string   `json:"email" binding:"required,email"`
	Department  string   `json:"department" binding:"required"`
	Position    string   `json:"position" binding:"required"`
	Salary      float64  `json:"salary" binding:"required"`
	JoiningDate string   `json:"joining_date"`
	Skills      []string `json:"skills"`
	IsActive    *bool    `json:"is_active"`
}

// UpdateEmployeeRequest is a partial update: nil fields keep their prior
// value. An employee_id in the body is ignored, the path parameter wins.
type UpdateEmployeeRequest struct {
	Name        *string  `json:"name"`
	Email       *string  `json:"email" binding:"omitempty,email"`
	Department  *string  `json:"department"`
	Position    *string  `json:"position"`
	Salary      *float64 `json:"salary"`
	JoiningDate *string  `json:"joining_date"`
	Skills      []string `json:"skills"`
	IsActive    *bool    `json:"is_active"`
}

type EmployeeResponse struct {
	EmployeeID  string   `json:"employee_id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Department  string   `json:"department"`
	Position    string   `json:"position"`
	Salary      float64  `json:"salary"`
	JoiningDate string   `json:"joining_date"`
	Skills      []string `json:"skills"`
	IsActive    bool     `json:"is_active"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

type ListEmployeesQuery struct {
	Department string
	Limit      int
	Offset     int
}

type ListEmployeesResponse struct {
	Employees  []EmployeeResponse  `json:"employees"`
	Pagination response.Pagination `json:"pagination"`
}

type SkillSearchResponse struct {
	Employees  []EmployeeResponse `json:"employees"`
	SearchTerm string             `json:"search_term"`
	Count      int                `json:"count"`
}

type DepartmentStatsResponse struct {
	Statistics       []DepartmentStat `json:"statistics"`
	TotalDepartments int              `json:"total_departments"`
}
