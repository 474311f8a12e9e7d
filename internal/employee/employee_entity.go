package employee

import (
	"time"

	"github.com/google/uuid"
)

type Employee struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeID  string    `gorm:"uniqueIndex:uq_employees_employee_id"`
	Name        string
	Email       string `gorm:"uniqueIndex:uq_employees_email"`
	Department  string `gorm:"index"`
	Position    string
	Salary      float64
	JoiningDate string   // YYYY-MM-DD
	Skills      []string `gorm:"serializer:json"`
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
