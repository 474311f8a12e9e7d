package employee

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, empl *Employee) error
	FindByEmployeeID(ctx context.Context, employeeID string) (*Employee, error)
	FindPage(ctx context.Context, department string, limit, offset int) ([]Employee, int64, error)
	FindAll(ctx context.Context) ([]Employee, error)
	Update(ctx context.Context, empl *Employee) error
	Delete(ctx context.Context, employeeID string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// WithTx rebinds the repository onto a caller-owned transaction so the
// employee write commits or rolls back together with its outbox row.
func (r *repository) WithTx(tx *sql.Tx) Repository {
	session := r.db.Session(&gorm.Session{Context: r.db.Statement.Context, NewDB: true})
	session.Statement.ConnPool = tx
	return &repository{db: session}
}

func (r *repository) Create(ctx context.Context, empl *Employee) error {
	return r.db.WithContext(ctx).Create(empl).Error
}

func (r *repository) FindByEmployeeID(ctx context.Context, employeeID string) (*Employee, error) {
	var empl Employee
	err := r.db.WithContext(ctx).
		First(&empl, "employee_id = ?", employeeID).Error
	if err != nil {
		return nil, err
	}
	return &empl, nil
}

// FindPage lists newest joiners first. The department filter is a
// case-insensitive equality match.
func (r *repository) FindPage(ctx context.Context, department string, limit, offset int) ([]Employee, int64, error) {
	query := r.db.WithContext(ctx).Model(&Employee{})
	if department != "" {
		query = query.Where("LOWER(department) = LOWER(?)", department)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var empls []Employee
	err := query.
		Order("joining_date DESC").
		Limit(limit).
		Offset(offset).
		Find(&empls).Error
	return empls, total, err
}

// FindAll is the full-collection scan the aggregation engine runs over.
func (r *repository) FindAll(ctx context.Context) ([]Employee, error) {
	var empls []Employee
	err := r.db.WithContext(ctx).Find(&empls).Error
	return empls, err
}

func (r *repository) Update(ctx context.Context, empl *Employee) error {
	return r.db.WithContext(ctx).Save(empl).Error
}

func (r *repository) Delete(ctx context.Context, employeeID string) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&Employee{}, "employee_id = ?", employeeID)
	return res.RowsAffected, res.Error
}
