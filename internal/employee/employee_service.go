package employee

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	employeeerrors "employee-api/internal/employee/errors"
	"employee-api/internal/events"
	"employee-api/internal/messaging/kafka"
	"employee-api/internal/shared/contextutil"
	"employee-api/internal/shared/response"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Aggregate responses are cached in Redis when a client is configured; a nil
// client means every aggregate request re-reads the full collection. Every
// mutation invalidates all three keys, so cached and uncached deployments
// serve identical results.
const (
	DepartmentAveragesCacheKey = "employees:stats:avg-salary"
	DepartmentStatsCacheKey    = "employees:stats:departments"
	SalaryDistributionCacheKey = "employees:stats:distribution"

	statsCacheTTL = 5 * time.Minute
)

var statsCacheKeys = []string{
	DepartmentAveragesCacheKey,
	DepartmentStatsCacheKey,
	SalaryDistributionCacheKey,
}

//go:generate mockgen -source=employee_service.go -destination=mock/employee_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)
	GetByID(ctx context.Context, employeeID string) (EmployeeResponse, error)
	List(ctx context.Context, q ListEmployeesQuery) (ListEmployeesResponse, error)
	Update(ctx context.Context, employeeID string, req UpdateEmployeeRequest) (EmployeeResponse, error)
	Delete(ctx context.Context, employeeID string) error
	SearchBySkill(ctx context.Context, term string) (SkillSearchResponse, error)
	AverageSalaryByDepartment(ctx context.Context) ([]DepartmentAverage, error)
	DepartmentStatistics(ctx context.Context) ([]DepartmentStat, error)
	SalaryDistribution(ctx context.Context) (SalaryDistribution, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	outbox kafka.OutboxRepository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	return NewServiceWithOutbox(db, repo, nil, rdb, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	outboxRepo kafka.OutboxRepository,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		outbox: outboxRepo,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

func (s *service) Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	logger := contextutil.GetLogger(ctx, s.logger)
	logger.Debug("create employee requested",
		zap.String("request_id", rid),
		zap.String("employee_id", req.EmployeeID),
		zap.String("department", req.Department),
	)

	if !validEmployeeID(req.EmployeeID) {
		return EmployeeResponse{}, employeeerrors.ErrInvalidEmployeeID
	}
	if !validEmail(req.Email) {
		return EmployeeResponse{}, employeeerrors.ErrInvalidEmail
	}
	if !validSalary(req.Salary) {
		return EmployeeResponse{}, employeeerrors.ErrInvalidSalary
	}
	if req.JoiningDate != "" && !validDate(req.JoiningDate) {
		return EmployeeResponse{}, employeeerrors.ErrInvalidJoiningDate
	}
	if !validSkills(req.Skills) {
		return EmployeeResponse{}, employeeerrors.ErrInvalidSkills
	}

	joiningDate := req.JoiningDate
	if joiningDate == "" {
		joiningDate = time.Now().UTC().Format(dateLayout)
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	skills := req.Skills
	if skills == nil {
		skills = []string{}
	}

	empl := &Employee{
		ID:          uuid.New(),
		EmployeeID:  req.EmployeeID,
		Name:        strings.TrimSpace(req.Name),
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		Department:  strings.TrimSpace(req.Department),
		Position:    strings.TrimSpace(req.Position),
		Salary:      req.Salary,
		JoiningDate: joiningDate,
		Skills:      skills,
		IsActive:    isActive,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("create employee begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.Create(ctx, empl); err != nil {
		logger.Error("create employee persist failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	if err := s.enqueueLifecycleEvent(ctx, tx, events.EmployeeCreated, empl); err != nil {
		logger.Error("create employee outbox persist failed",
			zap.String("employee_id", empl.EmployeeID),
			zap.Error(err),
		)
		return EmployeeResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		logger.Error("create employee commit failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, err
	}

	s.invalidateStatsCache(ctx)

	logger.Info("create employee success",
		zap.String("request_id", rid),
		zap.String("employee_id", empl.EmployeeID),
	)

	return mapToResponse(*empl), nil
}

func (s *service) GetByID(ctx context.Context, employeeID string) (EmployeeResponse, error) {
	logger := contextutil.GetLogger(ctx, s.logger)
	logger.Debug("get employee by id requested", zap.String("employee_id", employeeID))

	empl, err := s.repo.FindByEmployeeID(ctx, employeeID)
	if err != nil {
		logger.Error("get employee by id failed", zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	return mapToResponse(*empl), nil
}

func (s *service) List(ctx context.Context, q ListEmployeesQuery) (ListEmployeesResponse, error) {
	logger := contextutil.GetLogger(ctx, s.logger)
	logger.Debug("list employees requested",
		zap.String("department", q.Department),
		zap.Int("limit", q.Limit),
		zap.Int("offset", q.Offset),
	)

	empls, total, err := s.repo.FindPage(ctx, q.Department, q.Limit, q.Offset)
	if err != nil {
		logger.Error("list employees failed", zap.Error(err))
		return ListEmployeesResponse{}, mapRepositoryError(err)
	}

	return ListEmployeesResponse{
		Employees:  mapToListResponse(empls),
		Pagination: response.NewPagination(total, q.Limit, q.Offset),
	}, nil
}

func (s *service) Update(ctx context.Context, employeeID string, req UpdateEmployeeRequest) (EmployeeResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	logger := contextutil.GetLogger(ctx, s.logger)
	logger.Debug("update employee requested",
		zap.String("request_id", rid),
		zap.String("employee_id", employeeID),
	)

	if req.Email != nil && !validEmail(*req.Email) {
		return EmployeeResponse{}, employeeerrors.ErrInvalidEmail
	}
	if req.Salary != nil && !validSalary(*req.Salary) {
		return EmployeeResponse{}, employeeerrors.ErrInvalidSalary
	}
	if req.JoiningDate != nil && !validDate(*req.JoiningDate) {
		return EmployeeResponse{}, employeeerrors.ErrInvalidJoiningDate
	}
	if req.Skills != nil && !validSkills(req.Skills) {
		return EmployeeResponse{}, employeeerrors.ErrInvalidSkills
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("update employee begin tx failed", zap.Error(err))
		return EmployeeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	empl, err := qtx.FindByEmployeeID(ctx, employeeID)
	if err != nil {
		logger.Error("update employee fetch existing failed", zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	// Partial update: only fields present in the body change. employee_id
	// never changes.
	if req.Name != nil {
		empl.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		empl.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Department != nil {
		empl.Department = strings.TrimSpace(*req.Department)
	}
	if req.Position != nil {
		empl.Position = strings.TrimSpace(*req.Position)
	}
	if req.Salary != nil {
		empl.Salary = *req.Salary
	}
	if req.JoiningDate != nil {
		empl.JoiningDate = *req.JoiningDate
	}
	if req.Skills != nil {
		empl.Skills = req.Skills
	}
	if req.IsActive != nil {
		empl.IsActive = *req.IsActive
	}

	if err := qtx.Update(ctx, empl); err != nil {
		logger.Error("update employee persist failed", zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	if err := s.enqueueLifecycleEvent(ctx, tx, events.EmployeeUpdated, empl); err != nil {
		logger.Error("update employee outbox persist failed",
			zap.String("employee_id", employeeID),
			zap.Error(err),
		)
		return EmployeeResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		logger.Error("update employee commit failed", zap.Error(err))
		return EmployeeResponse{}, err
	}

	s.invalidateStatsCache(ctx)

	logger.Info("update employee success", zap.String("employee_id", employeeID))

	return mapToResponse(*empl), nil
}

func (s *service) Delete(ctx context.Context, employeeID string) error {
	logger := contextutil.GetLogger(ctx, s.logger)
	logger.Debug("delete employee requested", zap.String("employee_id", employeeID))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("delete employee begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	deleted, err := qtx.Delete(ctx, employeeID)
	if err != nil {
		logger.Error("delete employee failed", zap.Error(err))
		return mapRepositoryError(err)
	}
	if deleted == 0 {
		return employeeerrors.ErrEmployeeNotFound
	}

	if err := s.enqueueLifecycleEvent(ctx, tx, events.EmployeeDeleted, &Employee{EmployeeID: employeeID}); err != nil {
		logger.Error("delete employee outbox persist failed",
			zap.String("employee_id", employeeID),
			zap.Error(err),
		)
		return err
	}

	if err := tx.Commit(); err != nil {
		logger.Error("delete employee commit failed", zap.Error(err))
		return err
	}

	s.invalidateStatsCache(ctx)

	logger.Info("delete employee success", zap.String("employee_id", employeeID))
	return nil
}

func (s *service) SearchBySkill(ctx context.Context, term string) (SkillSearchResponse, error) {
	term = strings.TrimSpace(term)
	logger := contextutil.GetLogger(ctx, s.logger)
	logger.Debug("search employees by skill requested", zap.String("skill", term))

	// A blank term matches nothing; the handler already rejects a missing
	// parameter, this guards direct callers.
	if term == "" {
		return SkillSearchResponse{}, employeeerrors.ErrMissingSkillTerm
	}

	records, err := s.repo.FindAll(ctx)
	if err != nil {
		logger.Error("search employees scan failed", zap.Error(err))
		return SkillSearchResponse{}, mapRepositoryError(err)
	}

	matched := FilterBySkill(records, term)
	return SkillSearchResponse{
		Employees:  mapToListResponse(matched),
		SearchTerm: term,
		Count:      len(matched),
	}, nil
}

func (s *service) AverageSalaryByDepartment(ctx context.Context) ([]DepartmentAverage, error) {
	return cachedAggregate(ctx, s, DepartmentAveragesCacheKey, ComputeDepartmentAverages)
}

func (s *service) DepartmentStatistics(ctx context.Context) ([]DepartmentStat, error) {
	return cachedAggregate(ctx, s, DepartmentStatsCacheKey, ComputeDepartmentStats)
}

func (s *service) SalaryDistribution(ctx context.Context) (SalaryDistribution, error) {
	return cachedAggregate(ctx, s, SalaryDistributionCacheKey, ComputeSalaryDistribution)
}

// cachedAggregate serves an aggregate from Redis when possible, otherwise
// scans the collection once (collapsed by singleflight) and caches the
// computed result.
func cachedAggregate[T any](ctx context.Context, s *service, key string, compute func([]Employee) T) (T, error) {
	var zero T

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, key).Result(); err == nil {
			var out T
			if json.Unmarshal([]byte(cached), &out) == nil {
				return out, nil
			}
		}
	}

	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		records, err := s.repo.FindAll(ctx)
		if err != nil {
			contextutil.GetLogger(ctx, s.logger).Error("aggregate scan failed", zap.String("cache_key", key), zap.Error(err))
			return nil, mapRepositoryError(err)
		}

		out := compute(records)

		if s.rdb != nil {
			if jsonData, err := json.Marshal(out); err == nil {
				s.rdb.Set(ctx, key, jsonData, statsCacheTTL)
			}
		}

		return out, nil
	})
	if err != nil {
		return zero, err
	}

	return v.(T), nil
}

func (s *service) invalidateStatsCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, statsCacheKeys...).Err(); err != nil {
		contextutil.GetLogger(ctx, s.logger).Error("failed to invalidate stats cache", zap.Error(err))
	}
}

func (s *service) enqueueLifecycleEvent(ctx context.Context, tx *sql.Tx, eventType string, empl *Employee) error {
	if s.outbox == nil {
		return nil
	}

	rid := contextutil.GetRequestID(ctx)
	event := events.EmployeeLifecycleEvent{
		EventType:  eventType,
		RequestID:  rid,
		EmployeeID: empl.EmployeeID,
		Department: empl.Department,
		OccurredAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "employee",
		AggregateID:   empl.EmployeeID,
		EventType:     eventType,
		Topic:         events.EmployeeLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func mapToResponse(empl Employee) EmployeeResponse {
	skills := empl.Skills
	if skills == nil {
		skills = []string{}
	}
	return EmployeeResponse{
		EmployeeID:  empl.EmployeeID,
		Name:        empl.Name,
		Email:       empl.Email,
		Department:  empl.Department,
		Position:    empl.Position,
		Salary:      empl.Salary,
		JoiningDate: empl.JoiningDate,
		Skills:      skills,
		IsActive:    empl.IsActive,
		CreatedAt:   empl.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   empl.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func mapToListResponse(empls []Employee) []EmployeeResponse {
	res := make([]EmployeeResponse, len(empls))
	for i, e := range empls {
		res[i] = mapToResponse(e)
	}
	return res
}
