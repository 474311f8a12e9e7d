package employee_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"employee-api/internal/employee"
	employeeerrors "employee-api/internal/employee/errors"
	"employee-api/internal/events"
	"employee-api/internal/messaging/kafka"
	"employee-api/internal/shared/apperror"
	"employee-api/internal/shared/contextutil"

	employeeMock "employee-api/internal/employee/mock"
	kafkaMock "employee-api/internal/messaging/kafka/mock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

type serviceDeps struct {
	db        *sql.DB
	sqlMock   sqlmock.Sqlmock
	service   employee.Service
	repo      *employeeMock.MockRepository
	outbox    *kafkaMock.MockOutboxRepository
	redismock redismock.ClientMock
}

func setupServiceTest(t *testing.T) *serviceDeps {
	ctrl := gomock.NewController(t)

	db, sqlMock, _ := sqlmock.New()
	dbRedis, redisMock := redismock.NewClientMock()
	repo := employeeMock.NewMockRepository(ctrl)
	outboxRepo := kafkaMock.NewMockOutboxRepository(ctrl)

	svc := employee.NewServiceWithOutbox(db, repo, outboxRepo, dbRedis)

	return &serviceDeps{
		db:        db,
		sqlMock:   sqlMock,
		service:   svc,
		repo:      repo,
		outbox:    outboxRepo,
		redismock: redisMock,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func expectCacheInvalidation(deps *serviceDeps) {
	deps.redismock.ExpectDel(
		employee.DepartmentAveragesCacheKey,
		employee.DepartmentStatsCacheKey,
		employee.SalaryDistributionCacheKey,
	).SetVal(3)
}

func validCreateRequest() employee.CreateEmployeeRequest {
	return employee.CreateEmployeeRequest{
		EmployeeID:  "E123",
		Name:        "John Doe",
		Email:       "John.Doe@company.com",
		Department:  "Engineering",
		Position:    "Software Engineer",
		Salary:      75000,
		JoiningDate: "2023-01-15",
		Skills:      []string{"Go", "Postgres"},
	}
}

func TestEmployeeService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success - defaults applied", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		req := validCreateRequest()

		expectTx(t, deps.sqlMock, true)

		deps.repo.EXPECT().
			WithTx(gomock.Any()).
			Return(deps.repo)

		deps.repo.EXPECT().
			Create(ctx, gomock.Any()).
			DoAndReturn(func(ctx context.Context, e *employee.Employee) error {
				assert.Equal(t, "E123", e.EmployeeID)
				assert.Equal(t, "John Doe", e.Name)
				assert.Equal(t, "john.doe@company.com", e.Email) // lowercased
				assert.Equal(t, "Engineering", e.Department)
				assert.True(t, e.IsActive) // defaults true
				assert.NotEqual(t, "", e.ID.String())
				return nil
			})

		deps.outbox.EXPECT().
			WithTx(gomock.Any()).
			Return(deps.outbox)

		deps.outbox.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			Return(nil).
			Times(1)

		expectCacheInvalidation(deps)

		resp, err := deps.service.Create(ctx, req)

		assert.NoError(t, err)
		assert.Equal(t, "E123", resp.EmployeeID)
		assert.True(t, resp.IsActive)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success - outbox event carries request id", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		rid := "REQ-123-ABC"
		ctx := contextutil.WithRequestID(context.Background(), rid)

		expectTx(t, deps.sqlMock, true)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		deps.outbox.EXPECT().
			WithTx(gomock.Any()).
			Return(deps.outbox)

		deps.outbox.EXPECT().
			Create(gomock.Any(), MatchOutboxWithRID(rid)).
			Return(nil).
			Times(1)

		expectCacheInvalidation(deps)

		_, err := deps.service.Create(ctx, validCreateRequest())

		assert.NoError(t, err)
	})

	t.Run("invalid employee id rejected before any store call", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		req := validCreateRequest()
		req.EmployeeID = "E!"

		_, err := deps.service.Create(ctx, req)

		assert.ErrorIs(t, err, employeeerrors.ErrInvalidEmployeeID)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("non-positive salary rejected", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		req := validCreateRequest()
		req.Salary = 0

		_, err := deps.service.Create(ctx, req)

		assert.ErrorIs(t, err, employeeerrors.ErrInvalidSalary)
	})

	t.Run("malformed joining date rejected", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		req := validCreateRequest()
		req.JoiningDate = "15-01-2023"

		_, err := deps.service.Create(ctx, req)

		assert.ErrorIs(t, err, employeeerrors.ErrInvalidJoiningDate)
	})

	t.Run("duplicate employee id -> conflict error", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().
			Create(ctx, gomock.Any()).
			Return(&pgconn.PgError{Code: "23505", ConstraintName: "uq_employees_employee_id"})

		_, err := deps.service.Create(ctx, validCreateRequest())

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeIDAlreadyExists)
	})

	t.Run("duplicate email -> conflict error", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().
			Create(ctx, gomock.Any()).
			Return(&pgconn.PgError{Code: "23505", ConstraintName: "uq_employees_email"})

		_, err := deps.service.Create(ctx, validCreateRequest())

		assert.ErrorIs(t, err, employeeerrors.ErrEmailAlreadyExists)
	})

	t.Run("repo error -> rollback", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().
			Create(ctx, gomock.Any()).
			Return(errors.New("db error"))

		_, err := deps.service.Create(ctx, validCreateRequest())

		assert.Error(t, err)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestEmployeeService_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.repo.EXPECT().
			FindByEmployeeID(ctx, "E123").
			Return(&employee.Employee{EmployeeID: "E123", Name: "John Doe"}, nil).
			Times(1)

		resp, err := deps.service.GetByID(ctx, "E123")

		assert.NoError(t, err)
		assert.Equal(t, "E123", resp.EmployeeID)
		assert.Equal(t, "John Doe", resp.Name)
	})

	t.Run("not found", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.repo.EXPECT().
			FindByEmployeeID(ctx, "NOPE1").
			Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.GetByID(ctx, "NOPE1")

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})

	t.Run("store unreachable -> service unavailable", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.repo.EXPECT().
			FindByEmployeeID(ctx, "E123").
			Return(nil, driver.ErrBadConn)

		_, err := deps.service.GetByID(ctx, "E123")

		assert.ErrorIs(t, err, apperror.ErrStoreUnavailable)
	})

	t.Run("logs through the request-scoped logger", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		core, logs := observer.New(zap.DebugLevel)
		reqLogger := zap.New(core).With(zap.String("request_id", "REQ-42"))
		ctx := contextutil.WithLogger(context.Background(), reqLogger)

		deps.repo.EXPECT().
			FindByEmployeeID(ctx, "E123").
			Return(&employee.Employee{EmployeeID: "E123"}, nil)

		_, err := deps.service.GetByID(ctx, "E123")

		assert.NoError(t, err)
		entries := logs.FilterMessage("get employee by id requested").All()
		assert.Len(t, entries, 1)
		assert.Equal(t, "REQ-42", entries[0].ContextMap()["request_id"])
	})
}

func TestEmployeeService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("success with pagination metadata", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.repo.EXPECT().
			FindPage(ctx, "Engineering", 2, 2).
			Return([]employee.Employee{
				{EmployeeID: "E003"},
				{EmployeeID: "E004"},
			}, int64(5), nil)

		resp, err := deps.service.List(ctx, employee.ListEmployeesQuery{
			Department: "Engineering",
			Limit:      2,
			Offset:     2,
		})

		assert.NoError(t, err)
		assert.Len(t, resp.Employees, 2)
		assert.Equal(t, int64(5), resp.Pagination.Total)
		assert.True(t, resp.Pagination.HasNext)
		assert.True(t, resp.Pagination.HasPrevious)
	})

	t.Run("last page has no next", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.repo.EXPECT().
			FindPage(ctx, "", 20, 0).
			Return([]employee.Employee{{EmployeeID: "E001"}}, int64(1), nil)

		resp, err := deps.service.List(ctx, employee.ListEmployeesQuery{Limit: 20})

		assert.NoError(t, err)
		assert.False(t, resp.Pagination.HasNext)
		assert.False(t, resp.Pagination.HasPrevious)
	})

	t.Run("repository error", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.repo.EXPECT().
			FindPage(ctx, "", 20, 0).
			Return(nil, int64(0), errors.New("db error"))

		_, err := deps.service.List(ctx, employee.ListEmployeesQuery{Limit: 20})

		assert.Error(t, err)
	})
}

func TestEmployeeService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("partial update retains omitted fields", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		existing := &employee.Employee{
			EmployeeID:  "E123",
			Name:        "John Doe",
			Email:       "john.doe@company.com",
			Department:  "Engineering",
			Position:    "Software Engineer",
			Salary:      75000,
			JoiningDate: "2023-01-15",
			Skills:      []string{"Go"},
			IsActive:    true,
		}

		expectTx(t, deps.sqlMock, true)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().
			FindByEmployeeID(ctx, "E123").
			Return(existing, nil)

		newSalary := float64(85000)
		deps.repo.EXPECT().
			Update(ctx, gomock.Any()).
			DoAndReturn(func(ctx context.Context, e *employee.Employee) error {
				assert.Equal(t, "E123", e.EmployeeID) // immutable
				assert.Equal(t, newSalary, e.Salary)
				assert.Equal(t, "John Doe", e.Name) // retained
				assert.Equal(t, "Engineering", e.Department)
				assert.Equal(t, []string{"Go"}, e.Skills)
				return nil
			})

		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		expectCacheInvalidation(deps)

		resp, err := deps.service.Update(ctx, "E123", employee.UpdateEmployeeRequest{
			Salary: &newSalary,
		})

		assert.NoError(t, err)
		assert.Equal(t, newSalary, resp.Salary)
		assert.Equal(t, "John Doe", resp.Name)
	})

	t.Run("invalid email rejected before the store is touched", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		badEmail := "not-an-email"
		_, err := deps.service.Update(ctx, "E123", employee.UpdateEmployeeRequest{
			Email: &badEmail,
		})

		assert.ErrorIs(t, err, employeeerrors.ErrInvalidEmail)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("employee not found", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().
			FindByEmployeeID(ctx, "NOPE1").
			Return(nil, gorm.ErrRecordNotFound)

		name := "New Name"
		_, err := deps.service.Update(ctx, "NOPE1", employee.UpdateEmployeeRequest{Name: &name})

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})
}

func TestEmployeeService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().
			Delete(ctx, "E123").
			Return(int64(1), nil)

		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		expectCacheInvalidation(deps)

		err := deps.service.Delete(ctx, "E123")

		assert.NoError(t, err)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("not found when nothing was deleted", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().
			Delete(ctx, "NOPE1").
			Return(int64(0), nil)

		err := deps.service.Delete(ctx, "NOPE1")

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})
}

func TestEmployeeService_SearchBySkill(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.repo.EXPECT().
			FindAll(ctx).
			Return([]employee.Employee{
				{EmployeeID: "E001", Skills: []string{"Python", "Django"}},
				{EmployeeID: "E002", Skills: []string{"JavaScript"}},
			}, nil)

		resp, err := deps.service.SearchBySkill(ctx, "python")

		assert.NoError(t, err)
		assert.Equal(t, 1, resp.Count)
		assert.Equal(t, "python", resp.SearchTerm)
		assert.Equal(t, "E001", resp.Employees[0].EmployeeID)
	})

	t.Run("blank term rejected without a scan", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.SearchBySkill(ctx, "   ")

		assert.ErrorIs(t, err, employeeerrors.ErrMissingSkillTerm)
	})
}

func TestEmployeeService_Aggregates(t *testing.T) {
	ctx := context.Background()

	records := []employee.Employee{
		{EmployeeID: "E001", Department: "Engineering", Salary: 80000},
		{EmployeeID: "E002", Department: "Engineering", Salary: 80000},
		{EmployeeID: "E003", Department: "HR", Salary: 60000},
	}

	t.Run("cache miss scans the collection and fills the cache", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		expected := []employee.DepartmentAverage{
			{Department: "Engineering", AvgSalary: 80000},
			{Department: "HR", AvgSalary: 60000},
		}
		jsonData, _ := json.Marshal(expected)

		deps.redismock.ExpectGet(employee.DepartmentAveragesCacheKey).RedisNil()
		deps.repo.EXPECT().
			FindAll(gomock.Any()).
			Return(records, nil).
			Times(1)
		deps.redismock.ExpectSet(employee.DepartmentAveragesCacheKey, jsonData, 5*time.Minute).SetVal("OK")

		averages, err := deps.service.AverageSalaryByDepartment(ctx)

		assert.NoError(t, err)
		assert.Equal(t, expected, averages)
	})

	t.Run("cache hit skips the store", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		cached := []employee.DepartmentStat{
			{Department: "HR", EmployeeCount: 1, AverageSalary: 60000, MinSalary: 60000, MaxSalary: 60000, TotalSalary: 60000},
		}
		jsonData, _ := json.Marshal(cached)

		deps.redismock.ExpectGet(employee.DepartmentStatsCacheKey).SetVal(string(jsonData))

		stats, err := deps.service.DepartmentStatistics(ctx)

		assert.NoError(t, err)
		assert.Equal(t, cached, stats)
	})

	t.Run("salary distribution on empty collection", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.redismock.ExpectGet(employee.SalaryDistributionCacheKey).RedisNil()
		deps.repo.EXPECT().
			FindAll(gomock.Any()).
			Return([]employee.Employee{}, nil)
		deps.redismock.Regexp().ExpectSet(employee.SalaryDistributionCacheKey, `.*`, 5*time.Minute).SetVal("OK")

		dist, err := deps.service.SalaryDistribution(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 0, dist.TotalEmployees)
		for _, b := range dist.Buckets {
			assert.Equal(t, 0, b.Count)
			assert.Equal(t, 0, b.Percentage)
		}
	})

	t.Run("scan error propagates", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.redismock.ExpectGet(employee.DepartmentAveragesCacheKey).RedisNil()
		deps.repo.EXPECT().
			FindAll(gomock.Any()).
			Return(nil, errors.New("connection lost"))

		_, err := deps.service.AverageSalaryByDepartment(ctx)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "connection lost")
	})
}

// Helper
type outboxRequestIDMatcher struct {
	expectedRID string
}

func (m outboxRequestIDMatcher) Matches(x any) bool {
	event, ok := x.(kafka.OutboxEvent)
	if !ok {
		return false
	}

	if event.RequestID != m.expectedRID {
		return false
	}

	var payload events.EmployeeLifecycleEvent
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return false
	}

	return payload.RequestID == m.expectedRID
}

func (m outboxRequestIDMatcher) String() string {
	return "matches outbox event with request_id " + m.expectedRID
}

func MatchOutboxWithRID(rid string) gomock.Matcher {
	return outboxRequestIDMatcher{expectedRID: rid}
}
