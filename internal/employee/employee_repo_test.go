package employee_test

import (
	"context"
	"database/sql"
	"testing"

	"employee-api/internal/employee"
	"employee-api/internal/messaging/kafka"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newGormOverMock(t *testing.T) (*gorm.DB, *sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	assert.NoError(t, err)
	return gormDB, db, mock
}

// The repository handle is built over one connection while the transaction
// comes from another; every write bound via WithTx must land on the
// transaction's connection, never on the pool.
func TestRepositoryWithTx(t *testing.T) {
	t.Run("create and outbox row share the transaction", func(t *testing.T) {
		gormDB, poolDB, poolMock := newGormOverMock(t)
		defer poolDB.Close()

		txDB, txMock, err := sqlmock.New()
		assert.NoError(t, err)
		defer txDB.Close()

		event := kafka.OutboxEvent{
			ID:      "evt-1",
			Topic:   "employees.lifecycle.v1",
			Payload: []byte(`{}`),
			Status:  kafka.OutboxStatusPending,
		}

		txMock.ExpectBegin()
		txMock.ExpectExec(`INSERT INTO "employees"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		txMock.ExpectExec("INSERT INTO outbox_events").
			WillReturnResult(sqlmock.NewResult(0, 1))
		txMock.ExpectCommit()

		ctx := context.Background()
		tx, err := txDB.BeginTx(ctx, nil)
		assert.NoError(t, err)

		repo := employee.NewRepository(gormDB).WithTx(tx)
		assert.NoError(t, repo.Create(ctx, &employee.Employee{
			ID:         uuid.New(),
			EmployeeID: "E123",
			Name:       "John Doe",
			Email:      "john.doe@company.com",
			Department: "Engineering",
			Position:   "Software Engineer",
			Salary:     75000,
			Skills:     []string{"Go"},
			IsActive:   true,
		}))

		outbox := kafka.NewOutboxRepository(txDB).WithTx(tx)
		assert.NoError(t, outbox.Create(ctx, event))

		assert.NoError(t, tx.Commit())
		assert.NoError(t, txMock.ExpectationsWereMet())
		assert.NoError(t, poolMock.ExpectationsWereMet())
	})

	t.Run("rollback discards the employee write", func(t *testing.T) {
		gormDB, poolDB, poolMock := newGormOverMock(t)
		defer poolDB.Close()

		txDB, txMock, err := sqlmock.New()
		assert.NoError(t, err)
		defer txDB.Close()

		txMock.ExpectBegin()
		txMock.ExpectExec(`DELETE FROM "employees"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		txMock.ExpectRollback()

		ctx := context.Background()
		tx, err := txDB.BeginTx(ctx, nil)
		assert.NoError(t, err)

		repo := employee.NewRepository(gormDB).WithTx(tx)
		deleted, err := repo.Delete(ctx, "E123")
		assert.NoError(t, err)
		assert.Equal(t, int64(1), deleted)

		assert.NoError(t, tx.Rollback())
		assert.NoError(t, txMock.ExpectationsWereMet())
		assert.NoError(t, poolMock.ExpectationsWereMet())
	})
}
