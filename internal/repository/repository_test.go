package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"invoicing/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&model.InvoiceRecord{}, &model.CompanyRecord{}))
	return db
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return gormDB, mock, mockDB
}

func invoiceRecord(number string, createdAt time.Time) *model.InvoiceRecord {
	return &model.InvoiceRecord{
		ID:            uuid.New(),
		InvoiceNumber: number,
		Document:      `{"invoice_number":"` + number + `"}`,
		CreatedAt:     createdAt,
	}
}

func TestInvoiceRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewInvoiceRepository(newTestDB(t))

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	older := invoiceRecord("INV-1", base)
	newer := invoiceRecord("INV-2", base.Add(time.Hour))
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))

	t.Run("find by id", func(t *testing.T) {
		got, err := repo.FindByID(ctx, older.ID)
		require.NoError(t, err)
		assert.Equal(t, "INV-1", got.InvoiceNumber)
		assert.Equal(t, older.Document, got.Document)
	})

	t.Run("list is newest first", func(t *testing.T) {
		got, err := repo.List(ctx, 0)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, newer.ID, got[0].ID)
		assert.Equal(t, older.ID, got[1].ID)

		limited, err := repo.List(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, limited, 1)
	})

	t.Run("update", func(t *testing.T) {
		older.InvoiceNumber = "INV-1A"
		older.Document = `{"invoice_number":"INV-1A"}`
		require.NoError(t, repo.Update(ctx, older))

		got, err := repo.FindByID(ctx, older.ID)
		require.NoError(t, err)
		assert.Equal(t, "INV-1A", got.InvoiceNumber)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, repo.Update(ctx, invoiceRecord("X", base)), ErrNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), ErrNotFound)
	})

	t.Run("delete then delete all", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, older.ID))
		_, err := repo.FindByID(ctx, older.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		n, err := repo.DeleteAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		left, err := repo.List(ctx, 0)
		require.NoError(t, err)
		assert.Empty(t, left)
	})
}

func TestTransactionManager_RollsBack(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewInvoiceRepository(db)
	txManager := NewTransactionManager(db)

	record := invoiceRecord("INV-TX", time.Now())
	boom := errors.New("boom")
	err := txManager.RunInTx(ctx, func(txCtx context.Context) error {
		require.NoError(t, repo.Create(txCtx, record))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = repo.FindByID(ctx, record.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCompanyRepository_FindAndSave(t *testing.T) {
	ctx := context.Background()
	repo := NewCompanyRepository(newTestDB(t))

	_, err := repo.Find(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	record := &model.CompanyRecord{ID: uuid.New(), Document: `{"company_name":"Acme"}`}
	require.NoError(t, repo.Save(ctx, record))
	assert.False(t, record.CreatedAt.IsZero())

	record.Document = `{"company_name":"Acme Ltd"}`
	require.NoError(t, repo.Save(ctx, record))

	got, err := repo.Find(ctx)
	require.NoError(t, err)
	assert.Equal(t, record.ID, got.ID)
	assert.Equal(t, `{"company_name":"Acme Ltd"}`, got.Document)
}

func TestInvoiceRepository_DatabaseFailures(t *testing.T) {
	ctx := context.Background()
	dbErr := errors.New("connection reset by peer")

	t.Run("find surfaces driver error", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "invoices"`).WillReturnError(dbErr)

		_, err := NewInvoiceRepository(db).FindByID(ctx, uuid.New())
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("list surfaces driver error", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "invoices" ORDER BY created_at desc`).WillReturnError(dbErr)

		_, err := NewInvoiceRepository(db).List(ctx, 0)
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete of zero rows is not found", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()

		mock.ExpectExec(`DELETE FROM "invoices"`).WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewInvoiceRepository(db).Delete(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete surfaces driver error", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()

		mock.ExpectExec(`DELETE FROM "invoices"`).WillReturnError(dbErr)

		err := NewInvoiceRepository(db).Delete(ctx, uuid.New())
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
