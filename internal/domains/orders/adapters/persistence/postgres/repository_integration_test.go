//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	catalogpostgres "github.com/bookworks/bookstore-api/internal/domains/catalog/adapters/persistence/postgres"
	catalogdomain "github.com/bookworks/bookstore-api/internal/domains/catalog/domain"
	"github.com/bookworks/bookstore-api/internal/domains/orders/domain"
	"github.com/bookworks/bookstore-api/internal/domains/orders/ports"
	"github.com/bookworks/bookstore-api/internal/platform/migrations"
	"github.com/bookworks/bookstore-api/internal/shared/money"
)

func setupOrdersPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("bookstore_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = migrations.Run(db)
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}

	return db, cleanup
}

func seedBook(t *testing.T, db *gorm.DB, id int64, title string, priceCents int64, quantity int32) {
	t.Helper()
	book, err := catalogdomain.NewBook(id, title, "Author", money.Money{Amount: priceCents, Currency: "USD"}, quantity)
	require.NoError(t, err)
	_, err = catalogpostgres.NewRepository(db).Save(context.Background(), book)
	require.NoError(t, err)
}

func bookQuantity(t *testing.T, db *gorm.DB, id int64) int32 {
	t.Helper()
	book, err := catalogpostgres.NewRepository(db).GetByID(context.Background(), id)
	require.NoError(t, err)
	return book.Quantity
}

func seedCustomer(t *testing.T, db *gorm.DB, id int64, email string, confirmed bool, status string) {
	t.Helper()
	err := db.Exec(
		"INSERT INTO customers (id, email, email_confirmed, status, created_at, updated_at) VALUES (?, ?, ?, ?, NOW(), NOW())",
		id, email, confirmed, status,
	).Error
	require.NoError(t, err)
}

func sampleOrder(t *testing.T, userID int64, key string) *domain.Order {
	t.Helper()
	order, err := domain.NewOrder(userID, []domain.OrderItem{
		{BookID: 1, Title: "Dune", Quantity: 2, UnitPrice: money.Money{Amount: 1599, Currency: "USD"}},
	}, key)
	require.NoError(t, err)
	return order
}

func TestRepository_CreateAndGetByID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	tx, err := repo.Begin(ctx)
	require.NoError(t, err)
	saved, err := repo.Create(ctx, tx, sampleOrder(t, 1, "key-1"))
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	assert.NotZero(t, saved.ID)

	fetched, err := repo.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.Reference, fetched.Reference)
	assert.Equal(t, domain.StatusPending, fetched.Status)
	assert.Equal(t, int64(3198), fetched.Total.Amount)
	require.Len(t, fetched.Items, 1)
	assert.Equal(t, "Dune", fetched.Items[0].Title)

	_, err = repo.GetByID(ctx, saved.ID+100)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_CreateRollbackDiscardsOrder(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	tx, err := repo.Begin(ctx)
	require.NoError(t, err)
	saved, err := repo.Create(ctx, tx, sampleOrder(t, 1, ""))
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	_, err = repo.GetByID(ctx, saved.ID)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_UpdateStatus(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	tx, err := repo.Begin(ctx)
	require.NoError(t, err)
	saved, err := repo.Create(ctx, tx, sampleOrder(t, 1, ""))
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	tx, err = repo.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatus(ctx, tx, saved.ID, domain.StatusPending, domain.StatusPaid))
	require.NoError(t, tx.Commit())

	fetched, err := repo.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, fetched.Status)

	// A stale from-status loses the swap and reports what actually
	// happened underneath, leaving the row untouched.
	tx, err = repo.Begin(ctx)
	require.NoError(t, err)
	err = repo.UpdateStatus(ctx, tx, saved.ID, domain.StatusPending, domain.StatusCancelled)
	var transitionErr *domain.InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, domain.StatusPaid, transitionErr.From)
	require.NoError(t, tx.Rollback())

	fetched, err = repo.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, fetched.Status)

	tx, err = repo.Begin(ctx)
	require.NoError(t, err)
	err = repo.UpdateStatus(ctx, tx, saved.ID+100, domain.StatusPending, domain.StatusPaid)
	assert.ErrorIs(t, err, ports.ErrNotFound)
	require.NoError(t, tx.Rollback())
}

func TestLedger_TryReserve(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()
	seedBook(t, db, 1, "Dune", 1599, 5)

	repo := NewRepository(db)
	ledger := NewLedger(db)
	ctx := context.Background()

	tx, err := repo.Begin(ctx)
	require.NoError(t, err)
	snapshot, err := ledger.TryReserve(ctx, tx, 1, 3)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	assert.Equal(t, "Dune", snapshot.Title)
	assert.Equal(t, int64(1599), snapshot.UnitPrice.Amount)
	assert.Equal(t, int32(2), bookQuantity(t, db, 1))

	// Over-ask fails with the remaining availability and leaves stock alone.
	tx, err = repo.Begin(ctx)
	require.NoError(t, err)
	_, err = ledger.TryReserve(ctx, tx, 1, 3)
	var stockErr *catalogdomain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int32(3), stockErr.Requested)
	assert.Equal(t, int32(2), stockErr.Available)
	require.NoError(t, tx.Rollback())
	assert.Equal(t, int32(2), bookQuantity(t, db, 1))

	tx, err = repo.Begin(ctx)
	require.NoError(t, err)
	_, err = ledger.TryReserve(ctx, tx, 42, 1)
	assert.ErrorIs(t, err, ports.ErrBookNotFound)
	require.NoError(t, tx.Rollback())
}

func TestLedger_ReserveRollbackRestoresStock(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()
	seedBook(t, db, 1, "Dune", 1599, 5)

	repo := NewRepository(db)
	ledger := NewLedger(db)
	ctx := context.Background()

	tx, err := repo.Begin(ctx)
	require.NoError(t, err)
	_, err = ledger.TryReserve(ctx, tx, 1, 4)
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	assert.Equal(t, int32(5), bookQuantity(t, db, 1))
}

func TestLedger_Release(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()
	seedBook(t, db, 1, "Dune", 1599, 2)

	repo := NewRepository(db)
	ledger := NewLedger(db)
	ctx := context.Background()

	tx, err := repo.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, ledger.Release(ctx, tx, 1, 3))
	require.NoError(t, tx.Commit())
	assert.Equal(t, int32(5), bookQuantity(t, db, 1))

	tx, err = repo.Begin(ctx)
	require.NoError(t, err)
	err = ledger.Release(ctx, tx, 42, 1)
	assert.ErrorIs(t, err, ports.ErrBookNotFound)
	require.NoError(t, tx.Rollback())
}

func TestIdempotencyStore_SaveAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	store := NewIdempotencyStore(db)
	ctx := context.Background()

	tx, err := repo.Begin(ctx)
	require.NoError(t, err)
	order, err := repo.Create(ctx, tx, sampleOrder(t, 1, "key-abc"))
	require.NoError(t, err)
	err = store.Save(ctx, tx, ports.IdempotencyRecord{Key: "key-abc", UserID: 1, OrderID: order.ID})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	record, err := store.Get(ctx, "key-abc")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, int64(1), record.UserID)
	assert.Equal(t, order.ID, record.OrderID)

	absent, err := store.Get(ctx, "unused-key")
	require.NoError(t, err)
	assert.Nil(t, absent)
}

func TestIdempotencyStore_DuplicateKeyConflicts(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	store := NewIdempotencyStore(db)
	ctx := context.Background()

	tx, err := repo.Begin(ctx)
	require.NoError(t, err)
	first, err := repo.Create(ctx, tx, sampleOrder(t, 1, ""))
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, tx, ports.IdempotencyRecord{Key: "key-dup", UserID: 1, OrderID: first.ID}))
	require.NoError(t, tx.Commit())

	tx, err = repo.Begin(ctx)
	require.NoError(t, err)
	second, err := repo.Create(ctx, tx, sampleOrder(t, 2, ""))
	require.NoError(t, err)
	err = store.Save(ctx, tx, ports.IdempotencyRecord{Key: "key-dup", UserID: 2, OrderID: second.ID})
	assert.ErrorIs(t, err, ports.ErrIdempotencyConflict)
	require.NoError(t, tx.Rollback())
}

func TestEligibilityChecker(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()
	seedCustomer(t, db, 1, "reader@example.com", true, "active")
	seedCustomer(t, db, 2, "unconfirmed@example.com", false, "active")
	seedCustomer(t, db, 3, "suspended@example.com", true, "suspended")

	checker := NewEligibilityChecker(db)
	ctx := context.Background()

	assert.NoError(t, checker.CheckEligibility(ctx, 1))
	assert.ErrorIs(t, checker.CheckEligibility(ctx, 2), ports.ErrIneligible)
	assert.ErrorIs(t, checker.CheckEligibility(ctx, 3), ports.ErrIneligible)
	assert.ErrorIs(t, checker.CheckEligibility(ctx, 99), ports.ErrUserNotFound)
}
