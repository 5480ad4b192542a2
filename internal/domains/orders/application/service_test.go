package application

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	catalogmemory "github.com/bookworks/bookstore-api/internal/domains/catalog/adapters/memory"
	catalogdomain "github.com/bookworks/bookstore-api/internal/domains/catalog/domain"
	ordermemory "github.com/bookworks/bookstore-api/internal/domains/orders/adapters/memory"
	"github.com/bookworks/bookstore-api/internal/domains/orders/application/types"
	"github.com/bookworks/bookstore-api/internal/domains/orders/domain"
	"github.com/bookworks/bookstore-api/internal/domains/orders/ports"
	"github.com/bookworks/bookstore-api/internal/shared/money"
)

type fixture struct {
	service     *Service
	books       *catalogmemory.Repository
	eligibility *ordermemory.EligibilityChecker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	books := catalogmemory.NewRepository()
	eligibility := ordermemory.NewEligibilityChecker()
	eligibility.AddUser(1, true)
	service := NewService(
		ordermemory.NewRepository(),
		ordermemory.NewLedger(books),
		ordermemory.NewIdempotencyStore(),
		eligibility,
	)
	return &fixture{service: service, books: books, eligibility: eligibility}
}

func (f *fixture) addBook(t *testing.T, id int64, title string, priceCents int64, quantity int32) {
	t.Helper()
	book, err := catalogdomain.NewBook(id, title, "Author", money.Money{Amount: priceCents, Currency: "USD"}, quantity)
	require.NoError(t, err)
	_, err = f.books.Save(context.Background(), book)
	require.NoError(t, err)
}

func (f *fixture) stock(t *testing.T, bookID int64) int32 {
	t.Helper()
	book, err := f.books.GetByID(context.Background(), bookID)
	require.NoError(t, err)
	return book.Quantity
}

func TestCreateOrder_TotalFromSnapshotPrices(t *testing.T) {
	f := newFixture(t)
	f.addBook(t, 1, "Dune", 1599, 10)

	order, err := f.service.CreateOrder(context.Background(), types.CreateOrderInput{
		UserID: 1,
		Items:  []types.LineItemInput{{BookID: 1, Quantity: 3}},
	})
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, order.Status)
	require.Equal(t, int64(4797), order.Total.Amount)
	require.Equal(t, "USD", order.Total.Currency)
	require.Len(t, order.Items, 1)
	require.Equal(t, "Dune", order.Items[0].Title)
	require.Equal(t, int64(1599), order.Items[0].UnitPrice.Amount)
	require.Equal(t, int32(7), f.stock(t, 1))
}

func TestCreateOrder_InputValidation(t *testing.T) {
	f := newFixture(t)
	f.addBook(t, 1, "Dune", 999, 5)
	ctx := context.Background()

	_, err := f.service.CreateOrder(ctx, types.CreateOrderInput{UserID: 0, Items: []types.LineItemInput{{BookID: 1, Quantity: 1}}})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.service.CreateOrder(ctx, types.CreateOrderInput{UserID: 1})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.service.CreateOrder(ctx, types.CreateOrderInput{UserID: 1, Items: []types.LineItemInput{{BookID: 1, Quantity: 0}}})
	require.ErrorIs(t, err, ErrInvalidInput)

	// Validation failures never touch stock.
	require.Equal(t, int32(5), f.stock(t, 1))
}

func TestCreateOrder_UnknownBook(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.CreateOrder(context.Background(), types.CreateOrderInput{
		UserID: 1,
		Items:  []types.LineItemInput{{BookID: 42, Quantity: 1}},
	})
	require.ErrorIs(t, err, ports.ErrBookNotFound)
}

func TestCreateOrder_InsufficientStock(t *testing.T) {
	f := newFixture(t)
	f.addBook(t, 1, "Dune", 999, 2)

	_, err := f.service.CreateOrder(context.Background(), types.CreateOrderInput{
		UserID: 1,
		Items:  []types.LineItemInput{{BookID: 1, Quantity: 3}},
	})
	var stockErr *catalogdomain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, int32(3), stockErr.Requested)
	require.Equal(t, int32(2), stockErr.Available)
	require.Equal(t, int32(2), f.stock(t, 1))
}

func TestCreateOrder_MidListFailureRollsBackReservations(t *testing.T) {
	f := newFixture(t)
	f.addBook(t, 1, "Dune", 999, 5)
	f.addBook(t, 2, "Neuromancer", 799, 0)
	f.addBook(t, 3, "Hyperion", 1299, 4)

	_, err := f.service.CreateOrder(context.Background(), types.CreateOrderInput{
		UserID: 1,
		Items: []types.LineItemInput{
			{BookID: 1, Quantity: 2},
			{BookID: 2, Quantity: 1},
			{BookID: 3, Quantity: 1},
		},
	})
	var stockErr *catalogdomain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, int64(2), stockErr.BookID)

	// The failed order must leave every book untouched, including the
	// one reserved before the failure.
	require.Equal(t, int32(5), f.stock(t, 1))
	require.Equal(t, int32(0), f.stock(t, 2))
	require.Equal(t, int32(4), f.stock(t, 3))
}

func TestCreateOrder_EligibilityGate(t *testing.T) {
	f := newFixture(t)
	f.addBook(t, 1, "Dune", 999, 5)
	f.eligibility.AddUser(2, false)
	ctx := context.Background()
	items := []types.LineItemInput{{BookID: 1, Quantity: 1}}

	_, err := f.service.CreateOrder(ctx, types.CreateOrderInput{UserID: 2, Items: items})
	require.ErrorIs(t, err, ports.ErrIneligible)

	_, err = f.service.CreateOrder(ctx, types.CreateOrderInput{UserID: 99, Items: items})
	require.ErrorIs(t, err, ports.ErrUserNotFound)

	require.Equal(t, int32(5), f.stock(t, 1))
}

func TestCreateOrder_IdempotentReplay(t *testing.T) {
	f := newFixture(t)
	f.addBook(t, 1, "Dune", 999, 5)
	ctx := context.Background()
	input := types.CreateOrderInput{
		UserID:         1,
		Items:          []types.LineItemInput{{BookID: 1, Quantity: 2}},
		IdempotencyKey: "order-abc",
	}

	first, err := f.service.CreateOrder(ctx, input)
	require.NoError(t, err)

	replay, err := f.service.CreateOrder(ctx, input)
	require.NoError(t, err)
	require.Equal(t, first.ID, replay.ID)
	require.Equal(t, first.Reference, replay.Reference)

	// The replay must not reserve stock a second time.
	require.Equal(t, int32(3), f.stock(t, 1))
}

func TestCreateOrder_IdempotencyKeyIsPerUser(t *testing.T) {
	f := newFixture(t)
	f.addBook(t, 1, "Dune", 999, 5)
	f.eligibility.AddUser(2, true)
	ctx := context.Background()

	_, err := f.service.CreateOrder(ctx, types.CreateOrderInput{
		UserID:         1,
		Items:          []types.LineItemInput{{BookID: 1, Quantity: 1}},
		IdempotencyKey: "shared-key",
	})
	require.NoError(t, err)

	_, err = f.service.CreateOrder(ctx, types.CreateOrderInput{
		UserID:         2,
		Items:          []types.LineItemInput{{BookID: 1, Quantity: 1}},
		IdempotencyKey: "shared-key",
	})
	require.ErrorIs(t, err, ports.ErrIdempotencyConflict)
	require.Equal(t, int32(4), f.stock(t, 1))
}

func TestCreateOrder_ConcurrentLastUnit(t *testing.T) {
	f := newFixture(t)
	f.addBook(t, 1, "Dune", 999, 1)
	f.eligibility.AddUser(2, true)

	results := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.service.CreateOrder(context.Background(), types.CreateOrderInput{
				UserID: int64(i + 1),
				Items:  []types.LineItemInput{{BookID: 1, Quantity: 1}},
			})
			results[i] = err
		}(i)
	}
	wg.Wait()

	failures := 0
	for _, err := range results {
		if err != nil {
			var stockErr *catalogdomain.InsufficientStockError
			require.ErrorAs(t, err, &stockErr)
			failures++
		}
	}
	require.Equal(t, 1, failures, "exactly one of two racing orders must win the last unit")
	require.Equal(t, int32(0), f.stock(t, 1))
}

func TestCancelOrder_RestoresStock(t *testing.T) {
	f := newFixture(t)
	f.addBook(t, 1, "Dune", 999, 5)
	f.addBook(t, 2, "Neuromancer", 799, 3)
	ctx := context.Background()

	order, err := f.service.CreateOrder(ctx, types.CreateOrderInput{
		UserID: 1,
		Items: []types.LineItemInput{
			{BookID: 1, Quantity: 2},
			{BookID: 2, Quantity: 1},
		},
	})
	require.NoError(t, err)
	require.Equal(t, int32(3), f.stock(t, 1))
	require.Equal(t, int32(2), f.stock(t, 2))

	cancelled, err := f.service.CancelOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusCancelled, cancelled.Status)
	require.Equal(t, int32(5), f.stock(t, 1))
	require.Equal(t, int32(3), f.stock(t, 2))
}

func TestCancelOrder_TerminalRejected(t *testing.T) {
	f := newFixture(t)
	f.addBook(t, 1, "Dune", 999, 5)
	ctx := context.Background()

	order, err := f.service.CreateOrder(ctx, types.CreateOrderInput{
		UserID: 1,
		Items:  []types.LineItemInput{{BookID: 1, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = f.service.CancelOrder(ctx, order.ID)
	require.NoError(t, err)

	_, err = f.service.CancelOrder(ctx, order.ID)
	var transitionErr *domain.InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)

	// A rejected cancel must not release stock again.
	require.Equal(t, int32(5), f.stock(t, 1))
}

// barrierLedger holds every Release at a barrier until the expected
// number of callers arrives, forcing racing cancellations to overlap:
// each caller has loaded the order before any of them commits.
type barrierLedger struct {
	*ordermemory.Ledger
	barrier *sync.WaitGroup
}

func (l *barrierLedger) Release(ctx context.Context, tx ports.Tx, bookID int64, qty int32) error {
	l.barrier.Done()
	l.barrier.Wait()
	return l.Ledger.Release(ctx, tx, bookID, qty)
}

func TestCancelOrder_ConcurrentCancelsReleaseOnce(t *testing.T) {
	books := catalogmemory.NewRepository()
	eligibility := ordermemory.NewEligibilityChecker()
	eligibility.AddUser(1, true)

	var barrier sync.WaitGroup
	barrier.Add(2)
	ledger := &barrierLedger{Ledger: ordermemory.NewLedger(books), barrier: &barrier}
	service := NewService(ordermemory.NewRepository(), ledger, ordermemory.NewIdempotencyStore(), eligibility)

	book, err := catalogdomain.NewBook(1, "Dune", "Author", money.Money{Amount: 999, Currency: "USD"}, 10)
	require.NoError(t, err)
	_, err = books.Save(context.Background(), book)
	require.NoError(t, err)

	order, err := service.CreateOrder(context.Background(), types.CreateOrderInput{
		UserID: 1,
		Items:  []types.LineItemInput{{BookID: 1, Quantity: 3}},
	})
	require.NoError(t, err)

	results := make([]error, 2)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := service.CancelOrder(context.Background(), order.ID)
			results[i] = err
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
			continue
		}
		var transitionErr *domain.InvalidTransitionError
		require.ErrorAs(t, err, &transitionErr)
		require.Equal(t, domain.StatusCancelled, transitionErr.From)
	}
	require.Equal(t, 1, successes, "exactly one of two racing cancels may release stock")

	stored, err := service.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusCancelled, stored.Status)

	// The losing cancel's releases roll back, so the three reserved
	// units come back exactly once.
	restocked, err := books.GetByID(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, int32(10), restocked.Quantity)
}

func TestCancelOrder_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.CancelOrder(context.Background(), 404)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestUpdateStatus_Lifecycle(t *testing.T) {
	f := newFixture(t)
	f.addBook(t, 1, "Dune", 999, 5)
	ctx := context.Background()

	order, err := f.service.CreateOrder(ctx, types.CreateOrderInput{
		UserID: 1,
		Items:  []types.LineItemInput{{BookID: 1, Quantity: 1}},
	})
	require.NoError(t, err)

	for _, status := range []string{"paid", "shipped", "completed"} {
		updated, err := f.service.UpdateStatus(ctx, order.ID, status)
		require.NoError(t, err)
		require.Equal(t, status, string(updated.Status))
	}

	stored, err := f.service.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusCompleted, stored.Status)
}

func TestUpdateStatus_IllegalTransition(t *testing.T) {
	f := newFixture(t)
	f.addBook(t, 1, "Dune", 999, 5)
	ctx := context.Background()

	order, err := f.service.CreateOrder(ctx, types.CreateOrderInput{
		UserID: 1,
		Items:  []types.LineItemInput{{BookID: 1, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = f.service.UpdateStatus(ctx, order.ID, "completed")
	var transitionErr *domain.InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	require.Equal(t, domain.StatusPending, transitionErr.From)

	stored, err := f.service.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, stored.Status)
}

func TestUpdateStatus_UnknownStatus(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.UpdateStatus(context.Background(), 1, "refunded")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateStatus_CancelledRoutesThroughCancel(t *testing.T) {
	f := newFixture(t)
	f.addBook(t, 1, "Dune", 999, 5)
	ctx := context.Background()

	order, err := f.service.CreateOrder(ctx, types.CreateOrderInput{
		UserID: 1,
		Items:  []types.LineItemInput{{BookID: 1, Quantity: 2}},
	})
	require.NoError(t, err)
	require.Equal(t, int32(3), f.stock(t, 1))

	updated, err := f.service.UpdateStatus(ctx, order.ID, "cancelled")
	require.NoError(t, err)
	require.Equal(t, domain.StatusCancelled, updated.Status)

	// Cancelling via the status endpoint still restores stock.
	require.Equal(t, int32(5), f.stock(t, 1))
}
