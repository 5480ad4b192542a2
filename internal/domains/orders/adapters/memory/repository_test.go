package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bookworks/bookstore-api/internal/domains/orders/domain"
	"github.com/bookworks/bookstore-api/internal/domains/orders/ports"
	"github.com/bookworks/bookstore-api/internal/shared/money"
)

func storedOrder(t *testing.T, repo *Repository) *domain.Order {
	t.Helper()
	order, err := domain.NewOrder(1, []domain.OrderItem{
		{BookID: 1, Title: "Dune", Quantity: 2, UnitPrice: money.Money{Amount: 999, Currency: "USD"}},
	}, "")
	require.NoError(t, err)

	ctx := context.Background()
	tx, err := repo.Begin(ctx)
	require.NoError(t, err)
	saved, err := repo.Create(ctx, tx, order)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	return saved
}

func TestRepository_UpdateStatus_SwapsOnExpectedStatus(t *testing.T) {
	repo := NewRepository()
	saved := storedOrder(t, repo)
	ctx := context.Background()

	tx, err := repo.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatus(ctx, tx, saved.ID, domain.StatusPending, domain.StatusPaid))
	require.NoError(t, tx.Commit())

	fetched, err := repo.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPaid, fetched.Status)
}

func TestRepository_UpdateStatus_StaleFromStatusLoses(t *testing.T) {
	repo := NewRepository()
	saved := storedOrder(t, repo)
	ctx := context.Background()

	tx, err := repo.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatus(ctx, tx, saved.ID, domain.StatusPending, domain.StatusPaid))
	require.NoError(t, tx.Commit())

	// A writer still holding the pending snapshot must not overwrite
	// the transition that landed in between.
	tx, err = repo.Begin(ctx)
	require.NoError(t, err)
	err = repo.UpdateStatus(ctx, tx, saved.ID, domain.StatusPending, domain.StatusCancelled)
	var transitionErr *domain.InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	require.Equal(t, domain.StatusPaid, transitionErr.From)
	require.Equal(t, domain.StatusCancelled, transitionErr.To)
	require.NoError(t, tx.Rollback())

	fetched, err := repo.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPaid, fetched.Status)
}

func TestRepository_UpdateStatus_RollbackRestoresStatus(t *testing.T) {
	repo := NewRepository()
	saved := storedOrder(t, repo)
	ctx := context.Background()

	tx, err := repo.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatus(ctx, tx, saved.ID, domain.StatusPending, domain.StatusPaid))
	require.NoError(t, tx.Rollback())

	fetched, err := repo.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, fetched.Status)
}

func TestRepository_UpdateStatus_UnknownOrder(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	tx, err := repo.Begin(ctx)
	require.NoError(t, err)
	err = repo.UpdateStatus(ctx, tx, 404, domain.StatusPending, domain.StatusPaid)
	require.ErrorIs(t, err, ports.ErrNotFound)
	require.NoError(t, tx.Rollback())
}
