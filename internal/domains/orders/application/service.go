package application

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/bookworks/bookstore-api/internal/domains/orders/application/types"
	"github.com/bookworks/bookstore-api/internal/domains/orders/domain"
	"github.com/bookworks/bookstore-api/internal/domains/orders/ports"
)

// Service orchestrates the order workflow: idempotency lookup, stock
// reservation, order persistence, and the status lifecycle, all inside a
// single transactional boundary.
type Service struct {
	repo        ports.Repository
	ledger      ports.InventoryLedger
	idempotency ports.IdempotencyStore
	eligibility ports.EligibilityChecker
	events      ports.EventPublisher
	logger      *slog.Logger
}

type Option func(*Service)

// WithEvents wires a publisher for committed order state changes.
func WithEvents(publisher ports.EventPublisher) Option {
	return func(s *Service) {
		s.events = publisher
	}
}

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService wires the order workflow with its collaborators.
func NewService(repo ports.Repository, ledger ports.InventoryLedger, idempotency ports.IdempotencyStore, eligibility ports.EligibilityChecker, opts ...Option) *Service {
	s := &Service{
		repo:        repo,
		ledger:      ledger,
		idempotency: idempotency,
		eligibility: eligibility,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// CreateOrder turns a cart of requested items into a persisted order.
// The operation is all-or-nothing: any failure during the reservation
// loop rolls back every decrement and partial write, and a replay with
// the same (user, idempotency key) returns the original order with no
// new side effects.
func (s *Service) CreateOrder(ctx context.Context, input types.CreateOrderInput) (*domain.Order, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	if input.IdempotencyKey != "" {
		replayed, err := s.lookupReplay(ctx, input.IdempotencyKey, input.UserID)
		if err != nil {
			return nil, err
		}
		if replayed != nil {
			return replayed, nil
		}
	}

	if err := s.eligibility.CheckEligibility(ctx, input.UserID); err != nil {
		return nil, err
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, err
	}

	saved, err := s.createInTx(ctx, tx, input)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.LogAttrs(ctx, slog.LevelError, "order rollback failed",
				slog.Int64("user.id", input.UserID), slog.String("error", rbErr.Error()))
		}
		if errors.Is(err, ports.ErrIdempotencyConflict) && input.IdempotencyKey != "" {
			// Lost a same-key race at commit time; resolve against the winner.
			replayed, replayErr := s.lookupReplay(ctx, input.IdempotencyKey, input.UserID)
			if replayErr == nil && replayed != nil {
				return replayed, nil
			}
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.publish(ctx, "order created", func() error { return s.events.OrderCreated(ctx, saved) }, saved)
	return saved, nil
}

func (s *Service) createInTx(ctx context.Context, tx ports.Tx, input types.CreateOrderInput) (*domain.Order, error) {
	items := make([]domain.OrderItem, 0, len(input.Items))
	for _, line := range input.Items {
		snapshot, err := s.ledger.TryReserve(ctx, tx, line.BookID, line.Quantity)
		if err != nil {
			return nil, err
		}
		items = append(items, domain.OrderItem{
			BookID:    snapshot.BookID,
			Title:     snapshot.Title,
			Quantity:  line.Quantity,
			UnitPrice: snapshot.UnitPrice,
		})
	}

	order, err := domain.NewOrder(input.UserID, items, input.IdempotencyKey)
	if err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Create(ctx, tx, order)
	if err != nil {
		return nil, err
	}

	if input.IdempotencyKey != "" {
		record := ports.IdempotencyRecord{
			Key:     input.IdempotencyKey,
			UserID:  input.UserID,
			OrderID: saved.ID,
		}
		if err := s.idempotency.Save(ctx, tx, record); err != nil {
			return nil, err
		}
	}
	return saved, nil
}

// lookupReplay resolves an idempotency key to its original order. It
// returns (nil, nil) when the key is unused.
func (s *Service) lookupReplay(ctx context.Context, key string, userID int64) (*domain.Order, error) {
	record, err := s.idempotency.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}
	if record.UserID != userID {
		return nil, ports.ErrIdempotencyConflict
	}
	order, err := s.repo.GetByID(ctx, record.OrderID)
	if err != nil {
		return nil, err
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "idempotent replay",
		slog.Int64("order.id", order.ID), slog.Int64("user.id", userID))
	return order, nil
}

// CancelOrder transitions an order to Cancelled and restores every line
// item's quantity to its book inside one transaction. Terminal orders
// are rejected without mutation. The legality check here runs on a
// pre-transaction copy; the repository's compare-and-swap on the
// from-status is what guarantees that of two racing cancels only one
// releases stock.
func (s *Service) CancelOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	from := order.Status
	if err := order.TransitionTo(domain.StatusCancelled); err != nil {
		return nil, err
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cancelInTx(ctx, tx, order, from); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.LogAttrs(ctx, slog.LevelError, "cancel rollback failed",
				slog.Int64("order.id", orderID), slog.String("error", rbErr.Error()))
		}
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.publish(ctx, "order cancelled", func() error { return s.events.OrderCancelled(ctx, order) }, order)
	return order, nil
}

func (s *Service) cancelInTx(ctx context.Context, tx ports.Tx, order *domain.Order, from domain.Status) error {
	for _, item := range order.Items {
		if err := s.ledger.Release(ctx, tx, item.BookID, item.Quantity); err != nil {
			return err
		}
	}
	// Losing the from-status swap rolls back every release above.
	return s.repo.UpdateStatus(ctx, tx, order.ID, from, domain.StatusCancelled)
}

// UpdateStatus applies a lifecycle transition. The status string is
// validated against the enum before transition legality is checked.
// A transition into Cancelled routes through CancelOrder so the stock
// restoration invariant holds regardless of entry point.
func (s *Service) UpdateStatus(ctx context.Context, orderID int64, status string) (*domain.Order, error) {
	target, err := domain.ParseStatus(status)
	if err != nil {
		return nil, mapError(err)
	}
	if target == domain.StatusCancelled {
		return s.CancelOrder(ctx, orderID)
	}

	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	from := order.Status
	if err := order.TransitionTo(target); err != nil {
		return nil, err
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, tx, order.ID, from, target); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.LogAttrs(ctx, slog.LevelError, "status rollback failed",
				slog.Int64("order.id", orderID), slog.String("error", rbErr.Error()))
		}
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return order, nil
}

// GetByID loads a single order aggregate.
func (s *Service) GetByID(ctx context.Context, orderID int64) (*domain.Order, error) {
	return s.repo.GetByID(ctx, orderID)
}

func (s *Service) publish(ctx context.Context, event string, fn func() error, order *domain.Order) {
	if s.events == nil {
		return
	}
	if err := fn(); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "event publish failed",
			slog.String("event", event), slog.Int64("order.id", order.ID), slog.String("error", err.Error()))
	}
}

func validateCreateInput(input types.CreateOrderInput) error {
	if input.UserID <= 0 {
		return mapError(domain.ErrInvalidUserID)
	}
	if len(input.Items) == 0 {
		return mapError(domain.ErrEmptyOrder)
	}
	for _, line := range input.Items {
		if line.BookID <= 0 {
			return mapError(domain.ErrInvalidBookID)
		}
		if line.Quantity <= 0 {
			return mapError(domain.ErrInvalidQuantity)
		}
	}
	return nil
}

var _ ports.Service = (*Service)(nil)
