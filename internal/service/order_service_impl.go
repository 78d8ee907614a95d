package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/apetrov/orderflow/internal/db"
	"github.com/apetrov/orderflow/internal/domain"
	"github.com/apetrov/orderflow/internal/repository"
)

type orderService struct {
	orders   repository.OrderRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewOrderService(orders repository.OrderRepo, uow db.UnitOfWork, observers ...UseCaseObserver) OrderService {
	return &orderService{
		orders:   orders,
		uow:      uow,
		observer: useCaseObserverOrNoop(observers),
	}
}

// Create registers the order and opens its first approval step, handing
// the order to the default technologist. Both writes share one
// transaction so a failed hand-off never leaves an orphaned order.
func (s *orderService) Create(ctx context.Context, o *domain.Order, creator domain.Actor) (first *domain.ApprovalStep, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"creator": creator.Name}
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "create-order",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	if o.Reference == "" {
		o.Reference = uuid.New().String()
	}
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txOrders := repository.NewSQLiteOrderRepo(tx)
		txSteps := repository.NewSQLiteStepRepo(tx)
		txCalendar := repository.NewSQLiteCalendarRepo(tx)
		txDirectory := repository.NewSQLiteDirectoryRepo(tx)

		if err := txOrders.Create(ctx, o); err != nil {
			return err
		}
		fields["order_id"] = o.ID

		assignee, err := txDirectory.DefaultAssignee(ctx, domain.RoleTechnologist)
		if err != nil {
			return fmt.Errorf("routing to %s: %w", domain.RoleTechnologist.DisplayName(), err)
		}

		termDays, err := txOrders.TermDays(ctx, o.ID)
		if err != nil {
			return err
		}
		deadline, err := txCalendar.DeadlineAfter(ctx, now, termDays)
		if err != nil {
			return err
		}

		first = &domain.ApprovalStep{
			OrderID:       o.ID,
			ReceiptDate:   now,
			Deadline:      deadline,
			RecipientRole: domain.RoleTechnologist,
			RecipientName: assignee,
			SenderRole:    creator.Role,
			SenderName:    creator.Name,
			Status:        domain.StepInProgress,
		}
		return txSteps.Create(ctx, first)
	})
	if err != nil {
		return nil, err
	}
	return first, nil
}

func (s *orderService) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	return s.orders.GetByID(ctx, id)
}

func (s *orderService) GetByReference(ctx context.Context, reference string) (*domain.Order, error) {
	return s.orders.GetByReference(ctx, reference)
}

func (s *orderService) List(ctx context.Context) ([]domain.OrderSummary, error) {
	return s.orders.List(ctx)
}

func (s *orderService) Types(ctx context.Context) ([]domain.OrderType, error) {
	return s.orders.Types(ctx)
}
