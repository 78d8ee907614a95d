package repository

import (
	"context"
	"time"

	"github.com/apetrov/orderflow/internal/domain"
)

// StepRepo is the append-only audit store for approval hand-offs.
// Rows are inserted and closed out; the only other mutation is the
// ParentID repoint performed when a rework cycle folds back.
type StepRepo interface {
	Create(ctx context.Context, s *domain.ApprovalStep) error
	Update(ctx context.Context, s *domain.ApprovalStep) error
	UpdateResult(ctx context.Context, id int64, result domain.StepResult) error
	GetByID(ctx context.Context, id int64) (*domain.ApprovalStep, error)
	ListByOrder(ctx context.Context, orderID int64) ([]domain.ApprovalStep, error)
	ListByRecipient(ctx context.Context, orderID int64, role domain.Role, name string) ([]domain.ApprovalStep, error)

	// ActiveForRecipient returns the recipient's most recent open step
	// on the order, or ErrNotFound.
	ActiveForRecipient(ctx context.Context, orderID int64, name string) (*domain.ApprovalStep, error)

	// ActiveRework returns the open rework step already targeting the
	// recipient, or ErrNotFound.
	ActiveRework(ctx context.Context, orderID int64, role domain.Role, name string) (*domain.ApprovalStep, error)
}

type OrderRepo interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	GetByReference(ctx context.Context, reference string) (*domain.Order, error)
	List(ctx context.Context) ([]domain.OrderSummary, error)
	Update(ctx context.Context, o *domain.Order) error

	// TermDays returns the business-day deadline count of the order's
	// type.
	TermDays(ctx context.Context, orderID int64) (int, error)

	Types(ctx context.Context) ([]domain.OrderType, error)
}

// CalendarRepo answers business-day arithmetic from the working-day
// calendar table.
type CalendarRepo interface {
	// DeadlineAfter returns the Nth working day strictly after start.
	// When the calendar holds no data that far ahead it falls back to
	// start plus businessDays calendar days.
	DeadlineAfter(ctx context.Context, start time.Time, businessDays int) (time.Time, error)

	// SetDay records whether a day is a working day.
	SetDay(ctx context.Context, day time.Time, working bool) error
}

// DirectoryRepo is the role directory.
type DirectoryRepo interface {
	RoleOf(ctx context.Context, name string) (domain.Role, error)
	DefaultAssignee(ctx context.Context, role domain.Role) (string, error)
	Upsert(ctx context.Context, name string, role domain.Role, isDefault bool) error
	List(ctx context.Context) ([]domain.User, error)
}
