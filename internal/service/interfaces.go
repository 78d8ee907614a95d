package service

import (
	"context"

	"github.com/apetrov/orderflow/internal/domain"
	"github.com/apetrov/orderflow/internal/history"
)

// ApprovalService is the approval state machine: it closes the acting
// user's open step and routes the order to whoever acts next.
type ApprovalService interface {
	// Approve closes the actor's open step with an approved result and
	// hands the order on: to the rework sender when closing a rework
	// step, to the role chain's successor otherwise. Returns a Terminal
	// result when the final approver signs off.
	Approve(ctx context.Context, orderID int64, actor domain.Actor, d domain.Decision) (*domain.TransitionResult, error)

	// Reject closes the actor's open step with a rejected result and
	// opens a rework step for d.Recipient, defaulting to whoever handed
	// the order to the actor.
	Reject(ctx context.Context, orderID int64, actor domain.Actor, d domain.Decision) (*domain.TransitionResult, error)

	// Pending returns the actor's open step on the order, or
	// ErrNoActiveStep.
	Pending(ctx context.Context, orderID int64, actorName string) (*domain.ApprovalStep, error)
}

type OrderService interface {
	// Create registers the order and opens its first approval step with
	// the default technologist. Both writes happen in one transaction.
	Create(ctx context.Context, o *domain.Order, creator domain.Actor) (*domain.ApprovalStep, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	GetByReference(ctx context.Context, reference string) (*domain.Order, error)
	List(ctx context.Context) ([]domain.OrderSummary, error)
	Types(ctx context.Context) ([]domain.OrderType, error)
}

type HistoryService interface {
	// Trail returns the flat approval trail in receipt order.
	Trail(ctx context.Context, orderID int64) ([]domain.ApprovalStep, error)

	// Tree returns the trail as a display forest. Root steps whose
	// stored result has drifted from the rolled-up outcome are synced
	// back to the database on a best-effort basis.
	Tree(ctx context.Context, orderID int64) ([]*history.Node, error)
}
