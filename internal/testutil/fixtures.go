package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/apetrov/orderflow/internal/domain"
)

// Order options
type OrderOption func(*domain.Order)

func WithOrderName(name string) OrderOption {
	return func(o *domain.Order) {
		o.Name = name
	}
}

func WithWorkshop(w string) OrderOption {
	return func(o *domain.Order) {
		o.Workshop = w
	}
}

func WithTypeID(id int64) OrderOption {
	return func(o *domain.Order) {
		o.TypeID = id
	}
}

func WithMemo(number, author string) OrderOption {
	return func(o *domain.Order) {
		o.IsByMemo = true
		o.MemoNumber = number
		o.MemoAuthor = author
	}
}

func NewTestOrder(opts ...OrderOption) *domain.Order {
	now := time.Now().UTC()
	o := &domain.Order{
		Reference: uuid.New().String(),
		Name:      "bracket assembly",
		Workshop:  "workshop-3",
		TypeID:    1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Step options
type StepOption func(*domain.ApprovalStep)

func WithStepParent(id int64) StepOption {
	return func(s *domain.ApprovalStep) {
		s.ParentID = &id
	}
}

func WithStepReceipt(t time.Time) StepOption {
	return func(s *domain.ApprovalStep) {
		s.ReceiptDate = t
	}
}

func WithStepSender(role domain.Role, name string) StepOption {
	return func(s *domain.ApprovalStep) {
		s.SenderRole = role
		s.SenderName = name
	}
}

func WithStepDone(result domain.StepResult, completedAt time.Time) StepOption {
	return func(s *domain.ApprovalStep) {
		s.Status = domain.StepDone
		s.Result = result
		s.CompletionDate = &completedAt
	}
}

func WithStepRework() StepOption {
	return func(s *domain.ApprovalStep) {
		s.IsRework = true
	}
}

func NewTestStep(orderID int64, role domain.Role, name string, opts ...StepOption) *domain.ApprovalStep {
	now := time.Now().UTC()
	s := &domain.ApprovalStep{
		OrderID:       orderID,
		ReceiptDate:   now,
		Deadline:      now.AddDate(0, 0, 10),
		RecipientRole: role,
		RecipientName: name,
		Status:        domain.StepInProgress,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
