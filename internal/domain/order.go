package domain

import "time"

// Order is a manufacturing order routed through the approval chain.
type Order struct {
	ID        int64
	Reference string
	Name      string
	Workshop  string
	TypeID    int64

	// Memo orders are created directly by the order manager from an
	// internal memo instead of arriving through the planning system.
	IsByMemo   bool
	MemoNumber string
	MemoAuthor string

	ManufacturingTerm *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderType carries the business-day deadline count applied to every
// hand-off of orders of this type.
type OrderType struct {
	ID       int64
	Name     string
	TermDays int
}

// OrderSummary is a listing row: the order plus trail-derived flags.
type OrderSummary struct {
	Order     Order
	HasRework bool
	OpenSteps int
}
