package domain

import "time"

// ApprovalStep is one row of an order's approval audit trail: a single
// hand-off of the order to a recipient. Steps are append-only; an existing
// step is only ever updated to close it out or to repoint ParentID when a
// rework cycle folds back into the main flow.
type ApprovalStep struct {
	ID      int64
	OrderID int64

	// ParentID links a step to the step that caused it. Set on rework
	// steps (the rejection is the anchor of the rework subtree) and on
	// steps that continue an open rework branch; nil for top-level flow.
	ParentID *int64

	ReceiptDate    time.Time
	CompletionDate *time.Time
	Deadline       time.Time

	RecipientRole Role
	RecipientName string
	SenderRole    Role
	SenderName    string

	Status  StepStatus
	Result  StepResult
	Comment string

	// IsRework marks a step that exists because a prior step was
	// rejected and sent back.
	IsRework bool
}

// Open reports whether the step is still waiting on its recipient.
func (s *ApprovalStep) Open() bool {
	return s.CompletionDate == nil
}

// Actor identifies the user a state-machine call acts on behalf of.
type Actor struct {
	Name string
	Role Role
}

// Decision carries the free-text data of an approve/reject action.
// Recipient is only meaningful on Reject; when empty the order returns
// to whoever handed it to the acting user.
type Decision struct {
	Comment   string
	Recipient string
}

// TransitionResult reports the outcome of one state-machine transition
// for display.
type TransitionResult struct {
	Message  string
	NextRole Role
	NextName string

	// Terminal is set when the final approver signed off and the
	// workflow produced no further hand-off.
	Terminal bool

	// StepID is the id of the newly inserted step, 0 when Terminal.
	StepID int64
}
