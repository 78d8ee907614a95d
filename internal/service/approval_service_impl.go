package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/apetrov/orderflow/internal/db"
	"github.com/apetrov/orderflow/internal/domain"
	"github.com/apetrov/orderflow/internal/repository"
)

type approvalService struct {
	steps    repository.StepRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewApprovalService(steps repository.StepRepo, uow db.UnitOfWork, observers ...UseCaseObserver) ApprovalService {
	return &approvalService{
		steps:    steps,
		uow:      uow,
		observer: useCaseObserverOrNoop(observers),
	}
}

// Approve closes the actor's open step and routes the order forward.
//
// Routing: a rework step goes back to whoever sent it; a normal step,
// or a rework whose sender can no longer be resolved, goes to the role
// chain's successor, resolved to that role's default assignee. The
// final approver has no successor, so their sign-off ends the workflow
// without opening a new step.
//
// Parent linking keeps the trail renderable as a tree. When the order
// returns to someone who previously rejected it, the new step anchors
// under that original rejection rather than under the step just closed,
// and the closed rework step is folded underneath the new one.
func (s *approvalService) Approve(ctx context.Context, orderID int64, actor domain.Actor, d domain.Decision) (result *domain.TransitionResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"order_id": orderID, "actor": actor.Name}
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "approve-order",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txSteps := repository.NewSQLiteStepRepo(tx)
		txOrders := repository.NewSQLiteOrderRepo(tx)
		txCalendar := repository.NewSQLiteCalendarRepo(tx)
		txDirectory := repository.NewSQLiteDirectoryRepo(tx)

		active, err := txSteps.ActiveForRecipient(ctx, orderID, actor.Name)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNoActiveStep
			}
			return err
		}
		oldParent := active.ParentID

		now := time.Now().UTC()
		active.CompletionDate = &now
		active.Status = domain.StepDone
		active.Result = domain.ResultApproved
		active.Comment = d.Comment
		if err := txSteps.Update(ctx, active); err != nil {
			return err
		}

		var nextRole domain.Role
		var nextName string
		if active.IsRework && active.SenderName != "" {
			nextName = active.SenderName
			nextRole = active.SenderRole
			if nextRole == "" {
				nextRole, err = txDirectory.RoleOf(ctx, nextName)
				switch {
				case err == nil:
				case errors.Is(err, repository.ErrNotFound):
					// The sender is no longer known; hand the order to
					// the role chain's successor instead.
					nextName = ""
				default:
					return fmt.Errorf("resolving rework sender %q: %w", nextName, err)
				}
			}
		}
		if nextName == "" {
			successor, ok := active.RecipientRole.DefaultSuccessor()
			if !ok {
				fields["terminal"] = true
				result = &domain.TransitionResult{
					Terminal: true,
					Message:  fmt.Sprintf("%s signed off; approval complete", actor.Name),
				}
				return nil
			}
			nextRole = successor
			nextName, err = txDirectory.DefaultAssignee(ctx, nextRole)
			if err != nil {
				return fmt.Errorf("routing to %s: %w", nextRole.DisplayName(), err)
			}
		}
		fields["next"] = nextName

		trail, err := txSteps.ListByOrder(ctx, orderID)
		if err != nil {
			return err
		}
		byID := indexByID(trail)

		// Anchor under the recipient's original rejection when the flow
		// returns to them; otherwise continue the open rework branch.
		var parent *int64
		if anchor := findRejectingAncestor(byID, active.ParentID, nextName); anchor != nil {
			parent = anchor
		} else if active.IsRework {
			parent = active.ParentID
		}

		termDays, err := txOrders.TermDays(ctx, orderID)
		if err != nil {
			return err
		}
		deadline, err := txCalendar.DeadlineAfter(ctx, now, termDays)
		if err != nil {
			return err
		}

		next := &domain.ApprovalStep{
			OrderID:       orderID,
			ParentID:      parent,
			ReceiptDate:   now,
			Deadline:      deadline,
			RecipientRole: nextRole,
			RecipientName: nextName,
			SenderRole:    active.RecipientRole,
			SenderName:    actor.Name,
			Status:        domain.StepInProgress,
		}
		if err := txSteps.Create(ctx, next); err != nil {
			return err
		}

		if active.IsRework {
			// Fold the finished rework under the step that resumes the
			// flow, breaking the link first if it would loop back. The
			// closed step's own parent can already lead back through it
			// when stored links are tangled, so re-check after the swap
			// and root the new step rather than keep any path to active.
			if chainContains(byID, next.ParentID, active.ID) {
				next.ParentID = oldParent
				if chainContains(byID, next.ParentID, active.ID) {
					next.ParentID = nil
				}
				if err := txSteps.Update(ctx, next); err != nil {
					return err
				}
			}
			active.ParentID = &next.ID
			if err := txSteps.Update(ctx, active); err != nil {
				return err
			}
		}

		result = &domain.TransitionResult{
			Message:  fmt.Sprintf("approved; handed to %s (%s)", nextName, nextRole.DisplayName()),
			NextRole: nextRole,
			NextName: nextName,
			StepID:   next.ID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Reject closes the actor's open step with a rejected result and opens
// a rework step for the chosen recipient. The recipient defaults to
// whoever handed the order to the actor. An order may hold at most one
// open rework step per recipient.
func (s *approvalService) Reject(ctx context.Context, orderID int64, actor domain.Actor, d domain.Decision) (result *domain.TransitionResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"order_id": orderID, "actor": actor.Name}
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "reject-order",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txSteps := repository.NewSQLiteStepRepo(tx)
		txOrders := repository.NewSQLiteOrderRepo(tx)
		txCalendar := repository.NewSQLiteCalendarRepo(tx)
		txDirectory := repository.NewSQLiteDirectoryRepo(tx)

		active, err := txSteps.ActiveForRecipient(ctx, orderID, actor.Name)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNoActiveStep
			}
			return err
		}

		recipName := d.Recipient
		var recipRole domain.Role
		if recipName == "" {
			recipName = active.SenderName
			recipRole = active.SenderRole
		}
		if recipName == "" {
			return ErrNoRecipient
		}
		if recipRole == "" {
			recipRole, err = txDirectory.RoleOf(ctx, recipName)
			if err != nil {
				return fmt.Errorf("resolving recipient %q: %w", recipName, err)
			}
		}
		fields["recipient"] = recipName

		if _, err := txSteps.ActiveRework(ctx, orderID, recipRole, recipName); err == nil {
			return ErrDuplicateRework
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		now := time.Now().UTC()
		active.CompletionDate = &now
		active.Status = domain.StepDone
		active.Result = domain.ResultRejected
		active.Comment = d.Comment
		if err := txSteps.Update(ctx, active); err != nil {
			return err
		}

		termDays, err := txOrders.TermDays(ctx, orderID)
		if err != nil {
			return err
		}
		deadline, err := txCalendar.DeadlineAfter(ctx, now, termDays)
		if err != nil {
			return err
		}

		rework := &domain.ApprovalStep{
			OrderID:       orderID,
			ParentID:      &active.ID,
			ReceiptDate:   now,
			Deadline:      deadline,
			RecipientRole: recipRole,
			RecipientName: recipName,
			SenderRole:    active.RecipientRole,
			SenderName:    actor.Name,
			Status:        domain.StepInProgress,
			IsRework:      true,
		}
		if err := txSteps.Create(ctx, rework); err != nil {
			return err
		}

		result = &domain.TransitionResult{
			Message:  fmt.Sprintf("rejected; returned to %s (%s) for rework", recipName, recipRole.DisplayName()),
			NextRole: recipRole,
			NextName: recipName,
			StepID:   rework.ID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *approvalService) Pending(ctx context.Context, orderID int64, actorName string) (*domain.ApprovalStep, error) {
	step, err := s.steps.ActiveForRecipient(ctx, orderID, actorName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoActiveStep
		}
		return nil, err
	}
	return step, nil
}

func indexByID(trail []domain.ApprovalStep) map[int64]*domain.ApprovalStep {
	byID := make(map[int64]*domain.ApprovalStep, len(trail))
	for i := range trail {
		byID[trail[i].ID] = &trail[i]
	}
	return byID
}

// findRejectingAncestor walks the parent chain from start looking for
// the recipient's original rejection. Cycles and dangling links end the
// walk.
func findRejectingAncestor(byID map[int64]*domain.ApprovalStep, start *int64, name string) *int64 {
	seen := make(map[int64]bool)
	for cur := start; cur != nil && !seen[*cur]; {
		seen[*cur] = true
		step, ok := byID[*cur]
		if !ok {
			return nil
		}
		if step.RecipientName == name && step.Result == domain.ResultRejected {
			id := step.ID
			return &id
		}
		cur = step.ParentID
	}
	return nil
}

func chainContains(byID map[int64]*domain.ApprovalStep, start *int64, target int64) bool {
	seen := make(map[int64]bool)
	for cur := start; cur != nil && !seen[*cur]; {
		if *cur == target {
			return true
		}
		seen[*cur] = true
		step, ok := byID[*cur]
		if !ok {
			return false
		}
		cur = step.ParentID
	}
	return false
}
