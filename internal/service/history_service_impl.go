package service

import (
	"context"
	"time"

	"github.com/apetrov/orderflow/internal/domain"
	"github.com/apetrov/orderflow/internal/history"
	"github.com/apetrov/orderflow/internal/repository"
)

type historyService struct {
	steps    repository.StepRepo
	observer UseCaseObserver
}

func NewHistoryService(steps repository.StepRepo, observers ...UseCaseObserver) HistoryService {
	return &historyService{
		steps:    steps,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *historyService) Trail(ctx context.Context, orderID int64) ([]domain.ApprovalStep, error) {
	return s.steps.ListByOrder(ctx, orderID)
}

// Tree rebuilds the display forest from the flat trail. When a closed
// root step's stored result has drifted from the rolled-up outcome of
// its rework subtree, the stored result is updated to match. The
// sync-back is best effort: a write failure degrades the stored value,
// not the returned tree.
func (s *historyService) Tree(ctx context.Context, orderID int64) (forest []*history.Node, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"order_id": orderID}
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "load-history-tree",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	trail, err := s.steps.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	forest = history.BuildTree(trail)
	fields["steps"] = len(trail)

	synced := 0
	for _, root := range forest {
		if !root.HasChildren() || root.Step.Open() {
			continue
		}
		if root.EffectiveResult == domain.ResultNone || root.EffectiveResult == root.Step.Result {
			continue
		}
		if syncErr := s.steps.UpdateResult(ctx, root.Step.ID, root.EffectiveResult); syncErr != nil {
			fields["sync_error"] = syncErr.Error()
			continue
		}
		root.Step.Result = root.EffectiveResult
		synced++
	}
	if synced > 0 {
		fields["results_synced"] = synced
	}
	return forest, nil
}
