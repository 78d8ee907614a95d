package history

import (
	"math/rand"
	"testing"
	"time"

	"github.com/apetrov/orderflow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var trailStart = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func step(id int64, parentID *int64, minuteOffset int) domain.ApprovalStep {
	return domain.ApprovalStep{
		ID:          id,
		OrderID:     1,
		ParentID:    parentID,
		ReceiptDate: trailStart.Add(time.Duration(minuteOffset) * time.Minute),
		Status:      domain.StepInProgress,
	}
}

func completed(s domain.ApprovalStep, result domain.StepResult, minuteOffset int) domain.ApprovalStep {
	done := trailStart.Add(time.Duration(minuteOffset) * time.Minute)
	s.CompletionDate = &done
	s.Status = domain.StepDone
	s.Result = result
	return s
}

func ptr(id int64) *int64 { return &id }

func TestBuildTree_EmptyInput(t *testing.T) {
	assert.Nil(t, BuildTree(nil))
	assert.Nil(t, BuildTree([]domain.ApprovalStep{}))
}

func TestBuildTree_FlatTrailAllRoots(t *testing.T) {
	records := []domain.ApprovalStep{
		completed(step(1, nil, 0), domain.ResultApproved, 5),
		completed(step(2, nil, 10), domain.ResultApproved, 15),
		step(3, nil, 20),
	}

	forest := BuildTree(records)
	require.Len(t, forest, 3)
	for _, root := range forest {
		assert.Equal(t, 0, root.Level)
		assert.Empty(t, root.Children)
		assert.Empty(t, root.Prefix)
	}
	// Leaves show their own result.
	assert.Equal(t, domain.ResultApproved, forest[0].EffectiveResult)
	assert.Equal(t, domain.ResultNone, forest[2].EffectiveResult)
}

func TestBuildTree_Completeness(t *testing.T) {
	records := []domain.ApprovalStep{
		completed(step(1, nil, 0), domain.ResultRejected, 5),
		completed(step(2, ptr(1), 10), domain.ResultApproved, 20),
		completed(step(3, ptr(1), 25), domain.ResultApproved, 30),
		step(4, nil, 40),
	}

	forest := BuildTree(records)
	flat := Flatten(forest)
	require.Len(t, flat, len(records))

	seen := map[int64]bool{}
	for _, n := range flat {
		assert.False(t, seen[n.Step.ID], "step %d placed twice", n.Step.ID)
		seen[n.Step.ID] = true
	}
}

func TestBuildTree_LevelConsistency(t *testing.T) {
	records := []domain.ApprovalStep{
		completed(step(1, nil, 0), domain.ResultRejected, 5),
		completed(step(2, ptr(1), 10), domain.ResultRejected, 15),
		completed(step(3, ptr(2), 20), domain.ResultApproved, 25),
		step(4, nil, 30),
	}

	forest := BuildTree(records)
	for _, n := range Flatten(forest) {
		if n.Parent == nil {
			assert.Equal(t, 0, n.Level)
		} else {
			assert.Equal(t, n.Parent.Level+1, n.Level)
		}
	}
}

// A child wired to a parent that sorts later in the trail must still end
// up on the correct level after the second pass.
func TestBuildTree_ParentReceivedLater(t *testing.T) {
	records := []domain.ApprovalStep{
		// id 5 arrives first but its parent (id 9) arrives later.
		completed(step(5, ptr(9), 0), domain.ResultApproved, 40),
		completed(step(9, nil, 10), domain.ResultRejected, 15),
	}

	forest := BuildTree(records)
	require.Len(t, forest, 1)
	require.Equal(t, int64(9), forest[0].Step.ID)
	require.Len(t, forest[0].Children, 1)
	assert.Equal(t, 1, forest[0].Children[0].Level)
}

func TestBuildTree_PermutationIdempotence(t *testing.T) {
	records := []domain.ApprovalStep{
		completed(step(1, nil, 0), domain.ResultRejected, 5),
		completed(step(2, ptr(1), 10), domain.ResultApproved, 20),
		completed(step(3, nil, 30), domain.ResultRejected, 35),
		completed(step(4, ptr(3), 40), domain.ResultApproved, 50),
		step(5, nil, 60),
	}

	want := Flatten(BuildTree(records))

	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 10; trial++ {
		shuffled := make([]domain.ApprovalStep, len(records))
		copy(shuffled, records)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		got := Flatten(BuildTree(shuffled))
		require.Len(t, got, len(want))
		for i := range want {
			assert.Equal(t, want[i].Step.ID, got[i].Step.ID)
			assert.Equal(t, want[i].Level, got[i].Level)
			assert.Equal(t, want[i].EffectiveResult, got[i].EffectiveResult)
			assert.Equal(t, want[i].Prefix, got[i].Prefix)
		}
	}
}

func TestBuildTree_ReceiptDateTieBrokenByID(t *testing.T) {
	records := []domain.ApprovalStep{
		step(2, nil, 0),
		step(1, nil, 0),
		step(3, nil, 0),
	}

	forest := BuildTree(records)
	require.Len(t, forest, 3)
	assert.Equal(t, int64(1), forest[0].Step.ID)
	assert.Equal(t, int64(2), forest[1].Step.ID)
	assert.Equal(t, int64(3), forest[2].Step.ID)
}

func TestBuildTree_OrphanParentBecomesRoot(t *testing.T) {
	records := []domain.ApprovalStep{
		completed(step(1, nil, 0), domain.ResultApproved, 5),
		// Parent 99 belongs to another order's trail.
		step(2, ptr(99), 10),
	}

	forest := BuildTree(records)
	require.Len(t, forest, 2)
	assert.Equal(t, 0, forest[1].Level)
	assert.Nil(t, forest[1].Parent)
}

func TestBuildTree_SelfReferenceBecomesRoot(t *testing.T) {
	records := []domain.ApprovalStep{
		step(1, ptr(1), 0),
		completed(step(2, ptr(1), 10), domain.ResultApproved, 15),
	}

	forest := BuildTree(records)
	require.Len(t, forest, 1)
	assert.Equal(t, int64(1), forest[0].Step.ID)
	require.Len(t, forest[0].Children, 1)
	assert.Equal(t, int64(2), forest[0].Children[0].Step.ID)
}

func TestBuildTree_CycleBrokenNotLooping(t *testing.T) {
	records := []domain.ApprovalStep{
		step(1, ptr(2), 0),
		step(2, ptr(1), 10),
		step(3, ptr(2), 20),
	}

	forest := BuildTree(records)
	flat := Flatten(forest)
	require.Len(t, flat, 3, "every record placed exactly once despite the cycle")

	// The first record in trail order wins root status; the rest hang
	// beneath it.
	require.Len(t, forest, 1)
	assert.Equal(t, int64(1), forest[0].Step.ID)
}

func TestBuildTree_RootEffectiveResult(t *testing.T) {
	withLater := []domain.ApprovalStep{
		completed(step(1, nil, 0), domain.ResultRejected, 5),
		completed(step(2, ptr(1), 10), domain.ResultApproved, 20),
		step(3, nil, 30),
	}

	forest := BuildTree(withLater)
	require.Len(t, forest, 2)
	assert.Equal(t, domain.ResultApproved, forest[0].EffectiveResult,
		"a later root means the flow moved past this rework cycle")

	withoutLater := withLater[:2]
	forest = BuildTree(withoutLater)
	require.Len(t, forest, 1)
	assert.Equal(t, domain.ResultRejected, forest[0].EffectiveResult,
		"the cycle never resolved")
}

func TestBuildTree_NestedNodeWithChildrenIsRejected(t *testing.T) {
	records := []domain.ApprovalStep{
		completed(step(1, nil, 0), domain.ResultRejected, 5),
		completed(step(2, ptr(1), 10), domain.ResultRejected, 15),
		completed(step(3, ptr(2), 20), domain.ResultApproved, 25),
		step(4, nil, 30),
	}

	forest := BuildTree(records)
	require.Len(t, forest, 2)
	nested := forest[0].Children[0]
	require.Equal(t, int64(2), nested.Step.ID)
	require.True(t, nested.HasChildren())
	assert.Equal(t, domain.ResultRejected, nested.EffectiveResult)
	assert.Equal(t, domain.ResultApproved, nested.Children[0].EffectiveResult)
}

func TestBuildTree_EffectiveCompletionDateRollsUp(t *testing.T) {
	records := []domain.ApprovalStep{
		completed(step(1, nil, 0), domain.ResultRejected, 5),
		completed(step(2, ptr(1), 10), domain.ResultRejected, 50),
		completed(step(3, ptr(2), 20), domain.ResultApproved, 90),
	}

	forest := BuildTree(records)
	require.Len(t, forest, 1)
	require.NotNil(t, forest[0].EffectiveCompletionDate)
	assert.Equal(t, trailStart.Add(90*time.Minute), *forest[0].EffectiveCompletionDate,
		"parent reflects the latest completion anywhere below")
}

func TestBuildTree_EffectiveCompletionDateNilWhenNothingDone(t *testing.T) {
	records := []domain.ApprovalStep{
		step(1, nil, 0),
		step(2, ptr(1), 10),
	}

	forest := BuildTree(records)
	require.Len(t, forest, 1)
	assert.Nil(t, forest[0].EffectiveCompletionDate)
}

func TestBuildTree_RenderHints(t *testing.T) {
	records := []domain.ApprovalStep{
		completed(step(1, nil, 0), domain.ResultRejected, 5),
		completed(step(2, ptr(1), 10), domain.ResultApproved, 15),
		completed(step(3, ptr(1), 20), domain.ResultRejected, 25),
		completed(step(4, ptr(3), 30), domain.ResultApproved, 35),
		step(5, nil, 40),
	}

	forest := BuildTree(records)
	require.Len(t, forest, 2)

	root := forest[0]
	require.Len(t, root.Children, 2)

	first, second := root.Children[0], root.Children[1]
	assert.False(t, first.IsLastChild)
	assert.True(t, second.IsLastChild)
	assert.Equal(t, "├─ ", first.Prefix)
	assert.Equal(t, "└─ ", second.Prefix)

	grandchild := second.Children[0]
	assert.True(t, grandchild.IsLastChild)
	assert.Equal(t, "   └─ ", grandchild.Prefix,
		"a last-child ancestor contributes blank continuation")

	assert.True(t, forest[1].IsLastChild)
	assert.Empty(t, forest[1].Prefix)
}

func TestBuildTree_ContinuationBarForOpenSibling(t *testing.T) {
	records := []domain.ApprovalStep{
		completed(step(1, nil, 0), domain.ResultRejected, 5),
		completed(step(2, ptr(1), 10), domain.ResultRejected, 15),
		completed(step(3, ptr(2), 20), domain.ResultApproved, 25),
		completed(step(4, ptr(1), 30), domain.ResultApproved, 35),
	}

	forest := BuildTree(records)
	require.Len(t, forest, 1)
	root := forest[0]
	require.Len(t, root.Children, 2)

	deep := root.Children[0].Children[0]
	require.Equal(t, int64(3), deep.Step.ID)
	assert.Equal(t, "│  └─ ", deep.Prefix,
		"non-last ancestor contributes a continuation bar")
}
