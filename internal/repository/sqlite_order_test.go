package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apetrov/orderflow/internal/domain"
	"github.com/apetrov/orderflow/internal/testutil"
)

func TestOrderRepo_CreateAndGetByID(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteOrderRepo(db)
	ctx := context.Background()

	order := testutil.NewTestOrder(
		testutil.WithOrderName("gear housing"),
		testutil.WithWorkshop("workshop-7"),
	)
	require.NoError(t, repo.Create(ctx, order))
	require.NotZero(t, order.ID)

	fetched, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "gear housing", fetched.Name)
	assert.Equal(t, "workshop-7", fetched.Workshop)
	assert.Equal(t, order.Reference, fetched.Reference)
	assert.False(t, fetched.IsByMemo)
	assert.Nil(t, fetched.ManufacturingTerm)
}

func TestOrderRepo_GetByReference(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteOrderRepo(db)
	ctx := context.Background()

	order := testutil.NewTestOrder()
	require.NoError(t, repo.Create(ctx, order))

	fetched, err := repo.GetByReference(ctx, order.Reference)
	require.NoError(t, err)
	assert.Equal(t, order.ID, fetched.ID)

	_, err = repo.GetByReference(ctx, "no-such-reference")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOrderRepo_MemoFields(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteOrderRepo(db)
	ctx := context.Background()

	order := testutil.NewTestOrder(testutil.WithMemo("M-114", "Sidorova"))
	require.NoError(t, repo.Create(ctx, order))

	fetched, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, fetched.IsByMemo)
	assert.Equal(t, "M-114", fetched.MemoNumber)
	assert.Equal(t, "Sidorova", fetched.MemoAuthor)
}

func TestOrderRepo_Update(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteOrderRepo(db)
	ctx := context.Background()

	order := testutil.NewTestOrder()
	require.NoError(t, repo.Create(ctx, order))

	term := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	order.Name = "renamed"
	order.ManufacturingTerm = &term
	order.UpdatedAt = time.Now().UTC()
	require.NoError(t, repo.Update(ctx, order))

	fetched, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", fetched.Name)
	require.NotNil(t, fetched.ManufacturingTerm)
	assert.Equal(t, "2025-06-01", fetched.ManufacturingTerm.Format("2006-01-02"))
}

func TestOrderRepo_List_FlagsAndOrdering(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteOrderRepo(db)
	steps := NewSQLiteStepRepo(db)
	ctx := context.Background()

	older := testutil.NewTestOrder(testutil.WithOrderName("older"))
	older.CreatedAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	older.UpdatedAt = older.CreatedAt
	require.NoError(t, repo.Create(ctx, older))

	newer := testutil.NewTestOrder(testutil.WithOrderName("newer"))
	newer.CreatedAt = time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	newer.UpdatedAt = newer.CreatedAt
	require.NoError(t, repo.Create(ctx, newer))

	// older gets one closed step and one open rework step.
	done := time.Now().UTC()
	closed := testutil.NewTestStep(older.ID, domain.RoleTechnologist, "Ivanova",
		testutil.WithStepDone(domain.ResultRejected, done))
	require.NoError(t, steps.Create(ctx, closed))
	rework := testutil.NewTestStep(older.ID, domain.RoleTechnologist, "Ivanova",
		testutil.WithStepRework(), testutil.WithStepParent(closed.ID))
	require.NoError(t, steps.Create(ctx, rework))

	summaries, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, "newer", summaries[0].Order.Name)
	assert.False(t, summaries[0].HasRework)
	assert.Zero(t, summaries[0].OpenSteps)

	assert.Equal(t, "older", summaries[1].Order.Name)
	assert.True(t, summaries[1].HasRework)
	assert.Equal(t, 1, summaries[1].OpenSteps)
}

func TestOrderRepo_Types(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteOrderRepo(db)

	types, err := repo.Types(context.Background())
	require.NoError(t, err)
	require.Len(t, types, 3)
	assert.Equal(t, "new_development", types[0].Name)
	assert.Equal(t, 10, types[0].TermDays)
	assert.Equal(t, 3, types[2].TermDays)
}

func TestOrderRepo_TermDays(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteOrderRepo(db)
	ctx := context.Background()

	// Type 1 is new_development, seeded with a 10-day term.
	order := testutil.NewTestOrder(testutil.WithTypeID(1))
	require.NoError(t, repo.Create(ctx, order))

	days, err := repo.TermDays(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, days)

	_, err = repo.TermDays(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}
