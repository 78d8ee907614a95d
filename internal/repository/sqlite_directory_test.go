package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apetrov/orderflow/internal/domain"
	"github.com/apetrov/orderflow/internal/testutil"
)

func TestDirectoryRepo_UpsertAndRoleOf(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteDirectoryRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, "Ivanova", domain.RoleTechnologist, false))

	role, err := repo.RoleOf(ctx, "Ivanova")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleTechnologist, role)

	// Re-upsert changes the role in place.
	require.NoError(t, repo.Upsert(ctx, "Ivanova", domain.RoleOrderManager, false))
	role, err = repo.RoleOf(ctx, "Ivanova")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleOrderManager, role)
}

func TestDirectoryRepo_Upsert_RejectsUnknownRole(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteDirectoryRepo(db)

	err := repo.Upsert(context.Background(), "Ivanova", domain.Role("director"), false)
	assert.Error(t, err)
}

func TestDirectoryRepo_RoleOf_FallsBackToTrail(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteDirectoryRepo(db)
	orders := NewSQLiteOrderRepo(db)
	steps := NewSQLiteStepRepo(db)
	ctx := context.Background()

	order := testutil.NewTestOrder()
	require.NoError(t, orders.Create(ctx, order))
	step := testutil.NewTestStep(order.ID, domain.RoleHeadOrderDepartment, "Petrov",
		testutil.WithStepSender(domain.RoleTechnologist, "Ivanova"))
	require.NoError(t, steps.Create(ctx, step))

	// Neither name is in the directory; both appear on the trail.
	role, err := repo.RoleOf(ctx, "Petrov")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleHeadOrderDepartment, role)

	role, err = repo.RoleOf(ctx, "Ivanova")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleTechnologist, role)

	_, err = repo.RoleOf(ctx, "Nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDirectoryRepo_DefaultAssignee(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteDirectoryRepo(db)
	ctx := context.Background()

	_, err := repo.DefaultAssignee(ctx, domain.RoleTechnologist)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Upsert(ctx, "Aronova", domain.RoleTechnologist, false))
	require.NoError(t, repo.Upsert(ctx, "Ivanova", domain.RoleTechnologist, true))

	name, err := repo.DefaultAssignee(ctx, domain.RoleTechnologist)
	require.NoError(t, err)
	assert.Equal(t, "Ivanova", name, "the flagged default wins over alphabetical order")
}

func TestDirectoryRepo_Upsert_SingleDefaultPerRole(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteDirectoryRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, "Aronova", domain.RoleTechnologist, true))
	require.NoError(t, repo.Upsert(ctx, "Ivanova", domain.RoleTechnologist, true))

	name, err := repo.DefaultAssignee(ctx, domain.RoleTechnologist)
	require.NoError(t, err)
	assert.Equal(t, "Ivanova", name)

	var count int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM users WHERE role = 'technologist' AND is_default = 1`).Scan(&count))
	assert.Equal(t, 1, count)
}
