package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/apetrov/orderflow/internal/domain"
	"github.com/apetrov/orderflow/internal/repository"
	"github.com/apetrov/orderflow/internal/testutil"
)

// testEnv wires the full service stack over one in-memory database with
// the standard three-person directory seeded.
type testEnv struct {
	db        *sql.DB
	steps     *repository.SQLiteStepRepo
	orders    *repository.SQLiteOrderRepo
	directory *repository.SQLiteDirectoryRepo
	approvals ApprovalService
	orderSvc  OrderService
	history   HistoryService
}

var (
	tech    = domain.Actor{Name: "Ivanova", Role: domain.RoleTechnologist}
	head    = domain.Actor{Name: "Petrov", Role: domain.RoleHeadOrderDepartment}
	manager = domain.Actor{Name: "Sidorova", Role: domain.RoleOrderManager}
)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	database := testutil.NewTestDB(t)
	steps := repository.NewSQLiteStepRepo(database)
	orders := repository.NewSQLiteOrderRepo(database)
	directory := repository.NewSQLiteDirectoryRepo(database)
	uow := testutil.NewTestUoW(database)

	seedDirectory(t, directory)

	return &testEnv{
		db:        database,
		steps:     steps,
		orders:    orders,
		directory: directory,
		approvals: NewApprovalService(steps, uow),
		orderSvc:  NewOrderService(orders, uow),
		history:   NewHistoryService(steps),
	}
}

func seedDirectory(t *testing.T, directory *repository.SQLiteDirectoryRepo) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, directory.Upsert(ctx, tech.Name, tech.Role, true))
	require.NoError(t, directory.Upsert(ctx, head.Name, head.Role, true))
	require.NoError(t, directory.Upsert(ctx, manager.Name, manager.Role, true))
}

// mustCreateOrder runs the full create use case and returns the order
// with its opening step.
func mustCreateOrder(t *testing.T, env *testEnv) (*domain.Order, *domain.ApprovalStep) {
	t.Helper()
	order := testutil.NewTestOrder()
	first, err := env.orderSvc.Create(context.Background(), order, manager)
	require.NoError(t, err)
	return order, first
}
