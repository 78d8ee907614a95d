package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/apetrov/orderflow/internal/domain"
)

// resolveActor turns the configured acting user into an Actor with their
// directory role.
func resolveActor(ctx context.Context, app *App) (domain.Actor, error) {
	name := strings.TrimSpace(app.ActorName)
	if name == "" {
		return domain.Actor{}, fmt.Errorf("acting user required: set ORDERFLOW_USER or pass --as")
	}
	role, err := app.Directory.RoleOf(ctx, name)
	if err != nil {
		return domain.Actor{}, fmt.Errorf("resolving user %q: %w", name, err)
	}
	return domain.Actor{Name: name, Role: role}, nil
}

// resolveOrder accepts a numeric ID, an exact reference, or a unique
// reference prefix.
func resolveOrder(ctx context.Context, app *App, input string) (*domain.Order, error) {
	if input == "" {
		return nil, fmt.Errorf("order ID or reference is required")
	}

	if id, err := strconv.ParseInt(input, 10, 64); err == nil {
		return app.Orders.GetByID(ctx, id)
	}

	if order, err := app.Orders.GetByReference(ctx, input); err == nil {
		return order, nil
	}

	summaries, err := app.Orders.List(ctx)
	if err != nil {
		return nil, err
	}
	var matches []*domain.Order
	for i := range summaries {
		if strings.HasPrefix(summaries[i].Order.Reference, input) {
			matches = append(matches, &summaries[i].Order)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("order not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("order reference prefix %q is ambiguous (%d matches)", input, len(matches))
	}
}
