package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/apetrov/orderflow/internal/cli/formatter"
	"github.com/apetrov/orderflow/internal/domain"
)

func newOrdersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Manage manufacturing orders",
	}

	cmd.AddCommand(
		newOrdersListCmd(app),
		newOrdersCreateCmd(app),
		newOrdersShowCmd(app),
	)

	return cmd
}

func newOrdersListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List orders with their approval state",
		RunE: func(cmd *cobra.Command, args []string) error {
			summaries, err := app.Orders.List(context.Background())
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				fmt.Println(formatter.Dim("no orders yet"))
				return nil
			}

			rows := make([][]string, 0, len(summaries))
			for _, s := range summaries {
				state := formatter.StyleGreen.Render("complete")
				if s.OpenSteps > 0 {
					state = formatter.StyleYellow.Render("in approval")
				}
				rework := ""
				if s.HasRework {
					rework = formatter.StylePurple.Render("⟲")
				}
				rows = append(rows, []string{
					strconv.FormatInt(s.Order.ID, 10),
					shortRef(s.Order.Reference),
					s.Order.Name,
					s.Order.Workshop,
					state,
					rework,
				})
			}
			fmt.Print(formatter.RenderTable(
				[]string{"ID", "REF", "NAME", "WORKSHOP", "STATE", ""}, rows))
			return nil
		},
	}
}

func newOrdersCreateCmd(app *App) *cobra.Command {
	var name, workshop, memoNumber, memoAuthor, term string
	var typeID int64

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an order and start its approval",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			actor, err := resolveActor(ctx, app)
			if err != nil {
				return err
			}

			if name == "" && app.interactive() {
				if err := runCreateForm(ctx, app, &name, &workshop, &typeID); err != nil {
					return err
				}
			}
			if name == "" {
				return fmt.Errorf("order name is required")
			}

			order := &domain.Order{
				Name:     name,
				Workshop: workshop,
				TypeID:   typeID,
			}
			if memoNumber != "" {
				order.IsByMemo = true
				order.MemoNumber = memoNumber
				order.MemoAuthor = memoAuthor
				if order.MemoAuthor == "" {
					order.MemoAuthor = actor.Name
				}
			}
			if term != "" {
				t, err := time.Parse("2006-01-02", term)
				if err != nil {
					return fmt.Errorf("invalid manufacturing term %q: %w", term, err)
				}
				order.ManufacturingTerm = &t
			}

			first, err := app.Orders.Create(ctx, order, actor)
			if err != nil {
				return err
			}

			fmt.Printf("Created order #%d (%s)\n", order.ID, shortRef(order.Reference))
			fmt.Printf("Sent to %s (%s), due %s\n",
				formatter.Bold(first.RecipientName),
				first.RecipientRole.DisplayName(),
				first.Deadline.Format("2006-01-02"))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Order name")
	cmd.Flags().StringVar(&workshop, "workshop", "", "Manufacturing workshop")
	cmd.Flags().Int64Var(&typeID, "type", 1, "Order type ID (1 new development, 2 duplicate, 3 repair/modification)")
	cmd.Flags().StringVar(&memoNumber, "memo-number", "", "Internal memo number for memo orders")
	cmd.Flags().StringVar(&memoAuthor, "memo-author", "", "Memo author (defaults to the acting user)")
	cmd.Flags().StringVar(&term, "term", "", "Manufacturing term (YYYY-MM-DD)")

	return cmd
}

func runCreateForm(ctx context.Context, app *App, name, workshop *string, typeID *int64) error {
	types, err := app.Orders.Types(ctx)
	if err != nil {
		return err
	}
	options := make([]huh.Option[string], 0, len(types))
	for _, ot := range types {
		label := fmt.Sprintf("%s (%d days)", ot.Name, ot.TermDays)
		options = append(options, huh.NewOption(label, strconv.FormatInt(ot.ID, 10)))
	}

	typeStr := strconv.FormatInt(*typeID, 10)
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Order name").
				Placeholder("bracket assembly").
				Value(name).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Workshop").
				Placeholder("workshop-3").
				Value(workshop),
			huh.NewSelect[string]().
				Title("Order type").
				Options(options...).
				Value(&typeStr),
		),
	).WithTheme(orderflowHuhTheme()).WithShowHelp(false)

	if err := form.Run(); err != nil {
		return err
	}
	id, err := strconv.ParseInt(typeStr, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid order type: %w", err)
	}
	*typeID = id
	return nil
}

func newOrdersShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <order>",
		Short: "Show one order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			order, err := resolveOrder(ctx, app, args[0])
			if err != nil {
				return err
			}

			fmt.Println(formatter.Header(fmt.Sprintf("order #%d", order.ID)))
			fmt.Printf("%s %s\n", formatter.Bold("Reference:"), order.Reference)
			fmt.Printf("%s %s\n", formatter.Bold("Name:"), order.Name)
			if order.Workshop != "" {
				fmt.Printf("%s %s\n", formatter.Bold("Workshop:"), order.Workshop)
			}
			if order.IsByMemo {
				fmt.Printf("%s %s (memo %s)\n", formatter.Bold("By memo:"),
					order.MemoAuthor, order.MemoNumber)
			}
			if order.ManufacturingTerm != nil {
				fmt.Printf("%s %s\n", formatter.Bold("Manufacturing term:"),
					order.ManufacturingTerm.Format("2006-01-02"))
			}
			fmt.Printf("%s %s\n", formatter.Bold("Created:"),
				order.CreatedAt.Format("2006-01-02 15:04"))
			return nil
		},
	}
}

func shortRef(ref string) string {
	if len(ref) > 8 {
		return ref[:8]
	}
	return ref
}
