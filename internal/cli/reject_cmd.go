package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/apetrov/orderflow/internal/cli/formatter"
	"github.com/apetrov/orderflow/internal/domain"
	"github.com/apetrov/orderflow/internal/service"
)

func newRejectCmd(app *App) *cobra.Command {
	var comment, recipient string

	cmd := &cobra.Command{
		Use:   "reject <order>",
		Short: "Reject your pending step and send the order back for rework",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			actor, err := resolveActor(ctx, app)
			if err != nil {
				return err
			}
			order, err := resolveOrder(ctx, app, args[0])
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("comment") && app.interactive() {
				if err := runRejectForm(ctx, app, actor, &comment, &recipient); err != nil {
					return err
				}
			}

			res, err := app.Approvals.Reject(ctx, order.ID, actor, domain.Decision{
				Comment:   comment,
				Recipient: recipient,
			})
			if err != nil {
				if errors.Is(err, service.ErrDuplicateRework) {
					return fmt.Errorf("order #%d already has an open rework for that recipient", order.ID)
				}
				return err
			}

			fmt.Printf("%s order #%d returned to %s (%s) for rework\n",
				formatter.StyleRed.Render("✘"), order.ID,
				formatter.Bold(res.NextName), res.NextRole.DisplayName())
			return nil
		},
	}

	cmd.Flags().StringVar(&comment, "comment", "", "Rejection reason")
	cmd.Flags().StringVar(&recipient, "to", "", "Rework recipient (defaults to whoever sent you the order)")
	return cmd
}

func runRejectForm(ctx context.Context, app *App, actor domain.Actor, comment, recipient *string) error {
	users, err := app.Directory.List(ctx)
	if err != nil {
		return err
	}

	options := []huh.Option[string]{
		huh.NewOption("whoever sent me the order", ""),
	}
	for _, u := range users {
		if u.Name == actor.Name {
			continue
		}
		label := fmt.Sprintf("%s (%s)", u.Name, u.Role.DisplayName())
		options = append(options, huh.NewOption(label, u.Name))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Send back to").
				Options(options...).
				Value(recipient),
			huh.NewText().
				Title("Rejection reason").
				CharLimit(500).
				Value(comment),
		),
	).WithTheme(orderflowHuhTheme()).WithShowHelp(false)
	return form.Run()
}
