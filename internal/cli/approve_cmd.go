package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/apetrov/orderflow/internal/cli/formatter"
	"github.com/apetrov/orderflow/internal/domain"
)

func newApproveCmd(app *App) *cobra.Command {
	var comment string

	cmd := &cobra.Command{
		Use:   "approve <order>",
		Short: "Approve your pending step on an order",
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
				if err := runCommentForm("Approval comment (optional)", &comment); err != nil {
					return err
				}
			}

			res, err := app.Approvals.Approve(ctx, order.ID, actor, domain.Decision{Comment: comment})
			if err != nil {
				return err
			}

			if res.Terminal {
				fmt.Printf("%s order #%d approval complete\n",
					formatter.StyleGreen.Render("✔"), order.ID)
				return nil
			}
			fmt.Printf("%s order #%d sent to %s (%s)\n",
				formatter.StyleGreen.Render("✔"), order.ID,
				formatter.Bold(res.NextName), res.NextRole.DisplayName())
			return nil
		},
	}

	cmd.Flags().StringVar(&comment, "comment", "", "Approval comment")
	return cmd
}

func runCommentForm(title string, comment *string) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title(title).
				CharLimit(500).
				Value(comment),
		),
	).WithTheme(orderflowHuhTheme()).WithShowHelp(false)
	return form.Run()
}
