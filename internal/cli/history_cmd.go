package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/apetrov/orderflow/internal/cli/formatter"
)

func newHistoryCmd(app *App) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "history <order>",
		Short: "Show the approval history tree of an order",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if len(args) != 1 {
				return fmt.Errorf("order ID or reference is required")
			}
			order, err := resolveOrder(ctx, app, args[0])
			if err != nil {
				return err
			}

			forest, err := app.History.Tree(ctx, order.ID)
			if err != nil {
				return err
			}

			title := order.Name
			if title == "" {
				title = shortRef(order.Reference)
			}
			rendered := formatter.Header(fmt.Sprintf("order #%d · %s", order.ID, title)) +
				"\n" + formatter.RenderTrail(forest)
			if comments := formatter.TrailComments(forest); comments != "" {
				rendered += "\n" + formatter.Header("comments") + "\n" + comments
			}

			if plain || !app.interactive() {
				fmt.Print(rendered)
				return nil
			}
			return runTrailBrowser(rendered)
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "Print the tree without the interactive browser")
	return cmd
}
