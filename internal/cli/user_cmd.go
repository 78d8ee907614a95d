package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/apetrov/orderflow/internal/cli/formatter"
	"github.com/apetrov/orderflow/internal/domain"
)

func newUserCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage the role directory",
	}

	cmd.AddCommand(
		newUserAddCmd(app),
		newUserListCmd(app),
	)

	return cmd
}

func newUserAddCmd(app *App) *cobra.Command {
	var roleStr string
	var isDefault bool

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add or update a directory entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			role := domain.Role(roleStr)
			if !domain.ValidRoles[roleStr] {
				return fmt.Errorf("unknown role %q (technologist, head_order_department, order_manager)", roleStr)
			}
			if err := app.Directory.Upsert(context.Background(), name, role, isDefault); err != nil {
				return err
			}
			fmt.Printf("Registered %s as %s\n", formatter.Bold(name), role.DisplayName())
			return nil
		},
	}

	cmd.Flags().StringVar(&roleStr, "role", "", "Role: technologist, head_order_department or order_manager")
	cmd.Flags().BoolVar(&isDefault, "default", false, "Make this user the role's default recipient")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

func newUserListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List directory entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := app.Directory.List(context.Background())
			if err != nil {
				return err
			}
			if len(users) == 0 {
				fmt.Println(formatter.Dim("directory is empty"))
				return nil
			}

			rows := make([][]string, 0, len(users))
			for _, u := range users {
				def := ""
				if u.IsDefault {
					def = formatter.StyleGreen.Render("default")
				}
				rows = append(rows, []string{u.Name, u.Role.DisplayName(), def})
			}
			fmt.Print(formatter.RenderTable([]string{"NAME", "ROLE", ""}, rows))
			return nil
		},
	}
}
