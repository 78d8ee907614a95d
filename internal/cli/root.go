package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/apetrov/orderflow/internal/repository"
	"github.com/apetrov/orderflow/internal/service"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Orders    service.OrderService
	Approvals service.ApprovalService
	History   service.HistoryService
	Directory repository.DirectoryRepo
	Calendar  repository.CalendarRepo

	// ActorName is the user commands act on behalf of; filled from
	// --as or the ORDERFLOW_USER environment variable.
	ActorName string

	// IsInteractive reports whether stdin is a terminal; interactive
	// forms and the history browser are only offered when it is.
	IsInteractive func() bool
}

func (app *App) interactive() bool {
	return app.IsInteractive != nil && app.IsInteractive()
}

// NewRootCmd creates the top-level "orderflow" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "orderflow",
		Short:         "Manufacturing order approval workflow",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&app.ActorName, "as", app.ActorName,
		"act as this user (defaults to $ORDERFLOW_USER)")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		bindEnvDefaults(cmd.Flags())
	}

	root.AddCommand(
		newOrdersCmd(app),
		newApproveCmd(app),
		newRejectCmd(app),
		newHistoryCmd(app),
		newUserCmd(app),
		newCalendarCmd(app),
	)

	return root
}

// bindEnvDefaults fills flags the user did not set from matching
// ORDERFLOW_<FLAG> environment variables.
func bindEnvDefaults(fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			return
		}
		env := "ORDERFLOW_" + strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
		if v, ok := os.LookupEnv(env); ok {
			_ = fs.Set(f.Name, v)
		}
	})
}
