package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"

	"github.com/apetrov/orderflow/internal/cli"
	"github.com/apetrov/orderflow/internal/db"
	"github.com/apetrov/orderflow/internal/repository"
	"github.com/apetrov/orderflow/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Determine DB path: env var or default ~/.orderflow/orderflow.db
	dbPath := os.Getenv("ORDERFLOW_DB")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("finding home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".orderflow", "orderflow.db")
	}

	database, err := db.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	stepRepo := repository.NewSQLiteStepRepo(database)
	orderRepo := repository.NewSQLiteOrderRepo(database)
	calendarRepo := repository.NewSQLiteCalendarRepo(database)
	directoryRepo := repository.NewSQLiteDirectoryRepo(database)

	uow := db.NewSQLiteUnitOfWork(database)

	// Use-case telemetry goes to stderr when requested.
	var observerOut io.Writer
	if os.Getenv("ORDERFLOW_LOG") != "" {
		observerOut = os.Stderr
	}
	observer := service.NewLogUseCaseObserver(observerOut)

	app := &cli.App{
		Orders:    service.NewOrderService(orderRepo, uow, observer),
		Approvals: service.NewApprovalService(stepRepo, uow, observer),
		History:   service.NewHistoryService(stepRepo, observer),
		Directory: directoryRepo,
		Calendar:  calendarRepo,
		ActorName: os.Getenv("ORDERFLOW_USER"),
	}

	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	rootCmd := cli.NewRootCmd(app)
	return rootCmd.Execute()
}
