// Command vm-admin stocks the vending machine: it creates users, products
// and slots directly in the database.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/tuanvumaihuynh/vending-machine/internal/config"
	"github.com/tuanvumaihuynh/vending-machine/internal/log"
	"github.com/tuanvumaihuynh/vending-machine/internal/repository"
	"github.com/tuanvumaihuynh/vending-machine/internal/service"
	"github.com/tuanvumaihuynh/vending-machine/internal/storage/db"
	"github.com/tuanvumaihuynh/vending-machine/pkg/validator"
)

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	if err := run(os.Args[1], os.Args[2:]); err != nil {
		fmt.Printf("error running admin command: %v\n", err)
		os.Exit(1)
	}
}

func run(name string, args []string) error {
	cmd, ok := commands[name]
	if !ok {
		usage(os.Stderr)
		return fmt.Errorf("unknown command %q", name)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log      config.Log
		Postgres config.Postgres
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log)

	pgxPool, err := db.NewPgxPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("error creating pgx pool: %w", err)
	}
	defer pgxPool.Close()

	dbClient := db.NewClient(pgxPool)

	v, err := validator.NewDefaultValidator()
	if err != nil {
		return fmt.Errorf("error creating validator: %w", err)
	}

	a := &app{
		out: os.Stdout,
		auth: service.NewAuthService(dbClient,
			repository.NewUserRepository(dbClient),
			repository.NewBuyerRepository(dbClient),
			v),
		catalog: service.NewCatalogService(
			repository.NewProductRepository(dbClient),
			repository.NewSlotRepository(dbClient),
			v),
	}

	logger.DebugContext(ctx, "running admin command", "command", name)

	return cmd(ctx, a, args)
}
