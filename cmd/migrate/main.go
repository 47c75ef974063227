// Command migrate applies the schema history and seeds reference data
// without starting the HTTP server.
//
//	go run ./cmd/migrate up
//	go run ./cmd/migrate status
//	go run ./cmd/migrate -accounts seed
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"rrhh/internal/auth"
	"rrhh/internal/config"
	"rrhh/internal/database"
	"rrhh/internal/events"
	"rrhh/internal/logger"
	"rrhh/internal/repository"
	"rrhh/internal/seed"
	"rrhh/internal/service"
)

func main() {
	accounts := flag.Bool("accounts", false, "seed: also create the example accounts when no user exists")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-accounts] [up|status|seed]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	command := "up"
	switch flag.NArg() {
	case 0:
	case 1:
		command = flag.Arg(0)
	default:
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel, cfg.LogFile)

	if err := run(context.Background(), cfg, command, *accounts); err != nil {
		logger.Get().Error().Err(err).Str("command", command).Msg("migrate failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, command string, accounts bool) error {
	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	log := logger.Get()

	switch command {
	case "up":
		return database.Migrate(ctx, db)

	case "status":
		statuses, err := database.Status(ctx, db)
		if err != nil {
			return err
		}
		for _, st := range statuses {
			ev := log.Info().Int("version", st.Version).Str("name", st.Name).Bool("applied", st.Applied)
			if st.AppliedAt != nil {
				ev = ev.Time("applied_at", *st.AppliedAt)
			}
			if st.Mismatch {
				ev = ev.Bool("checksum_mismatch", true)
			}
			ev.Msg("migration")
		}
		return nil

	case "seed":
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
		data, err := seed.Defaults()
		if err != nil {
			return err
		}
		repos := repository.NewRepositories(db)
		services := service.NewServices(repos, auth.NewTokenManager(cfg.SecretKey, cfg.TokenTTL), events.NopPublisher{}, nil, data)
		res, err := services.Seed.Run(ctx, accounts)
		if err != nil {
			return err
		}
		log.Info().Int("departamentos", res.Departments).Int("cuentas", res.Accounts).Msg("seed complete")
		return nil

	default:
		return fmt.Errorf("unknown command %q", command)
	}
}
