package main

import (
	"flag"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/meta-portal/meta-service/internal/config"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("Could not read .env file")
	}

	command := flag.String("command", "up", "Migration command (up, down, force)")
	cfg := config.Load()

	pgxConfig, err := pgx.ParseConfig(cfg.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse DSN")
	}
	db := stdlib.OpenDB(*pgxConfig)
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create migration driver")
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://scripts/migrations",
		"postgres", driver,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create migrator")
	}

	switch *command {
	case "up":
		log.Info().Msg("Applying migrations...")
		if err := m.Up(); err != nil && err != migrate.ErrNoChange {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
		log.Info().Msg("Migrations applied successfully")
	case "down":
		log.Info().Msg("Reverting migrations...")
		if err := m.Down(); err != nil && err != migrate.ErrNoChange {
			log.Fatal().Err(err).Msg("Failed to revert migrations")
		}
		log.Info().Msg("Migrations reverted successfully")
	case "force":
		log.Info().Msg("Forcing migration version...")
		if err := m.Force(1); err != nil {
			log.Fatal().Err(err).Msg("Failed to force migration version")
		}
		log.Info().Msg("Migration version forced successfully")
	default:
		log.Fatal().Msgf("Unknown command: %s", *command)
	}
}
