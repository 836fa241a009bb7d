package main

import (
	"fmt"
	"ms-engagement/internal/config"
	"ms-engagement/internal/database"
	"ms-engagement/internal/database/migrations"
	"ms-engagement/internal/logger"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const usage = "usage: migrate up | down | version | to <version>"

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	envErr := godotenv.Load()

	logger := logger.NewLogger()
	defer logger.Close()

	if envErr != nil {
		logger.Warn("CONFIG", ".env file not found, using environment variables")
	}
	cfg := config.Load()

	bunDB, err := database.Connect(cfg.Database, logger)
	if err != nil {
		logger.Fatal("DATABASE", err.Error())
	}

	runner := migrations.NewRunner(bunDB, migrations.MigrateOptions{MigrationsDir: cfg.Database.MigrationsDir}, logger)
	defer runner.Close()

	switch cmd := os.Args[1]; cmd {
	case "up":
		err = runner.MigrateUp()
	case "down":
		err = runner.MigrateDown()
	case "to":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}
		var target uint64
		target, err = strconv.ParseUint(os.Args[2], 10, 32)
		if err == nil {
			err = runner.MigrateTo(uint(target))
		}
	case "version":
		version, dirty, verr := runner.Version()
		if verr != nil {
			logger.Fatal("MIGRATE", verr.Error())
		}
		fmt.Printf("version=%d dirty=%t\n", version, dirty)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n%s\n", cmd, usage)
		os.Exit(2)
	}

	if err != nil {
		logger.Fatal("MIGRATE", err.Error())
	}

	version, dirty, err := runner.Version()
	if err != nil {
		logger.Fatal("MIGRATE", err.Error())
	}
	logger.Info("MIGRATE", fmt.Sprintf("✅ Schema at version %d (dirty=%t)", version, dirty))
}
