package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"docuvault/internal/config"
)

func main() {
	command := flag.String("command", "up", "migrate command (up|status|down)")
	dir := flag.String("dir", "migrations", "migrations directory")
	timeout := flag.Duration("timeout", time.Minute, "command timeout")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("configure goose: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	switch *command {
	case "up":
		err = goose.UpContext(ctx, db, *dir)
	case "status":
		err = goose.StatusContext(ctx, db, *dir)
	case "down":
		err = goose.DownContext(ctx, db, *dir)
	default:
		log.Fatalf("unsupported command: %s", *command)
	}
	if err != nil {
		log.Fatalf("migrate %s: %v", *command, err)
	}

	log.Printf("migrate %s completed", *command)
}
