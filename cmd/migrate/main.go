package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"pixelplates.org/internal/storage"
)

func main() {
	log.SetFlags(0)
	dsn := flag.String("dsn", os.Getenv("PIXELPLATES_PG_DSN"), "PostgreSQL DSN")
	flag.Parse()

	if *dsn == "" {
		log.Fatal("missing DSN: provide via -dsn or PIXELPLATES_PG_DSN")
	}
	if len(flag.Args()) == 0 {
		log.Fatal("usage: migrate [up|status]")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := storage.Open(*dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	switch flag.Arg(0) {
	case "up":
		err = storage.Migrate(ctx, db)
	case "status":
		err = storage.MigrationStatus(ctx, db)
	default:
		log.Fatalf("unknown command %q", flag.Arg(0))
	}
	if err != nil {
		log.Fatalf("migrate %s: %v", flag.Arg(0), err)
	}
}
