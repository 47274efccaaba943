// Command migrate applies the database schema and provisions tenants.
//
//	migrate [-config config.yaml] up
//	migrate [-config config.yaml] status
//	migrate [-config config.yaml] client <name> <subdomain>
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"multi-tenant-booking/internal/config"
	"multi-tenant-booking/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to optional YAML config")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-config path] up | status | client <name> <subdomain>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := storage.NewStorage(cfg.DSN())
	if err != nil {
		log.Fatalf("Failed to init DB: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := run(ctx, db, flag.Args()); err != nil {
		log.Printf("migrate: %v", err)
		db.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, db *storage.Storage, args []string) error {
	switch args[0] {
	case "up":
		return db.EnsureSchema(ctx)
	case "status":
		return db.MigrationStatus(ctx)
	case "client":
		if len(args) != 3 {
			return fmt.Errorf("client expects <name> <subdomain>")
		}
		c, err := db.CreateClient(ctx, args[1], args[2])
		if err != nil {
			return err
		}
		log.Printf("Created client %s (%s) with id %s", c.Name, c.Subdomain, c.ID)
		return nil
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}
