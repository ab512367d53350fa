package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/dmitrijs2005/yamdb/internal/admin"
	"github.com/dmitrijs2005/yamdb/internal/server"
	"github.com/dmitrijs2005/yamdb/internal/server/config"
	"github.com/dmitrijs2005/yamdb/internal/server/services"
)

func main() {

	// -c/-config is read by the config loader; here it only has to be
	// skipped before the subcommand.
	fs := flag.NewFlagSet("yamdb-cli", flag.ExitOnError)
	fs.String("c", "", "path to config file (short)")
	fs.String("config", "", "path to config file")
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.LoadOperatorConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx := context.Background()
	db, rm, err := server.OpenStorage(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer db.Close()

	if err := rm.RunMigrations(ctx, db); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	app := admin.NewApp(services.NewUserService(db, rm), os.Stdin, os.Stdout, int(os.Stdin.Fd()))
	if err := app.Run(ctx, fs.Args()); err != nil {
		log.Printf("%v", err)
		db.Close()
		os.Exit(1)
	}

}
