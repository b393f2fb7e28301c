package main

import (
	"context"
	"flag"
	"log"

	"hrtraining/config"
	"hrtraining/database"
	"hrtraining/importer"
)

func main() {
	file := flag.String("file", "program.yaml", "program definition to import")
	migrate := flag.Bool("migrate", false, "run migrations before importing")
	flag.Parse()

	// Load config and connect to database
	config.LoadConfig()
	database.ConnectDb()

	if *migrate {
		if err := database.Migrate(database.Database.Db); err != nil {
			log.Fatalf("Failed to migrate: %v", err)
		}
	}

	program, err := importer.ImportFile(context.Background(), database.Database.Db, *file)
	if err != nil {
		log.Fatalf("Failed to import %s: %v", *file, err)
	}

	log.Printf("Imported program %s (%s) with %d modules", program.ID, program.Title, len(program.Modules))
}
