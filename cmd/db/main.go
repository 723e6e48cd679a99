package main

import (
	"context"
	"log"

	"github.com/letieu/agent-directory/config"
	"github.com/letieu/agent-directory/internal/database"
)

func main() {
	cnf, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := database.NewDB(cnf)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.InitSchema(context.Background()); err != nil {
		log.Fatalf("init schema: %v", err)
	}

	log.Printf("DONE (%s)", db.Dialect())
}
