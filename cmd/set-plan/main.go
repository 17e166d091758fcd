package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/teamflow/teamflow-api/internal/config"
	"github.com/teamflow/teamflow-api/internal/database"
	"github.com/teamflow/teamflow-api/internal/models"
	"github.com/teamflow/teamflow-api/internal/services"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Println("Usage: set-plan <email> <free|starter|professional|enterprise>")
		os.Exit(1)
	}

	email := os.Args[1]
	plan := models.Plan(os.Args[2])

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := services.NewUserService(db).SetPlan(ctx, email, plan); err != nil {
		log.Fatalf("Failed to set plan: %v", err)
	}

	fmt.Printf("Set %s to the %s plan\n", email, plan)
}
