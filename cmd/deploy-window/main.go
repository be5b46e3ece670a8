package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"reversal-alert/internal/railway"
)

// Meant to run hourly from a cron job: starts the bot service in the morning
// and removes its deployment in the evening.
func main() {
	_ = godotenv.Load()

	token := os.Getenv("RAILWAY_API_TOKEN")
	projectID := os.Getenv("PROJECT_ID")
	serviceID := os.Getenv("SERVICE_ID")
	if token == "" || projectID == "" || serviceID == "" {
		log.Fatal("❌ RAILWAY_API_TOKEN, PROJECT_ID and SERVICE_ID must be set")
	}

	client := railway.NewClient(os.Getenv("RAILWAY_API_URL"), token, projectID, serviceID)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	now := time.Now().UTC()
	fmt.Printf("Current UTC time: %s\n", now.Format(time.RFC3339))

	msg, err := railway.Reconcile(ctx, client, railway.DefaultWindow(), now)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	fmt.Println(msg)
}
