package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"verifix/config"
	"verifix/db"
	"verifix/models"
	"verifix/utils"
)

func main() {
	email := flag.String("email", "", "Principal email (required)")
	password := flag.String("password", "", "Principal password (required)")
	name := flag.String("name", "", "Display name (defaults to the email's local part)")
	role := flag.String("role", "user", "Role: 'user' or 'admin'")
	configPath := flag.String("config", "config/config.yml", "Path to config file")
	flag.Parse()

	if *email == "" || *password == "" {
		fmt.Println("Error: email and password are required")
		fmt.Println("\nUsage:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	r := models.Role(*role)
	if !r.Valid() {
		fmt.Println("Error: role must be 'user' or 'admin'")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Database.URI == "" {
		log.Fatalf("database.uri (or MONGODB_URI) is required")
	}

	client, database, err := db.ConnectMongoDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())

	normalized := strings.ToLower(strings.TrimSpace(*email))
	displayName := *name
	if displayName == "" {
		displayName = utils.ExtractNameFromEmail(normalized)
	}

	hash, err := utils.HashPassword(*password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	created, err := db.NewPrincipalStore(database).UpsertPrincipal(context.Background(), models.StoredPrincipal{
		Principal:    models.Principal{Email: normalized, Role: r, Name: displayName},
		PasswordHash: hash,
	})
	if err != nil {
		log.Fatalf("Failed to save principal: %v", err)
	}

	action := "updated"
	if created {
		action = "created"
	}
	fmt.Printf("Principal %s successfully\n", action)
	fmt.Printf("   Email: %s\n", normalized)
	fmt.Printf("   Name: %s\n", displayName)
	fmt.Printf("   Role: %s\n", r)
}
