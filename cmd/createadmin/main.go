// Command createadmin seeds an admin account into the admins collection.
//
//	DATABASE_ID=restaurant go run ./cmd/createadmin -email admin@restaurant.com -password '...' -name Admin
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"time"

	"github.com/imrishuroy/restaurant-admin/internal/aws"
	"github.com/imrishuroy/restaurant-admin/internal/config"
	"github.com/imrishuroy/restaurant-admin/internal/docstore"
	"github.com/imrishuroy/restaurant-admin/internal/session"
)

func main() {
	email := flag.String("email", "", "admin email")
	password := flag.String("password", "", "admin password, at least 8 characters")
	name := flag.String("name", "Admin", "display name")
	flag.Parse()

	if *email == "" || *password == "" {
		flag.Usage()
		log.Fatal("email and password are required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clients, err := aws.NewAWSClients(ctx)
	if err != nil {
		log.Fatalf("failed to init aws clients: %v", err)
	}
	docs, err := docstore.New(clients.DynamoDB, cfg.DatabaseID)
	if err != nil {
		log.Fatalf("failed to init document store: %v", err)
	}
	m, err := session.NewManager(docs, session.Config{
		AdminsCollection:   cfg.AdminsCollection,
		SessionsCollection: cfg.SessionsCollection,
		Secret:             cfg.SessionSecret,
		TTL:                cfg.SessionTTL,
	})
	if err != nil {
		log.Fatalf("failed to init session manager: %v", err)
	}

	acc, err := m.CreateAccount(ctx, *email, *password, *name)
	if errors.Is(err, session.ErrAccountExists) {
		log.Fatalf("account %s already exists", *email)
	}
	if err != nil {
		log.Fatalf("failed to create account: %v", err)
	}
	log.Printf("[createadmin] created %s (%s)", acc.Email, acc.Name)
}
