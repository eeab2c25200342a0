package main

import (
	"crypto/rand"
	"encoding/hex"
	"log"

	"github.com/fortifyapp/fortify/app/models"
	"github.com/fortifyapp/fortify/app/repository"
	"github.com/fortifyapp/fortify/internal/pkg/database"
	"github.com/fortifyapp/fortify/internal/pkg/env"
)

// Seeds the admin account used by the campaign endpoints. Safe to run
// repeatedly: an existing account is updated in place, and the API key is
// only minted when none is set yet.
func main() {
	env.SetupEnvFile()
	database.SetupDatabase()
	repository.InitializeFactory(database.GetDB())

	email := env.GetEnv("SEED_ADMIN_EMAIL", "admin@fortify.local")
	name := env.GetEnv("SEED_ADMIN_NAME", "Fortify Admin")
	password := env.GetEnv("SEED_ADMIN_PASSWORD", "")
	if password == "" {
		log.Fatal("SEED_ADMIN_PASSWORD must be set")
	}

	users := repository.GetGlobalFactory().GetUserRepository()

	user, err := users.GetByEmail(email)
	if err != nil {
		user, err = models.CreateUser(name, email, password)
		if err != nil {
			log.Fatalf("Failed to build admin user: %v", err)
		}
		user.Role = models.ROLE_ADMIN
		if err := users.Create(user); err != nil {
			log.Fatalf("Failed to create admin user: %v", err)
		}
		log.Printf("Created admin user %s", email)
	} else if !user.CheckPassword(password) {
		if err := user.SetPassword(password); err != nil {
			log.Fatalf("Failed to update admin password: %v", err)
		}
		log.Printf("Updated password for %s", email)
	}

	user.Role = models.ROLE_ADMIN
	user.Status = models.STATUS_ACTIVE

	if user.APIKeyHash == "" {
		key, err := newAPIKey()
		if err != nil {
			log.Fatalf("Failed to generate API key: %v", err)
		}
		user.APIKeyHash = models.HashAPIKey(key)
		// Shown once; only the hash is stored.
		log.Printf("API key for %s: %s", email, key)
	}

	if err := users.Update(user); err != nil {
		log.Fatalf("Failed to save admin user: %v", err)
	}
	log.Printf("Seed complete for %s", email)
}

func newAPIKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "ftfy_" + hex.EncodeToString(buf), nil
}
