// provision-admin creates or updates an administrator account directly in
// MongoDB. Admin accounts are never self-registered, so operators run this
// once per admin before the server goes live.
//
//	JWT is not involved here; only MONGO_URI and MONGO_DB are read.
//
// Usage:
//
//	provision-admin -username sekretariat -nia ADM-001 -fullname "Sekretariat MAPASCAL" -password <pw>
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mapascal/records-system/internal/core/domain"
	mongodb "github.com/mapascal/records-system/internal/infrastructure/db/mongo"
	"github.com/mapascal/records-system/internal/pkg/config"
	"github.com/mapascal/records-system/pkg/logger"
)

func main() {
	username := flag.String("username", "", "admin login username (required)")
	nia := flag.String("nia", "", "admin membership number (required)")
	fullName := flag.String("fullname", "", "admin full name (required)")
	password := flag.String("password", "", "admin password (required)")
	flag.Parse()

	log := logger.Init(logger.Options{Level: "info", Pretty: true})

	if *username == "" || *nia == "" || *fullName == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer client.Disconnect(ctx)

	users := mongodb.NewUserRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("user index creation failed")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal().Err(err).Msg("password hashing failed")
	}

	now := time.Now().UTC()
	existing, err := users.FindAdminByIdentifier(ctx, *username)
	switch {
	case err == nil:
		existing.Username = *username
		existing.NIA = *nia
		existing.FullName = *fullName
		existing.PasswordHash = string(hash)
		existing.IsActive = true
		existing.UpdatedAt = now
		if err := users.Update(ctx, existing); err != nil {
			log.Fatal().Err(err).Msg("admin update failed")
		}
		log.Info().Str("id", existing.ID).Str("username", existing.Username).Msg("admin account updated")
	case errors.Is(err, domain.ErrUserNotFound):
		created, err := users.Create(ctx, &domain.User{
			Username:     *username,
			NIA:          *nia,
			FullName:     *fullName,
			Role:         domain.RoleAdmin,
			IsActive:     true,
			PasswordHash: string(hash),
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("admin creation failed")
		}
		log.Info().Str("id", created.ID).Str("username", created.Username).Msg("admin account created")
	default:
		log.Fatal().Err(err).Msg("admin lookup failed")
	}

	fmt.Println("done")
}
