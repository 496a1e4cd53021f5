// Command createuser provisions a register operator.
//
//	go run ./cmd/createuser -name ana -email ana@pos.local -role cashier
//
// The password is read from CREATEUSER_PASSWORD when -password is empty.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"pos-backend/internal/config"
	"pos-backend/internal/domains/user/model"
	"pos-backend/internal/domains/user/repository"
	"pos-backend/internal/domains/user/service"
	"pos-backend/internal/infrastructure/database"
	"pos-backend/pkg/logger"
)

func main() {
	name := flag.String("name", "", "user name, also accepted at login")
	email := flag.String("email", "", "email address")
	password := flag.String("password", "", "password (defaults to $CREATEUSER_PASSWORD)")
	role := flag.String("role", string(model.RoleCashier), "admin or cashier")
	flag.Parse()

	_ = godotenv.Load()
	logger.Init(os.Getenv("APP_ENV"))

	if *password == "" {
		*password = os.Getenv("CREATEUSER_PASSWORD")
	}

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load database config")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.NewPostgresDB(dbConfig)
	if err := db.Connect(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Login throttling and tokens are not needed here.
	svc := service.NewUserService(repository.NewPostgresRepository(db.Pool), nil, nil)

	u, err := svc.CreateUser(ctx, model.CreateUserRequest{
		Name:     *name,
		Email:    *email,
		Password: *password,
		Role:     model.Role(*role),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create user")
	}

	log.Info().Int64("id", u.ID).Str("name", u.Name).Str("role", string(u.Role)).Msg("user created")
}
