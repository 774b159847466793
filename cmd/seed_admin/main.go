// seed_admin crea el primer administrador directamente en PostgreSQL.
//
// Uso: go run ./cmd/seed_admin --username admin --name "Admin" [--email a@b.c]
// El password se lee de --password o de la variable ADMIN_PASSWORD.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/jhoicas/bitumen-api/internal/application/auth"
	"github.com/jhoicas/bitumen-api/internal/domain"
	"github.com/jhoicas/bitumen-api/internal/domain/entity"
	"github.com/jhoicas/bitumen-api/internal/infrastructure/postgres"
	"github.com/jhoicas/bitumen-api/pkg/config"
	"github.com/jhoicas/bitumen-api/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var username, name, email, password string
	var migrateFirst bool

	flags := pflag.NewFlagSet("seed_admin", pflag.ContinueOnError)
	flags.StringVar(&username, "username", "admin", "usuario del administrador")
	flags.StringVar(&name, "name", "Administrator", "nombre visible")
	flags.StringVar(&email, "email", "", "email (opcional)")
	flags.StringVar(&password, "password", "", "password (por defecto $ADMIN_PASSWORD)")
	flags.BoolVar(&migrateFirst, "migrate", true, "aplicar migraciones antes de insertar")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	username = strings.ToLower(strings.TrimSpace(username))
	if password == "" {
		password = os.Getenv("ADMIN_PASSWORD")
	}
	if len(password) < 8 {
		return errors.New("el password debe tener al menos 8 caracteres (--password o ADMIN_PASSWORD)")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.DB.Driver != "postgres" {
		return fmt.Errorf("seed_admin requiere DB_DRIVER=postgres (actual %q)", cfg.DB.Driver)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()
	if migrateFirst {
		if err := postgres.Migrate(cfg.DB, log); err != nil {
			return err
		}
	}
	repos := postgres.NewRepositories(pool)

	user, err := auth.CreateUser(ctx, repos.Users, repos.Permissions, auth.NewUser{
		Username: username,
		Password: password,
		Name:     name,
		Email:    email,
		Role:     entity.RoleAdmin,
	}, 0, time.Now().UTC())
	if errors.Is(err, domain.ErrUsernameTaken) {
		log.Warn().Str("username", username).Msg("el usuario ya existe, nada que hacer")
		return nil
	}
	if err != nil {
		return err
	}
	log.Info().Str("id", user.ID).Str("username", user.Username).Msg("administrador creado")
	return nil
}
