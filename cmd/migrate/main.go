// Command migrate applies the database schema and bootstraps admin accounts.
//
//	migrate up
//	migrate status
//	migrate down
//	migrate adduser -username admin -password secret
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/noah-isme/school-dashboard-api/internal/identity"
	"github.com/noah-isme/school-dashboard-api/internal/models"
	"github.com/noah-isme/school-dashboard-api/internal/repository"
	"github.com/noah-isme/school-dashboard-api/migrations"
	"github.com/noah-isme/school-dashboard-api/pkg/config"
	"github.com/noah-isme/school-dashboard-api/pkg/database"
	"github.com/noah-isme/school-dashboard-api/pkg/logger"
)

const usage = `usage: migrate <command> [args]

commands:
  up | up-by-one | up-to VERSION | down | down-to VERSION | redo | reset | status | version
      goose commands over the embedded schema
  adduser -username NAME -password SECRET
      create an admin account (defaults from ADMIN_USERNAME and ADMIN_PASSWORD)
`

func main() {
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	switch args[0] {
	case "adduser":
		err = addUser(ctx, repository.NewUserRepository(db), logr, args[1:])
	default:
		goose.SetBaseFS(migrations.FS)
		if err = goose.SetDialect("postgres"); err == nil {
			err = goose.RunContext(ctx, args[0], db.DB, ".", args[1:]...)
		}
	}
	if err != nil {
		logr.Fatal("migrate failed", zap.String("command", args[0]), zap.Error(err))
	}
}

func addUser(ctx context.Context, users *repository.UserRepository, logr *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	username := fs.String("username", os.Getenv("ADMIN_USERNAME"), "admin username")
	password := fs.String("password", os.Getenv("ADMIN_PASSWORD"), "admin password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*username) == "" || len(*password) < 8 {
		return errors.New("adduser requires a username and a password of at least 8 characters")
	}

	provider := identity.NewLocalProvider(users, logr.Named("identity"))
	created, err := provider.CreateIdentity(ctx, identity.NewIdentity{
		Username:  strings.TrimSpace(*username),
		Password:  *password,
		FirstName: "Admin",
		Role:      models.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	logr.Info("admin created", zap.String("user_id", created.ID), zap.String("username", created.Username))
	return nil
}
