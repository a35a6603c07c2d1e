// Command bootstrap-admin creates the first ADMIN of an existing tenant.
//
//	bootstrap-admin -tenant acme -email admin@acme.test -password secret
//
// Tenants are registered over HTTP without any user; this is the manual
// step that gives a new tenant someone who can invite the rest.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Pankajse/YardStick/internal/policy"
	"github.com/Pankajse/YardStick/internal/service"
	"github.com/Pankajse/YardStick/internal/store"
	"github.com/Pankajse/YardStick/pkg/config"
	"github.com/Pankajse/YardStick/pkg/database"
	"github.com/Pankajse/YardStick/pkg/jwtutil"
	"github.com/Pankajse/YardStick/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	slug := flag.String("tenant", "", "Slug of the tenant that receives the admin")
	email := flag.String("email", "", "Admin email address")
	password := flag.String("password", os.Getenv("ADMIN_PASSWORD"), "Admin password (defaults to $ADMIN_PASSWORD)")
	flag.Parse()

	if *slug == "" || *email == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.InitLogger(cfg)
	log := logger.GetLogger()
	defer log.Sync()

	db, err := database.InitDB(&cfg.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}

	st := store.NewGormStore(db)
	tokens := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: cfg.JWT.SigningKey, Expiration: cfg.JWT.Expiration})
	svc := service.NewTenantService(st, st, policy.NewEngine(cfg.Quota.FreeNoteLimit), tokens, cfg.Auth.BcryptCost, log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	user, err := svc.BootstrapAdmin(ctx, *slug, *email, *password)
	if err != nil {
		log.Error("Failed to create admin", zap.String("tenant", *slug), zap.Error(err))
		os.Exit(1)
	}

	log.Info("Admin created",
		zap.String("user_id", user.ID),
		zap.String("email", user.Email),
		zap.String("tenant", *slug))
}
