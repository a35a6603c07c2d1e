// Package server wires stores, services and handlers into an Echo instance.
package server

import (
	"github.com/Pankajse/YardStick/internal/handler"
	"github.com/Pankajse/YardStick/internal/middleware"
	"github.com/Pankajse/YardStick/internal/policy"
	"github.com/Pankajse/YardStick/internal/service"
	"github.com/Pankajse/YardStick/internal/store"
	"github.com/Pankajse/YardStick/pkg/config"
	"github.com/Pankajse/YardStick/pkg/jwtutil"
	"github.com/Pankajse/YardStick/pkg/logger"
	"github.com/Pankajse/YardStick/prometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// New builds the HTTP server for the given configuration and database
func New(cfg *config.Config, db *gorm.DB, log *zap.Logger) *echo.Echo {
	st := store.NewGormStore(db)
	engine := policy.NewEngine(cfg.Quota.FreeNoteLimit)
	tokens := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey: cfg.JWT.SigningKey,
		Expiration: cfg.JWT.Expiration,
	})

	tenantService := service.NewTenantService(st, st, engine, tokens, cfg.Auth.BcryptCost, log)
	noteService := service.NewNoteService(st, st, engine)

	healthHandler := handler.NewHealthHandler(st)
	tenantHandler := handler.NewTenantHandler(tenantService)
	authHandler := handler.NewAuthHandler(tenantService)
	noteHandler := handler.NewNoteHandler(noteService)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Order matters: request id before the logger that reads it
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	e.GET("/health", healthHandler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(prometheus.GetPrometheusHandler()))

	e.POST("/tenant", tenantHandler.RegisterTenant)
	e.POST("/auth/login", authHandler.Login)

	auth := middleware.AuthMiddleware(tokens)

	e.POST("/users", tenantHandler.InviteUser, auth)
	e.POST("/tenants/:slug/upgrade", tenantHandler.UpgradeTenant, auth)

	notes := e.Group("/notes", auth)
	notes.POST("", noteHandler.CreateNote)
	notes.GET("", noteHandler.ListNotes)
	notes.GET("/:id", noteHandler.GetNote)
	notes.PUT("/:id", noteHandler.UpdateNote)
	notes.DELETE("/:id", noteHandler.DeleteNote)

	return e
}
