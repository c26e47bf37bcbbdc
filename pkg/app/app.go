// Package app wires configuration, storage and the HTTP router for both
// the standalone server and the serverless entry.
package app

import (
	"fmt"

	"github.com/arnavshah/club-teams-api/pkg/config"
	"github.com/arnavshah/club-teams-api/pkg/database"
	"github.com/arnavshah/club-teams-api/pkg/handlers"
	"github.com/arnavshah/club-teams-api/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// App is a configured service ready to serve requests
type App struct {
	Router *gin.Engine
	DB     *gorm.DB
}

// New applies the configured gin mode, opens the database and builds the router
func New(cfg *config.Config, log zerolog.Logger) (*App, error) {
	gin.SetMode(cfg.GinMode)

	db, err := database.Open(database.Options{
		DatabaseURL: cfg.DatabaseURL,
		DataPath:    cfg.DataPath,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	h := &handlers.Handler{
		Store:            database.NewStore(db),
		Log:              log,
		Metrics:          metrics.New(),
		DefaultTeamCount: cfg.DefaultTeamCount,
	}

	return &App{Router: handlers.NewRouter(h), DB: db}, nil
}

// Close releases the database connection
func (a *App) Close() error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
