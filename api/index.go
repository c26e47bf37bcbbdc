package handler

import (
	"net/http"

	"github.com/arnavshah/club-teams-api/pkg/app"
	"github.com/arnavshah/club-teams-api/pkg/config"
	"github.com/arnavshah/club-teams-api/pkg/logger"
	"github.com/gin-gonic/gin"
)

var r *gin.Engine

func init() {
	log := logger.New("info")
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("could not load config")
	}
	log = logger.New(cfg.LogLevel)

	a, err := app.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("could not start")
	}
	r = a.Router
}

// Handler is the entry point for Vercel Go Runtime
func Handler(w http.ResponseWriter, req *http.Request) {
	r.ServeHTTP(w, req)
}
