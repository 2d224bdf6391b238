package main

import (
	"github.com/la-cortesia/cortesia_api/middleware"
	"github.com/la-cortesia/cortesia_api/services"

	"github.com/alphabatem/common/context"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// @title La Cortesia API
// @version 1.0
// @description Party game backend: challenge cards, lifecycle and rewards
func main() {
	err := godotenv.Load()
	if err != nil {
		log.Warn().Err(err).Msg("No .env file loaded")
	}

	ctx, err := context.NewCtx(
		&services.SqliteService{},
		&services.RedisService{},
		&services.MinIOService{},

		&services.AnalyticsService{},
		&services.CardGeneratorService{},
		&services.TemplateCatalogService{},
		&services.GameSessionService{},
		&services.EvidenceService{},

		&middleware.RateLimitMiddleware{},

		&services.MonitoringService{},
		&services.HttpService{},
	)
	if err != nil {
		log.Fatal().Err(err)
		return
	}

	err = ctx.Run()
	if err != nil {
		log.Fatal().Err(err)
		return
	}
}
