package services

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/rs/zerolog/log"

	_ "github.com/la-cortesia/cortesia_api/docs"
	"github.com/la-cortesia/cortesia_api/services/handlers"
	"github.com/la-cortesia/cortesia_api/shared"
)

type HttpService struct {
	context.DefaultService

	generatorSvc  *CardGeneratorService
	catalogSvc    *TemplateCatalogService
	sessionSvc    *GameSessionService
	evidenceSvc   *EvidenceService
	analyticsSvc  *AnalyticsService
	sqlSvc        *SqliteService
	monitoringSvc *MonitoringService

	port   int
	server *fiber.App
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *context.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	svc.generatorSvc = svc.Service(GENERATOR_SVC).(*CardGeneratorService)
	svc.catalogSvc = svc.Service(CATALOG_SVC).(*TemplateCatalogService)
	svc.sessionSvc = svc.Service(SESSION_SVC).(*GameSessionService)
	svc.evidenceSvc = svc.Service(EVIDENCE_SVC).(*EvidenceService)
	svc.analyticsSvc = svc.Service(ANALYTICS_SVC).(*AnalyticsService)
	svc.sqlSvc = svc.Service(SQLITE_SVC).(*SqliteService)
	svc.monitoringSvc = svc.Service(MONITORING_SVC).(*MonitoringService)

	app := fiber.New(fiber.Config{
		AppName:      SERVICE_NAME,
		ErrorHandler: svc.handleError,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
	app.Use(MonitoringMiddleware(svc.monitoringSvc))

	svc.registerRoutes(app)

	svc.server = app

	log.Info().Int("port", svc.port).Msg("HTTP server started")
	return app.Listen(fmt.Sprintf(":%v", svc.port))
}

func (svc *HttpService) Shutdown() {
	if svc.server != nil {
		_ = svc.server.Shutdown()
	}
}

func (svc *HttpService) registerRoutes(app *fiber.App) {
	cardHandler := handlers.NewCardHandler(svc.generatorSvc, svc.catalogSvc)
	gameHandler := handlers.NewGameHandler(svc.sessionSvc)
	evidenceHandler := handlers.NewEvidenceHandler(svc.evidenceSvc)
	analyticsHandler := handlers.NewAnalyticsHandler(svc.analyticsSvc, svc.sqlSvc)

	rateLimiter := svc.rateLimiter()

	app.Get("/ping", svc.ping)
	app.Get("/swagger/*", swagger.HandlerDefault)

	v1 := app.Group("/api/v1")
	v1.Use(rateLimiter.ip())

	v1.Get("/ping", svc.ping)

	v1.Post("/cards/generate", cardHandler.GenerateCard)
	v1.Post("/cards/template", cardHandler.SelectTemplateCard)
	v1.Get("/cards/templates", cardHandler.ListTemplates)
	v1.Get("/brands", cardHandler.ListBrands)

	v1.Post("/games", rateLimiter.limit("game_create"), gameHandler.CreateGame)
	v1.Get("/games/:gameId", gameHandler.GetGame)
	v1.Post("/games/:gameId/restore", gameHandler.RestoreGame)

	v1.Post("/games/:gameId/challenge/start", gameHandler.StartChallenge)
	v1.Post("/games/:gameId/challenge/complete", gameHandler.CompleteChallenge)
	v1.Post("/games/:gameId/challenge/verify", gameHandler.VerifyChallenge)
	v1.Post("/games/:gameId/challenge/vote", rateLimiter.limit("vote_submit"), gameHandler.SubmitVote)
	v1.Post("/games/:gameId/challenge/retry", gameHandler.RetryVerification)
	v1.Post("/games/:gameId/challenge/claim", gameHandler.ClaimReward)
	v1.Post("/games/:gameId/challenge/reset", gameHandler.ResetChallenge)

	v1.Post("/games/:gameId/turn/next", gameHandler.NextPlayer)
	v1.Post("/games/:gameId/turn/player/:playerId", gameHandler.SetActivePlayer)
	v1.Post("/games/:gameId/tick", gameHandler.Tick)

	v1.Post("/evidence/:gameId", rateLimiter.limit("evidence_upload"), evidenceHandler.UploadEvidence)
	v1.Get("/evidence", evidenceHandler.GetEvidenceURL)

	v1.Get("/analytics/summary", analyticsHandler.Summary)
	v1.Get("/redeemables/:id", analyticsHandler.GetRedeemable)
	v1.Post("/redeemables/:id/redeem", analyticsHandler.RedeemCard)
}

// rateLimitProvider is what the router needs from the rate limit
// middleware. The middleware service lives outside this package, so it is
// resolved by id and narrowed here.
type rateLimitProvider interface {
	Limit(endpointType string) fiber.Handler
	IPRateLimit() fiber.Handler
}

type limiterFuncs struct {
	ip    func() fiber.Handler
	limit func(endpointType string) fiber.Handler
}

func (svc *HttpService) rateLimiter() limiterFuncs {
	if provider, ok := svc.Service(RATE_LIMIT_SVC).(rateLimitProvider); ok {
		return limiterFuncs{ip: provider.IPRateLimit, limit: provider.Limit}
	}

	// No limiter wired, pass everything through.
	passthrough := func(c *fiber.Ctx) error { return c.Next() }
	return limiterFuncs{
		ip:    func() fiber.Handler { return passthrough },
		limit: func(string) fiber.Handler { return passthrough },
	}
}

// RATE_LIMIT_SVC mirrors middleware.RATE_LIMIT_MIDDLEWARE_SVC without
// importing the middleware package, which imports this one.
const RATE_LIMIT_SVC = "rate_limit"

// @Summary Ping
// @Description This endpoint checks the health of the service
// @Tags health
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=string}
// @Router /ping [get]
func (svc *HttpService) ping(c *fiber.Ctx) error {
	c.Set("Cache-Control", "max-age=10")

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", "pong")
}

func (svc *HttpService) handleError(c *fiber.Ctx, err error) error {
	if err == nil {
		return nil
	}

	if appErr, ok := shared.GetAppError(err); ok {
		return shared.ResponseJSON(c, appErr.StatusCode, appErr.Message, appErr.Data)
	}

	var transitionErr *InvalidTransitionError
	if errors.As(err, &transitionErr) {
		return shared.ResponseJSON(c, fiber.StatusConflict, transitionErr.Error(), nil)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return shared.ResponseJSON(c, fiberErr.Code, fiberErr.Message, nil)
	}

	return shared.ResponseInternalError(c, err)
}
