package middleware

import (
	appContext "context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/la-cortesia/cortesia_api/model"
	"github.com/la-cortesia/cortesia_api/services"
)

// RateLimitMiddleware throttles abusive clients with Redis counter
// windows. Each endpoint type has its own window and block time.
type RateLimitMiddleware struct {
	context.DefaultService

	configs  map[string]*model.RateLimitConfig
	mutex    sync.RWMutex
	redisSvc *services.RedisService
}

const RATE_LIMIT_MIDDLEWARE_SVC = "rate_limit"

func (svc *RateLimitMiddleware) Id() string {
	return RATE_LIMIT_MIDDLEWARE_SVC
}

func (svc *RateLimitMiddleware) Configure(ctx *context.Context) error {
	svc.configs = make(map[string]*model.RateLimitConfig)
	return svc.DefaultService.Configure(ctx)
}

func (svc *RateLimitMiddleware) Start() error {
	svc.redisSvc = svc.Service(services.REDIS_SVC).(*services.RedisService)
	svc.initDefaultConfigs()
	return nil
}

func (svc *RateLimitMiddleware) initDefaultConfigs() {
	svc.configs = map[string]*model.RateLimitConfig{
		// Game creation - prevent table spam
		"game_create": {
			EndpointType: "game_create",
			MaxRequests:  10,
			WindowSize:   time.Minute * 15,
			BlockTime:    time.Minute * 30,
			Description:  "Game creation rate limit",
		},

		// Group votes - one table produces at most a handful per turn
		"vote_submit": {
			EndpointType: "vote_submit",
			MaxRequests:  60,
			WindowSize:   time.Minute,
			BlockTime:    time.Minute * 5,
			Description:  "Vote submission rate limit",
		},

		// Evidence uploads carry file payloads
		"evidence_upload": {
			EndpointType: "evidence_upload",
			MaxRequests:  30,
			WindowSize:   time.Minute * 10,
			BlockTime:    time.Minute * 30,
			Description:  "Evidence upload rate limit",
		},

		// General API calls per IP
		"api_general": {
			EndpointType: "api_general",
			MaxRequests:  1000,
			WindowSize:   time.Hour,
			BlockTime:    time.Hour,
			Description:  "General API rate limit per IP",
		},
	}
}

// RateLimitInfo carries back the window state for response headers.
type RateLimitInfo struct {
	Allowed      bool
	Remaining    int
	ResetTime    *time.Time
	BlockedUntil *time.Time
}

func (svc *RateLimitMiddleware) IsAllowed(identifier, endpointType string) (bool, *RateLimitInfo, error) {
	svc.mutex.RLock()
	config, exists := svc.configs[endpointType]
	svc.mutex.RUnlock()

	if !exists {
		// If no config exists, allow the request
		return true, &RateLimitInfo{Allowed: true, Remaining: -1}, nil
	}

	ctx := appContext.Background()
	now := time.Now()

	blockKey := fmt.Sprintf("ratelimit:block:%s:%s", endpointType, identifier)
	blockTTL, err := svc.redisSvc.TTL(ctx, blockKey)
	if err != nil {
		return false, nil, err
	}
	if blockTTL > 0 {
		blockedUntil := now.Add(blockTTL)
		return false, &RateLimitInfo{
			Allowed:      false,
			Remaining:    0,
			ResetTime:    &blockedUntil,
			BlockedUntil: &blockedUntil,
		}, nil
	}

	countKey := fmt.Sprintf("ratelimit:%s:%s", endpointType, identifier)
	count, err := svc.redisSvc.Increment(ctx, countKey)
	if err != nil {
		return false, nil, err
	}
	if count == 1 {
		if err := svc.redisSvc.Expire(ctx, countKey, config.WindowSize); err != nil {
			return false, nil, err
		}
	}

	if count > int64(config.MaxRequests) {
		if err := svc.redisSvc.Set(ctx, blockKey, "1", config.BlockTime); err != nil {
			return false, nil, err
		}

		blockedUntil := now.Add(config.BlockTime)
		return false, &RateLimitInfo{
			Allowed:      false,
			Remaining:    0,
			ResetTime:    &blockedUntil,
			BlockedUntil: &blockedUntil,
		}, nil
	}

	windowTTL, err := svc.redisSvc.TTL(ctx, countKey)
	if err != nil {
		return false, nil, err
	}
	resetTime := now.Add(windowTTL)

	return true, &RateLimitInfo{
		Allowed:   true,
		Remaining: config.MaxRequests - int(count),
		ResetTime: &resetTime,
	}, nil
}

// Limit builds a fiber middleware for one endpoint type, keyed by client
// IP. Checks fail open so Redis trouble never blocks gameplay.
func (svc *RateLimitMiddleware) Limit(endpointType string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := getClientIP(c)

		allowed, info, err := svc.IsAllowed(ip, endpointType)
		if err != nil {
			log.WithError(err).WithField("ip", ip).Warn("Rate limit check failed")
			return c.Next()
		}

		if info.ResetTime != nil {
			c.Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
		}
		c.Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))

		if !allowed {
			if info.BlockedUntil != nil {
				c.Set("Retry-After", strconv.FormatInt(info.BlockedUntil.Unix(), 10))
			}

			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "Rate limit exceeded",
				"message": "Too many requests, please try again later",
			})
		}

		return c.Next()
	}
}

// IPRateLimit applies the general per-IP limit.
func (svc *RateLimitMiddleware) IPRateLimit() fiber.Handler {
	return svc.Limit("api_general")
}

func getClientIP(c *fiber.Ctx) string {
	forwarded := c.Get("X-Forwarded-For")
	if forwarded != "" {
		ips := strings.Split(forwarded, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	realIP := c.Get("X-Real-IP")
	if realIP != "" {
		return realIP
	}

	ip, _, err := net.SplitHostPort(c.Context().RemoteAddr().String())
	if err != nil {
		return c.IP()
	}

	return ip
}
