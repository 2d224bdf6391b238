// services/analytics.go - game event counters backed by Redis
package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"

	"github.com/la-cortesia/cortesia_api/dto"
	"github.com/la-cortesia/cortesia_api/model"
	"github.com/la-cortesia/cortesia_api/shared"
)

const analyticsKeyPrefix = "events:"

// AnalyticsService counts game events in Redis. Recording is best-effort:
// a sink failure is logged and gameplay continues.
type AnalyticsService struct {
	appContext.DefaultService

	redisSvc *RedisService

	// fallback receives events when Redis is not wired, used in tests.
	fallback EventSink
}

const ANALYTICS_SVC = "analytics_svc"

func (svc AnalyticsService) Id() string {
	return ANALYTICS_SVC
}

func (svc *AnalyticsService) Start() error {
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	return nil
}

func (svc *AnalyticsService) RecordEvent(event model.GameEvent) {
	if svc.redisSvc == nil {
		if svc.fallback != nil {
			svc.fallback.RecordEvent(event)
		}
		return
	}

	ctx := context.Background()

	keys := []string{analyticsKeyPrefix + event.Type}
	if event.Tier != "" {
		keys = append(keys, fmt.Sprintf("%s%s:tier:%s", analyticsKeyPrefix, event.Type, event.Tier))
	}
	if event.Method != "" {
		keys = append(keys, fmt.Sprintf("%s%s:method:%s", analyticsKeyPrefix, event.Type, event.Method))
	}

	for _, key := range keys {
		if _, err := svc.redisSvc.Increment(ctx, key); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"event_type":    event.Type,
				shared.GameID:   event.GameID,
				shared.PlayerID: event.PlayerID,
			}).Warn("Failed to record game event")
			return
		}
	}
}

// Summary reads back every event counter.
func (svc *AnalyticsService) Summary() (*dto.AnalyticsSummaryResponse, error) {
	if svc.redisSvc == nil {
		return nil, shared.NewInternalError(nil, "Analytics store unavailable")
	}

	ctx := context.Background()

	keys, err := svc.redisSvc.Keys(ctx, analyticsKeyPrefix+"*")
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to list event counters")
	}

	counters := make(map[string]int64, len(keys))
	for _, key := range keys {
		value, err := svc.redisSvc.Get(ctx, key)
		if err != nil {
			return nil, shared.NewInternalError(err, "Failed to read event counter")
		}

		count, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			continue
		}
		counters[strings.TrimPrefix(key, analyticsKeyPrefix)] = count
	}

	return &dto.AnalyticsSummaryResponse{Counters: counters}, nil
}

// MemoryEventSink collects events in memory. Tests and single-process runs
// use it in place of Redis.
type MemoryEventSink struct {
	mu     sync.Mutex
	events []model.GameEvent
}

func (s *MemoryEventSink) RecordEvent(event model.GameEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *MemoryEventSink) Events() []model.GameEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.GameEvent, len(s.events))
	copy(out, s.events)
	return out
}

func (s *MemoryEventSink) CountByType(eventType string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, event := range s.events {
		if event.Type == eventType {
			n++
		}
	}
	return n
}
