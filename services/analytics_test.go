package services

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/la-cortesia/cortesia_api/model"
)

func newTestAnalytics(t *testing.T) *AnalyticsService {
	t.Helper()

	mr := miniredis.RunT(t)
	redisSvc := &RedisService{}
	redisSvc.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	return &AnalyticsService{redisSvc: redisSvc}
}

func TestRecordEventIncrementsCounters(t *testing.T) {
	svc := newTestAnalytics(t)

	event := model.GameEvent{
		Type:   model.EventChallengeVerified,
		GameID: "g1",
		Tier:   "chaotic",
		Method: "group",
	}
	svc.RecordEvent(event)
	svc.RecordEvent(event)

	summary, err := svc.Summary()
	require.NoError(t, err)

	assert.Equal(t, int64(2), summary.Counters[model.EventChallengeVerified])
	assert.Equal(t, int64(2), summary.Counters[model.EventChallengeVerified+":tier:chaotic"])
	assert.Equal(t, int64(2), summary.Counters[model.EventChallengeVerified+":method:group"])
}

func TestRecordEventSkipsEmptyDimensions(t *testing.T) {
	svc := newTestAnalytics(t)

	svc.RecordEvent(model.GameEvent{Type: model.EventTurnAdvanced, GameID: "g1"})

	summary, err := svc.Summary()
	require.NoError(t, err)

	assert.Len(t, summary.Counters, 1)
	assert.Equal(t, int64(1), summary.Counters[model.EventTurnAdvanced])
}

func TestRecordEventFallsBackWithoutRedis(t *testing.T) {
	sink := &MemoryEventSink{}
	svc := &AnalyticsService{fallback: sink}

	svc.RecordEvent(model.GameEvent{Type: model.EventChallengeStarted, GameID: "g1"})

	assert.Equal(t, 1, sink.CountByType(model.EventChallengeStarted))
}

func TestSummaryWithoutRedisFails(t *testing.T) {
	svc := &AnalyticsService{}

	_, err := svc.Summary()
	assert.Error(t, err)
}
