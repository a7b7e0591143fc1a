package publisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	sonic "github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"github.com/riskibarqy/livescore/internal/domain/livematch"
	"github.com/riskibarqy/livescore/internal/platform/logging"
	"github.com/riskibarqy/livescore/internal/platform/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publisherSetup struct {
	mr        *miniredis.Miniredis
	client    *redis.Client
	publisher *RedisLivePublisher
}

func setupPublisher(t *testing.T, cfg RedisLivePublisherConfig) *publisherSetup {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := NewRedisClient(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return &publisherSetup{
		mr:        mr,
		client:    client,
		publisher: NewRedisLivePublisher(client, cfg, logging.NewNop()),
	}
}

func liveSnapshot() livematch.Snapshot {
	elapsed := 67
	return livematch.Snapshot{
		Sport:           livematch.SportNBA,
		FetchedAt:       time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC),
		Partial:         true,
		FailedLeagueIDs: []int64{422},
		Matches: []livematch.Match{
			{
				ID:         414022,
				Sport:      livematch.SportNBA,
				Home:       livematch.Team{Name: "Los Angeles Lakers"},
				Away:       livematch.Team{Name: "Boston Celtics"},
				Score:      livematch.Score{Home: 62, Away: 62},
				Status:     livematch.Status{Short: "Q3", Elapsed: &elapsed},
				League:     livematch.League{ID: 12, Name: "NBA"},
				Basketball: &livematch.BasketballDetails{Quarter: 3},
			},
		},
	}
}

func TestRedisLivePublisher_PublishSnapshot(t *testing.T) {
	setup := setupPublisher(t, RedisLivePublisherConfig{MaxLen: 50})
	ctx := context.Background()

	require.NoError(t, setup.publisher.PublishSnapshot(ctx, liveSnapshot()))

	entries, err := setup.client.XRange(ctx, "live.matches.nba", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.Equal(t, "nba", entries[0].Values["sport"])
	raw, ok := entries[0].Values["data"].(string)
	require.True(t, ok)

	var msg snapshotMessage
	require.NoError(t, sonic.UnmarshalString(raw, &msg))
	assert.Equal(t, "nba", msg.Sport)
	assert.Equal(t, "2026-03-14T20:00:00Z", msg.FetchedAt)
	assert.True(t, msg.Partial)
	assert.Equal(t, []int64{422}, msg.FailedLeagueIDs)
	require.Len(t, msg.Matches, 1)
	assert.Equal(t, int64(414022), msg.Matches[0].ID)
	assert.Equal(t, 3, msg.Matches[0].Quarter)
	require.NotNil(t, msg.Matches[0].Elapsed)
	assert.Equal(t, 67, *msg.Matches[0].Elapsed)
}

func TestRedisLivePublisher_StreamPerSport(t *testing.T) {
	setup := setupPublisher(t, RedisLivePublisherConfig{StreamPrefix: "test.live."})
	ctx := context.Background()

	soccer := livematch.Snapshot{Sport: livematch.SportSoccer, FetchedAt: time.Now()}
	require.NoError(t, setup.publisher.PublishSnapshot(ctx, soccer))
	require.NoError(t, setup.publisher.PublishSnapshot(ctx, soccer))
	require.NoError(t, setup.publisher.PublishSnapshot(ctx, liveSnapshot()))

	n, err := setup.client.XLen(ctx, "test.live.soccer").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = setup.client.XLen(ctx, "test.live.nba").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRedisLivePublisher_CircuitOpensWhenRedisIsDown(t *testing.T) {
	setup := setupPublisher(t, RedisLivePublisherConfig{
		Timeout: 200 * time.Millisecond,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
		},
	})
	setup.mr.Close()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		err := setup.publisher.PublishSnapshot(ctx, liveSnapshot())
		require.Error(t, err)
		assert.False(t, errors.Is(err, resilience.ErrCircuitOpen))
	}

	err := setup.publisher.PublishSnapshot(ctx, liveSnapshot())
	require.ErrorIs(t, err, resilience.ErrCircuitOpen)
}

func TestNewRedisClient_InvalidURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "://not-a-url")
	require.Error(t, err)
}
