package publisher

import (
	"context"
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"github.com/riskibarqy/livescore/internal/domain/livematch"
	"github.com/riskibarqy/livescore/internal/platform/logging"
	"github.com/riskibarqy/livescore/internal/platform/resilience"
)

const (
	defaultStreamPrefix = "live.matches."
	defaultStreamMaxLen = 1000
)

type RedisLivePublisherConfig struct {
	StreamPrefix   string
	MaxLen         int64
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// RedisLivePublisher appends every fresh snapshot to a per-sport Redis stream
// (live.matches.<sport>), trimmed to roughly MaxLen entries.
type RedisLivePublisher struct {
	client  redis.Cmdable
	prefix  string
	maxLen  int64
	timeout time.Duration
	breaker *resilience.CircuitBreaker
	logger  *logging.Logger
	now     func() time.Time
}

// NewRedisClient parses redisURL and pings the server once.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(strings.TrimSpace(redisURL))
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}

	client := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func NewRedisLivePublisher(client redis.Cmdable, cfg RedisLivePublisherConfig, logger *logging.Logger) *RedisLivePublisher {
	if logger == nil {
		logger = logging.Default()
	}
	prefix := strings.TrimSpace(cfg.StreamPrefix)
	if prefix == "" {
		prefix = defaultStreamPrefix
	}
	maxLen := cfg.MaxLen
	if maxLen <= 0 {
		maxLen = defaultStreamMaxLen
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	return &RedisLivePublisher{
		client:  client,
		prefix:  prefix,
		maxLen:  maxLen,
		timeout: timeout,
		breaker: resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker),
		logger:  logger.Named("redis_live_publisher"),
		now:     time.Now,
	}
}

func (p *RedisLivePublisher) StreamName(sport livematch.Sport) string {
	return p.prefix + sport.String()
}

func (p *RedisLivePublisher) PublishSnapshot(ctx context.Context, snapshot livematch.Snapshot) error {
	if p.breaker != nil {
		if err := p.breaker.Allow(); err != nil {
			return fmt.Errorf("redis stream is temporarily unavailable: %w", err)
		}
	}

	data, err := sonic.Marshal(newSnapshotMessage(snapshot))
	if err != nil {
		return fmt.Errorf("marshal live snapshot: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	stream := p.StreamName(snapshot.Sport)
	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]any{
			"sport":     snapshot.Sport.String(),
			"data":      string(data),
			"timestamp": p.now().Unix(),
		},
	}).Result()
	p.record(err)
	if err != nil {
		return fmt.Errorf("xadd %s: %w", stream, err)
	}

	p.logger.DebugContext(ctx, "live snapshot published", "stream", stream, "id", id, "matches", len(snapshot.Matches))
	return nil
}

func (p *RedisLivePublisher) record(err error) {
	if p.breaker == nil {
		return
	}
	if err != nil {
		p.breaker.RecordFailure()
		return
	}
	p.breaker.RecordSuccess()
}

type snapshotMessage struct {
	Sport           string           `json:"sport"`
	FetchedAt       string           `json:"fetchedAt"`
	Partial         bool             `json:"partial"`
	FailedLeagueIDs []int64          `json:"failedLeagueIds,omitempty"`
	Matches         []matchScoreLine `json:"matches"`
}

// matchScoreLine is the compact per-match view stream consumers need to
// detect score and clock changes.
type matchScoreLine struct {
	ID        int64  `json:"id"`
	LeagueID  int64  `json:"leagueId"`
	Home      string `json:"home"`
	Away      string `json:"away"`
	HomeScore int    `json:"homeScore"`
	AwayScore int    `json:"awayScore"`
	Status    string `json:"status"`
	Elapsed   *int   `json:"elapsed,omitempty"`
	Quarter   int    `json:"quarter,omitempty"`
}

func newSnapshotMessage(snapshot livematch.Snapshot) snapshotMessage {
	msg := snapshotMessage{
		Sport:           snapshot.Sport.String(),
		FetchedAt:       snapshot.FetchedAt.UTC().Format(time.RFC3339),
		Partial:         snapshot.Partial,
		FailedLeagueIDs: snapshot.FailedLeagueIDs,
		Matches:         make([]matchScoreLine, 0, len(snapshot.Matches)),
	}
	for _, m := range snapshot.Matches {
		line := matchScoreLine{
			ID:        m.ID,
			LeagueID:  m.League.ID,
			Home:      m.Home.Name,
			Away:      m.Away.Name,
			HomeScore: m.Score.Home,
			AwayScore: m.Score.Away,
			Status:    m.Status.Short,
			Elapsed:   m.Status.Elapsed,
		}
		if m.Basketball != nil {
			line.Quarter = m.Basketball.Quarter
		}
		msg.Matches = append(msg.Matches, line)
	}
	return msg
}
