package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/livescore/internal/domain/livematch"
	"github.com/riskibarqy/livescore/internal/domain/rawdata"
	"github.com/riskibarqy/livescore/internal/platform/cache"
	"github.com/riskibarqy/livescore/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"
)

const defaultUpstreamTimeout = 8 * time.Second

// DefaultNBALeagueIDs are the API-Basketball ids for the NBA regular season,
// the in-season tournament and the NBA Cup.
var DefaultNBALeagueIDs = []int64{12, 422, 423}

// BackgroundRunner schedules fire-and-forget work. worker.Pool satisfies it.
type BackgroundRunner interface {
	Submit(name string, job func(ctx context.Context) error) error
}

// LiveMatchMetrics is implemented by the Prometheus recorder.
type LiveMatchMetrics interface {
	ObserveCacheLookup(sport string, hit bool)
	ObserveLeagueFailure(sport string, leagueID int64)
}

type LiveMatchServiceConfig struct {
	CacheTTL         time.Duration
	NBALeagueIDs     []int64
	FanoutWorkers    int
	UpstreamTimeout  time.Duration
	APIKeyConfigured bool
	Now              func() time.Time
}

type LiveMatchServiceOption func(*LiveMatchService)

func WithRawArchive(repo rawdata.Repository) LiveMatchServiceOption {
	return func(s *LiveMatchService) {
		s.archive = repo
	}
}

func WithSnapshotPublisher(publisher livematch.SnapshotPublisher) LiveMatchServiceOption {
	return func(s *LiveMatchService) {
		s.publisher = publisher
	}
}

func WithBackgroundRunner(runner BackgroundRunner) LiveMatchServiceOption {
	return func(s *LiveMatchService) {
		s.background = runner
	}
}

func WithLiveMatchMetrics(metrics LiveMatchMetrics) LiveMatchServiceOption {
	return func(s *LiveMatchService) {
		s.metrics = metrics
	}
}

func WithLiveMatchLogger(logger *logging.Logger) LiveMatchServiceOption {
	return func(s *LiveMatchService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// LiveMatches is the filtered view handed to callers.
type LiveMatches struct {
	Sport           livematch.Sport
	Matches         []livematch.Match
	FetchedAt       time.Time
	Cached          bool
	Partial         bool
	FailedLeagueIDs []int64
}

// LiveMatchService serves live matches per sport from a short-lived snapshot
// cache. Only the unfiltered snapshot is cached; team filters are applied on
// every call so different filters share one upstream fetch.
type LiveMatchService struct {
	football   livematch.FootballProvider
	basketball livematch.BasketballProvider
	cache      *cache.Store

	nbaLeagueIDs    []int64
	fanoutWorkers   int
	upstreamTimeout time.Duration
	apiKeyReady     bool
	now             func() time.Time

	archive    rawdata.Repository
	publisher  livematch.SnapshotPublisher
	background BackgroundRunner
	metrics    LiveMatchMetrics
	logger     *logging.Logger
}

func NewLiveMatchService(
	football livematch.FootballProvider,
	basketball livematch.BasketballProvider,
	cfg LiveMatchServiceConfig,
	opts ...LiveMatchServiceOption,
) *LiveMatchService {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	leagueIDs := append([]int64(nil), cfg.NBALeagueIDs...)
	if len(leagueIDs) == 0 {
		leagueIDs = append(leagueIDs, DefaultNBALeagueIDs...)
	}
	workers := cfg.FanoutWorkers
	if workers <= 0 {
		workers = len(leagueIDs)
	}
	timeout := cfg.UpstreamTimeout
	if timeout <= 0 {
		timeout = defaultUpstreamTimeout
	}

	s := &LiveMatchService{
		football:        football,
		basketball:      basketball,
		cache:           cache.NewStore(ttl, cache.WithClock(now)),
		nbaLeagueIDs:    leagueIDs,
		fanoutWorkers:   workers,
		upstreamTimeout: timeout,
		apiKeyReady:     cfg.APIKeyConfigured,
		now:             now,
		logger:          logging.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("live_match_service")
	return s
}

func (s *LiveMatchService) NBALeagueIDs() []int64 {
	return append([]int64(nil), s.nbaLeagueIDs...)
}

func (s *LiveMatchService) GetLiveMatches(ctx context.Context, sport livematch.Sport, filter livematch.TeamFilter) (LiveMatches, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LiveMatchService.GetLiveMatches")
	defer span.End()
	span.SetAttributes(attribute.String("live.sport", sport.String()))

	if !s.apiKeyReady {
		return LiveMatches{}, fmt.Errorf("%w: APISPORTS_API_KEY is not set", ErrConfiguration)
	}
	if !isKnownSport(sport) {
		return LiveMatches{}, fmt.Errorf("%w: %w: %q", ErrInvalidInput, livematch.ErrUnknownSport, sport)
	}

	value, cached, err := s.cache.GetOrLoadIf(ctx, sport.CacheKey(), func(ctx context.Context) (any, error) {
		return s.loadSnapshot(ctx, sport)
	}, keepSnapshot)
	if err != nil {
		span.RecordError(err)
		return LiveMatches{}, fmt.Errorf("get live matches sport=%s: %w", sport, err)
	}
	if s.metrics != nil {
		s.metrics.ObserveCacheLookup(sport.String(), cached)
	}

	snapshot, ok := value.(livematch.Snapshot)
	if !ok {
		return LiveMatches{}, fmt.Errorf("unexpected live snapshot type %T", value)
	}
	span.SetAttributes(
		attribute.Bool("live.cached", cached),
		attribute.Bool("live.partial", snapshot.Partial),
		attribute.Int("live.match_count", len(snapshot.Matches)),
	)

	return LiveMatches{
		Sport:           snapshot.Sport,
		Matches:         filter.Apply(snapshot.Matches),
		FetchedAt:       snapshot.FetchedAt,
		Cached:          cached,
		Partial:         snapshot.Partial,
		FailedLeagueIDs: append([]int64(nil), snapshot.FailedLeagueIDs...),
	}, nil
}

// Clear drops every cached snapshot and returns how many were removed.
func (s *LiveMatchService) Clear() int {
	return s.cache.Clear()
}

// A fan-out in which every league failed is served once but never cached.
func keepSnapshot(value any) bool {
	snapshot, ok := value.(livematch.Snapshot)
	return ok && !snapshot.AllFailed
}

func isKnownSport(sport livematch.Sport) bool {
	for _, known := range livematch.Sports() {
		if sport == known {
			return true
		}
	}
	return false
}

func (s *LiveMatchService) loadSnapshot(ctx context.Context, sport livematch.Sport) (livematch.Snapshot, error) {
	var (
		snapshot livematch.Snapshot
		payloads []rawdata.Payload
		err      error
	)

	switch sport {
	case livematch.SportSoccer:
		snapshot, payloads, err = s.fetchSingle(ctx, sport, func(ctx context.Context) ([]livematch.Match, []rawdata.Payload, error) {
			return s.football.FetchLiveFixtures(ctx)
		})
	case livematch.SportBasketball:
		snapshot, payloads, err = s.fetchSingle(ctx, sport, func(ctx context.Context) ([]livematch.Match, []rawdata.Payload, error) {
			return s.basketball.FetchLiveGames(ctx, sport, 0)
		})
	default:
		snapshot, payloads, err = s.fetchLeagues(ctx, sport, s.nbaLeagueIDs)
	}
	if err != nil {
		return livematch.Snapshot{}, err
	}

	s.afterFetch(sport, snapshot, payloads)
	return snapshot, nil
}

func (s *LiveMatchService) fetchSingle(
	ctx context.Context,
	sport livematch.Sport,
	fetch func(context.Context) ([]livematch.Match, []rawdata.Payload, error),
) (livematch.Snapshot, []rawdata.Payload, error) {
	reqCtx, cancel := context.WithTimeout(ctx, s.upstreamTimeout)
	defer cancel()

	matches, payloads, err := fetch(reqCtx)
	if err != nil {
		return livematch.Snapshot{}, nil, fmt.Errorf("fetch %s: %w", sport, asUpstreamError(err))
	}

	return livematch.Snapshot{
		Sport:     sport,
		Matches:   livematch.DedupeByID(matches),
		FetchedAt: s.now(),
	}, payloads, nil
}

type leagueResult struct {
	matches  []livematch.Match
	payloads []rawdata.Payload
	err      error
}

// fetchLeagues queries every league in parallel. A failed league contributes
// nothing; the union keeps league order and drops repeated match ids.
func (s *LiveMatchService) fetchLeagues(ctx context.Context, sport livematch.Sport, leagueIDs []int64) (livematch.Snapshot, []rawdata.Payload, error) {
	results := make([]leagueResult, len(leagueIDs))

	p := pool.New().WithMaxGoroutines(s.fanoutWorkers)
	for i, leagueID := range leagueIDs {
		p.Go(func() {
			results[i] = s.fetchLeague(ctx, sport, leagueID)
		})
	}
	p.Wait()

	snapshot := livematch.Snapshot{Sport: sport}
	var (
		matches  []livematch.Match
		payloads []rawdata.Payload
	)
	for i, res := range results {
		leagueID := leagueIDs[i]
		if res.err != nil {
			if errors.Is(res.err, ErrConfiguration) {
				return livematch.Snapshot{}, nil, fmt.Errorf("fetch %s league=%d: %w", sport, leagueID, res.err)
			}
			s.logger.WarnContext(ctx, "league sub-request failed, continuing with partial result",
				"sport", sport.String(),
				"league_id", leagueID,
				"error", res.err,
			)
			if s.metrics != nil {
				s.metrics.ObserveLeagueFailure(sport.String(), leagueID)
			}
			snapshot.FailedLeagueIDs = append(snapshot.FailedLeagueIDs, leagueID)
			continue
		}
		matches = append(matches, res.matches...)
		payloads = append(payloads, res.payloads...)
	}

	snapshot.Matches = livematch.DedupeByID(matches)
	snapshot.Partial = len(snapshot.FailedLeagueIDs) > 0
	snapshot.AllFailed = len(leagueIDs) > 0 && len(snapshot.FailedLeagueIDs) == len(leagueIDs)
	snapshot.FetchedAt = s.now()
	return snapshot, payloads, nil
}

func (s *LiveMatchService) fetchLeague(ctx context.Context, sport livematch.Sport, leagueID int64) (res leagueResult) {
	defer func() {
		if r := recover(); r != nil {
			res = leagueResult{err: fmt.Errorf("%w: league=%d panicked: %v", ErrUpstreamFetch, leagueID, r)}
		}
	}()

	reqCtx, cancel := context.WithTimeout(ctx, s.upstreamTimeout)
	defer cancel()

	matches, payloads, err := s.basketball.FetchLiveGames(reqCtx, sport, leagueID)
	if err != nil {
		return leagueResult{err: asUpstreamError(err)}
	}
	return leagueResult{matches: matches, payloads: payloads}
}

// asUpstreamError makes sure provider failures carry ErrUpstreamFetch unless
// they already map to a more specific sentinel.
func asUpstreamError(err error) error {
	switch {
	case errors.Is(err, ErrConfiguration), errors.Is(err, ErrUpstreamFetch):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrUpstreamFetch, err)
	}
}

func (s *LiveMatchService) afterFetch(sport livematch.Sport, snapshot livematch.Snapshot, payloads []rawdata.Payload) {
	if s.background == nil {
		return
	}

	if s.archive != nil && len(payloads) > 0 {
		if err := s.background.Submit("archive_live_payloads", func(ctx context.Context) error {
			return s.archive.UpsertMany(ctx, payloads)
		}); err != nil {
			s.logger.Warn("skip raw payload archive", "sport", sport.String(), "error", err)
		}
	}

	if s.publisher != nil {
		if err := s.background.Submit("publish_live_snapshot", func(ctx context.Context) error {
			return s.publisher.PublishSnapshot(ctx, snapshot)
		}); err != nil {
			s.logger.Warn("skip live snapshot publish", "sport", sport.String(), "error", err)
		}
	}
}
