package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/livescore/internal/domain/livematch"
	"github.com/riskibarqy/livescore/internal/domain/rawdata"
	livematchmock "github.com/riskibarqy/livescore/internal/mocks/domain/livematch"
	rawdatamock "github.com/riskibarqy/livescore/internal/mocks/domain/rawdata"
	"github.com/riskibarqy/livescore/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

type liveClock struct {
	mu  sync.Mutex
	now time.Time
}

func newLiveClock() *liveClock {
	return &liveClock{now: time.Date(2026, 3, 14, 19, 45, 0, 0, time.UTC)}
}

func (c *liveClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *liveClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type inlineRunner struct {
	mu   sync.Mutex
	jobs []string
	errs []error
}

func (r *inlineRunner) Submit(name string, job func(ctx context.Context) error) error {
	err := job(context.Background())
	r.mu.Lock()
	r.jobs = append(r.jobs, name)
	r.errs = append(r.errs, err)
	r.mu.Unlock()
	return nil
}

func (r *inlineRunner) Jobs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.jobs...)
}

type recordingLiveMetrics struct {
	mu       sync.Mutex
	hits     int
	misses   int
	failures []int64
}

func (m *recordingLiveMetrics) ObserveCacheLookup(_ string, hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}

func (m *recordingLiveMetrics) ObserveLeagueFailure(_ string, leagueID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, leagueID)
}

func soccerMatch(id int64, home, away string) livematch.Match {
	return livematch.Match{
		ID:     id,
		Sport:  livematch.SportSoccer,
		Home:   livematch.Team{Name: home},
		Away:   livematch.Team{Name: away},
		Status: livematch.Status{Short: "1H", Long: "First Half"},
		Events: []livematch.Event{},
	}
}

func nbaGame(id int64, home, away string) livematch.Match {
	return livematch.Match{
		ID:     id,
		Sport:  livematch.SportNBA,
		Home:   livematch.Team{Name: home},
		Away:   livematch.Team{Name: away},
		Events: []livematch.Event{},
		Basketball: &livematch.BasketballDetails{
			Quarter: 2,
			QuarterScores: livematch.QuarterScores{
				Home: []int{25, 20},
				Away: []int{22, 27},
			},
		},
	}
}

func newTestLiveService(
	football livematch.FootballProvider,
	basketball livematch.BasketballProvider,
	clock *liveClock,
	opts ...LiveMatchServiceOption,
) *LiveMatchService {
	cfg := LiveMatchServiceConfig{
		CacheTTL:         30 * time.Second,
		NBALeagueIDs:     []int64{12, 422, 423},
		UpstreamTimeout:  time.Second,
		APIKeyConfigured: true,
	}
	if clock != nil {
		cfg.Now = clock.Now
	}
	opts = append([]LiveMatchServiceOption{WithLiveMatchLogger(logging.NewNop())}, opts...)
	return NewLiveMatchService(football, basketball, cfg, opts...)
}

func matchIDs(matches []livematch.Match) []int64 {
	out := make([]int64, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.ID)
	}
	return out
}

func TestLiveMatchService_SecondCallWithinTTLUsesCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := newLiveClock()
	football := livematchmock.NewFootballProvider(t)
	basketball := livematchmock.NewBasketballProvider(t)
	football.On("FetchLiveFixtures", mock.Anything).
		Return([]livematch.Match{soccerMatch(1, "Arsenal", "Chelsea")}, nil, nil).
		Once()

	svc := newTestLiveService(football, basketball, clock)

	first, err := svc.GetLiveMatches(ctx, livematch.SportSoccer, livematch.TeamFilter{})
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if first.Cached {
		t.Fatalf("expected first call to miss cache")
	}

	clock.Advance(29 * time.Second)
	second, err := svc.GetLiveMatches(ctx, livematch.SportSoccer, livematch.TeamFilter{})
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if !second.Cached {
		t.Fatalf("expected second call to hit cache")
	}
	if !second.FetchedAt.Equal(first.FetchedAt) {
		t.Fatalf("expected same fetchedAt, got %s and %s", first.FetchedAt, second.FetchedAt)
	}
	football.AssertNumberOfCalls(t, "FetchLiveFixtures", 1)
}

func TestLiveMatchService_RefetchesAfterTTL(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := newLiveClock()
	football := livematchmock.NewFootballProvider(t)
	basketball := livematchmock.NewBasketballProvider(t)
	football.On("FetchLiveFixtures", mock.Anything).
		Return([]livematch.Match{soccerMatch(1, "Arsenal", "Chelsea")}, nil, nil).
		Once()
	football.On("FetchLiveFixtures", mock.Anything).
		Return([]livematch.Match{soccerMatch(1, "Arsenal", "Chelsea"), soccerMatch(2, "Inter", "Milan")}, nil, nil).
		Once()

	svc := newTestLiveService(football, basketball, clock)

	if _, err := svc.GetLiveMatches(ctx, livematch.SportSoccer, livematch.TeamFilter{}); err != nil {
		t.Fatalf("first call: %v", err)
	}
	clock.Advance(30 * time.Second)

	got, err := svc.GetLiveMatches(ctx, livematch.SportSoccer, livematch.TeamFilter{})
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if got.Cached {
		t.Fatalf("expected refetch after ttl")
	}
	if len(got.Matches) != 2 {
		t.Fatalf("expected refreshed list of 2 matches, got %d", len(got.Matches))
	}
	if !got.FetchedAt.Equal(clock.Now()) {
		t.Fatalf("unexpected fetchedAt: %s", got.FetchedAt)
	}
	football.AssertNumberOfCalls(t, "FetchLiveFixtures", 2)
}

func TestLiveMatchService_TeamFilterAppliedAfterCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	football := livematchmock.NewFootballProvider(t)
	basketball := livematchmock.NewBasketballProvider(t)
	all := []livematch.Match{
		soccerMatch(1, "Arsenal", "Chelsea"),
		soccerMatch(2, "Liverpool", "Everton"),
		soccerMatch(3, "Real Madrid", "Barcelona"),
		soccerMatch(4, "Chelsea U21", "Fulham U21"),
	}
	football.On("FetchLiveFixtures", mock.Anything).Return(all, nil, nil).Once()

	svc := newTestLiveService(football, basketball, newLiveClock())

	byChelsea, err := svc.GetLiveMatches(ctx, livematch.SportSoccer, livematch.NewTeamFilter("CHELSEA", "everton"))
	if err != nil {
		t.Fatalf("filtered call: %v", err)
	}
	if got := matchIDs(byChelsea.Matches); fmt.Sprint(got) != "[1 2 4]" {
		t.Fatalf("unexpected filtered ids: %v", got)
	}

	byMadrid, err := svc.GetLiveMatches(ctx, livematch.SportSoccer, livematch.NewTeamFilter("madrid"))
	if err != nil {
		t.Fatalf("second filtered call: %v", err)
	}
	if got := matchIDs(byMadrid.Matches); fmt.Sprint(got) != "[3]" {
		t.Fatalf("unexpected filtered ids: %v", got)
	}
	if !byMadrid.Cached {
		t.Fatalf("expected different filter to reuse cached snapshot")
	}

	unfiltered, err := svc.GetLiveMatches(ctx, livematch.SportSoccer, livematch.TeamFilter{})
	if err != nil {
		t.Fatalf("unfiltered call: %v", err)
	}
	if len(unfiltered.Matches) != len(all) {
		t.Fatalf("expected cached snapshot untouched by filters, got %d matches", len(unfiltered.Matches))
	}
	football.AssertNumberOfCalls(t, "FetchLiveFixtures", 1)
}

func TestLiveMatchService_NBAUnionInLeagueOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	football := livematchmock.NewFootballProvider(t)
	basketball := livematchmock.NewBasketballProvider(t)
	basketball.On("FetchLiveGames", mock.Anything, livematch.SportNBA, int64(12)).
		Return([]livematch.Match{nbaGame(101, "Lakers", "Celtics"), nbaGame(102, "Knicks", "Heat")}, nil, nil).
		Once()
	basketball.On("FetchLiveGames", mock.Anything, livematch.SportNBA, int64(422)).
		Return([]livematch.Match{}, nil, nil).
		Once()
	basketball.On("FetchLiveGames", mock.Anything, livematch.SportNBA, int64(423)).
		Return([]livematch.Match{nbaGame(301, "Bucks", "Suns")}, nil, nil).
		Once()

	svc := newTestLiveService(football, basketball, newLiveClock())

	got, err := svc.GetLiveMatches(ctx, livematch.SportNBA, livematch.TeamFilter{})
	if err != nil {
		t.Fatalf("nba call: %v", err)
	}
	if ids := matchIDs(got.Matches); fmt.Sprint(ids) != "[101 102 301]" {
		t.Fatalf("unexpected union order: %v", ids)
	}
	if got.Partial || len(got.FailedLeagueIDs) != 0 {
		t.Fatalf("expected complete result, got partial=%v failed=%v", got.Partial, got.FailedLeagueIDs)
	}
	if got.Matches[0].Basketball == nil || got.Matches[0].Basketball.Quarter != 2 {
		t.Fatalf("expected basketball details to survive the union")
	}
}

func TestLiveMatchService_NBADedupesAcrossLeagues(t *testing.T) {
	t.Parallel()

	football := livematchmock.NewFootballProvider(t)
	basketball := livematchmock.NewBasketballProvider(t)
	basketball.On("FetchLiveGames", mock.Anything, livematch.SportNBA, int64(12)).
		Return([]livematch.Match{nbaGame(101, "Lakers", "Celtics")}, nil, nil).Once()
	basketball.On("FetchLiveGames", mock.Anything, livematch.SportNBA, int64(422)).
		Return([]livematch.Match{nbaGame(101, "Lakers", "Celtics"), nbaGame(202, "Nets", "Bulls")}, nil, nil).Once()
	basketball.On("FetchLiveGames", mock.Anything, livematch.SportNBA, int64(423)).
		Return(nil, nil, nil).Once()

	svc := newTestLiveService(football, basketball, newLiveClock())

	got, err := svc.GetLiveMatches(context.Background(), livematch.SportNBA, livematch.TeamFilter{})
	if err != nil {
		t.Fatalf("nba call: %v", err)
	}
	if ids := matchIDs(got.Matches); fmt.Sprint(ids) != "[101 202]" {
		t.Fatalf("expected duplicate id dropped, got %v", ids)
	}
}

func TestLiveMatchService_NBAPartialFailureDegrades(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	football := livematchmock.NewFootballProvider(t)
	basketball := livematchmock.NewBasketballProvider(t)
	metrics := &recordingLiveMetrics{}

	basketball.On("FetchLiveGames", mock.Anything, livematch.SportNBA, int64(12)).
		Return([]livematch.Match{nbaGame(101, "Lakers", "Celtics")}, nil, nil).
		Once()
	basketball.On("FetchLiveGames", mock.Anything, livematch.SportNBA, int64(422)).
		Return(func(ctx context.Context, _ livematch.Sport, _ int64) ([]livematch.Match, []rawdata.Payload, error) {
			<-ctx.Done()
			return nil, nil, ctx.Err()
		}).
		Once()
	basketball.On("FetchLiveGames", mock.Anything, livematch.SportNBA, int64(423)).
		Return([]livematch.Match{nbaGame(301, "Bucks", "Suns")}, nil, nil).
		Once()

	svc := NewLiveMatchService(football, basketball, LiveMatchServiceConfig{
		NBALeagueIDs:     []int64{12, 422, 423},
		UpstreamTimeout:  50 * time.Millisecond,
		APIKeyConfigured: true,
	}, WithLiveMatchLogger(logging.NewNop()), WithLiveMatchMetrics(metrics))

	got, err := svc.GetLiveMatches(ctx, livematch.SportNBA, livematch.TeamFilter{})
	if err != nil {
		t.Fatalf("expected partial success, got error: %v", err)
	}
	if len(got.Matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got.Matches))
	}
	if !got.Partial || fmt.Sprint(got.FailedLeagueIDs) != "[422]" {
		t.Fatalf("expected partial result with league 422 failed, got partial=%v failed=%v", got.Partial, got.FailedLeagueIDs)
	}
	if fmt.Sprint(metrics.failures) != "[422]" {
		t.Fatalf("expected league failure metric, got %v", metrics.failures)
	}

	again, err := svc.GetLiveMatches(ctx, livematch.SportNBA, livematch.TeamFilter{})
	if err != nil {
		t.Fatalf("cached partial call: %v", err)
	}
	if !again.Cached || !again.Partial {
		t.Fatalf("expected cached partial snapshot, got cached=%v partial=%v", again.Cached, again.Partial)
	}
}

func TestLiveMatchService_NBAAllLeaguesFailedIsEmptyAndNotCached(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	football := livematchmock.NewFootballProvider(t)
	basketball := livematchmock.NewBasketballProvider(t)
	boom := fmt.Errorf("%w: provider status=503", ErrUpstreamFetch)
	basketball.On("FetchLiveGames", mock.Anything, livematch.SportNBA, mock.AnythingOfType("int64")).
		Return(nil, nil, boom).
		Times(6)

	svc := newTestLiveService(football, basketball, newLiveClock())

	for i := 0; i < 2; i++ {
		got, err := svc.GetLiveMatches(ctx, livematch.SportNBA, livematch.TeamFilter{})
		if err != nil {
			t.Fatalf("call %d: expected degraded success, got %v", i, err)
		}
		if len(got.Matches) != 0 || got.Cached {
			t.Fatalf("call %d: expected empty uncached result, got %d matches cached=%v", i, len(got.Matches), got.Cached)
		}
		if len(got.FailedLeagueIDs) != 3 {
			t.Fatalf("call %d: expected 3 failed leagues, got %v", i, got.FailedLeagueIDs)
		}
	}
}

func TestLiveMatchService_SoccerUpstreamFailureIsHard(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	football := livematchmock.NewFootballProvider(t)
	basketball := livematchmock.NewBasketballProvider(t)
	football.On("FetchLiveFixtures", mock.Anything).
		Return(nil, nil, fmt.Errorf("%w: provider status=500", ErrUpstreamFetch)).
		Once()
	football.On("FetchLiveFixtures", mock.Anything).
		Return([]livematch.Match{soccerMatch(7, "Ajax", "PSV")}, nil, nil).
		Once()

	svc := newTestLiveService(football, basketball, newLiveClock())

	got, err := svc.GetLiveMatches(ctx, livematch.SportSoccer, livematch.TeamFilter{})
	if !errors.Is(err, ErrUpstreamFetch) {
		t.Fatalf("expected upstream fetch error, got err=%v result=%+v", err, got)
	}

	recovered, err := svc.GetLiveMatches(ctx, livematch.SportSoccer, livematch.TeamFilter{})
	if err != nil {
		t.Fatalf("expected failure not to be cached: %v", err)
	}
	if recovered.Cached || len(recovered.Matches) != 1 {
		t.Fatalf("unexpected recovered result: %+v", recovered)
	}
}

func TestLiveMatchService_BasketballUsesAllLeaguesAndWrapsErrors(t *testing.T) {
	t.Parallel()

	football := livematchmock.NewFootballProvider(t)
	basketball := livematchmock.NewBasketballProvider(t)
	basketball.On("FetchLiveGames", mock.Anything, livematch.SportBasketball, int64(0)).
		Return(nil, nil, errors.New("connection reset")).
		Once()

	svc := newTestLiveService(football, basketball, newLiveClock())

	_, err := svc.GetLiveMatches(context.Background(), livematch.SportBasketball, livematch.TeamFilter{})
	if !errors.Is(err, ErrUpstreamFetch) {
		t.Fatalf("expected raw provider error to be tagged as upstream failure, got %v", err)
	}
}

func TestLiveMatchService_MissingAPIKey(t *testing.T) {
	t.Parallel()

	football := livematchmock.NewFootballProvider(t)
	basketball := livematchmock.NewBasketballProvider(t)

	svc := NewLiveMatchService(football, basketball, LiveMatchServiceConfig{}, WithLiveMatchLogger(logging.NewNop()))

	for _, sport := range livematch.Sports() {
		if _, err := svc.GetLiveMatches(context.Background(), sport, livematch.TeamFilter{}); !errors.Is(err, ErrConfiguration) {
			t.Fatalf("sport=%s: expected configuration error, got %v", sport, err)
		}
	}
}

func TestLiveMatchService_NBAConfigurationErrorIsNotSwallowed(t *testing.T) {
	t.Parallel()

	football := livematchmock.NewFootballProvider(t)
	basketball := livematchmock.NewBasketballProvider(t)
	basketball.On("FetchLiveGames", mock.Anything, livematch.SportNBA, mock.AnythingOfType("int64")).
		Return(nil, nil, fmt.Errorf("%w: APISPORTS_API_KEY is not set", ErrConfiguration)).
		Times(3)

	svc := newTestLiveService(football, basketball, newLiveClock())

	if _, err := svc.GetLiveMatches(context.Background(), livematch.SportNBA, livematch.TeamFilter{}); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestLiveMatchService_UnknownSport(t *testing.T) {
	t.Parallel()

	svc := newTestLiveService(livematchmock.NewFootballProvider(t), livematchmock.NewBasketballProvider(t), nil)

	_, err := svc.GetLiveMatches(context.Background(), livematch.Sport("cricket"), livematch.TeamFilter{})
	if !errors.Is(err, ErrInvalidInput) || !errors.Is(err, livematch.ErrUnknownSport) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestLiveMatchService_ConcurrentMissesShareOneFetch(t *testing.T) {
	t.Parallel()

	football := livematchmock.NewFootballProvider(t)
	basketball := livematchmock.NewBasketballProvider(t)
	var calls atomic.Int32
	football.On("FetchLiveFixtures", mock.Anything).
		Return(func(context.Context) ([]livematch.Match, []rawdata.Payload, error) {
			calls.Add(1)
			time.Sleep(30 * time.Millisecond)
			return []livematch.Match{soccerMatch(1, "Arsenal", "Chelsea")}, nil, nil
		}).
		Maybe()

	svc := newTestLiveService(football, basketball, nil)

	const workers = 16
	start := make(chan struct{})
	errCh := make(chan error, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		filter := livematch.NewTeamFilter("arsenal")
		if i%2 == 0 {
			filter = livematch.NewTeamFilter("chelsea")
		}
		go func() {
			defer wg.Done()
			<-start
			got, err := svc.GetLiveMatches(context.Background(), livematch.SportSoccer, filter)
			if err != nil {
				errCh <- err
				return
			}
			if len(got.Matches) != 1 {
				errCh <- fmt.Errorf("unexpected match count %d", len(got.Matches))
			}
		}()
	}
	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Fatalf("concurrent call failed: %v", err)
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("expected single upstream call, got %d", got)
	}
}

func TestLiveMatchService_CancelledCallerDoesNotFailWaiters(t *testing.T) {
	t.Parallel()

	football := livematchmock.NewFootballProvider(t)
	basketball := livematchmock.NewBasketballProvider(t)
	started := make(chan struct{}, 3)
	release := make(chan struct{})
	basketball.On("FetchLiveGames", mock.Anything, livematch.SportNBA, mock.AnythingOfType("int64")).
		Return(func(ctx context.Context, _ livematch.Sport, leagueID int64) ([]livematch.Match, []rawdata.Payload, error) {
			started <- struct{}{}
			select {
			case <-release:
			case <-ctx.Done():
				return nil, nil, ctx.Err()
			}
			return []livematch.Match{nbaGame(leagueID*10, "Lakers", "Celtics")}, nil, nil
		}).
		Times(3)

	svc := newTestLiveService(football, basketball, nil)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		_, _ = svc.GetLiveMatches(firstCtx, livematch.SportNBA, livematch.TeamFilter{})
	}()
	for i := 0; i < 3; i++ {
		<-started
	}

	type outcome struct {
		result LiveMatches
		err    error
	}
	secondDone := make(chan outcome, 1)
	go func() {
		got, err := svc.GetLiveMatches(context.Background(), livematch.SportNBA, livematch.TeamFilter{})
		secondDone <- outcome{result: got, err: err}
	}()

	time.Sleep(20 * time.Millisecond)
	cancelFirst()
	time.Sleep(20 * time.Millisecond)
	close(release)

	got := <-secondDone
	<-firstDone
	if got.err != nil {
		t.Fatalf("second caller: unexpected error: %v", got.err)
	}
	if got.result.Partial || len(got.result.FailedLeagueIDs) != 0 {
		t.Fatalf("expected complete result, got partial=%v failed=%v", got.result.Partial, got.result.FailedLeagueIDs)
	}
	if ids := matchIDs(got.result.Matches); fmt.Sprint(ids) != "[120 4220 4230]" {
		t.Fatalf("unexpected matches: %v", ids)
	}
}

func TestLiveMatchService_FreshLoadArchivesAndPublishes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	football := livematchmock.NewFootballProvider(t)
	basketball := livematchmock.NewBasketballProvider(t)
	archive := rawdatamock.NewRepository(t)
	publisher := livematchmock.NewSnapshotPublisher(t)
	runner := &inlineRunner{}

	payload := rawdata.NewPayload(rawdata.SourceAPIFootball, rawdata.EntityLiveFixtures, "fixtures?live=all", "soccer", 0, []byte(`{"response":[]}`), time.Now())
	football.On("FetchLiveFixtures", mock.Anything).
		Return([]livematch.Match{soccerMatch(1, "Arsenal", "Chelsea")}, []rawdata.Payload{payload}, nil).
		Once()
	archive.On("UpsertMany", mock.Anything, []rawdata.Payload{payload}).Return(nil).Once()
	publisher.On("PublishSnapshot", mock.Anything, mock.MatchedBy(func(s livematch.Snapshot) bool {
		return s.Sport == livematch.SportSoccer && len(s.Matches) == 1
	})).Return(errors.New("redis unavailable")).Once()

	svc := newTestLiveService(football, basketball, newLiveClock(),
		WithRawArchive(archive),
		WithSnapshotPublisher(publisher),
		WithBackgroundRunner(runner),
	)

	if _, err := svc.GetLiveMatches(ctx, livematch.SportSoccer, livematch.TeamFilter{}); err != nil {
		t.Fatalf("publish failure must not reach the caller: %v", err)
	}
	if _, err := svc.GetLiveMatches(ctx, livematch.SportSoccer, livematch.TeamFilter{}); err != nil {
		t.Fatalf("cached call: %v", err)
	}

	if jobs := runner.Jobs(); fmt.Sprint(jobs) != "[archive_live_payloads publish_live_snapshot]" {
		t.Fatalf("expected one archive and one publish job, got %v", jobs)
	}
}

func TestLiveMatchService_ClearForcesRefetch(t *testing.T) {
	t.Parallel()

	football := livematchmock.NewFootballProvider(t)
	basketball := livematchmock.NewBasketballProvider(t)
	metrics := &recordingLiveMetrics{}
	football.On("FetchLiveFixtures", mock.Anything).
		Return([]livematch.Match{soccerMatch(1, "Arsenal", "Chelsea")}, nil, nil).
		Twice()

	svc := newTestLiveService(football, basketball, newLiveClock(), WithLiveMatchMetrics(metrics))
	ctx := context.Background()

	if _, err := svc.GetLiveMatches(ctx, livematch.SportSoccer, livematch.TeamFilter{}); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if removed := svc.Clear(); removed != 1 {
		t.Fatalf("expected one entry cleared, got %d", removed)
	}
	if _, err := svc.GetLiveMatches(ctx, livematch.SportSoccer, livematch.TeamFilter{}); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if metrics.misses != 2 || metrics.hits != 0 {
		t.Fatalf("unexpected cache metrics hits=%d misses=%d", metrics.hits, metrics.misses)
	}
}
