package livematch

import (
	"context"

	"github.com/riskibarqy/livescore/internal/domain/rawdata"
)

// FootballProvider returns every live soccer fixture.
type FootballProvider interface {
	FetchLiveFixtures(ctx context.Context) ([]Match, []rawdata.Payload, error)
}

// BasketballProvider returns live games, restricted to one league when
// leagueID is non-zero. Matches are tagged with sport.
type BasketballProvider interface {
	FetchLiveGames(ctx context.Context, sport Sport, leagueID int64) ([]Match, []rawdata.Payload, error)
}

// SnapshotPublisher fans a fresh snapshot out to downstream consumers.
type SnapshotPublisher interface {
	PublishSnapshot(ctx context.Context, snapshot Snapshot) error
}
