package rawdata

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

const (
	SourceAPIFootball   = "api-football"
	SourceAPIBasketball = "api-basketball"

	EntityLiveFixtures = "live_fixtures"
	EntityLiveGames    = "live_games"
)

// Payload is one upstream response body kept verbatim for auditing.
type Payload struct {
	Source      string
	EntityType  string
	EntityKey   string
	Sport       string
	LeagueID    int64
	PayloadJSON string
	PayloadHash string
	FetchedAt   time.Time
}

func NewPayload(source, entityType, entityKey, sport string, leagueID int64, body []byte, fetchedAt time.Time) Payload {
	return Payload{
		Source:      source,
		EntityType:  entityType,
		EntityKey:   entityKey,
		Sport:       sport,
		LeagueID:    leagueID,
		PayloadJSON: string(body),
		PayloadHash: Hash(body),
		FetchedAt:   fetchedAt.UTC(),
	}
}

func Hash(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
