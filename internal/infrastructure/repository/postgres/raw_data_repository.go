package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/livescore/internal/domain/rawdata"
	qb "github.com/riskibarqy/livescore/internal/platform/querybuilder"
)

const (
	rawPayloadTable     = "raw_data_payloads"
	rawPayloadBatchSize = 100
)

const rawPayloadUpsertSuffix = `ON CONFLICT (source, entity_type, entity_key)
DO UPDATE SET
    sport = EXCLUDED.sport,
    league_id = EXCLUDED.league_id,
    payload = EXCLUDED.payload,
    payload_hash = EXCLUDED.payload_hash,
    fetched_at = EXCLUDED.fetched_at,
    ingested_at = NOW()
WHERE raw_data_payloads.payload_hash IS DISTINCT FROM EXCLUDED.payload_hash
   OR raw_data_payloads.fetched_at < EXCLUDED.fetched_at`

type RawDataRepository struct {
	db *sqlx.DB
}

func NewRawDataRepository(db *sqlx.DB) *RawDataRepository {
	return &RawDataRepository{db: db}
}

func (r *RawDataRepository) UpsertMany(ctx context.Context, items []rawdata.Payload) error {
	items = latestPerKey(items)
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert raw payloads: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for start := 0; start < len(items); start += rawPayloadBatchSize {
		end := min(start+rawPayloadBatchSize, len(items))
		query, args, err := buildRawPayloadUpsert(items[start:end])
		if err != nil {
			return fmt.Errorf("build upsert raw payload query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert raw payloads batch=%d-%d: %w", start, end, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert raw payloads tx: %w", err)
	}

	return nil
}

func buildRawPayloadUpsert(items []rawdata.Payload) (string, []any, error) {
	models := make([]any, 0, len(items))
	for _, item := range items {
		models = append(models, rawDataPayloadInsertModel{
			Source:      item.Source,
			EntityType:  item.EntityType,
			EntityKey:   item.EntityKey,
			Sport:       nullableString(item.Sport),
			LeagueID:    nullableInt64(item.LeagueID),
			Payload:     item.PayloadJSON,
			PayloadHash: item.PayloadHash,
			FetchedAt:   item.FetchedAt,
		})
	}
	return qb.InsertModels(rawPayloadTable, models, rawPayloadUpsertSuffix)
}

// latestPerKey drops repeated conflict keys, keeping the most recent fetch.
// Postgres rejects one INSERT that touches the same conflict target twice.
func latestPerKey(items []rawdata.Payload) []rawdata.Payload {
	type key struct{ source, entityType, entityKey string }

	index := make(map[key]int, len(items))
	out := make([]rawdata.Payload, 0, len(items))
	for _, item := range items {
		k := key{item.Source, item.EntityType, item.EntityKey}
		if pos, ok := index[k]; ok {
			if item.FetchedAt.After(out[pos].FetchedAt) {
				out[pos] = item
			}
			continue
		}
		index[k] = len(out)
		out = append(out, item)
	}
	return out
}

type rawDataPayloadInsertModel struct {
	ID          int64     `db:"id,readonly"`
	Source      string    `db:"source"`
	EntityType  string    `db:"entity_type"`
	EntityKey   string    `db:"entity_key"`
	Sport       *string   `db:"sport"`
	LeagueID    *int64    `db:"league_id"`
	Payload     string    `db:"payload"`
	PayloadHash string    `db:"payload_hash"`
	FetchedAt   time.Time `db:"fetched_at"`
}
