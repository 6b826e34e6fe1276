package postgres

import (
	"context"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/ucl-replacement-race/internal/domain/rawdata"
	qb "github.com/riskibarqy/ucl-replacement-race/internal/platform/querybuilder"
)

const (
	historyTable = "snapshot_payload_history"
	latestTable  = "snapshot_payload_latest"
)

const upsertLatestSuffix = `ON CONFLICT (source, entity_type, entity_key)
DO UPDATE SET
    run_id = EXCLUDED.run_id,
    league_id = EXCLUDED.league_id,
    season = EXCLUDED.season,
    request_url = EXCLUDED.request_url,
    item_count = EXCLUDED.item_count,
    payload = EXCLUDED.payload,
    payload_hash = EXCLUDED.payload_hash,
    fetched_at = EXCLUDED.fetched_at,
    updated_at = NOW()
WHERE snapshot_payload_latest.payload_hash IS DISTINCT FROM EXCLUDED.payload_hash
   OR snapshot_payload_latest.fetched_at < EXCLUDED.fetched_at`

// RawDataRepository keeps every fetched payload in a history table and the
// newest one per entity in a latest table.
type RawDataRepository struct {
	db *sqlx.DB
}

func NewRawDataRepository(db *sqlx.DB) *RawDataRepository {
	return &RawDataRepository{db: db}
}

func (r *RawDataRepository) Archive(ctx context.Context, items []rawdata.Payload) error {
	if len(items) == 0 {
		return nil
	}

	historySQL, historyArgs, err := buildHistoryInsert(items)
	if err != nil {
		return crerr.Wrap(err, "build history insert")
	}
	latestSQL, latestArgs, err := buildLatestUpsert(items)
	if err != nil {
		return crerr.Wrap(err, "build latest upsert")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return crerr.Wrap(err, "begin tx archive payloads")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, historySQL, historyArgs...); err != nil {
		return crerr.Wrapf(err, "insert %d payload history rows", len(items))
	}
	if _, err := tx.ExecContext(ctx, latestSQL, latestArgs...); err != nil {
		return crerr.Wrap(err, "upsert latest payloads")
	}

	if err := tx.Commit(); err != nil {
		return crerr.Wrap(err, "commit archive payloads tx")
	}
	return nil
}

type payloadModel struct {
	RunID       string    `db:"run_id"`
	Source      string    `db:"source"`
	EntityType  string    `db:"entity_type"`
	EntityKey   string    `db:"entity_key"`
	LeagueID    *int64    `db:"league_id"`
	Season      *int      `db:"season"`
	RequestURL  string    `db:"request_url"`
	ItemCount   int       `db:"item_count"`
	Payload     string    `db:"payload"`
	PayloadHash string    `db:"payload_hash"`
	FetchedAt   time.Time `db:"fetched_at"`
}

func toPayloadModel(item rawdata.Payload) payloadModel {
	model := payloadModel{
		RunID:       item.RunID,
		Source:      item.Source,
		EntityType:  item.EntityType,
		EntityKey:   item.EntityKey,
		RequestURL:  item.RequestURL,
		ItemCount:   item.ItemCount,
		Payload:     item.PayloadJSON,
		PayloadHash: item.PayloadHash,
		FetchedAt:   item.FetchedAt.UTC(),
	}
	if item.LeagueID > 0 {
		leagueID := item.LeagueID
		model.LeagueID = &leagueID
	}
	if item.Season > 0 {
		season := item.Season
		model.Season = &season
	}
	if model.FetchedAt.IsZero() {
		model.FetchedAt = time.Now().UTC()
	}
	return model
}

func buildHistoryInsert(items []rawdata.Payload) (string, []any, error) {
	models := make([]payloadModel, 0, len(items))
	for _, item := range items {
		models = append(models, toPayloadModel(item))
	}
	return qb.InsertModels(historyTable, models, "")
}

// buildLatestUpsert keeps the last payload per entity; postgres rejects a
// statement that updates the same conflict target twice.
func buildLatestUpsert(items []rawdata.Payload) (string, []any, error) {
	type key struct{ source, entityType, entityKey string }

	index := make(map[key]int, len(items))
	models := make([]payloadModel, 0, len(items))
	for _, item := range items {
		k := key{item.Source, item.EntityType, item.EntityKey}
		model := toPayloadModel(item)
		if pos, ok := index[k]; ok {
			models[pos] = model
			continue
		}
		index[k] = len(models)
		models = append(models, model)
	}
	return qb.InsertModels(latestTable, models, upsertLatestSuffix)
}
