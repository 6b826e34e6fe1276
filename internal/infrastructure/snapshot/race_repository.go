package snapshot

import (
	"context"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"

	"github.com/riskibarqy/ucl-replacement-race/internal/domain/race"
	"github.com/riskibarqy/ucl-replacement-race/internal/usecase"
)

// RaceRepository reads race.json from a local path or RACE_URL.
type RaceRepository struct {
	reader   *Reader
	location string
}

func NewRaceRepository(reader *Reader, location string) *RaceRepository {
	return &RaceRepository{reader: reader, location: location}
}

func (r *RaceRepository) Location() string {
	return r.location
}

type raceDocument struct {
	race.Snapshot
	Race *[]race.Entry `json:"race"`
}

// Latest fails when the snapshot is absent or has no race list.
func (r *RaceRepository) Latest(ctx context.Context) (race.Snapshot, error) {
	raw, found, err := r.reader.Read(ctx, r.location)
	if err != nil {
		return race.Snapshot{}, err
	}
	if !found {
		return race.Snapshot{}, errors.Wrapf(usecase.ErrNotFound, "race snapshot %s", r.location)
	}

	var doc raceDocument
	if err := sonic.Unmarshal(raw, &doc); err != nil {
		return race.Snapshot{}, errors.Wrapf(err, "decode race snapshot %s", r.location)
	}
	if doc.Race == nil {
		return race.Snapshot{}, &usecase.SchemaViolationError{Source: r.location, Field: "race"}
	}

	out := doc.Snapshot
	out.Race = *doc.Race
	return out, nil
}
