package snapshot

import (
	"context"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"

	"github.com/riskibarqy/ucl-replacement-race/internal/domain/europe"
)

type EuropeRepository struct {
	reader   *Reader
	location string
}

func NewEuropeRepository(reader *Reader, location string) *EuropeRepository {
	return &EuropeRepository{reader: reader, location: location}
}

func (r *EuropeRepository) Latest(ctx context.Context) (europe.Snapshot, bool, error) {
	raw, found, err := r.reader.Read(ctx, r.location)
	if err != nil || !found {
		return europe.Snapshot{}, false, err
	}

	var out europe.Snapshot
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return europe.Snapshot{}, false, errors.Wrapf(err, "decode european activity snapshot %s", r.location)
	}
	return out, true, nil
}
