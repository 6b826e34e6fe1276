package snapshot

import (
	"context"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"

	"github.com/riskibarqy/ucl-replacement-race/internal/domain/coefficient"
)

type CoefficientRepository struct {
	reader   *Reader
	location string
}

func NewCoefficientRepository(reader *Reader, location string) *CoefficientRepository {
	return &CoefficientRepository{reader: reader, location: location}
}

func (r *CoefficientRepository) Latest(ctx context.Context) (coefficient.Snapshot, bool, error) {
	raw, found, err := r.reader.Read(ctx, r.location)
	if err != nil || !found {
		return coefficient.Snapshot{}, false, err
	}

	var out coefficient.Snapshot
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return coefficient.Snapshot{}, false, errors.Wrapf(err, "decode coefficient snapshot %s", r.location)
	}
	return out, true, nil
}
