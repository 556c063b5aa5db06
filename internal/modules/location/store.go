// README: Location store backed by Redis GEO plus a per-device hash for fix metadata.
package location

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"wayfarer/internal/types"
)

const (
	deviceGeoKey   = "device:positions"
	deviceMetaKey  = "device:%s:fix"
	deviceMetaTTL  = 24 * time.Hour
	fieldAccuracy  = "accuracy"
	fieldTimestamp = "ts_ms"
)

type Store struct {
	redis *redis.Client
}

func NewStore(redis *redis.Client) *Store {
	return &Store{redis: redis}
}

func (s *Store) Save(ctx context.Context, snap Snapshot) error {
	meta := fmt.Sprintf(deviceMetaKey, string(snap.DeviceID))
	pipe := s.redis.TxPipeline()
	pipe.GeoAdd(ctx, deviceGeoKey, &redis.GeoLocation{
		Name:      string(snap.DeviceID),
		Longitude: snap.Position.Lng,
		Latitude:  snap.Position.Lat,
	})
	pipe.HSet(ctx, meta,
		fieldAccuracy, strconv.FormatFloat(snap.Position.Accuracy, 'f', 2, 64),
		fieldTimestamp, strconv.FormatInt(snap.Position.Timestamp.UnixMilli(), 10),
	)
	pipe.Expire(ctx, meta, deviceMetaTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Store) Load(ctx context.Context, id types.ID) (types.Position, error) {
	res, err := s.redis.GeoPos(ctx, deviceGeoKey, string(id)).Result()
	if err != nil {
		return types.Position{}, err
	}
	if len(res) == 0 || res[0] == nil {
		return types.Position{}, ErrNotFound
	}
	pos := types.Position{Point: types.Point{Lat: res[0].Latitude, Lng: res[0].Longitude}}

	meta, err := s.redis.HGetAll(ctx, fmt.Sprintf(deviceMetaKey, string(id))).Result()
	if err != nil {
		return types.Position{}, err
	}
	if v, ok := meta[fieldAccuracy]; ok {
		pos.Accuracy, _ = strconv.ParseFloat(v, 64)
	}
	if v, ok := meta[fieldTimestamp]; ok {
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
			pos.Timestamp = time.UnixMilli(ms).UTC()
		}
	}
	return pos, nil
}
