// Package redis is a shared ledger working set for multi-instance
// deployments. Appends use optimistic WATCH/MULTI on the asset tip key.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/redis/go-redis/v9"

	"assetcore/internal/ledger"
	"assetcore/pkg/platform/sentinel"
)

const (
	keyPrefix         = "ledger:"
	orderKey          = keyPrefix + "order"
	DefaultCASRetries = 8
)

func eventKey(id string) string      { return keyPrefix + "event:" + id }
func assetKey(assetID string) string { return keyPrefix + "asset:" + assetID }
func tipKey(assetID string) string   { return keyPrefix + "tip:" + assetID }

// RedisStore implements ledger.Store. Capacity bounds the number of retained
// events across all assets; zero keeps everything. Tips are never evicted.
type RedisStore struct {
	client     *redis.Client
	capacity   int64
	casRetries int
	logger     *slog.Logger
}

type Option func(*RedisStore)

func WithCapacity(n int) Option {
	return func(s *RedisStore) {
		if n > 0 {
			s.capacity = int64(n)
		}
	}
}

// WithCASRetries bounds how often a conflicting append is retried before
// failing with sentinel.ErrConflict.
func WithCASRetries(n int) Option {
	return func(s *RedisStore) {
		if n > 0 {
			s.casRetries = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *RedisStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewRedis(client *redis.Client, opts ...Option) *RedisStore {
	s := &RedisStore{client: client, casRetries: DefaultCASRetries, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) Append(ctx context.Context, assetID string, build ledger.BuildFunc) (*ledger.Event, error) {
	tk := tipKey(assetID)
	for attempt := 0; attempt < s.casRetries; attempt++ {
		var (
			out      *ledger.Event
			buildErr error
		)
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			tip, err := readTip(ctx, tx, tk)
			if err != nil {
				return err
			}
			history := func(ctx context.Context) ([]ledger.Event, error) {
				return s.history(ctx, tx, assetID)
			}
			ev, err := build(ctx, tip, history)
			if err != nil || ev == nil {
				buildErr = err
				return nil
			}
			data, err := json.Marshal(ev)
			if err != nil {
				buildErr = fmt.Errorf("marshal event: %w", err)
				return nil
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, eventKey(ev.EventID), data, 0)
				pipe.LPush(ctx, assetKey(assetID), ev.EventID)
				pipe.HSet(ctx, tk, "event_id", ev.EventID, "event_hash", ev.EventHash)
				pipe.RPush(ctx, orderKey, ev.EventID)
				return nil
			})
			if err == nil {
				out = ev
			}
			return err
		}, tk)

		switch {
		case errors.Is(err, redis.TxFailedErr):
			continue
		case err != nil:
			return nil, classify(err)
		case buildErr != nil:
			return nil, buildErr
		}
		if out != nil {
			// The event is committed; a failed trim is finished by a later append.
			if err := s.evict(ctx); err != nil {
				s.logger.WarnContext(ctx, "ledger eviction failed after append",
					"event_id", out.EventID,
					"asset_id", assetID,
					"error", err,
				)
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("append for asset %s: %w", assetID, sentinel.ErrConflict)
}

type hashReader interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
}

func readTip(ctx context.Context, r hashReader, key string) (*ledger.Tip, error) {
	vals, err := r.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	if vals["event_id"] == "" {
		return nil, nil
	}
	return &ledger.Tip{EventID: vals["event_id"], EventHash: vals["event_hash"]}, nil
}

// evict drops the globally oldest events past capacity. The oldest global
// event is the oldest of its asset, i.e. the tail of the asset list.
func (s *RedisStore) evict(ctx context.Context) error {
	if s.capacity == 0 {
		return nil
	}
	for {
		n, err := s.client.LLen(ctx, orderKey).Result()
		if err != nil {
			return err
		}
		if n <= s.capacity {
			return nil
		}
		id, err := s.client.LPop(ctx, orderKey).Result()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		ev, err := s.Get(ctx, id)
		if errors.Is(err, sentinel.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.LRem(ctx, assetKey(ev.AssetID), -1, id)
			pipe.Del(ctx, eventKey(id))
			return nil
		})
		if err != nil {
			return err
		}
	}
}

type listReader interface {
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
}

func (s *RedisStore) History(ctx context.Context, assetID string) ([]ledger.Event, error) {
	return s.history(ctx, s.client, assetID)
}

func (s *RedisStore) history(ctx context.Context, r listReader, assetID string) ([]ledger.Event, error) {
	ids, err := r.LRange(ctx, assetKey(assetID), 0, -1).Result()
	if err != nil {
		return nil, classify(err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = eventKey(id)
	}
	vals, err := r.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, classify(err)
	}

	out := make([]ledger.Event, 0, len(vals))
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			// evicted between LRANGE and MGET
			continue
		}
		var ev ledger.Event
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			return nil, fmt.Errorf("decode event %s: %w", ids[i], err)
		}
		out = append(out, ev)
	}
	return out, nil
}

func (s *RedisStore) Get(ctx context.Context, eventID string) (*ledger.Event, error) {
	raw, err := s.client.Get(ctx, eventKey(eventID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, classify(err)
	}
	var ev ledger.Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, fmt.Errorf("decode event %s: %w", eventID, err)
	}
	return &ev, nil
}

func (s *RedisStore) Tip(ctx context.Context, assetID string) (*ledger.Tip, error) {
	tip, err := readTip(ctx, s.client, tipKey(assetID))
	if err != nil {
		return nil, classify(err)
	}
	return tip, nil
}

func classify(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, redis.ErrPoolTimeout) || errors.Is(err, redis.ErrClosed) {
		return errors.Join(err, sentinel.ErrUnavailable)
	}
	return err
}
