//go:build integration

package redis_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"assetcore/internal/ledger"
	redisstore "assetcore/internal/ledger/store/redis"
	"assetcore/pkg/platform/sentinel"
	"assetcore/pkg/requestcontext"
	"assetcore/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	ctx   context.Context
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
}

func (s *RedisStoreSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) newService(opts ...redisstore.Option) (*redisstore.RedisStore, *ledger.Service) {
	store := redisstore.NewRedis(s.redis.Client, opts...)
	svc, err := ledger.New(store, ledger.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	s.Require().NoError(err)
	return store, svc
}

func (s *RedisStoreSuite) TestRoundTrip() {
	store, svc := s.newService()
	first, err := svc.LogEvent(s.ctx, ledger.EventTransferRecorded, "asset-r", "ops-1", ledger.TransferRecorded{FromOwner: "a", ToOwner: "b"})
	s.Require().NoError(err)
	second, err := svc.LogEvent(s.ctx, ledger.EventTransferRecorded, "asset-r", "ops-1", ledger.TransferRecorded{FromOwner: "b", ToOwner: "c"})
	s.Require().NoError(err)
	s.Equal(first.EventID, second.PrevEventID)

	history, err := svc.GetAssetHistory(s.ctx, "asset-r")
	s.Require().NoError(err)
	s.Require().Len(history, 2)
	s.Equal(second.EventID, history[0].EventID)
	s.Equal(ledger.TransferRecorded{FromOwner: "b", ToOwner: "c"}, history[0].Payload)

	tip, err := store.Tip(s.ctx, "asset-r")
	s.Require().NoError(err)
	s.Equal(second.EventID, tip.EventID)

	_, err = store.Get(s.ctx, "evt_missing")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// Writers racing on the same tip retry through WATCH until each one lands
// on a distinct parent.
func (s *RedisStoreSuite) TestConcurrentAppendsStayLinear() {
	_, svc := s.newService(redisstore.WithCASRetries(64))
	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.LogEvent(s.ctx, ledger.EventTransferRecorded, "asset-race", "ops-1", ledger.TransferRecorded{FromOwner: "a", ToOwner: "b"})
			s.NoError(err)
		}()
	}
	wg.Wait()

	history, err := svc.GetAssetHistory(s.ctx, "asset-race")
	s.Require().NoError(err)
	s.Require().Len(history, writers)
	seen := make(map[string]bool, writers)
	for i := 0; i < len(history)-1; i++ {
		s.Equal(history[i+1].EventID, history[i].PrevEventID)
		s.False(seen[history[i].PrevEventID])
		seen[history[i].PrevEventID] = true
	}
}

func (s *RedisStoreSuite) TestEvictionKeepsTip() {
	store, svc := s.newService(redisstore.WithCapacity(2))
	for i := 0; i < 3; i++ {
		_, err := svc.LogEvent(s.ctx, ledger.EventTransferRecorded, "asset-e", "ops-1", ledger.TransferRecorded{FromOwner: "a", ToOwner: "b"})
		s.Require().NoError(err)
	}
	last, err := svc.LogEvent(s.ctx, ledger.EventTransferRecorded, "asset-e", "ops-1", ledger.TransferRecorded{FromOwner: "b", ToOwner: "c"})
	s.Require().NoError(err)

	history, err := svc.GetAssetHistory(s.ctx, "asset-e")
	s.Require().NoError(err)
	s.Len(history, 2)
	s.Equal(last.EventID, history[0].EventID)

	tip, err := store.Tip(s.ctx, "asset-e")
	s.Require().NoError(err)
	s.Equal(last.EventID, tip.EventID)

	report, err := svc.VerifyChain(s.ctx, "asset-e")
	s.Require().NoError(err)
	s.True(report.Valid)
	s.True(report.Truncated)
}

// failLLen fails LLEN, which only eviction issues, with a network error.
type failLLen struct {
	enabled atomic.Bool
}

func (h *failLLen) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h *failLLen) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		if h.enabled.Load() && cmd.Name() == "llen" {
			err := &net.OpError{Op: "read", Net: "tcp", Err: errors.New("connection reset by peer")}
			cmd.SetErr(err)
			return err
		}
		return next(ctx, cmd)
	}
}

func (h *failLLen) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func (s *RedisStoreSuite) TestCommittedAppendSurvivesEvictionFailure() {
	opts, err := redis.ParseURL(s.redis.Addr)
	s.Require().NoError(err)
	client := redis.NewClient(opts)
	defer client.Close()
	hook := &failLLen{}
	client.AddHook(hook)

	store := redisstore.NewRedis(client,
		redisstore.WithCapacity(1),
		redisstore.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	svc, err := ledger.New(store, ledger.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	s.Require().NoError(err)

	first, err := svc.LogEvent(s.ctx, ledger.EventTransferRecorded, "asset-f", "ops-1", ledger.TransferRecorded{FromOwner: "a", ToOwner: "b"})
	s.Require().NoError(err)

	hook.enabled.Store(true)
	second, err := svc.LogEvent(s.ctx, ledger.EventTransferRecorded, "asset-f", "ops-1", ledger.TransferRecorded{FromOwner: "b", ToOwner: "c"})
	s.Require().NoError(err)
	s.Equal(first.EventID, second.PrevEventID)

	tip, err := store.Tip(s.ctx, "asset-f")
	s.Require().NoError(err)
	s.Equal(second.EventID, tip.EventID)
	history, err := store.History(s.ctx, "asset-f")
	s.Require().NoError(err)
	s.Len(history, 2, "trim is deferred, not rolled back")

	hook.enabled.Store(false)
	third, err := svc.LogEvent(s.ctx, ledger.EventTransferRecorded, "asset-f", "ops-1", ledger.TransferRecorded{FromOwner: "c", ToOwner: "d"})
	s.Require().NoError(err)
	history, err = store.History(s.ctx, "asset-f")
	s.Require().NoError(err)
	s.Require().Len(history, 1)
	s.Equal(third.EventID, history[0].EventID)
}
