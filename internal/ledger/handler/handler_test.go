package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/suite"

	"assetcore/internal/ledger"
	"assetcore/internal/ledger/store/memory"
	"assetcore/pkg/platform/middleware/metadata"
	"assetcore/pkg/platform/middleware/requesttime"
	"assetcore/pkg/testutil"
)

type LedgerHandlerSuite struct {
	suite.Suite
	router  chi.Router
	service *ledger.Service
}

func TestLedgerHandlerSuite(t *testing.T) {
	suite.Run(t, new(LedgerHandlerSuite))
}

func (s *LedgerHandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := ledger.New(memory.NewInMemoryStore(), ledger.WithLogger(logger))
	s.Require().NoError(err)
	s.service = svc

	clock := func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(requesttime.MiddlewareWithClock(clock))
	r.Use(metadata.RequestMetadata)
	New(svc, logger).Register(r)
	s.router = r
}

func (s *LedgerHandlerSuite) observation(assetID, actor string) *http.Request {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/assets/"+assetID+"/events", map[string]any{
		"type": "OBSERVATION_ADDED",
		"payload": map[string]any{
			"kind":          "optical_scan",
			"source":        "SMARTTAG",
			"evidence_refs": []string{"obs:img:front"},
		},
	})
	if actor != "" {
		req.Header.Set(metadata.HeaderActorID, actor)
	}
	return req
}

func (s *LedgerHandlerSuite) TestAppendAndRead() {
	rr := testutil.DoRequest(s.router, s.observation("asset-1", "DEV:tag-7"))
	s.Require().Equal(http.StatusCreated, rr.Code, rr.Body.String())
	created := testutil.UnmarshalResponse[ledger.Event](s.T(), rr)
	s.Equal(ledger.ActorDevice, created.Actor.Kind)
	s.Equal(ledger.EventObservationAdded, created.Type)

	s.Run("history", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/v1/assets/asset-1/history", nil))
		s.Require().Equal(http.StatusOK, rr.Code)
		body := testutil.UnmarshalResponse[HistoryResponse](s.T(), rr)
		s.Equal(1, body.Count)
		s.Equal(created.EventID, body.Events[0].EventID)
	})

	s.Run("get event", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/v1/events/"+created.EventID, nil))
		s.Require().Equal(http.StatusOK, rr.Code)
		got := testutil.UnmarshalResponse[ledger.Event](s.T(), rr)
		s.Equal(created.EventHash, got.EventHash)
		s.Equal(created.Payload, got.Payload)
	})

	s.Run("verify chain", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/v1/assets/asset-1/verify", nil))
		s.Require().Equal(http.StatusOK, rr.Code)
		report := testutil.UnmarshalResponse[ledger.ChainReport](s.T(), rr)
		s.True(report.Valid)
		s.Equal(created.EventID, report.TipEventID)
	})
}

func (s *LedgerHandlerSuite) TestAppendRequiresActor() {
	rr := testutil.DoRequest(s.router, s.observation("asset-1", ""))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
}

func (s *LedgerHandlerSuite) TestAppendRejectsCoreEventTypes() {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/assets/asset-1/events", map[string]any{
		"type":    "DECISION_REVOKED",
		"payload": map[string]any{"revoked_event_id": "evt_1", "reason": "x"},
	})
	req.Header.Set(metadata.HeaderActorID, "ops-1")

	rr := testutil.DoRequest(s.router, req)
	body := testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	s.Require().Len(body.Details, 1)
	s.Equal("type", body.Details[0].Field)
}

func (s *LedgerHandlerSuite) TestAppendRejectsInvalidPayload() {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/assets/asset-1/events", map[string]any{
		"type":    "TRANSFER_RECORDED",
		"payload": map[string]any{"from_owner": "a", "to_owner": "a"},
	})
	req.Header.Set(metadata.HeaderActorID, "PARTNER:acme")

	rr := testutil.DoRequest(s.router, req)
	body := testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	s.Require().Len(body.Details, 1)
	s.Equal("payload", body.Details[0].Field)
}

func (s *LedgerHandlerSuite) TestNotFound() {
	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/v1/events/evt_missing", nil))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")

	rr = testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/v1/assets/ghost/verify", nil))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
}

func (s *LedgerHandlerSuite) TestHistoryOfUnknownAssetIsEmpty() {
	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/v1/assets/ghost/history", nil))
	s.Require().Equal(http.StatusOK, rr.Code)
	s.JSONEq(`{"asset_id":"ghost","count":0,"events":[]}`, rr.Body.String())
}

func (s *LedgerHandlerSuite) TestAssetIDTooLong() {
	long := strings.Repeat("a", ledger.MaxAssetIDLength+1)
	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/v1/assets/"+long+"/history", nil))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
}

func (s *LedgerHandlerSuite) TestChainAcrossAppends() {
	for i := 0; i < 3; i++ {
		rr := testutil.DoRequest(s.router, s.observation("asset-c", "ops-1"))
		s.Require().Equal(http.StatusCreated, rr.Code)
	}
	history, err := s.service.GetAssetHistory(context.Background(), "asset-c")
	s.Require().NoError(err)
	s.Require().Len(history, 3)
	s.Equal(history[1].EventID, history[0].PrevEventID)
	s.Equal(history[2].EventID, history[1].PrevEventID)
}
