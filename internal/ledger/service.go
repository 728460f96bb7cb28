package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"assetcore/internal/ledger/metrics"
	dErrors "assetcore/pkg/domain-errors"
	"assetcore/pkg/platform/sentinel"
	"assetcore/pkg/requestcontext"
)

// Publisher mirrors appended events onto an event stream. Publishing happens
// after the durable append and its failure never fails the append.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Service is the write and read API of the ledger. There is no update or
// delete operation.
type Service struct {
	store     Store
	publisher Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	newID     func() string
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithIDGenerator overrides event id generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		s.newID = fn
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("ledger store is required")
	}

	svc := &Service{
		store:  store,
		logger: slog.Default(),
		tracer: otel.Tracer("assetcore/ledger"),
		newID:  func() string { return "evt_" + uuid.NewString() },
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// CheckFunc runs inside the asset's append critical section, before the
// event is built. Returning an error aborts the append. It must read the
// asset through history; calling back into the Service or Store from a
// check can deadlock a store that holds a connection for the append.
type CheckFunc func(ctx context.Context, tip *Tip, history HistoryFunc) error

// LogEvent appends an event of eventType to the asset's chain.
func (s *Service) LogEvent(ctx context.Context, eventType EventType, assetID, actorID string, payload Payload) (*Event, error) {
	return s.LogEventChecked(ctx, eventType, assetID, actorID, payload, nil)
}

// LogEventChecked is LogEvent with a precondition evaluated atomically with
// the append, e.g. "this decision has not been revoked yet".
func (s *Service) LogEventChecked(ctx context.Context, eventType EventType, assetID, actorID string, payload Payload, check CheckFunc) (*Event, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.LogEvent", trace.WithAttributes(
		attribute.String("ledger.event_type", string(eventType)),
		attribute.String("ledger.asset_id", assetID),
	))
	defer span.End()

	start := time.Now()
	defer func() { s.metrics.ObserveAppendLatency(time.Since(start)) }()

	payloadHash, err := s.preparePayload(eventType, assetID, actorID, payload)
	if err != nil {
		s.metrics.IncrementAppendFailure("invalid")
		span.SetStatus(codes.Error, "invalid payload")
		return nil, err
	}

	occurredAt := requestcontext.Now(ctx).UTC().Truncate(time.Microsecond)
	actor := ActorFromID(actorID)

	ev, err := s.store.Append(ctx, assetID, func(ctx context.Context, tip *Tip, history HistoryFunc) (*Event, error) {
		if check != nil {
			if err := check(ctx, tip, history); err != nil {
				return nil, err
			}
		}
		return s.buildEvent(eventType, assetID, actor, occurredAt, payloadHash, payload, tip)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "append failed")
		return nil, s.translateAppendError(ctx, eventType, assetID, err)
	}
	if ev == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "ledger append was skipped")
	}

	s.metrics.IncrementAppended(string(ev.Type))
	span.SetAttributes(attribute.String("ledger.event_id", ev.EventID))
	s.logger.InfoContext(ctx, "ledger event appended",
		"request_id", requestcontext.RequestID(ctx),
		"event_id", ev.EventID,
		"event_type", ev.Type,
		"asset_id", ev.AssetID,
		"actor_id", ev.Actor.ID,
		"prev_event_id", ev.PrevEventID,
	)
	s.publish(ctx, *ev)
	return ev, nil
}

// EnsureAsset writes ASSET_CREATED for an asset with no events yet. The tip
// check and the append are atomic, so concurrent first verifications create
// exactly one. It reports whether an event was written.
func (s *Service) EnsureAsset(ctx context.Context, assetID, actorID string, payload AssetCreated) (*Event, bool, error) {
	payloadHash, err := s.preparePayload(EventAssetCreated, assetID, actorID, payload)
	if err != nil {
		return nil, false, err
	}
	occurredAt := requestcontext.Now(ctx).UTC().Truncate(time.Microsecond)
	actor := ActorFromID(actorID)

	ev, err := s.store.Append(ctx, assetID, func(_ context.Context, tip *Tip, _ HistoryFunc) (*Event, error) {
		if tip != nil {
			return nil, nil
		}
		return s.buildEvent(EventAssetCreated, assetID, actor, occurredAt, payloadHash, payload, nil)
	})
	if err != nil {
		return nil, false, s.translateAppendError(ctx, EventAssetCreated, assetID, err)
	}
	if ev == nil {
		return nil, false, nil
	}

	s.metrics.IncrementAppended(string(ev.Type))
	s.logger.InfoContext(ctx, "asset created in ledger",
		"request_id", requestcontext.RequestID(ctx),
		"event_id", ev.EventID,
		"asset_id", assetID,
		"actor_id", actorID,
	)
	s.publish(ctx, *ev)
	return ev, true, nil
}

// GetAssetHistory returns the asset's retained events, newest first.
func (s *Service) GetAssetHistory(ctx context.Context, assetID string) ([]Event, error) {
	events, err := s.store.History(ctx, assetID)
	if err != nil {
		return nil, translateReadError(err, "failed to read asset history")
	}
	return events, nil
}

// GetEvent returns one event by id.
func (s *Service) GetEvent(ctx context.Context, eventID string) (*Event, error) {
	ev, err := s.store.Get(ctx, eventID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "event not found")
		}
		return nil, translateReadError(err, "failed to read event")
	}
	return ev, nil
}

func (s *Service) preparePayload(eventType EventType, assetID, actorID string, payload Payload) (string, error) {
	if strings.TrimSpace(assetID) == "" {
		return "", dErrors.New(dErrors.CodeValidation, "asset id is required")
	}
	if strings.TrimSpace(actorID) == "" {
		return "", dErrors.New(dErrors.CodeValidation, "actor id is required")
	}
	if payload == nil {
		return "", dErrors.New(dErrors.CodeValidation, "payload is required")
	}
	if payload.EventType() != eventType {
		return "", dErrors.Wrap(ErrInvalidPayload, dErrors.CodeInvariantViolation,
			fmt.Sprintf("payload %s does not match event type %s", payload.EventType(), eventType))
	}
	if err := payload.Validate(); err != nil {
		return "", dErrors.Wrap(fmt.Errorf("%w: %v", ErrInvalidPayload, err), dErrors.CodeValidation, err.Error())
	}
	if rec, ok := payload.(DecisionRecorded); ok && rec.Analysis.AssetID != assetID {
		return "", dErrors.New(dErrors.CodeInvariantViolation, "decision snapshot belongs to a different asset")
	}

	hash, err := HashPayload(payload)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash ledger payload")
	}
	return hash, nil
}

func (s *Service) buildEvent(eventType EventType, assetID string, actor Actor, at time.Time, payloadHash string, payload Payload, tip *Tip) (*Event, error) {
	ev := &Event{
		EventID:     s.newID(),
		AssetID:     assetID,
		Type:        eventType,
		OccurredAt:  at,
		Actor:       actor,
		PayloadHash: payloadHash,
		Payload:     payload,
	}
	prevHash := ""
	if tip != nil {
		ev.PrevEventID = tip.EventID
		prevHash = tip.EventHash
	}
	hash, err := HashEvent(*ev, prevHash)
	if err != nil {
		return nil, err
	}
	ev.EventHash = hash
	return ev, nil
}

func (s *Service) translateAppendError(ctx context.Context, eventType EventType, assetID string, err error) error {
	if _, ok := dErrors.As(err); ok {
		s.metrics.IncrementAppendFailure("rejected")
		return err
	}

	reason := "internal"
	var out error
	switch {
	case errors.Is(err, sentinel.ErrConflict):
		reason = "conflict"
		out = dErrors.Wrap(err, dErrors.CodeConflict, "concurrent ledger append, retry the request")
	case errors.Is(err, sentinel.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		reason = "unavailable"
		out = dErrors.Wrap(err, dErrors.CodeUnavailable, "ledger unavailable")
	default:
		out = dErrors.Wrap(err, dErrors.CodeInternal, "failed to append ledger event")
	}
	s.metrics.IncrementAppendFailure(reason)
	s.logger.ErrorContext(ctx, "ledger append failed",
		"request_id", requestcontext.RequestID(ctx),
		"event_type", eventType,
		"asset_id", assetID,
		"reason", reason,
		"error", err,
	)
	return out
}

func translateReadError(err error, msg string) error {
	if errors.Is(err, sentinel.ErrUnavailable) {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "ledger unavailable")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

func (s *Service) publish(ctx context.Context, ev Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.metrics.IncrementPublishFailure()
		s.logger.WarnContext(ctx, "failed to publish ledger event",
			"event_id", ev.EventID,
			"asset_id", ev.AssetID,
			"error", err,
		)
	}
}
