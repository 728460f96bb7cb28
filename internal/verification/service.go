// Package verification evaluates assets against a policy and durably records
// every decision in the ledger before reporting it.
package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/avast/retry-go/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"assetcore/internal/decision"
	"assetcore/internal/ledger"
	"assetcore/internal/policy"
	"assetcore/internal/verification/metrics"
	dErrors "assetcore/pkg/domain-errors"
	"assetcore/pkg/platform/sentinel"
	"assetcore/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Ledger,PolicyResolver

// Ledger is the subset of the ledger service used to record decisions.
type Ledger interface {
	EnsureAsset(ctx context.Context, assetID, actorID string, payload ledger.AssetCreated) (*ledger.Event, bool, error)
	LogEvent(ctx context.Context, eventType ledger.EventType, assetID, actorID string, payload ledger.Payload) (*ledger.Event, error)
	LogEventChecked(ctx context.Context, eventType ledger.EventType, assetID, actorID string, payload ledger.Payload, check ledger.CheckFunc) (*ledger.Event, error)
	GetAssetHistory(ctx context.Context, assetID string) ([]ledger.Event, error)
	GetEvent(ctx context.Context, eventID string) (*ledger.Event, error)
}

// PolicyResolver looks policies up by id or alias.
type PolicyResolver interface {
	Resolve(key string) (policy.Policy, error)
	DefaultID() string
	List() []policy.Policy
	Aliases() map[string]string
}

// evaluateFunc is decision.Evaluate; tests swap it to exercise panic recovery.
type evaluateFunc func(assetID string, in decision.AssetInputs, p policy.Policy, now time.Time) decision.Result

type Service struct {
	ledger        Ledger
	policies      PolicyResolver
	logger        *slog.Logger
	metrics       *metrics.Metrics
	tracer        trace.Tracer
	evaluate      evaluateFunc
	retryAttempts uint
	retryDelay    time.Duration
	tracePipeline bool
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

// WithRetry bounds retries of ledger writes that failed transiently.
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(s *Service) {
		if attempts > 0 {
			s.retryAttempts = attempts
		}
		s.retryDelay = delay
	}
}

// WithPipelineTrace records SIGNALS_COMPUTED and SCORES_COMPUTED ahead of
// every DECISION_RECORDED.
func WithPipelineTrace(enabled bool) Option {
	return func(s *Service) {
		s.tracePipeline = enabled
	}
}

func New(l Ledger, policies PolicyResolver, opts ...Option) (*Service, error) {
	if l == nil {
		return nil, fmt.Errorf("ledger is required")
	}
	if policies == nil {
		return nil, fmt.Errorf("policy resolver is required")
	}

	svc := &Service{
		ledger:        l,
		policies:      policies,
		logger:        slog.Default(),
		tracer:        otel.Tracer("assetcore/verification"),
		evaluate:      decision.Evaluate,
		retryAttempts: 3,
		retryDelay:    50 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Verify validates the request, evaluates the asset and records the decision.
// No ledger event id is returned unless the DECISION_RECORDED write succeeded.
func (s *Service) Verify(ctx context.Context, req VerifyRequest) (*RecordedDecision, error) {
	ctx, span := s.tracer.Start(ctx, "verification.Verify")
	defer span.End()
	start := time.Now()
	defer func() { s.metrics.ObserveVerifyLatency(time.Since(start)) }()

	assetID, p, err := s.validate(req)
	if err != nil {
		span.SetStatus(codes.Error, "invalid request")
		return nil, err
	}
	span.SetAttributes(
		attribute.String("asset.id", assetID),
		attribute.String("policy.id", p.ID),
	)

	now := requestcontext.Now(ctx)
	result, err := s.safeEvaluate(ctx, assetID, req.Inputs, p, now)
	if err != nil {
		span.SetStatus(codes.Error, "pipeline failure")
		return nil, err
	}

	var created bool
	err = s.withRetry(ctx, ledger.EventAssetCreated, func() error {
		var err error
		_, created, err = s.ledger.EnsureAsset(ctx, assetID, ActorGateway, ledger.AssetCreated{
			Origin: "verify",
			Note:   "Auto-created on verify",
		})
		return err
	})
	if err != nil {
		return nil, s.ledgerFailure(ctx, span, assetID, ledger.EventAssetCreated, err)
	}

	if s.tracePipeline {
		if err := s.recordPipeline(ctx, assetID, req.Inputs, p, now, result); err != nil {
			return nil, s.ledgerFailure(ctx, span, assetID, ledger.EventSignalsComputed, err)
		}
	}

	var ev *ledger.Event
	err = s.withRetry(ctx, ledger.EventDecisionRecorded, func() error {
		var err error
		ev, err = s.ledger.LogEvent(ctx, ledger.EventDecisionRecorded, assetID, ActorKernel, ledger.DecisionRecorded{
			Inputs:      req.Inputs,
			RequestedID: strings.TrimSpace(req.PolicyID),
			Policy:      p,
			Analysis:    result,
		})
		return err
	})
	if err != nil {
		return nil, s.ledgerFailure(ctx, span, assetID, ledger.EventDecisionRecorded, err)
	}

	s.metrics.IncrementOutcome(string(result.Decision), p.ID)
	span.SetAttributes(
		attribute.String("decision", string(result.Decision)),
		attribute.String("ledger.event_id", ev.EventID),
	)
	s.logger.InfoContext(ctx, "decision recorded",
		"request_id", requestcontext.RequestID(ctx),
		"asset_id", assetID,
		"policy_id", p.ID,
		"decision", result.Decision,
		"confidence_band", result.ConfidenceBand,
		"core_confidence", result.Scores.CoreConfidence,
		"ledger_event_id", ev.EventID,
		"asset_created", created,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &RecordedDecision{Result: result, LedgerEventID: ev.EventID, AssetCreated: created}, nil
}

// validate collects asset id, input and policy problems into one
// validation error so callers see every offending field at once.
func (s *Service) validate(req VerifyRequest) (string, policy.Policy, error) {
	var fields []dErrors.FieldError
	collect := func(err error) {
		if de, ok := dErrors.As(err); ok && len(de.Fields) > 0 {
			fields = append(fields, de.Fields...)
			return
		}
		fields = append(fields, dErrors.FieldError{Field: "request", Message: err.Error()})
	}

	assetID, err := ledger.NormalizeAssetID(req.AssetID)
	if err != nil {
		collect(err)
	}
	if err := req.Inputs.Validate(); err != nil {
		collect(err)
	}
	p, err := s.policies.Resolve(strings.TrimSpace(req.PolicyID))
	if err != nil {
		msg := "unknown policy"
		if !errors.Is(err, policy.ErrUnknownPolicy) {
			msg = err.Error()
		}
		fields = append(fields, dErrors.FieldError{Field: "policyId", Message: msg})
	}

	if len(fields) > 0 {
		return "", policy.Policy{}, dErrors.NewValidation("Invalid verification request", fields)
	}
	return assetID, p, nil
}

func (s *Service) safeEvaluate(ctx context.Context, assetID string, in decision.AssetInputs, p policy.Policy, now time.Time) (result decision.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.metrics.IncrementPanic()
			s.logger.ErrorContext(ctx, "decision pipeline panicked",
				"request_id", requestcontext.RequestID(ctx),
				"asset_id", assetID,
				"policy_id", p.ID,
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
			err = dErrors.New(dErrors.CodeInternal, "decision pipeline failed")
		}
	}()
	return s.evaluate(assetID, in, p, now), nil
}

func (s *Service) recordPipeline(ctx context.Context, assetID string, in decision.AssetInputs, p policy.Policy, now time.Time, result decision.Result) error {
	signals := decision.NormalizeSignals(in, now)
	if err := s.withRetry(ctx, ledger.EventSignalsComputed, func() error {
		_, err := s.ledger.LogEvent(ctx, ledger.EventSignalsComputed, assetID, ActorKernel,
			ledger.SignalsComputed{PolicyID: p.ID, Signals: signals})
		return err
	}); err != nil {
		return err
	}
	return s.withRetry(ctx, ledger.EventScoresComputed, func() error {
		_, err := s.ledger.LogEvent(ctx, ledger.EventScoresComputed, assetID, ActorKernel,
			ledger.ScoresComputed{PolicyID: p.ID, Scores: result.Scores})
		return err
	})
}

// withRetry retries fn while the ledger reports a transient failure.
func (s *Service) withRetry(ctx context.Context, eventType ledger.EventType, fn func() error) error {
	return retry.New(
		retry.Context(ctx),
		retry.Attempts(s.retryAttempts),
		retry.Delay(s.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isTransient),
		retry.OnRetry(func(n uint, err error) {
			s.metrics.IncrementLedgerRetry(string(eventType))
			s.logger.WarnContext(ctx, "retrying ledger write",
				"request_id", requestcontext.RequestID(ctx),
				"event_type", eventType,
				"attempt", n+1,
				"error", err,
			)
		}),
	).Do(fn)
}

func isTransient(err error) bool {
	return errors.Is(err, sentinel.ErrUnavailable) || errors.Is(err, sentinel.ErrConflict)
}

func (s *Service) ledgerFailure(ctx context.Context, span trace.Span, assetID string, eventType ledger.EventType, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, "ledger write failed")
	s.logger.ErrorContext(ctx, "decision not recorded",
		"request_id", requestcontext.RequestID(ctx),
		"asset_id", assetID,
		"event_type", eventType,
		"error", err,
	)
	if _, ok := dErrors.As(err); ok {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record decision")
}

// Policies lists the selectable policies.
func (s *Service) Policies() PolicyCatalog {
	return PolicyCatalog{
		DefaultID: s.policies.DefaultID(),
		Policies:  s.policies.List(),
		Aliases:   s.policies.Aliases(),
	}
}
