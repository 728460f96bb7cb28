// Package postgres is the durable ledger store. Events are never evicted.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"assetcore/internal/ledger"
	"assetcore/pkg/platform/sentinel"
)

const (
	eventsTable = "ledger_events"
	tipsTable   = "ledger_tips"
)

var eventColumns = []string{
	"event_id", "asset_id", "type", "occurred_at", "actor_kind", "actor_id",
	"prev_event_id", "payload_hash", "event_hash", "payload",
}

// Store implements ledger.Store on Postgres. Appends for one asset are
// serialized by a transaction-scoped advisory lock keyed on the asset id.
type Store struct {
	pool *pgxpool.Pool
	sb   sq.StatementBuilderType
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{
		pool: pool,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (s *Store) Append(ctx context.Context, assetID string, build ledger.BuildFunc) (ev *ledger.Event, err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, classify(err)
	}
	defer func() {
		if err != nil || ev == nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, assetID); err != nil {
		return nil, classify(err)
	}

	tip, err := s.tip(ctx, tx, assetID)
	if err != nil {
		return nil, err
	}
	history := func(ctx context.Context) ([]ledger.Event, error) {
		return s.history(ctx, tx, assetID)
	}
	ev, err = build(ctx, tip, history)
	if err != nil || ev == nil {
		return nil, err
	}

	if err = s.insert(ctx, tx, ev); err != nil {
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, classify(err)
	}
	return ev, nil
}

func (s *Store) insert(ctx context.Context, tx pgx.Tx, ev *ledger.Event) error {
	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	var prev *string
	if ev.PrevEventID != "" {
		prev = &ev.PrevEventID
	}

	query, args, err := s.sb.Insert(eventsTable).
		Columns(eventColumns...).
		Values(ev.EventID, ev.AssetID, string(ev.Type), ev.OccurredAt, string(ev.Actor.Kind), ev.Actor.ID,
			prev, ev.PayloadHash, ev.EventHash, payload).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return classify(err)
	}

	query, args, err = s.sb.Insert(tipsTable).
		Columns("asset_id", "event_id", "event_hash").
		Values(ev.AssetID, ev.EventID, ev.EventHash).
		Suffix("ON CONFLICT (asset_id) DO UPDATE SET event_id = EXCLUDED.event_id, event_hash = EXCLUDED.event_hash").
		ToSql()
	if err != nil {
		return fmt.Errorf("build tip upsert: %w", err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return classify(err)
	}
	return nil
}

// querier is satisfied by both the pool and an open transaction, so reads made
// while an append holds the asset lock stay on the append's connection.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *Store) tip(ctx context.Context, q querier, assetID string) (*ledger.Tip, error) {
	query, args, err := s.sb.Select("event_id", "event_hash").
		From(tipsTable).
		Where(sq.Eq{"asset_id": assetID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build tip query: %w", err)
	}

	var t ledger.Tip
	err = q.QueryRow(ctx, query, args...).Scan(&t.EventID, &t.EventHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(err)
	}
	return &t, nil
}

func (s *Store) Tip(ctx context.Context, assetID string) (*ledger.Tip, error) {
	return s.tip(ctx, s.pool, assetID)
}

func (s *Store) History(ctx context.Context, assetID string) ([]ledger.Event, error) {
	return s.history(ctx, s.pool, assetID)
}

func (s *Store) history(ctx context.Context, q querier, assetID string) ([]ledger.Event, error) {
	query, args, err := s.sb.Select(eventColumns...).
		From(eventsTable).
		Where(sq.Eq{"asset_id": assetID}).
		OrderBy("seq DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build history query: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var out []ledger.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ev)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, eventID string) (*ledger.Event, error) {
	query, args, err := s.sb.Select(eventColumns...).
		From(eventsTable).
		Where(sq.Eq{"event_id": eventID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get query: %w", err)
	}

	ev, err := scanEvent(s.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return ev, err
}

func scanEvent(row pgx.Row) (*ledger.Event, error) {
	var (
		ev         ledger.Event
		eventType  string
		actorKind  string
		prev       *string
		occurredAt time.Time
		raw        []byte
	)
	err := row.Scan(&ev.EventID, &ev.AssetID, &eventType, &occurredAt, &actorKind, &ev.Actor.ID,
		&prev, &ev.PayloadHash, &ev.EventHash, &raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, classify(err)
	}

	ev.Type = ledger.EventType(eventType)
	ev.Actor.Kind = ledger.ActorKind(actorKind)
	ev.OccurredAt = occurredAt.UTC()
	if prev != nil {
		ev.PrevEventID = *prev
	}
	ev.Payload, err = ledger.DecodePayload(ev.Type, raw)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", ev.EventID, err)
	}
	return &ev, nil
}

// classify maps driver errors onto sentinel errors. Unrecognized errors are
// returned unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505", "40001", "40P01":
			return errors.Join(err, sentinel.ErrConflict)
		case "57P01", "57P03", "53300":
			return errors.Join(err, sentinel.ErrUnavailable)
		}
		return err
	}
	var connErr *pgconn.ConnectError
	var netErr net.Error
	if errors.As(err, &connErr) || errors.As(err, &netErr) || pgconn.Timeout(err) {
		return errors.Join(err, sentinel.ErrUnavailable)
	}
	return err
}
