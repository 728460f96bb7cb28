// Package requestcontext carries request-scoped values (actor, request id,
// clock) through context so services never import net/http.
//
//	now := requestcontext.Now(ctx)
//	ctx = requestcontext.WithTime(ctx, fixed) // tests
package requestcontext

import (
	"context"
	"time"
)

type key int

const (
	actorKey key = iota
	requestIDKey
	timeKey
)

func stringValue(ctx context.Context, k key) string {
	s, _ := ctx.Value(k).(string)
	return s
}

// ActorID is the caller-declared actor, e.g. "USR:ops-42", or "".
func ActorID(ctx context.Context) string { return stringValue(ctx, actorKey) }

func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorKey, actorID)
}

func RequestID(ctx context.Context) string { return stringValue(ctx, requestIDKey) }

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// Now returns the clock reading pinned by WithTime, or time.Now outside a
// request. Everything evaluated under one request shares that reading, so a
// decision's computed_at matches its ledger occurred_at.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(timeKey).(time.Time); ok {
		return t
	}
	return time.Now()
}

func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, timeKey, t)
}
