package ledger

import "context"

// HistoryFunc reads the asset's retained events, newest first, through the
// connection, transaction or lock the surrounding append already holds. It is
// only valid while the BuildFunc it was passed to is running.
type HistoryFunc func(ctx context.Context) ([]Event, error)

// BuildFunc receives the asset's current tip (nil when the asset has no
// events) and returns the event to append. Returning a nil event skips the
// append. Stores may call it more than once when an optimistic append retries,
// so it must not have side effects. Reads of the asset made while building
// must go through history, never back through the Store.
type BuildFunc func(ctx context.Context, tip *Tip, history HistoryFunc) (*Event, error)

// Store persists ledger events. Implementations must make Append atomic per
// asset: the tip passed to build is the tip the new event is linked after.
// Appends for different assets may proceed concurrently.
type Store interface {
	// Append reads the asset tip, builds the next event and appends it as one
	// atomic step. It returns nil when build skipped the append.
	Append(ctx context.Context, assetID string, build BuildFunc) (*Event, error)
	// History returns the asset's retained events, newest first.
	History(ctx context.Context, assetID string) ([]Event, error)
	// Get returns a single event or sentinel.ErrNotFound.
	Get(ctx context.Context, eventID string) (*Event, error)
	// Tip returns the asset's tip, or nil when the asset has no events.
	Tip(ctx context.Context, assetID string) (*Tip, error)
}
