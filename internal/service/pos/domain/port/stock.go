package port

import "context"

// StockMirror publishes available-quantity changes to a read-side cache
// so external dashboards can poll stock without touching the engine.
type StockMirror interface {
	PublishAvailable(ctx context.Context, productID string, available int64) error
	Forget(ctx context.Context, productID string) error
}
