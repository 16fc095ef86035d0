package port

import (
	"context"

	"github.com/rl1809/stock-ledger/internal/core/domain"
)

// StockMirror publishes persisted ledger quantities to an external cache.
type StockMirror interface {
	// Replace drops every mirrored item and publishes the snapshot instead.
	Replace(ctx context.Context, snap domain.Snapshot) error
}
