package port

import (
	"context"

	"github.com/rl1809/stock-ledger/internal/core/domain"
)

type MutationLog interface {
	// Append records one successful mutation, in order.
	Append(ctx context.Context, event domain.MutationEvent) error
}
