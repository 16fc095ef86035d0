package port

import (
	"context"

	"github.com/rl1809/stock-ledger/internal/core/domain"
)

type SnapshotStore interface {
	// Read loads the snapshot stored at path. Failures are *domain.PersistError.
	Read(ctx context.Context, path string) (domain.Snapshot, error)

	// Write overwrites path with the snapshot. Failures are *domain.PersistError.
	Write(ctx context.Context, path string, snap domain.Snapshot) error
}
