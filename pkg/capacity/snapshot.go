package capacity

import (
	"context"
	"errors"

	"carrygo/pkg/model"
)

// ErrTripNotFound distinguishes a missing trip from a trip that simply has no
// transactions yet. Callers map it to a not-found response rather than a
// zero-capacity report.
var ErrTripNotFound = errors.New("trip not found")

// Snapshot is a consistent read of a trip together with every transaction
// referencing it, each transaction carrying its package snapshot.
type Snapshot struct {
	Trip         *model.Trip
	Transactions []*model.Transaction
}

// Report reduces the snapshot into the derived capacity figures.
func (s *Snapshot) Report() Report {
	return Evaluate(s.Trip, s.Transactions)
}

// SnapshotReader is the single external collaborator of the capacity logic.
// Implementations are injected into services; there is no package-level
// client.
type SnapshotReader interface {
	TripSnapshot(ctx context.Context, tripID string) (*Snapshot, error)
}
