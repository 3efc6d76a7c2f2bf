package refresh

import (
	"database/sql"

	"github.com/painelhub/painelcore/internal/painelsrv/db/models"
)

// ChangeKind classifies one catalog difference between two snapshots.
type ChangeKind string

const (
	ChangeAdded         ChangeKind = "added"
	ChangeRemoved       ChangeKind = "removed"
	ChangeStatusChanged ChangeKind = "status-changed"
	ChangeTouched       ChangeKind = "touched"
)

// Change describes one product-level difference between consecutive
// snapshots. Key identifies the product across cycles (database id when
// present, name otherwise), so entries that never hit storage still diff
// correctly.
type Change struct {
	Kind    ChangeKind
	Key     string
	Product models.Product // current state; last known state for removals

	// FromStatus holds the previous status, set on status changes only.
	FromStatus string
}

// diffSnapshots compares two snapshots keyed by Product.Key. At most one
// change is reported per product; a status change wins over a touch.
// Additions and updates come in next order, removals in prev order.
func diffSnapshots(prev, next []models.Product) []Change {
	remaining := make(map[string]models.Product, len(prev))
	for _, p := range prev {
		remaining[p.Key()] = p
	}

	var changes []Change
	for _, p := range next {
		key := p.Key()
		old, ok := remaining[key]
		if !ok {
			changes = append(changes, Change{Kind: ChangeAdded, Key: key, Product: p})
			continue
		}
		delete(remaining, key)
		switch {
		case old.Status != p.Status:
			changes = append(changes, Change{Kind: ChangeStatusChanged, Key: key, Product: p, FromStatus: old.Status})
		case !sameAccess(old.LastAccess, p.LastAccess):
			changes = append(changes, Change{Kind: ChangeTouched, Key: key, Product: p})
		}
	}

	for _, p := range prev {
		if _, ok := remaining[p.Key()]; ok {
			changes = append(changes, Change{Kind: ChangeRemoved, Key: p.Key(), Product: p})
		}
	}
	return changes
}

func sameAccess(a, b sql.NullTime) bool {
	if a.Valid != b.Valid {
		return false
	}
	return !a.Valid || a.Time.Equal(b.Time)
}
