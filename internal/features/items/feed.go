package items

import (
	"context"
	"sort"

	"github.com/maggie-app/maggie-api/internal/store"
)

// Projector turns the store's raw item change stream into the display
// ordering: unchecked items first, then most recently touched first
// within each group. The sort runs client-side on every notification so
// no composite server index is required and correctness never depends
// on the store's native ordering.
type Projector struct {
	store store.Client
}

func NewProjector(s store.Client) *Projector {
	return &Projector{store: s}
}

// Listen subscribes to a list's items. fn receives the complete, freshly
// sorted item set on registration and after every underlying change.
// Frames are full snapshots, not deltas. Rapid changes may coalesce into fewer
// invocations, but the last one before quiescence always reflects the
// latest committed state. The returned cancel func is idempotent.
func (p *Projector) Listen(ctx context.Context, listID string, fn func([]Item)) store.CancelFunc {
	coll := p.store.Collection(listsCollection).Doc(listID).Collection(itemsCollection)
	return coll.Listen(ctx, func(snaps []store.Snapshot) {
		items := make([]Item, 0, len(snaps))
		for _, snap := range snaps {
			items = append(items, *fromSnapshot(snap))
		}
		sortForDisplay(items)
		fn(items)
	})
}

func sortForDisplay(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Done != items[j].Done {
			return !items[i].Done
		}
		return items[i].UpdatedAt.After(items[j].UpdatedAt)
	})
}
