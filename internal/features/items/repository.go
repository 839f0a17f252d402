package items

import (
	"context"
	"log"
	"strings"

	"github.com/maggie-app/maggie-api/internal/store"
)

const (
	listsCollection = "lists"
	itemsCollection = "items"

	minAmount = 1
	maxAmount = 999
)

// Repository is the item ledger. Every operation that changes item
// cardinality or done state runs as one transaction spanning the item
// and its parent list, so the list's itemsTotal/itemsDone counters are
// exact after every commit, even under concurrent mutators.
//
// Contract: done transitions must go through Toggle. Update ignores
// done entirely; writing done through any other path desynchronizes the
// counters from the item set.
type Repository struct {
	store store.Client
}

func NewRepository(s store.Client) *Repository {
	return &Repository{store: s}
}

func (r *Repository) listDoc(listID string) store.Doc {
	return r.store.Collection(listsCollection).Doc(listID)
}

func (r *Repository) itemDoc(listID, itemID string) store.Doc {
	return r.listDoc(listID).Collection(itemsCollection).Doc(itemID)
}

// Add creates the item with done=false and increments the parent's
// itemsTotal in the same transaction. The title is trimmed and the
// amount clamped into [1, 999]; a non-positive or absent amount becomes
// 1. Returns the new item id.
func (r *Repository) Add(ctx context.Context, listID, userID, title string, amount int) (string, error) {
	title = strings.TrimSpace(title)
	amount = clampAmount(amount)

	listDoc := r.listDoc(listID)
	itemDoc := listDoc.Collection(itemsCollection).NewDoc()

	err := r.store.RunTransaction(ctx, func(tx store.Tx) error {
		listSnap, err := tx.Get(listDoc)
		if err != nil {
			return err
		}
		total := 0
		if listSnap.Exists {
			total = store.Int(listSnap.Data, "itemsTotal")
		}

		if err := tx.Set(itemDoc, map[string]any{
			"title":     title,
			"amount":    amount,
			"done":      false,
			"createdBy": userID,
			"createdAt": store.ServerTimestamp,
			"updatedAt": store.ServerTimestamp,
		}); err != nil {
			return err
		}
		return tx.Set(listDoc, map[string]any{
			"itemsTotal": total + 1,
			"updatedAt":  store.ServerTimestamp,
		})
	})
	if err != nil {
		return "", err
	}
	return itemDoc.ID(), nil
}

// Update merges title and amount changes into the item and bumps
// updatedAt. It never adjusts counters and never writes done; use
// Toggle for done transitions. An empty title in the patch is dropped
// so the stored title stays non-empty.
func (r *Repository) Update(ctx context.Context, listID, itemID string, patch ItemPatch) error {
	data := map[string]any{
		"updatedAt": store.ServerTimestamp,
	}
	if patch.Title != nil {
		if t := strings.TrimSpace(*patch.Title); t != "" {
			data["title"] = t
		}
	}
	if patch.Amount != nil {
		data["amount"] = clampAmount(*patch.Amount)
	}
	return r.itemDoc(listID, itemID).Set(ctx, data)
}

// Toggle sets the item's done state and keeps the parent's itemsDone
// exact in the same transaction. Toggling to the current state is a
// no-op for the counters but still bumps the item's updatedAt so
// recency ordering reflects the touch. A missing item is a no-op.
func (r *Repository) Toggle(ctx context.Context, listID, itemID string, nextDone bool) error {
	listDoc := r.listDoc(listID)
	itemDoc := r.itemDoc(listID, itemID)

	return r.store.RunTransaction(ctx, func(tx store.Tx) error {
		itemSnap, err := tx.Get(itemDoc)
		if err != nil {
			return err
		}
		if !itemSnap.Exists {
			return nil
		}
		wasDone := store.Bool(itemSnap.Data, "done")
		if wasDone == nextDone {
			return tx.Set(itemDoc, map[string]any{
				"updatedAt": store.ServerTimestamp,
			})
		}

		listSnap, err := tx.Get(listDoc)
		if err != nil {
			return err
		}
		done := 0
		if listSnap.Exists {
			done = store.Int(listSnap.Data, "itemsDone")
		}
		if nextDone {
			done++
		} else {
			done--
		}

		if err := tx.Set(itemDoc, map[string]any{
			"done":      nextDone,
			"updatedAt": store.ServerTimestamp,
		}); err != nil {
			return err
		}
		return tx.Set(listDoc, map[string]any{
			"itemsDone": clampCounter(done, "itemsDone", listID),
			"updatedAt": store.ServerTimestamp,
		})
	})
}

// IncrementAmount adds delta to the item's amount, clamped into
// [1, 999]. A missing item is a no-op.
func (r *Repository) IncrementAmount(ctx context.Context, listID, itemID string, delta int) error {
	itemDoc := r.itemDoc(listID, itemID)

	return r.store.RunTransaction(ctx, func(tx store.Tx) error {
		snap, err := tx.Get(itemDoc)
		if err != nil {
			return err
		}
		if !snap.Exists {
			return nil
		}
		current := store.Int(snap.Data, "amount")
		if current == 0 {
			current = minAmount
		}
		return tx.Set(itemDoc, map[string]any{
			"amount":    clampAmount(current + delta),
			"updatedAt": store.ServerTimestamp,
		})
	})
}

// Remove deletes the item and decrements itemsTotal (and itemsDone if
// the item was done) in the same transaction. Removing an item that is
// already gone is a no-op.
func (r *Repository) Remove(ctx context.Context, listID, itemID string) error {
	listDoc := r.listDoc(listID)
	itemDoc := r.itemDoc(listID, itemID)

	return r.store.RunTransaction(ctx, func(tx store.Tx) error {
		itemSnap, err := tx.Get(itemDoc)
		if err != nil {
			return err
		}
		if !itemSnap.Exists {
			return nil
		}
		wasDone := store.Bool(itemSnap.Data, "done")

		listSnap, err := tx.Get(listDoc)
		if err != nil {
			return err
		}
		total, done := 0, 0
		if listSnap.Exists {
			total = store.Int(listSnap.Data, "itemsTotal")
			done = store.Int(listSnap.Data, "itemsDone")
		}
		total--
		if wasDone {
			done--
		}

		if err := tx.Delete(itemDoc); err != nil {
			return err
		}
		return tx.Set(listDoc, map[string]any{
			"itemsTotal": clampCounter(total, "itemsTotal", listID),
			"itemsDone":  clampCounter(done, "itemsDone", listID),
			"updatedAt":  store.ServerTimestamp,
		})
	})
}

func clampAmount(amount int) int {
	if amount < minAmount {
		return minAmount
	}
	if amount > maxAmount {
		return maxAmount
	}
	return amount
}

// clampCounter floors a counter at zero. Under the documented contract
// (all done transitions via Toggle) the floor never engages; when it
// does, the counters have drifted from the item set and we log it.
func clampCounter(n int, field, listID string) int {
	if n < 0 {
		log.Printf("items: %s underflow on list %s clamped to 0, counters have drifted", field, listID)
		return 0
	}
	return n
}
