package lists

import (
	"context"
	"fmt"
	"strings"

	"github.com/maggie-app/maggie-api/internal/store"
	apperrors "github.com/maggie-app/maggie-api/pkg/errors"
)

const listsCollection = "lists"

// Repository is the list registry. It owns list identity and
// membership; it never touches the item counters, which belong to the
// item ledger's transactions.
type Repository struct {
	store store.Client
}

func NewRepository(s store.Client) *Repository {
	return &Repository{store: s}
}

func (r *Repository) lists() store.Collection {
	return r.store.Collection(listsCollection)
}

// Create validates the title, allocates an invite code and writes the
// new list with the creator as sole member and zeroed counters. Returns
// the new list id.
func (r *Repository) Create(ctx context.Context, ownerID, title, description string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("%w: title must not be empty", apperrors.ErrValidation)
	}

	code, err := r.allocateCode(ctx)
	if err != nil {
		return "", err
	}

	doc := r.lists().NewDoc()
	err = doc.Set(ctx, map[string]any{
		"title":       title,
		"description": strings.TrimSpace(description),
		"ownerId":     ownerID,
		"members":     []string{ownerID},
		"code":        code,
		"itemsTotal":  0,
		"itemsDone":   0,
		"createdAt":   store.ServerTimestamp,
		"updatedAt":   store.ServerTimestamp,
	})
	if err != nil {
		return "", err
	}
	return doc.ID(), nil
}

// Get returns the list, or nil if it does not exist.
func (r *Repository) Get(ctx context.Context, listID string) (*List, error) {
	snap, err := r.lists().Doc(listID).Get(ctx)
	if err != nil {
		return nil, err
	}
	return fromSnapshot(snap), nil
}

// ListForMember returns every list the user belongs to, most recently
// active first.
func (r *Repository) ListForMember(ctx context.Context, userID string) ([]List, error) {
	snaps, err := r.lists().
		Where("members", "array-contains", userID).
		OrderBy("updatedAt", true).
		Documents(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]List, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out, *fromSnapshot(snap))
	}
	return out, nil
}

// FindByCode looks a list up by invite code. The code is normalized
// (trimmed, uppercased) before the lookup. Returns nil when no list
// carries the code.
func (r *Repository) FindByCode(ctx context.Context, code string) (*List, error) {
	code = NormalizeCode(code)
	snaps, err := r.lists().
		Where("code", "==", code).
		Limit(1).
		Documents(ctx)
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, nil
	}
	return fromSnapshot(snaps[0]), nil
}

// Join adds the user to the list members and bumps updatedAt. Joining a
// list you already belong to is a no-op, not an error.
func (r *Repository) Join(ctx context.Context, listID, userID string) error {
	doc := r.lists().Doc(listID)
	return r.store.RunTransaction(ctx, func(tx store.Tx) error {
		snap, err := tx.Get(doc)
		if err != nil {
			return err
		}
		if !snap.Exists {
			return fmt.Errorf("%w: list %s", apperrors.ErrNotFound, listID)
		}
		members := store.Strings(snap.Data, "members")
		for _, m := range members {
			if m == userID {
				return nil
			}
		}
		return tx.Set(doc, map[string]any{
			"members":   append(members, userID),
			"updatedAt": store.ServerTimestamp,
		})
	})
}

// JoinByCode resolves the code and joins the list it identifies.
func (r *Repository) JoinByCode(ctx context.Context, code, userID string) (*List, error) {
	found, err := r.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, fmt.Errorf("%w: no list with code %q", apperrors.ErrNotFound, NormalizeCode(code))
	}
	if err := r.Join(ctx, found.ID, userID); err != nil {
		return nil, err
	}
	return found, nil
}

// Listen subscribes to a single list. fn receives the current snapshot
// immediately and again after every change; nil means the list does not
// exist. The returned cancel func is idempotent.
func (r *Repository) Listen(ctx context.Context, listID string, fn func(*List)) store.CancelFunc {
	return r.lists().Doc(listID).Listen(ctx, func(snap store.Snapshot) {
		fn(fromSnapshot(snap))
	})
}

// NormalizeCode applies the canonical invite code form: trimmed and
// uppercase. Lookups and stored codes both use it, which is what makes
// code matching case-insensitive.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
