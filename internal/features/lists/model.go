// ================== internal/features/lists/model.go ==================
package lists

import (
	"time"

	"github.com/maggie-app/maggie-api/internal/store"
)

// List represents a shared shopping list
// @Description Shopping list with membership, invite code and item counters
type List struct {
	ID          string    `json:"id" example:"8f2Kd91mC3aQwX7LpR0t"`
	Title       string    `json:"title" example:"Weekly groceries"`
	Description string    `json:"description,omitempty" example:"Saturday market run"`
	OwnerID     string    `json:"ownerId" example:"uid_abc123"`
	Members     []string  `json:"members" example:"uid_abc123,uid_def456"`
	Code        string    `json:"code,omitempty" example:"KT7M2Q"`
	ItemsTotal  int       `json:"itemsTotal" example:"8"`
	ItemsDone   int       `json:"itemsDone" example:"3"`
	CreatedAt   time.Time `json:"createdAt" example:"2023-01-01T00:00:00Z"`
	UpdatedAt   time.Time `json:"updatedAt" example:"2023-01-01T00:00:00Z"`
}

// CreateListRequest represents list creation data
// @Description Data required to create a new list
type CreateListRequest struct {
	Title       string `json:"title" binding:"required" example:"Weekly groceries"`
	Description string `json:"description" example:"Saturday market run"`
}

// JoinByCodeRequest represents a join-by-invite-code request
// @Description Invite code identifying the list to join
type JoinByCodeRequest struct {
	Code string `json:"code" binding:"required" example:"KT7M2Q"`
}

// IsMember reports whether userID belongs to the list.
func (l *List) IsMember(userID string) bool {
	for _, m := range l.Members {
		if m == userID {
			return true
		}
	}
	return false
}

func fromSnapshot(snap store.Snapshot) *List {
	if !snap.Exists {
		return nil
	}
	return &List{
		ID:          snap.ID,
		Title:       store.String(snap.Data, "title"),
		Description: store.String(snap.Data, "description"),
		OwnerID:     store.String(snap.Data, "ownerId"),
		Members:     store.Strings(snap.Data, "members"),
		Code:        store.String(snap.Data, "code"),
		ItemsTotal:  store.Int(snap.Data, "itemsTotal"),
		ItemsDone:   store.Int(snap.Data, "itemsDone"),
		CreatedAt:   store.Time(snap.Data, "createdAt"),
		UpdatedAt:   store.Time(snap.Data, "updatedAt"),
	}
}
