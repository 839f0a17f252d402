// ================== internal/features/items/model.go ==================
package items

import (
	"time"

	"github.com/maggie-app/maggie-api/internal/store"
)

// Item represents a single entry in a shopping list
// @Description Shopping list item with title, quantity and completion flag
type Item struct {
	ID        string    `json:"id" example:"q3Vb82nD5kXwP1sT9mL0"`
	Title     string    `json:"title" example:"Milk"`
	Amount    int       `json:"amount" example:"2"`
	Done      bool      `json:"done" example:"false"`
	CreatedBy string    `json:"createdBy,omitempty" example:"uid_abc123"`
	CreatedAt time.Time `json:"createdAt" example:"2023-01-01T00:00:00Z"`
	UpdatedAt time.Time `json:"updatedAt" example:"2023-01-01T00:00:00Z"`
}

// AddItemRequest represents item creation data
// @Description Data required to add an item to a list
type AddItemRequest struct {
	Title  string `json:"title" binding:"required" example:"Milk"`
	Amount int    `json:"amount" example:"2"`
}

// UpdateItemRequest represents item update data. The done flag is
// deliberately absent: done transitions must go through the toggle
// endpoint so the list counters stay consistent.
// @Description Data for updating an item's title or amount
type UpdateItemRequest struct {
	Title  *string `json:"title" example:"Oat milk"`
	Amount *int    `json:"amount" example:"3"`
}

// ToggleItemRequest represents a done-state change
// @Description Target done state for an item
type ToggleItemRequest struct {
	Done bool `json:"done" example:"true"`
}

// IncrementAmountRequest represents a quantity nudge
// @Description Signed delta applied to the item amount
type IncrementAmountRequest struct {
	Delta int `json:"delta" binding:"required" example:"1"`
}

// ItemPatch is a partial update for Update. Nil fields are left
// untouched. There is no Done field on purpose; see Repository.Update.
type ItemPatch struct {
	Title  *string
	Amount *int
}

func fromSnapshot(snap store.Snapshot) *Item {
	if !snap.Exists {
		return nil
	}
	return &Item{
		ID:        snap.ID,
		Title:     store.String(snap.Data, "title"),
		Amount:    store.Int(snap.Data, "amount"),
		Done:      store.Bool(snap.Data, "done"),
		CreatedBy: store.String(snap.Data, "createdBy"),
		CreatedAt: store.Time(snap.Data, "createdAt"),
		UpdatedAt: store.Time(snap.Data, "updatedAt"),
	}
}
