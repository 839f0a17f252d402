// ================== internal/features/items/handler.go ==================
package items

import (
	"io"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/maggie-app/maggie-api/internal/features/lists"
	"github.com/maggie-app/maggie-api/internal/pkg/response"
)

type Handler struct {
	repo      *Repository
	projector *Projector
	lists     *lists.Repository
}

func NewHandler(repo *Repository, projector *Projector, listsRepo *lists.Repository) *Handler {
	return &Handler{repo: repo, projector: projector, lists: listsRepo}
}

// guard resolves the list and checks the caller's membership. It writes
// the error response itself and returns false when the request must not
// proceed.
func (h *Handler) guard(c *gin.Context) (string, string, bool) {
	userID := c.GetString("userID")
	listID := c.Param("id")

	list, err := h.lists.Get(c.Request.Context(), listID)
	if err != nil {
		response.FromError(c, err)
		return "", "", false
	}
	if list == nil {
		response.NotFound(c, "List not found", "LIST_NOT_FOUND")
		return "", "", false
	}
	if !list.IsMember(userID) {
		response.Forbidden(c, "Not a member of this list", "NOT_A_MEMBER")
		return "", "", false
	}
	return listID, userID, true
}

// Add godoc
// @Summary Add an item to a list
// @Description Create an item and increment the list's itemsTotal atomically
// @Tags items
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "List ID"
// @Param request body AddItemRequest true "Item data"
// @Success 201 {object} response.SuccessResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /lists/{id}/items [post]
func (h *Handler) Add(c *gin.Context) {
	listID, userID, ok := h.guard(c)
	if !ok {
		return
	}

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}
	if err := ValidateAddItemRequest(&req); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}

	itemID, err := h.repo.Add(c.Request.Context(), listID, userID, req.Title, req.Amount)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, map[string]string{"id": itemID})
}

// Update godoc
// @Summary Update an item's title or amount
// @Description Merge title/amount changes; done changes are rejected here, use the toggle endpoint
// @Tags items
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "List ID"
// @Param itemId path string true "Item ID"
// @Param request body UpdateItemRequest true "Fields to update"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /lists/{id}/items/{itemId} [patch]
func (h *Handler) Update(c *gin.Context) {
	listID, _, ok := h.guard(c)
	if !ok {
		return
	}
	itemID := c.Param("itemId")

	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}
	if req.Title == nil && req.Amount == nil {
		response.BadRequest(c, "No fields to update")
		return
	}

	patch := ItemPatch{Title: req.Title, Amount: req.Amount}
	if err := h.repo.Update(c.Request.Context(), listID, itemID, patch); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, map[string]string{"message": "Item updated"})
}

// Toggle godoc
// @Summary Toggle an item's done state
// @Description Set done and adjust the list's itemsDone counter in one transaction
// @Tags items
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "List ID"
// @Param itemId path string true "Item ID"
// @Param request body ToggleItemRequest true "Target done state"
// @Success 200 {object} response.SuccessResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /lists/{id}/items/{itemId}/toggle [post]
func (h *Handler) Toggle(c *gin.Context) {
	listID, _, ok := h.guard(c)
	if !ok {
		return
	}
	itemID := c.Param("itemId")

	var req ToggleItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	if err := h.repo.Toggle(c.Request.Context(), listID, itemID, req.Done); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, map[string]string{"message": "Item toggled"})
}

// Increment godoc
// @Summary Nudge an item's amount
// @Description Apply a signed delta to the amount, clamped into [1, 999]
// @Tags items
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "List ID"
// @Param itemId path string true "Item ID"
// @Param request body IncrementAmountRequest true "Amount delta"
// @Success 200 {object} response.SuccessResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /lists/{id}/items/{itemId}/increment [post]
func (h *Handler) Increment(c *gin.Context) {
	listID, _, ok := h.guard(c)
	if !ok {
		return
	}
	itemID := c.Param("itemId")

	var req IncrementAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	if err := h.repo.IncrementAmount(c.Request.Context(), listID, itemID, req.Delta); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, map[string]string{"message": "Amount updated"})
}

// Remove godoc
// @Summary Remove an item
// @Description Delete the item and decrement the list counters in one transaction; removing a missing item is a no-op
// @Tags items
// @Produce json
// @Security BearerAuth
// @Param id path string true "List ID"
// @Param itemId path string true "Item ID"
// @Success 200 {object} response.SuccessResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /lists/{id}/items/{itemId} [delete]
func (h *Handler) Remove(c *gin.Context) {
	listID, _, ok := h.guard(c)
	if !ok {
		return
	}
	itemID := c.Param("itemId")

	if err := h.repo.Remove(c.Request.Context(), listID, itemID); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, map[string]string{"message": "Item removed"})
}

// Events godoc
// @Summary Stream list changes
// @Description Server-sent events: a "list" event with the list snapshot and an "items" event with the freshly sorted item set, emitted on every change including the initial state
// @Tags items
// @Produce text/event-stream
// @Security BearerAuth
// @Param id path string true "List ID"
// @Success 200 {string} string "event stream"
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /lists/{id}/events [get]
func (h *Handler) Events(c *gin.Context) {
	listID, _, ok := h.guard(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	// Coalescing mailbox: listener callbacks overwrite the pending
	// frame and nudge the stream loop. Bursts collapse into fewer SSE
	// writes, but the frame sent last is always the freshest one.
	var (
		mu           sync.Mutex
		pendingList  *lists.List
		hasList      bool
		pendingItems []Item
		hasItems     bool
	)
	notify := make(chan struct{}, 1)
	nudge := func() {
		select {
		case notify <- struct{}{}:
		default:
		}
	}

	cancelList := h.lists.Listen(ctx, listID, func(l *lists.List) {
		mu.Lock()
		pendingList, hasList = l, true
		mu.Unlock()
		nudge()
	})
	defer cancelList()

	cancelItems := h.projector.Listen(ctx, listID, func(its []Item) {
		mu.Lock()
		pendingItems, hasItems = its, true
		mu.Unlock()
		nudge()
	})
	defer cancelItems()

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-notify:
		}

		mu.Lock()
		list, sendList := pendingList, hasList
		items, sendItems := pendingItems, hasItems
		hasList, hasItems = false, false
		mu.Unlock()

		if sendList {
			c.SSEvent("list", list)
		}
		if sendItems {
			c.SSEvent("items", items)
		}
		return true
	})
}
