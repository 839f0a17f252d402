// ================== internal/features/lists/handler.go ==================
package lists

import (
	"github.com/gin-gonic/gin"

	"github.com/maggie-app/maggie-api/internal/pkg/response"
)

type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// Create godoc
// @Summary Create a new shopping list
// @Description Create a list owned by the authenticated user, with a fresh invite code
// @Tags lists
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateListRequest true "List creation data"
// @Success 201 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Failure 503 {object} response.ErrorResponse
// @Router /lists [post]
func (h *Handler) Create(c *gin.Context) {
	userID := c.GetString("userID")

	var req CreateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}
	if err := ValidateCreateListRequest(&req); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}

	listID, err := h.repo.Create(c.Request.Context(), userID, req.Title, req.Description)
	if err != nil {
		response.FromError(c, err)
		return
	}

	list, err := h.repo.Get(c.Request.Context(), listID)
	if err != nil || list == nil {
		response.InternalServerError(c, "Failed to retrieve created list")
		return
	}
	response.Created(c, list)
}

// List godoc
// @Summary List my shopping lists
// @Description All lists the authenticated user is a member of, most recently active first
// @Tags lists
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.SuccessResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 503 {object} response.ErrorResponse
// @Router /lists [get]
func (h *Handler) List(c *gin.Context) {
	userID := c.GetString("userID")

	lists, err := h.repo.ListForMember(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, lists)
}

// Get godoc
// @Summary Get a shopping list
// @Description Fetch one list by id; members only
// @Tags lists
// @Produce json
// @Security BearerAuth
// @Param id path string true "List ID"
// @Success 200 {object} response.SuccessResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /lists/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	userID := c.GetString("userID")
	listID := c.Param("id")

	list, err := h.repo.Get(c.Request.Context(), listID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	if list == nil {
		response.NotFound(c, "List not found", "LIST_NOT_FOUND")
		return
	}
	if !list.IsMember(userID) {
		response.Forbidden(c, "Not a member of this list", "NOT_A_MEMBER")
		return
	}
	response.Success(c, list)
}

// Join godoc
// @Summary Join a list by invite code
// @Description Resolve a 6-character invite code and add the authenticated user to the list's members; joining twice is a no-op
// @Tags lists
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body JoinByCodeRequest true "Invite code"
// @Success 200 {object} response.SuccessResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /lists/join [post]
func (h *Handler) Join(c *gin.Context) {
	userID := c.GetString("userID")

	var req JoinByCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}
	if err := ValidateJoinByCodeRequest(&req); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}

	list, err := h.repo.JoinByCode(c.Request.Context(), req.Code, userID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, list)
}

// Share godoc
// @Summary Get the share link for a list
// @Description Deep link that opens the join flow for this list; members only
// @Tags lists
// @Produce json
// @Security BearerAuth
// @Param id path string true "List ID"
// @Success 200 {object} response.SuccessResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /lists/{id}/share [get]
func (h *Handler) Share(c *gin.Context) {
	userID := c.GetString("userID")
	listID := c.Param("id")

	list, err := h.repo.Get(c.Request.Context(), listID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	if list == nil {
		response.NotFound(c, "List not found", "LIST_NOT_FOUND")
		return
	}
	if !list.IsMember(userID) {
		response.Forbidden(c, "Not a member of this list", "NOT_A_MEMBER")
		return
	}
	response.Success(c, map[string]string{
		"link": ShareLink(listID),
		"code": list.Code,
	})
}
