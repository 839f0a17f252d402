// ================== internal/features/items/routes.go ==================
package items

import (
	"github.com/gin-gonic/gin"

	"github.com/maggie-app/maggie-api/internal/features/lists"
	"github.com/maggie-app/maggie-api/internal/store"
)

func RegisterRoutes(router *gin.RouterGroup, s store.Client, listsRepo *lists.Repository, auth gin.HandlerFunc) {
	repo := NewRepository(s)
	projector := NewProjector(s)
	handler := NewHandler(repo, projector, listsRepo)

	scoped := router.Group("/lists/:id")
	scoped.Use(auth) // All item routes require authentication
	{
		scoped.GET("/events", handler.Events)
		scoped.POST("/items", handler.Add)
		scoped.PATCH("/items/:itemId", handler.Update)
		scoped.POST("/items/:itemId/toggle", handler.Toggle)
		scoped.POST("/items/:itemId/increment", handler.Increment)
		scoped.DELETE("/items/:itemId", handler.Remove)
	}
}
