// ================== internal/features/lists/routes.go ==================
package lists

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup, repo *Repository, auth gin.HandlerFunc) {
	handler := NewHandler(repo)

	lists := router.Group("/lists")
	lists.Use(auth) // All list routes require authentication
	{
		lists.POST("", handler.Create)
		lists.GET("", handler.List)
		lists.POST("/join", handler.Join)
		lists.GET("/:id", handler.Get)
		lists.GET("/:id/share", handler.Share)
	}
}
