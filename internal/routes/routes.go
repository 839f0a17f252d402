package routes

import (
	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"

	"github.com/maggie-app/maggie-api/internal/config"
	"github.com/maggie-app/maggie-api/internal/features/items"
	"github.com/maggie-app/maggie-api/internal/features/lists"
	"github.com/maggie-app/maggie-api/internal/middleware"
	"github.com/maggie-app/maggie-api/internal/store"
)

func SetupRoutes(router *gin.Engine, s store.Client, verifier *fbauth.Client, cfg *config.Config) {
	// API v1 group
	api := router.Group("/api/v1")

	auth := middleware.Auth(verifier)

	// The list registry is shared: the item routes use it for the
	// membership guard and the live list snapshot in the event stream.
	listsRepo := lists.NewRepository(s)

	// Register feature routes
	lists.RegisterRoutes(api, listsRepo, auth)
	items.RegisterRoutes(api, s, listsRepo, auth)
}
