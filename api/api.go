// Package api exposes the recipe book over HTTP.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/Skryldev/recipebook/core"
)

// NewRouter returns an engine with logging, panic recovery and the recipe
// routes installed.
func NewRouter(h *Handler, logger core.Logger) *gin.Engine {
	router := gin.New()
	router.Use(LoggingMiddleware(logger))
	router.Use(gin.CustomRecovery(HandlePanics()))
	NewApi(router, h)
	return router
}

func NewApi(router *gin.Engine, h *Handler) {
	recipesV1 := router.Group("recipes/v1")
	{
		recipesV1.GET("/", h.ListRecipes)
		recipesV1.GET("/:id", h.GetRecipe)
		recipesV1.GET("/:id/image", h.GetRecipeImage)
		recipesV1.POST("/", h.CreateRecipe)
		recipesV1.PUT("/:id", h.UpdateRecipe)
		recipesV1.DELETE("/:id", h.DeleteRecipe)
	}
}
