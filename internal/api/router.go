// Package api exposes the resolution and access cores over HTTP for the
// rendering collaborator: authoring-time source resolution, catalog
// reads/writes, and the view-time watch decision.
package api

import (
	"github.com/gin-gonic/gin"

	"coursecast/internal/access"
	"coursecast/internal/resolve"
	"coursecast/internal/store"
)

// Options carries the serving configuration the handlers need.
type Options struct {
	// Watermark is the overlay text handed out with granted playback
	// descriptors. When empty, the viewer ID is used instead.
	Watermark string
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(st *store.Store, resolver *resolve.Resolver, opts Options) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	h := &Handler{
		store:     st,
		resolver:  resolver,
		evaluator: access.NewEvaluator(st),
		opts:      opts,
	}

	api := router.Group("/api")
	{
		api.POST("/resolve", h.Resolve)
		api.POST("/videos", h.CreateVideo)
		api.GET("/videos", h.ListVideos)
		api.GET("/videos/:id", h.GetVideo)
		api.PUT("/videos/:id/source", h.UpdateVideoSource)
		api.GET("/videos/:id/watch", h.Watch)
	}

	return router
}
