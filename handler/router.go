package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/pitchdeck-be/types"
)

type Handlers struct {
	Cors    *CorsHandler
	Startup StartupHandler
	Deck    DeckHandler
}

func SetupRouter(h Handlers, maxUploadBytes int64) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	if maxUploadBytes > 0 {
		router.MaxMultipartMemory = maxUploadBytes
	}
	if h.Cors != nil {
		router.Use(h.Cors.CorsMiddleware)
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, types.DataResponse{Status: true, Message: "ok"})
	})

	api := router.Group("/api")
	{
		api.POST("/startups", h.Startup.HandleCreateStartup)
		api.GET("/startups", h.Startup.HandleListStartups)
		api.GET("/startups/:id", h.Startup.HandleGetStartup)

		api.POST("/decks", h.Deck.HandleUploadDeck)
		api.GET("/decks/:id", h.Deck.HandleGetDeck)
		api.GET("/decks/:id/events", h.Deck.HandleDeckEvents)
	}

	return router
}
