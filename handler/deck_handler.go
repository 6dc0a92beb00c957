package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/pitchdeck-be/service"
	"github.com/tieubaoca/pitchdeck-be/types"
)

type DeckHandler interface {
	HandleUploadDeck(c *gin.Context)
	HandleGetDeck(c *gin.Context)
	HandleDeckEvents(c *gin.Context)
}

type deckHandler struct {
	deckService service.DeckService
	wsService   *service.WebSocketService
}

func NewDeckHandler(deckService service.DeckService, wsService *service.WebSocketService) DeckHandler {
	return &deckHandler{
		deckService: deckService,
		wsService:   wsService,
	}
}

func (h *deckHandler) HandleUploadDeck(c *gin.Context) {
	startupID, ok := parseID(c.Query("startup_id"))
	if !ok {
		badRequest(c, "Invalid startup_id")
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "Invalid file")
		return
	}

	deck, err := h.deckService.UploadDeck(c.Request.Context(), startupID, header)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, types.DataResponse{
		Status:  true,
		Message: "Deck uploaded, processing will start on the next scheduler tick",
		Data:    deck,
	})
}

func (h *deckHandler) HandleGetDeck(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		badRequest(c, "Invalid deck id")
		return
	}
	detail, err := h.deckService.GetDeckDetail(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: true,
		Data:   detail,
	})
}

// HandleDeckEvents streams stage events; the first message is the deck's
// current state.
func (h *deckHandler) HandleDeckEvents(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		badRequest(c, "Invalid deck id")
		return
	}
	deck, err := h.deckService.GetDeck(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	current := types.DeckEvent{
		Type:      types.TypeWebsocketStage,
		DeckID:    deck.ID,
		Stage:     deck.CurrentStage(),
		Processed: deck.Processed,
		At:        deck.UpdatedAt,
	}
	if deck.LastError != nil && !deck.Processed {
		current.Message = *deck.LastError
	}
	h.wsService.ServeDeckEvents(c.Writer, c.Request, current)
}
