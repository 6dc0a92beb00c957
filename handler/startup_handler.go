package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/pitchdeck-be/service"
	"github.com/tieubaoca/pitchdeck-be/types"
)

type StartupHandler interface {
	HandleCreateStartup(c *gin.Context)
	HandleListStartups(c *gin.Context)
	HandleGetStartup(c *gin.Context)
}

type startupHandler struct {
	startupService service.StartupService
}

func NewStartupHandler(startupService service.StartupService) StartupHandler {
	return &startupHandler{
		startupService: startupService,
	}
}

func (h *startupHandler) HandleCreateStartup(c *gin.Context) {
	var req types.CreateStartupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	startup, err := h.startupService.CreateStartup(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, types.DataResponse{
		Status: true,
		Data:   startup,
	})
}

func (h *startupHandler) HandleListStartups(c *gin.Context) {
	startups, err := h.startupService.ListStartups(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: true,
		Data:   startups,
	})
}

func (h *startupHandler) HandleGetStartup(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		badRequest(c, "Invalid startup id")
		return
	}
	startup, err := h.startupService.GetStartup(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: true,
		Data:   startup,
	})
}
