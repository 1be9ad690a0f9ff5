package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"kilnlog-backend/internal/core"
	"kilnlog-backend/internal/middleware"
	"kilnlog-backend/internal/models"
	"kilnlog-backend/internal/supabase"
)

type InspirationsHandler struct {
	dbClient *supabase.DatabaseClient
}

func NewInspirationsHandler(dbClient *supabase.DatabaseClient) *InspirationsHandler {
	return &InspirationsHandler{
		dbClient: dbClient,
	}
}

func (h *InspirationsHandler) CreateInspiration(c *gin.Context) {
	if h.dbClient == nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "database not available"})
		return
	}

	userID, err := middleware.UserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: err.Error()})
		return
	}

	var req models.CreateInspirationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	inspiration := &core.Inspiration{
		ID:      uuid.New(),
		UserID:  userID,
		Note:    req.Note,
		Tags:    req.Tags,
		Photos:  req.Photos,
		LinkURL: req.LinkURL,
	}

	if err := h.dbClient.CreateInspiration(inspiration); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to create inspiration",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, inspiration)
}

func (h *InspirationsHandler) ListInspirations(c *gin.Context) {
	if h.dbClient == nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "database not available"})
		return
	}

	userID, err := middleware.UserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: err.Error()})
		return
	}

	inspirations, err := h.dbClient.ListInspirations(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list inspirations",
			Message: err.Error(),
		})
		return
	}

	if inspirations == nil {
		inspirations = []core.Inspiration{}
	}
	c.JSON(http.StatusOK, models.InspirationListResponse{Inspirations: inspirations})
}

func (h *InspirationsHandler) GetInspiration(c *gin.Context) {
	if h.dbClient == nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "database not available"})
		return
	}

	userID, err := middleware.UserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: err.Error()})
		return
	}

	inspirationID, err := uuid.Parse(c.Param("inspiration_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid inspiration id"})
		return
	}

	inspiration, err := h.dbClient.FindInspiration(inspirationID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to get inspiration",
			Message: err.Error(),
		})
		return
	}
	if inspiration == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "inspiration not found"})
		return
	}

	c.JSON(http.StatusOK, inspiration)
}
