package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"kilnlog-backend/internal/middleware"
	"kilnlog-backend/internal/models"
	"kilnlog-backend/internal/reconcile"
	"kilnlog-backend/internal/services"
	"kilnlog-backend/internal/supabase"
)

type LinksHandler struct {
	linkService    *services.LinkService
	realtimeClient *supabase.RealtimeClient
}

func NewLinksHandler(linkService *services.LinkService, realtimeClient *supabase.RealtimeClient) *LinksHandler {
	return &LinksHandler{
		linkService:    linkService,
		realtimeClient: realtimeClient,
	}
}

func (h *LinksHandler) GetPieceInspirations(c *gin.Context) {
	userID, err := middleware.UserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: err.Error()})
		return
	}

	pieceID, err := uuid.Parse(c.Param("piece_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid piece id"})
		return
	}

	ids, err := h.linkService.ListPieceInspirations(pieceID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list links",
			Message: err.Error(),
		})
		return
	}

	if ids == nil {
		ids = []uuid.UUID{}
	}
	c.JSON(http.StatusOK, models.LinkedIDsResponse{IDs: ids})
}

// SetPieceInspirations replaces the piece's linked inspirations with the
// requested set. The response distinguishes a clean sync from a partial
// one; partially applied batches keep their successful operations.
func (h *LinksHandler) SetPieceInspirations(c *gin.Context) {
	userID, err := middleware.UserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: err.Error()})
		return
	}

	pieceID, err := uuid.Parse(c.Param("piece_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid piece id"})
		return
	}

	var req models.SetPieceInspirationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	desired, err := parseIDs(req.InspirationIDs)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	result, err := h.linkService.SetPieceInspirations(pieceID, userID, desired)
	h.respondSync(c, pieceID, result, err)
}

func (h *LinksHandler) GetInspirationPieces(c *gin.Context) {
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

	ids, err := h.linkService.ListInspirationPieces(inspirationID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list links",
			Message: err.Error(),
		})
		return
	}

	if ids == nil {
		ids = []uuid.UUID{}
	}
	c.JSON(http.StatusOK, models.LinkedIDsResponse{IDs: ids})
}

func (h *LinksHandler) SetInspirationPieces(c *gin.Context) {
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

	var req models.SetInspirationPiecesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	desired, err := parseIDs(req.PieceIDs)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	result, err := h.linkService.SetInspirationPieces(inspirationID, userID, desired)
	h.respondSync(c, inspirationID, result, err)
}

func (h *LinksHandler) respondSync(c *gin.Context, anchorID uuid.UUID, result reconcile.Result, err error) {
	var partial *reconcile.PartialError
	switch {
	case err == nil:
	case errors.Is(err, services.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "not authenticated"})
		return
	case errors.As(err, &partial):
		// Fall through; the partial result still carries what committed.
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to sync links",
			Message: err.Error(),
		})
		return
	}

	if h.realtimeClient != nil {
		h.realtimeClient.PublishPieceEvent(anchorID, "links_synced",
			supabase.LinksSyncedPayload(anchorID, len(result.Added), len(result.Removed), len(result.Failures)))
	}

	response := models.SyncLinksResponse{
		Status:   models.StatusSynced,
		Added:    emptyIfNil(result.Added),
		Removed:  emptyIfNil(result.Removed),
		Failures: result.Failures,
	}
	status := http.StatusOK
	if partial != nil {
		response.Status = models.StatusPartial
		status = http.StatusMultiStatus
	}
	c.JSON(status, response)
}

func parseIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, errors.New("invalid id: " + s)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func emptyIfNil(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}
