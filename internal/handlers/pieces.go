package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"kilnlog-backend/internal/core"
	"kilnlog-backend/internal/middleware"
	"kilnlog-backend/internal/models"
	"kilnlog-backend/internal/services"
	"kilnlog-backend/internal/supabase"
)

type PiecesHandler struct {
	pieceService   *services.PieceService
	dbClient       *supabase.DatabaseClient
	realtimeClient *supabase.RealtimeClient
}

func NewPiecesHandler(pieceService *services.PieceService, dbClient *supabase.DatabaseClient, realtimeClient *supabase.RealtimeClient) *PiecesHandler {
	return &PiecesHandler{
		pieceService:   pieceService,
		dbClient:       dbClient,
		realtimeClient: realtimeClient,
	}
}

func (h *PiecesHandler) UpsertPiece(c *gin.Context) {
	if h.dbClient == nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "database not available"})
		return
	}

	userID, err := middleware.UserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: err.Error()})
		return
	}

	var req models.UpsertPieceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	stage, err := core.ParseStage(req.CurrentStage)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	pieceID := uuid.New()
	if req.ID != "" {
		pieceID, err = uuid.Parse(req.ID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid piece id"})
			return
		}
	}

	piece := &core.Piece{
		ID:             pieceID,
		UserID:         userID,
		Title:          req.Title,
		CurrentStage:   stage,
		History:        req.History,
		NextStep:       req.NextStep,
		NextReminderAt: req.NextReminderAt,
		Photos:         req.Photos,
	}

	saved, created, err := h.pieceService.Upsert(piece, time.Now())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, services.ErrNotAuthenticated) {
			status = http.StatusUnauthorized
		}
		c.JSON(status, models.ErrorResponse{
			Error:   "failed to save piece",
			Message: err.Error(),
		})
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, saved)
}

func (h *PiecesHandler) ListPieces(c *gin.Context) {
	if h.dbClient == nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "database not available"})
		return
	}

	userID, err := middleware.UserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: err.Error()})
		return
	}

	pieces, err := h.dbClient.ListPieces(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list pieces",
			Message: err.Error(),
		})
		return
	}

	if pieces == nil {
		pieces = []core.Piece{}
	}
	c.JSON(http.StatusOK, models.PieceListResponse{Pieces: pieces})
}

func (h *PiecesHandler) GetPiece(c *gin.Context) {
	if h.dbClient == nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "database not available"})
		return
	}

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

	piece, err := h.dbClient.FindPiece(pieceID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to get piece",
			Message: err.Error(),
		})
		return
	}
	if piece == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "piece not found"})
		return
	}

	c.JSON(http.StatusOK, piece)
}

// AdvancePiece moves the piece to the next production stage. The successor
// is fixed by the stage table, never chosen by the caller.
func (h *PiecesHandler) AdvancePiece(c *gin.Context) {
	if h.dbClient == nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "database not available"})
		return
	}

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

	piece, err := h.pieceService.Advance(pieceID, userID, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to advance piece",
			Message: err.Error(),
		})
		return
	}

	if h.realtimeClient != nil {
		h.realtimeClient.PublishPieceEvent(piece.ID, "piece_advanced",
			supabase.PieceAdvancedPayload(piece.ID, string(piece.CurrentStage)))
	}

	c.JSON(http.StatusOK, piece)
}
