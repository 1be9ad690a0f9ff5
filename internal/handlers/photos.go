package handlers

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"kilnlog-backend/internal/middleware"
	"kilnlog-backend/internal/models"
	"kilnlog-backend/internal/supabase"
)

type PhotosHandler struct {
	dbClient      *supabase.DatabaseClient
	storageClient *supabase.StorageClient
}

func NewPhotosHandler(dbClient *supabase.DatabaseClient, storageClient *supabase.StorageClient) *PhotosHandler {
	return &PhotosHandler{
		dbClient:      dbClient,
		storageClient: storageClient,
	}
}

// UploadPiecePhotos appends uploaded photos to a piece. The first photo a
// piece ever receives becomes its cover image by position.
func (h *PhotosHandler) UploadPiecePhotos(c *gin.Context) {
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

	urls, uploadErrs, err := h.uploadAll(c, userID, pieceID, "pieces")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to parse multipart form",
			Message: err.Error(),
		})
		return
	}

	photos := append(piece.Photos, urls...)
	if len(urls) > 0 {
		if err := h.dbClient.UpdatePiecePhotos(pieceID, userID, photos); err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "failed to save photos",
				Message: err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, models.PhotoUploadResponse{Photos: photos, Errors: uploadErrs})
}

func (h *PhotosHandler) UploadInspirationPhotos(c *gin.Context) {
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

	urls, uploadErrs, err := h.uploadAll(c, userID, inspirationID, "inspirations")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to parse multipart form",
			Message: err.Error(),
		})
		return
	}

	photos := append(inspiration.Photos, urls...)
	if len(urls) > 0 {
		if err := h.dbClient.UpdateInspirationPhotos(inspirationID, userID, photos); err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "failed to save photos",
				Message: err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, models.PhotoUploadResponse{Photos: photos, Errors: uploadErrs})
}

// uploadAll stores every file in the "photos" multipart field. A failed
// upload is reported and skipped; the rest of the batch still goes through.
func (h *PhotosHandler) uploadAll(c *gin.Context, userID, entityID uuid.UUID, kind string) ([]string, []string, error) {
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		return nil, nil, err
	}

	form := c.Request.MultipartForm
	if form == nil || len(form.File["photos"]) == 0 {
		return nil, nil, fmt.Errorf("no photos in request")
	}

	var urls []string
	var uploadErrs []string
	for _, fileHeader := range form.File["photos"] {
		file, err := fileHeader.Open()
		if err != nil {
			uploadErrs = append(uploadErrs, fmt.Sprintf("%s: %v", fileHeader.Filename, err))
			continue
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			uploadErrs = append(uploadErrs, fmt.Sprintf("%s: %v", fileHeader.Filename, err))
			continue
		}

		filename := fmt.Sprintf("%s_%s", time.Now().Format("20060102_150405"), fileHeader.Filename)
		_, url, err := h.storageClient.UploadPhoto(userID, entityID, kind, filename, data)
		if err != nil {
			uploadErrs = append(uploadErrs, fmt.Sprintf("%s: %v", fileHeader.Filename, err))
			continue
		}
		urls = append(urls, url)
	}

	return urls, uploadErrs, nil
}
