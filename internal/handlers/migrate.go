package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"kilnlog-backend/internal/localstore"
	"kilnlog-backend/internal/middleware"
	"kilnlog-backend/internal/models"
	"kilnlog-backend/internal/services"
	"kilnlog-backend/internal/supabase"
)

type MigrateHandler struct {
	migrationService *services.MigrationService
	realtimeClient   *supabase.RealtimeClient
}

func NewMigrateHandler(migrationService *services.MigrationService, realtimeClient *supabase.RealtimeClient) *MigrateHandler {
	return &MigrateHandler{
		migrationService: migrationService,
		realtimeClient:   realtimeClient,
	}
}

// Migrate transfers an uploaded guest bundle into the authenticated
// account. Items that fail are skipped and reported; the client keeps its
// local copy of those and retries on a later run.
func (h *MigrateHandler) Migrate(c *gin.Context) {
	if h.migrationService == nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "migration not available"})
		return
	}

	userID, err := middleware.UserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: err.Error()})
		return
	}

	var req models.MigrateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	// The bundle becomes a transient local store so the one-shot routine
	// runs exactly as it would against an on-device database.
	store := localstore.NewMemoryStore()
	data := &localstore.GuestData{
		Pieces:       req.Pieces,
		Inspirations: req.Inspirations,
		Links:        req.Links,
	}
	if err := localstore.SaveGuestData(store, data); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to stage guest data",
			Message: err.Error(),
		})
		return
	}

	report, err := h.migrationService.MigrateGuestData(store, userID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, services.ErrNotAuthenticated) {
			status = http.StatusUnauthorized
		}
		c.JSON(status, models.ErrorResponse{
			Error:   "migration failed",
			Message: err.Error(),
		})
		return
	}

	migrated, err := localstore.LoadGuestData(store)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to read migration results",
			Message: err.Error(),
		})
		return
	}

	response := models.MigrateResponse{
		Status:       models.StatusSynced,
		Report:       report,
		Pieces:       []models.MigratedItem{},
		Inspirations: []models.MigratedItem{},
	}
	for _, p := range migrated.Pieces {
		if p.RemoteID != nil {
			response.Pieces = append(response.Pieces, models.MigratedItem{
				LocalID:  p.ID,
				RemoteID: *p.RemoteID,
			})
		}
	}
	for _, i := range migrated.Inspirations {
		if i.RemoteID != nil {
			response.Inspirations = append(response.Inspirations, models.MigratedItem{
				LocalID:  i.ID,
				RemoteID: *i.RemoteID,
			})
		}
	}

	if h.realtimeClient != nil {
		migratedCount := report.PiecesMigrated + report.InspirationsMigrated
		h.realtimeClient.PublishUserEvent(userID, "migration_completed",
			supabase.MigrationCompletedPayload(userID, migratedCount, len(report.Failures)))
	}

	status := http.StatusOK
	if report.Partial() {
		response.Status = models.StatusPartial
		status = http.StatusMultiStatus
	}
	c.JSON(status, response)
}
