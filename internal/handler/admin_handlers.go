package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"firstlook/internal/models"
)

func (h *APIHandler) analytics(c *gin.Context) {
	m, err := h.deps.Analytics.Metrics(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, m)
}

func (h *APIHandler) duplicates(c *gin.Context) {
	dups, err := h.deps.Analytics.Duplicates(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, dups)
}

func (h *APIHandler) standardizeGenres(c *gin.Context) {
	h.runMaintenance(c, h.deps.Maintenance.StandardizeGenres)
}

func (h *APIHandler) removeOrphanedTags(c *gin.Context) {
	h.runMaintenance(c, h.deps.Maintenance.RemoveOrphanedTags)
}

func (h *APIHandler) cleanupDuplicates(c *gin.Context) {
	h.runMaintenance(c, h.deps.Maintenance.CleanupDuplicates)
}

func (h *APIHandler) standardizePrices(c *gin.Context) {
	var req pricesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	h.runMaintenance(c, func(ctx context.Context, dryRun bool) (*models.MaintenanceReport, error) {
		return h.deps.Maintenance.StandardizePrices(ctx, req.Prices, dryRun)
	})
}

func (h *APIHandler) runMaintenance(c *gin.Context, op func(ctx context.Context, dryRun bool) (*models.MaintenanceReport, error)) {
	var q maintenanceQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	adminID, _ := models.GetUserIDFromContext(c.Request.Context())

	report, err := op(c.Request.Context(), q.DryRun)
	if err != nil {
		writeError(c, err)
		return
	}
	h.logger.Info("Maintenance requested",
		zap.String("adminID", adminID),
		zap.String("operation", report.Operation),
		zap.Bool("dryRun", report.DryRun),
	)
	respond(c, http.StatusOK, report)
}

// generate runs one generation synchronously. A failed generation answers
// 502 with the recorded result.
func (h *APIHandler) generate(c *gin.Context) {
	var req generateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
	}

	var (
		result *models.GenerationResult
		err    error
	)
	if req.SeedTitle != "" {
		result, err = h.deps.Generation.GenerateByTitle(c.Request.Context(), req.SeedTitle)
	} else {
		result, err = h.deps.Generation.GenerateNext(c.Request.Context())
	}
	if err != nil {
		writeError(c, err)
		return
	}
	if !result.Success {
		c.JSON(http.StatusBadGateway, result)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *APIHandler) enqueueGeneration(c *gin.Context) {
	var req enqueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	adminID, _ := models.GetUserIDFromContext(c.Request.Context())

	taskIDs, err := h.deps.Generation.EnqueueGeneration(c.Request.Context(), adminID, req.Count)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusAccepted, gin.H{"taskIds": taskIDs})
}

func (h *APIHandler) resyncUser(c *gin.Context) {
	result, err := h.deps.Balance.Resync(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, result)
}
