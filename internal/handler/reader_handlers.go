package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"firstlook/internal/models"
)

func (h *APIHandler) listStories(c *gin.Context) {
	var q listStoriesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}

	page, err := h.deps.Library.ListStories(c.Request.Context(), models.StoryFilter{
		Subgenre: models.Subgenre(q.Subgenre),
		Limit:    q.Limit,
		Offset:   q.Offset,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, page)
}

func (h *APIHandler) getStory(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	view, err := h.deps.Library.GetStory(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, view)
}

func (h *APIHandler) getSeries(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	view, err := h.deps.Library.GetSeries(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, view)
}

func (h *APIHandler) unlockStory(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	storyID := c.Param("id")

	result, err := h.deps.Library.UnlockStory(c.Request.Context(), uid, storyID)
	if err != nil {
		h.logger.Info("Unlock rejected", zap.String("userID", uid), zap.String("storyID", storyID), zap.Error(err))
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, result)
}

func (h *APIHandler) toggleFavorite(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	storyID := c.Param("id")
	favorite, err := h.deps.Library.ToggleFavorite(c.Request.Context(), uid, storyID)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"storyId": storyID, "favorite": favorite})
}

func (h *APIHandler) markRead(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	if err := h.deps.Library.MarkRead(c.Request.Context(), uid, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *APIHandler) getProfile(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	profile, err := h.deps.Library.GetProfile(c.Request.Context(), uid)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, profile)
}

func (h *APIHandler) updatePreferences(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var req preferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	prefs, err := h.deps.Library.UpdatePreferences(c.Request.Context(), uid, req.Subgenres)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, prefs)
}

func (h *APIHandler) resyncMe(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	result, err := h.deps.Balance.Resync(c.Request.Context(), uid)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, result)
}
