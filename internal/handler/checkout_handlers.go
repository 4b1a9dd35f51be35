package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxWebhookBody caps webhook payloads at 64KB.
const maxWebhookBody = 65536

func (h *APIHandler) listPackages(c *gin.Context) {
	respond(c, http.StatusOK, h.deps.Checkout.ListPackages())
}

func (h *APIHandler) createCheckout(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	session, err := h.deps.Checkout.CreateCheckout(c.Request.Context(), uid, req.PackageID)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusCreated, session)
}

// stripeWebhook needs the raw body for signature verification.
func (h *APIHandler) stripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "failed to read body"})
		return
	}

	result, err := h.deps.Checkout.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		h.logger.Warn("Webhook rejected", zap.Error(err))
		writeError(c, err)
		return
	}
	if result == nil {
		respond(c, http.StatusOK, gin.H{"handled": false})
		return
	}
	respond(c, http.StatusOK, gin.H{"handled": true, "balance": result.Balance, "userId": result.UserID})
}
