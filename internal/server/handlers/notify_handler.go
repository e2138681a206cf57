package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/fms/internal/domain/models"
	service "github.com/mamadbah2/fms/internal/service/whatsapp"
)

// NotifyHandler pushes WhatsApp messages to farm staff.
type NotifyHandler struct {
	svc    service.MessagingService
	logger *zap.Logger
}

// NewNotifyHandler constructs the HTTP handler adapter.
func NewNotifyHandler(svc service.MessagingService, logger *zap.Logger) *NotifyHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotifyHandler{svc: svc, logger: logger}
}

// SendMessage sends a manual notice.
func (h *NotifyHandler) SendMessage(c *gin.Context) {
	var req models.OutboundMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid outbound payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.svc.SendOutbound(c.Request.Context(), req); err != nil {
		h.sendFailed(c, err)
		return
	}

	c.Status(http.StatusAccepted)
}

// SendSummary sends the pasture summary for the current simulated date to the
// configured recipient.
func (h *NotifyHandler) SendSummary(c *gin.Context) {
	if err := h.svc.SendPastureSummary(c.Request.Context()); err != nil {
		h.sendFailed(c, err)
		return
	}

	c.Status(http.StatusAccepted)
}

func (h *NotifyHandler) sendFailed(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "notifications disabled"})
	case errors.Is(err, models.ErrInvalidArguments):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("failed sending outbound", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to send message"})
	}
}
