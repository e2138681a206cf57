package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/fms/internal/config"
	"github.com/mamadbah2/fms/internal/domain/models"
	"github.com/mamadbah2/fms/internal/service/reporting"
	client "github.com/mamadbah2/fms/pkg/clients/whatsapp"
)

// ErrDisabled is returned when notifications are not configured.
var ErrDisabled = errors.New("whatsapp notifications disabled")

// MessagingService describes the operations the HTTP layer and scheduler can
// perform.
type MessagingService interface {
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
	SendPastureSummary(ctx context.Context) error
}

// ReportSource builds the report for the current simulated date.
type ReportSource interface {
	CurrentReport(ctx context.Context) (models.PastureReport, error)
}

// MetaWhatsAppService is the production implementation backed by WhatsApp Cloud API.
type MetaWhatsAppService struct {
	cfg     config.WhatsAppConfig
	client  client.Client
	reports ReportSource
	logger  *zap.Logger
}

// NewMetaWhatsAppService wires a new service instance. A nil client disables
// sending.
func NewMetaWhatsAppService(cfg config.WhatsAppConfig, c client.Client, reports ReportSource, logger *zap.Logger) *MetaWhatsAppService {
	svc := &MetaWhatsAppService{
		cfg:     cfg,
		client:  c,
		reports: reports,
		logger:  logger,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// DayAdvanced sends the pasture summary of a newly committed day to the
// configured recipient.
func (s *MetaWhatsAppService) DayAdvanced(ctx context.Context, report models.PastureReport) error {
	return s.send(ctx, s.cfg.RecipientID, reporting.FormatSummary(report), false)
}

// SendPastureSummary sends the summary for the current simulated date.
func (s *MetaWhatsAppService) SendPastureSummary(ctx context.Context) error {
	if s.reports == nil {
		return errors.New("no report source configured")
	}
	report, err := s.reports.CurrentReport(ctx)
	if err != nil {
		return fmt.Errorf("build pasture summary: %w", err)
	}
	return s.send(ctx, s.cfg.RecipientID, reporting.FormatSummary(report), false)
}

// SendOutbound lets farm staff push a manual notice via HTTP.
func (s *MetaWhatsAppService) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	if strings.TrimSpace(req.To) == "" || strings.TrimSpace(req.Message) == "" {
		return fmt.Errorf("recipient and message are required: %w", models.ErrInvalidArguments)
	}
	return s.send(ctx, req.To, req.Message, req.PreviewURL)
}

func (s *MetaWhatsAppService) send(ctx context.Context, to, body string, previewURL bool) error {
	if s.client == nil {
		return ErrDisabled
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	id, err := s.client.SendText(ctxWithTimeout, to, body, previewURL)
	if err != nil {
		return fmt.Errorf("send to %s: %w", to, err)
	}

	s.logger.Info("whatsapp message sent", zap.String("to", to), zap.String("message_id", id))
	return nil
}
