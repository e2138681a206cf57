package whatsapp

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/fms/internal/config"
	"github.com/mamadbah2/fms/internal/domain/models"
)

type sentMessage struct {
	to, body string
	preview  bool
}

type fakeClient struct {
	sent []sentMessage
	err  error
}

func (f *fakeClient) SendText(_ context.Context, to, body string, preview bool) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, sentMessage{to: to, body: body, preview: preview})
	return "wamid.test", nil
}

type fakeReports struct {
	report models.PastureReport
	err    error
}

func (f fakeReports) CurrentReport(context.Context) (models.PastureReport, error) {
	return f.report, f.err
}

var cfg = config.WhatsAppConfig{RecipientID: "64211234567"}

func sampleReport() models.PastureReport {
	return models.PastureReport{
		Date:     time.Date(2024, 10, 30, 0, 0, 0, 0, time.UTC),
		Paddocks: []models.PaddockPasture{{PaddockID: 1, Name: "Ridge", Area: 10, DMPerHa: 870, TotalDM: 8700, StockCount: 20}},
		TotalDM:  8700,
	}
}

func TestDayAdvanced_SendsSummary(t *testing.T) {
	c := &fakeClient{}
	svc := NewMetaWhatsAppService(cfg, c, nil, nil)

	require.NoError(t, svc.DayAdvanced(context.Background(), sampleReport()))
	require.Len(t, c.sent, 1)
	assert.Equal(t, "64211234567", c.sent[0].to)
	assert.True(t, strings.HasPrefix(c.sent[0].body, "Pasture summary 2024-10-30"))
	assert.Contains(t, c.sent[0].body, "Ridge: 870 kg DM/ha (20 stock)")
}

func TestSendPastureSummary(t *testing.T) {
	c := &fakeClient{}
	svc := NewMetaWhatsAppService(cfg, c, fakeReports{report: sampleReport()}, nil)
	require.NoError(t, svc.SendPastureSummary(context.Background()))
	assert.Len(t, c.sent, 1)

	boom := errors.New("db locked")
	svc = NewMetaWhatsAppService(cfg, c, fakeReports{err: boom}, nil)
	assert.ErrorIs(t, svc.SendPastureSummary(context.Background()), boom)

	svc = NewMetaWhatsAppService(cfg, c, nil, nil)
	assert.Error(t, svc.SendPastureSummary(context.Background()))
}

func TestSendOutbound(t *testing.T) {
	c := &fakeClient{}
	svc := NewMetaWhatsAppService(cfg, c, nil, nil)

	err := svc.SendOutbound(context.Background(), models.OutboundMessageRequest{To: " ", Message: "hi"})
	assert.ErrorIs(t, err, models.ErrInvalidArguments)

	require.NoError(t, svc.SendOutbound(context.Background(), models.OutboundMessageRequest{To: "6421", Message: "Gate left open", PreviewURL: true}))
	assert.Equal(t, []sentMessage{{to: "6421", body: "Gate left open", preview: true}}, c.sent)

	c.err = errors.New("rate limited")
	err = svc.SendOutbound(context.Background(), models.OutboundMessageRequest{To: "6421", Message: "again"})
	assert.ErrorIs(t, err, c.err)
}

func TestDisabled(t *testing.T) {
	svc := NewMetaWhatsAppService(cfg, nil, nil, nil)
	assert.ErrorIs(t, svc.DayAdvanced(context.Background(), sampleReport()), ErrDisabled)
}
