package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/fms/internal/domain/models"
	"github.com/mamadbah2/fms/internal/service/simulation"
	service "github.com/mamadbah2/fms/internal/service/whatsapp"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type failingSimulator struct{ err error }

func (f failingSimulator) AdvanceOneDay(context.Context) (time.Time, error) {
	return time.Time{}, f.err
}

type fakeArchive struct {
	reports map[string]models.PastureReport
}

func (f fakeArchive) FindPastureReport(_ context.Context, date time.Time) (models.PastureReport, error) {
	r, ok := f.reports[date.Format(models.DateLayout)]
	if !ok {
		return models.PastureReport{}, fmt.Errorf("report: %w", models.ErrNotFound)
	}
	return r, nil
}

type fakeHistory struct {
	gotID          uint
	gotFrom, gotTo time.Time
	rows           []models.PaddockPasture
}

func (f *fakeHistory) History(_ context.Context, id uint, from, to time.Time) ([]models.PaddockPasture, error) {
	f.gotID, f.gotFrom, f.gotTo = id, from, to
	return f.rows, nil
}

type fakeMessaging struct {
	outbound []models.OutboundMessageRequest
	err      error
}

func (f *fakeMessaging) SendOutbound(_ context.Context, req models.OutboundMessageRequest) error {
	if f.err != nil {
		return f.err
	}
	f.outbound = append(f.outbound, req)
	return nil
}

func (f *fakeMessaging) SendPastureSummary(context.Context) error { return f.err }

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		fmt.Errorf("x: %w", models.ErrNotFound):         http.StatusNotFound,
		fmt.Errorf("x: %w", models.ErrInvalidArguments): http.StatusBadRequest,
		fmt.Errorf("x: %w", models.ErrPaddockOccupied):  http.StatusConflict,
		errors.New("disk full"):                         http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, statusFor(err), err.Error())
	}
}

func TestAdvanceDate_UpdateFailed(t *testing.T) {
	cause := fmt.Errorf("%w: %w", simulation.ErrUpdateFailed, errors.New("database is locked"))
	h := NewFarmHandler(nil, failingSimulator{err: cause}, nil, nil)

	r := gin.New()
	r.POST("/api/advance-date", h.AdvanceDate)

	rec := serve(r, http.MethodPost, "/api/advance-date", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"update failed"}`, rec.Body.String())
}

func TestArchiveHandler(t *testing.T) {
	date := time.Date(2024, 10, 30, 0, 0, 0, 0, time.UTC)
	history := &fakeHistory{rows: []models.PaddockPasture{{PaddockID: 3, Name: "Back Flat", DMPerHa: 1800}}}
	h := NewArchiveHandler(fakeArchive{reports: map[string]models.PastureReport{
		"2024-10-30": {Date: date, TotalDM: 1234},
	}}, history, nil)

	r := gin.New()
	r.GET("/reports/:date", h.Report)
	r.GET("/paddocks/:id/history", h.History)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/reports/2024-10-30", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/reports/2024-10-31", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodGet, "/reports/yesterday", "").Code)

	rec := serve(r, http.MethodGet, "/paddocks/3/history?from=2024-10-29&to=2024-11-05", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint(3), history.gotID)
	assert.Equal(t, time.Date(2024, 11, 5, 0, 0, 0, 0, time.UTC), history.gotTo)
	assert.Contains(t, rec.Body.String(), "Back Flat")

	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodGet, "/paddocks/3/history?from=2024-11-05&to=2024-10-29", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodGet, "/paddocks/0/history?from=2024-10-29&to=2024-10-30", "").Code)
}

func TestArchiveHandler_Disabled(t *testing.T) {
	h := NewArchiveHandler(nil, nil, nil)
	r := gin.New()
	r.GET("/reports/:date", h.Report)
	r.GET("/paddocks/:id/history", h.History)

	assert.Equal(t, http.StatusServiceUnavailable, serve(r, http.MethodGet, "/reports/2024-10-30", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, serve(r, http.MethodGet, "/paddocks/1/history", "").Code)
}

func TestNotifyHandler(t *testing.T) {
	msg := &fakeMessaging{}
	h := NewNotifyHandler(msg, nil)
	r := gin.New()
	r.POST("/notify", h.SendMessage)
	r.POST("/notify/summary", h.SendSummary)

	rec := serve(r, http.MethodPost, "/notify", `{"to":"6421","message":"Trough leaking in Swamp"}`)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, msg.outbound, 1)
	assert.Equal(t, "6421", msg.outbound[0].To)

	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodPost, "/notify", `{"to":"6421"}`).Code)
	assert.Equal(t, http.StatusAccepted, serve(r, http.MethodPost, "/notify/summary", "").Code)

	msg.err = service.ErrDisabled
	assert.Equal(t, http.StatusServiceUnavailable, serve(r, http.MethodPost, "/notify/summary", "").Code)

	msg.err = errors.New("meta down")
	assert.Equal(t, http.StatusBadGateway, serve(r, http.MethodPost, "/notify", `{"to":"6421","message":"hi"}`).Code)
}
