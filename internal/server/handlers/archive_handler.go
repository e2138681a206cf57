package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/fms/internal/domain/models"
)

// ReportArchive looks up archived pasture reports by simulated date.
type ReportArchive interface {
	FindPastureReport(ctx context.Context, date time.Time) (models.PastureReport, error)
}

// PastureHistory reads a paddock's recorded pasture over a date range.
type PastureHistory interface {
	History(ctx context.Context, paddockID uint, start, end time.Time) ([]models.PaddockPasture, error)
}

// ArchiveHandler serves the optional report archive and pasture ledger.
// Either backend may be nil when it is not configured.
type ArchiveHandler struct {
	archive ReportArchive
	history PastureHistory
	logger  *zap.Logger
}

// NewArchiveHandler constructs the HTTP handler adapter.
func NewArchiveHandler(archive ReportArchive, history PastureHistory, logger *zap.Logger) *ArchiveHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArchiveHandler{archive: archive, history: history, logger: logger}
}

// Report returns the archived report for the date in the path.
func (h *ArchiveHandler) Report(c *gin.Context) {
	if h.archive == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "report archive disabled"})
		return
	}

	date, err := time.Parse(models.DateLayout, c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	report, err := h.archive.FindPastureReport(c.Request.Context(), date)
	if err != nil {
		respondError(c, h.logger, "failed to load report", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// History returns a paddock's ledger rows between the from and to query
// dates, both inclusive.
func (h *ArchiveHandler) History(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "pasture ledger disabled"})
		return
	}

	id, ok := idParam(c)
	if !ok {
		return
	}

	from, errFrom := time.Parse(models.DateLayout, c.Query("from"))
	to, errTo := time.Parse(models.DateLayout, c.Query("to"))
	if errFrom != nil || errTo != nil || to.Before(from) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to must be YYYY-MM-DD with from <= to"})
		return
	}

	rows, err := h.history.History(c.Request.Context(), id, from, to)
	if err != nil {
		respondError(c, h.logger, "failed to read pasture ledger", err)
		return
	}
	if rows == nil {
		rows = []models.PaddockPasture{}
	}
	c.JSON(http.StatusOK, rows)
}
