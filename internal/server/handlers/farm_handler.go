package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/fms/internal/domain/models"
)

// FarmService is the record-keeping surface used by FarmHandler.
type FarmService interface {
	CurrentDate(ctx context.Context) (time.Time, error)
	ListPaddocks(ctx context.Context) ([]models.PaddockView, error)
	GetPaddock(ctx context.Context, id uint) (models.Paddock, error)
	CreatePaddock(ctx context.Context, in models.PaddockInput) (models.Paddock, error)
	UpdatePaddock(ctx context.Context, id uint, in models.PaddockInput) (models.Paddock, error)
	UpdatePaddockAreas(ctx context.Context, areas map[uint]float64) error
	ListMobs(ctx context.Context) ([]models.MobSummary, error)
	ListStock(ctx context.Context) ([]models.MobStock, error)
	MoveMob(ctx context.Context, mobID, paddockID uint) error
	GetAnimal(ctx context.Context, id uint) (models.AnimalView, error)
	UpdateAnimal(ctx context.Context, id uint, in models.AnimalInput) (models.AnimalView, error)
	Reset(ctx context.Context) (time.Time, error)
	DatabaseVersion(ctx context.Context) (string, error)
}

// Simulator advances the simulated clock.
type Simulator interface {
	AdvanceOneDay(ctx context.Context) (time.Time, error)
}

// ReportService builds pasture reports and spreadsheet exports.
type ReportService interface {
	CurrentReport(ctx context.Context) (models.PastureReport, error)
	WriteWorkbook(ctx context.Context, w io.Writer) error
}

// FarmHandler serves paddocks, mobs, stock and the simulated clock.
type FarmHandler struct {
	farm    FarmService
	sim     Simulator
	reports ReportService
	logger  *zap.Logger
}

// NewFarmHandler constructs the HTTP handler adapter.
func NewFarmHandler(farm FarmService, sim Simulator, reports ReportService, logger *zap.Logger) *FarmHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FarmHandler{farm: farm, sim: sim, reports: reports, logger: logger}
}

// Version reports the database version.
func (h *FarmHandler) Version(c *gin.Context) {
	v, err := h.farm.DatabaseVersion(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "database unavailable", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"database_version": v})
}

// CurrentDate returns the simulated date.
func (h *FarmHandler) CurrentDate(c *gin.Context) {
	date, err := h.farm.CurrentDate(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "failed to read date", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"curr_date": date.Format(models.DateLayout)})
}

// AdvanceDate moves the simulated clock forward by one day.
func (h *FarmHandler) AdvanceDate(c *gin.Context) {
	date, err := h.sim.AdvanceOneDay(c.Request.Context())
	if err != nil {
		h.logger.Error("advance date failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"curr_date": date.Format(models.DateLayout)})
}

// Reset restores the farm snapshot.
func (h *FarmHandler) Reset(c *gin.Context) {
	date, err := h.farm.Reset(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "reset failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"curr_date": date.Format(models.DateLayout)})
}

func (h *FarmHandler) ListPaddocks(c *gin.Context) {
	paddocks, err := h.farm.ListPaddocks(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "failed to list paddocks", err)
		return
	}
	c.JSON(http.StatusOK, paddocks)
}

func (h *FarmHandler) GetPaddock(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	p, err := h.farm.GetPaddock(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "failed to load paddock", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *FarmHandler) CreatePaddock(c *gin.Context) {
	var in models.PaddockInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	p, err := h.farm.CreatePaddock(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, "failed to create paddock", err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *FarmHandler) UpdatePaddock(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in models.PaddockInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	p, err := h.farm.UpdatePaddock(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, h.logger, "failed to update paddock", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// UpdatePaddockAreas edits several paddock areas in one transaction.
func (h *FarmHandler) UpdatePaddockAreas(c *gin.Context) {
	var req models.PaddockAreasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.farm.UpdatePaddockAreas(c.Request.Context(), req.Areas); err != nil {
		respondError(c, h.logger, "failed to update areas", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ExportPaddocks streams the paddock and mob workbook.
func (h *FarmHandler) ExportPaddocks(c *gin.Context) {
	date, err := h.farm.CurrentDate(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "export failed", err)
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="paddocks-%s.xlsx"`, date.Format(models.DateLayout)))
	if err := h.reports.WriteWorkbook(c.Request.Context(), c.Writer); err != nil {
		h.logger.Error("export failed", zap.Error(err))
		if !c.Writer.Written() {
			c.Header("Content-Disposition", "")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		}
	}
}

// PastureReport returns the pasture report for the current simulated date.
func (h *FarmHandler) PastureReport(c *gin.Context) {
	report, err := h.reports.CurrentReport(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "failed to build report", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *FarmHandler) ListMobs(c *gin.Context) {
	mobs, err := h.farm.ListMobs(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "failed to list mobs", err)
		return
	}
	c.JSON(http.StatusOK, mobs)
}

// MoveMob moves a mob into an unoccupied paddock.
func (h *FarmHandler) MoveMob(c *gin.Context) {
	var req models.MoveMobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.farm.MoveMob(c.Request.Context(), req.MobID, req.PaddockID); err != nil {
		respondError(c, h.logger, "failed to move mob", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mob_id": req.MobID, "paddock_id": req.PaddockID})
}

func (h *FarmHandler) ListStock(c *gin.Context) {
	stock, err := h.farm.ListStock(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "failed to list stock", err)
		return
	}
	c.JSON(http.StatusOK, stock)
}

func (h *FarmHandler) GetAnimal(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	animal, err := h.farm.GetAnimal(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "failed to load animal", err)
		return
	}
	c.JSON(http.StatusOK, animal)
}

func (h *FarmHandler) UpdateAnimal(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in models.AnimalInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	animal, err := h.farm.UpdateAnimal(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, h.logger, "failed to update animal", err)
		return
	}
	c.JSON(http.StatusOK, animal)
}
