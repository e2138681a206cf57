package simulation

import (
	"math"
	"time"

	"github.com/mamadbah2/fms/internal/domain/models"
)

const (
	// PastureGrowthRate is kg DM grown per hectare per day.
	PastureGrowthRate = 65.0
	// StockConsumptionRate is kg DM eaten per animal per day.
	StockConsumptionRate = 14.0
)

// NextDMPerHa returns a paddock's dry matter per hectare after one day.
// Pasture cannot go into deficit, so the result is floored at zero.
func NextDMPerHa(area, dmPerHa float64, stockCount int) float64 {
	growth := area * PastureGrowthRate
	consumption := float64(stockCount) * StockConsumptionRate
	return math.Max(0, dmPerHa+growth-consumption)
}

// Step advances date by one calendar day and computes each paddock's new
// pasture independently of the others.
func Step(date time.Time, paddocks []models.PaddockState) (time.Time, []models.PaddockUpdate) {
	updates := make([]models.PaddockUpdate, 0, len(paddocks))
	for _, p := range paddocks {
		dm := NextDMPerHa(p.Area, p.DMPerHa, p.StockCount)
		updates = append(updates, models.PaddockUpdate{
			ID:      p.ID,
			DMPerHa: dm,
			TotalDM: p.Area * dm,
		})
	}
	return date.AddDate(0, 0, 1), updates
}
