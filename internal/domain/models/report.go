package models

import "time"

// PaddockPasture is one paddock's pasture after a simulated day.
type PaddockPasture struct {
	PaddockID  uint    `bson:"paddock_id" json:"paddock_id"`
	Name       string  `bson:"name" json:"name"`
	Area       float64 `bson:"area" json:"area"`
	DMPerHa    float64 `bson:"dm_per_ha" json:"dm_per_ha"`
	TotalDM    float64 `bson:"total_dm" json:"total_dm"`
	StockCount int     `bson:"stock_count" json:"stock_count"`
}

// PastureReport captures the farm's pasture on a simulated date. It is built
// after every committed simulation step and archived in MongoDB.
type PastureReport struct {
	Date      time.Time        `bson:"date" json:"date"`
	Paddocks  []PaddockPasture `bson:"paddocks" json:"paddocks"`
	TotalDM   float64          `bson:"total_dm" json:"total_dm"`
	CreatedAt time.Time        `bson:"created_at" json:"created_at"`
}
