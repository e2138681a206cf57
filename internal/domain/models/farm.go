package models

import "time"

// DateLayout is the wire and storage format of simulated dates.
const DateLayout = "2006-01-02"

// Paddock is a fenced land parcel carrying pasture.
type Paddock struct {
	ID      uint    `gorm:"primaryKey" json:"id"`
	Name    string  `gorm:"size:50;not null" json:"name"`
	Area    float64 `gorm:"not null" json:"area"`                       // hectares
	DMPerHa float64 `gorm:"column:dm_per_ha;not null" json:"dm_per_ha"` // kg DM/ha
	TotalDM float64 `gorm:"column:total_dm;not null" json:"total_dm"`   // kg DM
}

// Recompute keeps TotalDM in step with Area and DMPerHa.
func (p *Paddock) Recompute() {
	p.TotalDM = p.Area * p.DMPerHa
}

// Mob is a named group of stock. PaddockID is unique so that a paddock never
// holds more than one mob.
type Mob struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	Name      string  `gorm:"size:50;not null" json:"name"`
	PaddockID *uint   `gorm:"uniqueIndex" json:"paddock_id"`
	Stock     []Stock `gorm:"foreignKey:MobID" json:"-"`
}

// Stock is a single animal.
type Stock struct {
	ID     uint      `gorm:"primaryKey" json:"id"`
	MobID  uint      `gorm:"index;not null" json:"mob_id"`
	DOB    time.Time `gorm:"column:dob;not null" json:"dob"`
	Weight float64   `gorm:"not null" json:"weight"`
}

// TableName keeps the singular table name used by the reset script.
func (Stock) TableName() string { return "stock" }

// CurrentDate holds the single simulated clock row.
type CurrentDate struct {
	ID   uint      `gorm:"primaryKey"`
	Date time.Time `gorm:"column:curr_date;not null"`
}

// TableName maps the clock onto the curr_date table.
func (CurrentDate) TableName() string { return "curr_date" }

// PaddockState is the per-paddock input of a simulation step.
type PaddockState struct {
	ID         uint    `gorm:"column:id"`
	Area       float64 `gorm:"column:area"`
	DMPerHa    float64 `gorm:"column:dm_per_ha"`
	StockCount int     `gorm:"column:stock_count"`
}

// PaddockUpdate is the per-paddock output of a simulation step.
type PaddockUpdate struct {
	ID      uint
	DMPerHa float64
	TotalDM float64
}

// PaddockView is a paddock together with whatever mob currently grazes it.
type PaddockView struct {
	Paddock
	MobID      *uint  `json:"mob_id,omitempty"`
	MobName    string `json:"mob_name,omitempty"`
	StockCount int    `json:"stock_count"`
}

// MobSummary aggregates a mob and its animals.
type MobSummary struct {
	ID        uint    `json:"id"`
	Name      string  `json:"name"`
	Paddock   string  `json:"paddock"`
	NumStock  int     `json:"num_stock"`
	AvgWeight float64 `json:"avg_weight"`
}

// AnimalView is an animal with its age on the simulated date.
type AnimalView struct {
	ID     uint    `json:"id"`
	MobID  uint    `json:"mob_id"`
	DOB    string  `json:"dob"`
	Weight float64 `json:"weight"`
	Age    int     `json:"age"`
}

// MobStock lists a mob's animals.
type MobStock struct {
	MobSummary
	Animals []AnimalView `json:"animals"`
}

// AgeOn returns the animal's age in whole years on the given date. Dates of
// birth after the given date yield zero.
func AgeOn(dob, on time.Time) int {
	years := on.Year() - dob.Year()
	if on.Month() < dob.Month() || (on.Month() == dob.Month() && on.Day() < dob.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// NewAnimalView converts a stock row for display on the given simulated date.
func NewAnimalView(s Stock, on time.Time) AnimalView {
	return AnimalView{
		ID:     s.ID,
		MobID:  s.MobID,
		DOB:    s.DOB.Format(DateLayout),
		Weight: s.Weight,
		Age:    AgeOn(s.DOB, on),
	}
}
