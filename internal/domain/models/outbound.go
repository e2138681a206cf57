package models

// OutboundMessageRequest represents a message pushed to a farm contact.
type OutboundMessageRequest struct {
	To         string `json:"to" binding:"required"`
	Message    string `json:"message" binding:"required"`
	PreviewURL bool   `json:"preview_url"`
}

// PaddockInput carries the editable fields of a paddock.
type PaddockInput struct {
	Name    string  `json:"name" binding:"required"`
	Area    float64 `json:"area"`
	DMPerHa float64 `json:"dm_per_ha"`
}

// PaddockAreasRequest edits the area of several paddocks at once. Keys are
// paddock ids.
type PaddockAreasRequest struct {
	Areas map[uint]float64 `json:"areas" binding:"required"`
}

// MoveMobRequest moves a mob into another paddock.
type MoveMobRequest struct {
	MobID     uint `json:"mob_id" binding:"required"`
	PaddockID uint `json:"paddock_id" binding:"required"`
}

// AnimalInput carries the editable fields of an animal.
type AnimalInput struct {
	Weight float64 `json:"weight"`
	DOB    string  `json:"dob" binding:"required"`
}
