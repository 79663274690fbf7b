package models

import (
	"encoding/json"
	"math"
)

// ImportRecord is one row of an uploaded products CSV.
// Numeric fields hold NaN when the source cell was absent or not a number.
type ImportRecord struct {
	Title       string
	Description string
	Price       float64
	Count       float64
	Action      string
}

type importRecordJSON struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	Count       *float64 `json:"count"`
	Action      string   `json:"action"`
}

// MarshalJSON writes NaN (and infinities) as null; encoding/json rejects them.
func (r ImportRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(importRecordJSON{
		Title:       r.Title,
		Description: r.Description,
		Price:       finiteOrNil(r.Price),
		Count:       finiteOrNil(r.Count),
		Action:      r.Action,
	})
}

func finiteOrNil(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
