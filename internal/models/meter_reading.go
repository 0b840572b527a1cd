package models

import "time"

// MeterReading is a timestamped counter snapshot for an asset. Once a
// reading has been invoiced it is never mutated again except for Sent.
type MeterReading struct {
	ID        int       `json:"id"`
	AssetID   int       `json:"asset_id"`
	Mono      int       `json:"mono"`
	Color     int       `json:"color"`
	Invoiced  bool      `json:"invoiced"`
	Sent      int       `json:"sent"`
	CreatedAt time.Time `json:"created_at"`
}
