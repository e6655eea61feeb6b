package models

import "time"

// Comic is one catalogued issue from the user's collection. The ID is
// assigned by the catalog server; rows are cached locally so the shelf can
// render offline.
type Comic struct {
	ID        int       `json:"id"`
	Series    string    `json:"series"`
	Title     string    `json:"title"`
	Issue     string    `json:"issue,omitempty"`
	Volume    int       `json:"volume,omitempty"`
	Publisher string    `json:"publisher,omitempty"`
	Format    string    `json:"format,omitempty"`
	AddedAt   time.Time `json:"added_at,omitempty"`
}
