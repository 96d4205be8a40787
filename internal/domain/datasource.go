package domain

import "time"

// DataSource is a published data source on the Tableau site. Read-only from
// this system's point of view; it is reported on, never mutated.
type DataSource struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updated_at"`
}
