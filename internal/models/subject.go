package models

import "time"

// Subject represents an academic subject tied to a teaching branch.
type Subject struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Branch    string    `db:"branch" json:"branch"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// SubjectFilter captures supported filters for listing subjects.
type SubjectFilter struct {
	Branch    string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
