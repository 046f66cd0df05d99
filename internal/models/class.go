package models

import "time"

// Class represents a class section (e.g. 9A).
type Class struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Grade     int       `db:"grade" json:"grade"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ClassFilter defines filter criteria for listing classes.
type ClassFilter struct {
	Grade     int
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
