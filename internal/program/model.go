// internal/program/model.go
//
// Programs and events published by the association.  A "program" is a
// recurring offering, an "event" a one-off; both share the same row
// shape and differ only in the type column.
package program

import (
	"strings"
	"time"
)

// Type discriminates the two kinds of entries.
const (
	TypeProgram = "program"
	TypeEvent   = "event"
)

// Program is one published entry.  Optional columns are pointers so the
// JSON mirrors what the author actually filled in.
type Program struct {
	ID        uint64    `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Summary   string    `db:"summary" json:"summary"`
	Date      string    `db:"date" json:"date"` // "YYYY-MM-DD"
	Time      *string   `db:"time" json:"time,omitempty"`
	Location  *string   `db:"location" json:"location,omitempty"`
	Organizer *string   `db:"organizer" json:"organizer,omitempty"`
	Image     *string   `db:"image" json:"image,omitempty"`
	Type      string    `db:"type" json:"type"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Input carries a new entry.  Title, date and type are required; the
// handler validates before the service sees it.
type Input struct {
	Title     string `json:"title" validate:"required"`
	Summary   string `json:"summary"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Time      string `json:"time" validate:"omitempty,datetime=15:04"`
	Location  string `json:"location"`
	Organizer string `json:"organizer"`
	Type      string `json:"type" validate:"required,oneof=program event"`
	Image     string `json:"image" validate:"omitempty,url"`
}

// Patch is a partial update: nil fields are left untouched.  Unknown
// JSON keys fall away on decode, so only recognized columns can change.
type Patch struct {
	Title     *string `json:"title"`
	Summary   *string `json:"summary"`
	Date      *string `json:"date"`
	Time      *string `json:"time"`
	Location  *string `json:"location"`
	Organizer *string `json:"organizer"`
	Type      *string `json:"type" validate:"omitempty,oneof=program event"`
	Image     *string `json:"image"`
}

// ListFilter narrows the public listing.  Field order is load-bearing:
// its JSON encoding doubles as the cache key.
type ListFilter struct {
	Page     int    `json:"page"`
	Limit    int    `json:"limit"`
	Search   string `json:"search,omitempty"`
	Type     string `json:"type,omitempty"`
	DateFrom string `json:"dateFrom,omitempty"`
	DateTo   string `json:"dateTo,omitempty"`
}

// Normalize clamps pagination (page ≥ 1, limit 1–100 default 20) and
// case-folds the search term.
func (f *ListFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	f.Search = strings.ToLower(strings.TrimSpace(f.Search))
}
