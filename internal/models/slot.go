package models

import "time"

// Slot is a bookable date+time unit at a branch for a theme.
// A slot can hold at most one active reservation; Reserved flips to
// true exactly once and further booking attempts fail.
type Slot struct {
	ID        int64     `json:"id"`
	BranchID  int64     `json:"branch_id"`
	ThemeID   int64     `json:"theme_id"`
	Date      time.Time `json:"date"`
	Time      string    `json:"time"` // HH:MM, branch-local
	Opened    bool      `json:"opened"`
	Shown     bool      `json:"shown"`
	Reserved  bool      `json:"reserved"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StartsAt combines Date and Time into a single point in time.
func (s *Slot) StartsAt() time.Time {
	t, err := time.Parse("15:04", s.Time)
	if err != nil {
		return s.Date
	}
	return time.Date(s.Date.Year(), s.Date.Month(), s.Date.Day(),
		t.Hour(), t.Minute(), 0, 0, time.Local)
}
