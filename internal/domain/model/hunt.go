package model

import "time"

// Hunt is one puzzle-hunt event. At most one hunt is current at any
// time; the flag is only ever moved by superseding, never unset.
type Hunt struct {
	ID         string    `json:"id"`
	HuntName   string    `json:"hunt_name"`
	HuntNumber int       `json:"hunt_number"`
	TeamSize   int       `json:"team_size"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Location   string    `json:"location"`
	IsCurrent  bool      `json:"is_current"`
}

// Derived state; never stored.

func (h *Hunt) IsLocked(now time.Time) bool {
	return now.Before(h.StartDate)
}

func (h *Hunt) IsOpen(now time.Time) bool {
	return !now.Before(h.StartDate) && now.Before(h.EndDate)
}

func (h *Hunt) IsPublic(now time.Time) bool {
	return !now.Before(h.EndDate)
}
