package model

import "time"

// Message is a team-directed note, either a request from the team or a
// staff response.
type Message struct {
	ID         string    `json:"id"`
	TeamID     string    `json:"team_id"`
	IsResponse bool      `json:"is_response"`
	Text       string    `json:"text"`
	Time       time.Time `json:"time"`
}
