package model

import "time"

type Person struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"` // Not exposed
	Phone          string    `json:"phone,omitempty"`
	Allergies      string    `json:"allergies,omitempty"`
	Comments       string    `json:"comments,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
