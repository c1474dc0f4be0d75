package model

import (
	"strings"
	"time"
)

type Submission struct {
	ID             string    `json:"id"`
	TeamID         string    `json:"team_id"`
	PuzzleID       string    `json:"puzzle_id"`
	SubmissionText string    `json:"submission_text"`
	ResponseText   string    `json:"response_text"`
	SubmissionTime time.Time `json:"submission_time"`
	ModifiedAt     time.Time `json:"modified_at"`
}

// IsCorrect compares the submitted text against the puzzle's canonical
// answer, case-insensitively.
func (s *Submission) IsCorrect(answer string) bool {
	return strings.EqualFold(s.SubmissionText, answer)
}

// Solve records that a team answered a puzzle; exactly one may exist
// per (puzzle, team) pair, linked to the winning submission.
type Solve struct {
	ID           string `json:"id"`
	PuzzleID     string `json:"puzzle_id"`
	TeamID       string `json:"team_id"`
	SubmissionID string `json:"submission_id"`
}

// Unlock records that a puzzle became visible to a team; exactly one
// may exist per (puzzle, team) pair.
type Unlock struct {
	ID         string    `json:"id"`
	PuzzleID   string    `json:"puzzle_id"`
	TeamID     string    `json:"team_id"`
	UnlockedAt time.Time `json:"unlocked_at"`
}
