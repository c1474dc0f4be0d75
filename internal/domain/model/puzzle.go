package model

const (
	UnlockableTypeImage = "IMG"
	UnlockableTypePDF   = "PDF"
	UnlockableTypeText  = "TXT"
	UnlockableTypeLink  = "WEB"
)

type Puzzle struct {
	ID           string `json:"id"`
	HuntID       string `json:"hunt_id"`
	PuzzleNumber int    `json:"puzzle_number"`
	PuzzleName   string `json:"puzzle_name"`
	// PuzzleID is the short external identifier (hex) used in links and
	// status payloads, distinct from the row ID.
	PuzzleID            string `json:"puzzle_id"`
	Answer              string `json:"answer,omitempty"` // Admin only view
	Link                string `json:"link"`
	NumRequiredToUnlock int    `json:"num_required_to_unlock"`
	NumPages            int    `json:"num_pages"`
	// Unlocks holds the row IDs of puzzles whose visibility this puzzle
	// contributes to unlocking.
	Unlocks []string `json:"unlocks,omitempty"`
}

// PuzzleSummary is the shape surfaced to teams in listings and status
// events.
type PuzzleSummary struct {
	ID     string `json:"id"`
	Number int    `json:"number"`
	Name   string `json:"name"`
}

func (p *Puzzle) Summary() PuzzleSummary {
	return PuzzleSummary{ID: p.PuzzleID, Number: p.PuzzleNumber, Name: p.PuzzleName}
}

// Response is a regex-matched canned reply used to give hint-like
// feedback on near-miss submissions. Matched in sort order, first wins.
type Response struct {
	ID        string `json:"id"`
	PuzzleID  string `json:"puzzle_id"`
	Regex     string `json:"regex"`
	Text      string `json:"text"`
	SortOrder int    `json:"sort_order"`
}

// Unlockable is bonus content attached to a puzzle, granted to a team
// when the puzzle is solved.
type Unlockable struct {
	ID          string `json:"id"`
	PuzzleID    string `json:"puzzle_id"`
	ContentType string `json:"content_type"`
	Content     string `json:"content"`
}
