package model

// JoinCodeAlphabet excludes visually ambiguous characters (0, 1, O, I).
const JoinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const JoinCodeLength = 5

type Team struct {
	ID         string `json:"id"`
	HuntID     string `json:"hunt_id"`
	TeamName   string `json:"team_name"`
	Location   string `json:"location"`
	JoinCode   string `json:"join_code,omitempty"` // Shown to members only
	Playtester bool   `json:"playtester"`
}

func (t *Team) IsPlaytesterTeam() bool {
	return t.Playtester
}

func (t *Team) IsNormalTeam() bool {
	return !t.Playtester
}
