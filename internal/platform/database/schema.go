package database

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(Schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const Schema = `
-- Hunts
CREATE TABLE IF NOT EXISTS hunts (
    id TEXT PRIMARY KEY,
    hunt_name TEXT NOT NULL,
    hunt_number INTEGER NOT NULL UNIQUE,
    team_size INTEGER NOT NULL,
    start_date TIMESTAMPTZ NOT NULL,
    end_date TIMESTAMPTZ NOT NULL,
    location TEXT NOT NULL DEFAULT '',
    is_current BOOLEAN NOT NULL DEFAULT FALSE
);

-- At most one hunt may hold the current flag.
CREATE UNIQUE INDEX IF NOT EXISTS idx_hunts_single_current ON hunts (is_current) WHERE is_current;

-- Persons
CREATE TABLE IF NOT EXISTS persons (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    email TEXT NOT NULL UNIQUE,
    hashed_password TEXT NOT NULL,
    phone TEXT NOT NULL DEFAULT '',
    allergies TEXT NOT NULL DEFAULT '',
    comments TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- Puzzles
CREATE TABLE IF NOT EXISTS puzzles (
    id TEXT PRIMARY KEY,
    hunt_id TEXT NOT NULL REFERENCES hunts(id) ON DELETE CASCADE,
    puzzle_number INTEGER NOT NULL,
    puzzle_name TEXT NOT NULL,
    puzzle_id TEXT NOT NULL UNIQUE,
    answer TEXT NOT NULL,
    link TEXT NOT NULL DEFAULT '',
    num_required_to_unlock INTEGER NOT NULL DEFAULT 1,
    num_pages INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_puzzles_hunt_id ON puzzles(hunt_id);

-- Unlock-dependency edges: solving puzzle_id counts toward unlocking unlocks_id.
CREATE TABLE IF NOT EXISTS puzzle_unlocks (
    puzzle_id TEXT NOT NULL REFERENCES puzzles(id) ON DELETE CASCADE,
    unlocks_id TEXT NOT NULL REFERENCES puzzles(id) ON DELETE CASCADE,
    PRIMARY KEY (puzzle_id, unlocks_id)
);

CREATE INDEX IF NOT EXISTS idx_puzzle_unlocks_target ON puzzle_unlocks(unlocks_id);

-- Canned regex responses for near-miss submissions.
CREATE TABLE IF NOT EXISTS responses (
    id TEXT PRIMARY KEY,
    puzzle_id TEXT NOT NULL REFERENCES puzzles(id) ON DELETE CASCADE,
    regex TEXT NOT NULL,
    text TEXT NOT NULL,
    sort_order INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_responses_puzzle_id ON responses(puzzle_id, sort_order);

-- Bonus content attached to puzzles.
CREATE TABLE IF NOT EXISTS unlockables (
    id TEXT PRIMARY KEY,
    puzzle_id TEXT NOT NULL REFERENCES puzzles(id) ON DELETE CASCADE,
    content_type TEXT NOT NULL DEFAULT 'TXT' CHECK (content_type IN ('IMG', 'PDF', 'TXT', 'WEB')),
    content TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_unlockables_puzzle_id ON unlockables(puzzle_id);

-- Teams
CREATE TABLE IF NOT EXISTS teams (
    id TEXT PRIMARY KEY,
    hunt_id TEXT NOT NULL REFERENCES hunts(id) ON DELETE CASCADE,
    team_name TEXT NOT NULL,
    location TEXT NOT NULL DEFAULT '',
    join_code TEXT NOT NULL,
    playtester BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_teams_hunt_name ON teams (hunt_id, lower(team_name));

CREATE TABLE IF NOT EXISTS team_members (
    team_id TEXT NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
    person_id TEXT NOT NULL REFERENCES persons(id) ON DELETE CASCADE,
    PRIMARY KEY (team_id, person_id)
);

CREATE INDEX IF NOT EXISTS idx_team_members_person ON team_members(person_id);

-- Submissions
CREATE TABLE IF NOT EXISTS submissions (
    id TEXT PRIMARY KEY,
    team_id TEXT NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
    puzzle_id TEXT NOT NULL REFERENCES puzzles(id) ON DELETE CASCADE,
    submission_text TEXT NOT NULL,
    response_text TEXT NOT NULL DEFAULT '',
    submission_time TIMESTAMPTZ NOT NULL,
    modified_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_submissions_team_puzzle ON submissions(team_id, puzzle_id);

-- Solves: one per (puzzle, team), linked to the winning submission.
CREATE TABLE IF NOT EXISTS solves (
    id TEXT PRIMARY KEY,
    puzzle_id TEXT NOT NULL REFERENCES puzzles(id) ON DELETE CASCADE,
    team_id TEXT NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
    submission_id TEXT NOT NULL REFERENCES submissions(id) ON DELETE CASCADE,
    UNIQUE (puzzle_id, team_id)
);

CREATE INDEX IF NOT EXISTS idx_solves_team ON solves(team_id);

-- Unlocks: one per (puzzle, team), records when the puzzle became visible.
CREATE TABLE IF NOT EXISTS unlocks (
    id TEXT PRIMARY KEY,
    puzzle_id TEXT NOT NULL REFERENCES puzzles(id) ON DELETE CASCADE,
    team_id TEXT NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
    unlocked_at TIMESTAMPTZ NOT NULL,
    UNIQUE (puzzle_id, team_id)
);

CREATE INDEX IF NOT EXISTS idx_unlocks_team ON unlocks(team_id);

-- Team-directed notes (requests and staff responses).
CREATE TABLE IF NOT EXISTS messages (
    id TEXT PRIMARY KEY,
    team_id TEXT NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
    is_response BOOLEAN NOT NULL,
    text TEXT NOT NULL,
    time TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_team ON messages(team_id);

-- Unlockables granted to a team (on solving the owning puzzle).
CREATE TABLE IF NOT EXISTS team_unlockables (
    team_id TEXT NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
    unlockable_id TEXT NOT NULL REFERENCES unlockables(id) ON DELETE CASCADE,
    PRIMARY KEY (team_id, unlockable_id)
);
`
