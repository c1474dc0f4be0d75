package model

import (
	"testing"
	"time"
)

func TestHuntDerivedState(t *testing.T) {
	start := time.Date(2026, 4, 10, 18, 0, 0, 0, time.UTC)
	end := time.Date(2026, 4, 12, 18, 0, 0, 0, time.UTC)
	hunt := &Hunt{StartDate: start, EndDate: end}

	before := start.Add(-time.Hour)
	during := start.Add(time.Hour)
	after := end.Add(time.Hour)

	if !hunt.IsLocked(before) || hunt.IsOpen(before) || hunt.IsPublic(before) {
		t.Errorf("Expected hunt locked before start")
	}
	if hunt.IsLocked(during) || !hunt.IsOpen(during) || hunt.IsPublic(during) {
		t.Errorf("Expected hunt open between start and end")
	}
	if hunt.IsLocked(after) || hunt.IsOpen(after) || !hunt.IsPublic(after) {
		t.Errorf("Expected hunt public after end")
	}
}

func TestHuntStateBoundaries(t *testing.T) {
	start := time.Date(2026, 4, 10, 18, 0, 0, 0, time.UTC)
	end := time.Date(2026, 4, 12, 18, 0, 0, 0, time.UTC)
	hunt := &Hunt{StartDate: start, EndDate: end}

	if hunt.IsLocked(start) || !hunt.IsOpen(start) {
		t.Errorf("Hunt must open exactly at start")
	}
	if hunt.IsOpen(end) || !hunt.IsPublic(end) {
		t.Errorf("Hunt must become public exactly at end")
	}
}

func TestSubmissionIsCorrect(t *testing.T) {
	sub := &Submission{SubmissionText: "BANANA"}
	if !sub.IsCorrect("banana") {
		t.Error("Answer comparison must ignore case")
	}
	if sub.IsCorrect("bananas") {
		t.Error("Different text must not grade correct")
	}
}

func TestTeamKind(t *testing.T) {
	if !(&Team{Playtester: true}).IsPlaytesterTeam() {
		t.Error("Expected playtester team")
	}
	if !(&Team{}).IsNormalTeam() {
		t.Error("Expected normal team")
	}
}
