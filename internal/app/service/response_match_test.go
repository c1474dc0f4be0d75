package service

import (
	"testing"

	"huntserver/internal/domain/model"
)

func TestMatchResponseFirstMatchWins(t *testing.T) {
	responses := []model.Response{
		{Regex: "ban.*", Text: "Close, keep peeling"},
		{Regex: ".*", Text: "Nope"},
	}

	if got := matchResponse(responses, "bananna"); got != "Close, keep peeling" {
		t.Errorf("Expected first matching response, got %q", got)
	}
	if got := matchResponse(responses, "apple"); got != "Nope" {
		t.Errorf("Expected catch-all response, got %q", got)
	}
}

func TestMatchResponseCaseInsensitive(t *testing.T) {
	responses := []model.Response{{Regex: "^banana$", Text: "So close"}}

	if got := matchResponse(responses, "BANANA"); got != "So close" {
		t.Errorf("Expected case-insensitive match, got %q", got)
	}
}

func TestMatchResponseNoMatch(t *testing.T) {
	responses := []model.Response{{Regex: "^banana$", Text: "So close"}}

	if got := matchResponse(responses, "grape"); got != "" {
		t.Errorf("Expected empty response text on no match, got %q", got)
	}
}

func TestMatchResponseSkipsInvalidRegex(t *testing.T) {
	responses := []model.Response{
		{Regex: "([", Text: "Broken"},
		{Regex: "grape", Text: "Sour"},
	}

	if got := matchResponse(responses, "grape"); got != "Sour" {
		t.Errorf("Expected invalid pattern to be skipped, got %q", got)
	}
}

func TestGenerateJoinCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := generateJoinCode()
		if err != nil {
			t.Fatalf("Failed to generate join code: %v", err)
		}
		if len(code) != model.JoinCodeLength {
			t.Fatalf("Expected code of length %d, got %q", model.JoinCodeLength, code)
		}
		for _, c := range code {
			found := false
			for _, a := range model.JoinCodeAlphabet {
				if c == a {
					found = true
					break
				}
			}
			if !found {
				t.Fatalf("Code %q contains character outside the join-code alphabet", code)
			}
		}
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Error("Expected distinct join codes across generations")
	}
}
