package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vovakirdan/stubro/internal/games/conquest/levels/formats"
)

func TestLevelID(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"photosynthesis", "photosynthesis"},
		{"Newton's Laws", "newton-s-laws"},
		{"  Cell  Biology 101 ", "cell-biology-101"},
		{"???", "level"},
		{"stdin", "stdin"},
	}
	for _, tt := range tests {
		if got := levelID(tt.name); got != tt.want {
			t.Errorf("levelID(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestMask(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"abc", "***"},
		{"abcd", "****"},
		{"secret-key-1234", "***********1234"},
	}
	for _, tt := range tests {
		if got := mask(tt.key); got != tt.want {
			t.Errorf("mask(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate kept = %q", got)
	}
	if got := truncate("Conquest of Photosynthesis", 10); got != "Conquest …" {
		t.Errorf("truncate = %q", got)
	}
}

func TestPortOf(t *testing.T) {
	if got := portOf(":23234"); got != "23234" {
		t.Errorf("portOf(:23234) = %q", got)
	}
	if got := portOf("0.0.0.0:2222"); got != "2222" {
		t.Errorf("portOf(0.0.0.0:2222) = %q", got)
	}
}

func TestCurrentUser(t *testing.T) {
	old := flagUser
	defer func() { flagUser = old }()

	flagUser = " ada "
	if got := currentUser(); got != "ada" {
		t.Errorf("flag user = %q, want ada", got)
	}

	flagUser = ""
	t.Setenv("USER", "grace")
	if got := currentUser(); got != "grace" {
		t.Errorf("env user = %q, want grace", got)
	}
}

func TestEncodeLevelFormats(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("..", "..", "internal", "games", "conquest", "levels", "library", "water-cycle.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	parsed, err := formats.ParseYAML(data)
	if err != nil {
		t.Fatal(err)
	}

	oldOut, oldID, oldKw := flagOutput, flagID, flagKeywords
	defer func() { flagOutput, flagID, flagKeywords = oldOut, oldID, oldKw }()

	flagOutput, flagID, flagKeywords = "", "", []string{"rain"}
	out, err := encodeLevel(parsed.Level, "Water Cycle")
	if err != nil {
		t.Fatal(err)
	}
	back, err := formats.ParseYAML(out)
	if err != nil {
		t.Fatalf("yaml output does not parse: %v", err)
	}
	if back.ID != "water-cycle" {
		t.Errorf("ID = %q, want water-cycle", back.ID)
	}
	if back.Level.Title != parsed.Level.Title {
		t.Errorf("title = %q, want %q", back.Level.Title, parsed.Level.Title)
	}

	flagOutput = "out/level.JSON"
	out, err = encodeLevel(parsed.Level, "Water Cycle")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), `"player_start"`) {
		t.Errorf("json output missing wire names:\n%s", out)
	}
	if _, err := formats.ParseJSON(out); err != nil {
		t.Errorf("json output does not parse: %v", err)
	}
}
