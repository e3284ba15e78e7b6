package formats

import (
	"strings"
	"testing"

	"github.com/vovakirdan/stubro/internal/core"
	"github.com/vovakirdan/stubro/internal/games/conquest"
)

const sampleYAML = `
id: sample
title: Sample
goal: Find the exit
keywords: [" Alpha ", beta]
rows:
  - "#####"
  - "#.?E#"
  - "#####"
start: {x: 1, y: 1}
interactions:
  - id: 4
    x: 2
    y: 1
    prompt: Say alpha
    answer: alpha
`

func TestParseYAML(t *testing.T) {
	parsed, err := ParseYAML([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("ParseYAML: %v", err)
	}

	if parsed.ID != "sample" {
		t.Errorf("Expected id sample, got %q", parsed.ID)
	}
	if len(parsed.Keywords) != 2 || parsed.Keywords[0] != "alpha" {
		t.Errorf("Keywords not normalized: %v", parsed.Keywords)
	}

	level := parsed.Level
	if err := level.Validate(); err != nil {
		t.Fatalf("Parsed level invalid: %v", err)
	}
	if level.Rows() != 3 || level.Cols() != 5 {
		t.Errorf("Expected 5x3 grid, got %dx%d", level.Cols(), level.Rows())
	}
	if tile, _ := level.TileAt(core.P(3, 1)); tile != conquest.TileExit {
		t.Errorf("Expected exit at (3,1), got %v", tile)
	}

	it := level.Interactions[0]
	if it.ID != 4 || it.Position != core.P(2, 1) {
		t.Errorf("Unexpected interaction %+v", it)
	}
	if it.SuccessMessage != defaultSuccess || it.FailureMessage != defaultFailure {
		t.Errorf("Missing messages should use defaults, got %q / %q", it.SuccessMessage, it.FailureMessage)
	}
}

func TestParseYAMLUnknownTile(t *testing.T) {
	_, err := ParseYAML([]byte("rows: [\"#X#\"]\n"))
	if err == nil || !strings.Contains(err.Error(), "unknown tile") {
		t.Errorf("Expected unknown tile error, got %v", err)
	}
}

func TestMarshalYAMLKeepsRows(t *testing.T) {
	parsed, err := ParseYAML([]byte(sampleYAML))
	if err != nil {
		t.Fatal(err)
	}

	data, err := MarshalYAML(parsed)
	if err != nil {
		t.Fatalf("MarshalYAML: %v", err)
	}
	if !strings.Contains(string(data), "'#.?E#'") && !strings.Contains(string(data), "\"#.?E#\"") {
		t.Errorf("Row not encoded as string:\n%s", data)
	}

	again, err := ParseYAML(data)
	if err != nil {
		t.Fatalf("Re-parse: %v", err)
	}
	if again.Level.Interactions[0].CorrectAnswer != "alpha" {
		t.Errorf("Answer lost: %+v", again.Level.Interactions[0])
	}
}

func TestParseJSON(t *testing.T) {
	doc := "```json\n" + `{
  "title": "Cells",
  "goal": "Escape the membrane",
  "grid": [
    [{"type": "wall"}, {"type": "wall"}, {"type": "wall"}],
    [{"type": "floor"}, {"type": "interaction"}, {"type": "exit"}]
  ],
  "player_start": {"x": 0, "y": 1},
  "interactions": [
    {"id": 1, "position": {"x": 1, "y": 1}, "prompt": "Powerhouse?", "correct_answer": "mitochondria",
     "success_message": "Yes", "failure_message": "No"}
  ]
}` + "\n```"

	level, err := ParseJSON([]byte(doc))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if err := level.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if level.PlayerStart != core.P(0, 1) {
		t.Errorf("Unexpected start %v", level.PlayerStart)
	}
	if got := level.Interactions[0]; got.CorrectAnswer != "mitochondria" || got.SuccessMessage != "Yes" {
		t.Errorf("Unexpected interaction %+v", got)
	}
}

func TestParseJSONErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", "the level is ready!"},
		{"unknown tile", `{"grid": [[{"type": "lava"}]]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseJSON([]byte(tt.doc)); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestMarshalJSONUsesWireNames(t *testing.T) {
	grid, _ := conquest.GridFromRows([]string{"#E"})
	data, err := MarshalJSON(&conquest.Level{Title: "T", Grid: grid})
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"type": "wall"`, `"type": "exit"`, `"player_start"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("Missing %s in %s", want, data)
		}
	}
}
