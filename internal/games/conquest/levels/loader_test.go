package levels

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLibraryLevelsAreValid(t *testing.T) {
	entries, err := Library().LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}

	want := []string{"french-revolution", "newtons-laws", "photosynthesis", "water-cycle"}
	if len(entries) != len(want) {
		t.Fatalf("Expected %d library levels, got %d", len(want), len(entries))
	}
	for i, e := range entries {
		if e.ID != want[i] {
			t.Errorf("Entry %d: expected %s, got %s", i, want[i], e.ID)
		}
		if len(e.Keywords) == 0 {
			t.Errorf("%s has no keywords", e.ID)
		}
		if len(e.Level.Interactions) == 0 {
			t.Errorf("%s has no interactions", e.ID)
		}
		for _, it := range e.Level.Interactions {
			if tile, _ := e.Level.TileAt(it.Position); tile.String() != "interaction" {
				t.Errorf("%s: interaction %d sits on %s", e.ID, it.ID, tile)
			}
		}
	}
}

func TestLoaderSkipsInvalidFiles(t *testing.T) {
	dir := t.TempDir()

	valid := `
id: tiny
title: Tiny
goal: Leave
rows:
  - "#####"
  - "#..E#"
  - "#####"
start: {x: 1, y: 1}
`
	noExit := `
id: broken
title: Broken
rows:
  - "###"
  - "#.#"
  - "###"
start: {x: 1, y: 1}
`
	write := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("tiny.yaml", valid)
	write("broken.yml", noExit)
	write("notes.txt", "not a level")
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	write("nested/wire.json", `{"title":"Wire","goal":"Go","grid":[[{"type":"floor"},{"type":"exit"}]],"player_start":{"x":0,"y":0},"interactions":[]}`)

	loader := NewLoader(dir)
	ids, err := loader.ListIDs()
	if err != nil {
		t.Fatalf("ListIDs: %v", err)
	}
	if len(ids) != 2 || ids[0] != "tiny" || ids[1] != "wire" {
		t.Errorf("Expected [tiny wire], got %v", ids)
	}

	if _, err := loader.LoadByID("broken"); err == nil {
		t.Error("Expected error for invalid level")
	}
	if _, err := loader.LoadFile("broken.yml"); err == nil {
		t.Error("Expected validation error from LoadFile")
	}
}

func TestLoaderMissingDirectory(t *testing.T) {
	loader := NewLoader(filepath.Join(t.TempDir(), "missing"))
	if _, err := loader.LoadAll(); err == nil {
		t.Error("Expected error for missing directory")
	}
}
