package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/stubro/internal/config"
	"github.com/vovakirdan/stubro/internal/core"
	"github.com/vovakirdan/stubro/internal/games/conquest"
	"github.com/vovakirdan/stubro/internal/storage"
)

type stubGenerator struct {
	level *conquest.Level
	err   error
}

func (s stubGenerator) Name() string { return "stub" }

func (s stubGenerator) Generate(ctx context.Context, req conquest.Request) (*conquest.Level, error) {
	return s.level, s.err
}

func corridor(t *testing.T) *conquest.Level {
	t.Helper()
	grid, err := conquest.GridFromRows([]string{
		"#####",
		"#.?E#",
		"#####",
	})
	if err != nil {
		t.Fatal(err)
	}
	return &conquest.Level{
		Title:       "Corridor",
		Goal:        "Reach the exit",
		Grid:        grid,
		PlayerStart: core.P(1, 1),
		Interactions: []conquest.Interaction{{
			ID: 1, Position: core.P(2, 1), Prompt: "Capital of France?", CorrectAnswer: "Paris",
			SuccessMessage: "Well done", FailureMessage: "Nope",
		}},
	}
}

// blockingGenerator waits until the request is cancelled.
type blockingGenerator struct{}

func (blockingGenerator) Name() string { return "blocking" }

func (blockingGenerator) Generate(ctx context.Context, req conquest.Request) (*conquest.Level, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func openStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestModel(gen conquest.Generator, store *storage.Store) ConquestModel {
	return NewConquestModel(Chapter{Name: "test", Content: "some study text"}, GameOptions{
		Generator: gen,
		Store:     store,
		Engine:    conquest.DefaultEngineConfig(),
		Controls:  config.ControlsConfig{FPS: 60, HoldWindowMS: 10000},
		User:      "ada",
		Seed:      1,
	}, 80, 24)
}

func update(t *testing.T, m ConquestModel, msg tea.Msg) ConquestModel {
	t.Helper()
	next, _ := m.Update(msg)
	cm, ok := next.(ConquestModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return cm
}

// generate runs the pending generation synchronously.
func generate(t *testing.T, m ConquestModel) ConquestModel {
	t.Helper()
	return update(t, m, m.generateCmd()())
}

func tick(t *testing.T, m ConquestModel) ConquestModel {
	t.Helper()
	return update(t, m, TickMsg{Epoch: m.clock.epoch, Time: time.Now()})
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// --- Frame clock ---

func TestFrameClock(t *testing.T) {
	c := NewFrameClock(60)
	if c.Running() {
		t.Fatal("New clock should be stopped")
	}
	if c.Next() != nil {
		t.Error("Stopped clock should not schedule frames")
	}

	if c.Start() == nil {
		t.Fatal("Start should schedule a frame")
	}
	first := TickMsg{Epoch: c.epoch}
	if !c.Accept(first) {
		t.Error("Frame of the active run should be accepted")
	}

	c.Stop()
	if c.Accept(first) {
		t.Error("Frame from before Stop should be rejected")
	}
	if c.Next() != nil {
		t.Error("Stopped clock should not reschedule")
	}

	c.Start()
	if c.Accept(first) {
		t.Error("Frame from an old run should be rejected after restart")
	}
}

// --- Input ---

func TestMapKey(t *testing.T) {
	km := NewKeyMapper()
	tests := []struct {
		msg  tea.KeyMsg
		want core.Key
	}{
		{keyRunes("w"), core.KeyUp},
		{tea.KeyMsg{Type: tea.KeyUp}, core.KeyUp},
		{keyRunes("s"), core.KeyDown},
		{keyRunes("a"), core.KeyLeft},
		{tea.KeyMsg{Type: tea.KeyRight}, core.KeyRight},
		{keyRunes("e"), core.KeyInteract},
		{keyRunes("q"), core.KeyNone},
		{keyRunes("x"), core.KeyNone},
	}

	for _, tt := range tests {
		if got := km.MapKey(tt.msg); got != tt.want {
			t.Errorf("MapKey(%q) = %v, want %v", tt.msg.String(), got, tt.want)
		}
	}
}

func TestHoldTracker(t *testing.T) {
	h := NewHoldTracker(100 * time.Millisecond)
	t0 := time.Now()

	h.Press(core.KeyRight, t0)
	if got := h.Expired(t0.Add(50 * time.Millisecond)); len(got) != 0 {
		t.Errorf("Key released too early: %v", got)
	}

	h.Press(core.KeyRight, t0.Add(80*time.Millisecond))
	if got := h.Expired(t0.Add(150 * time.Millisecond)); len(got) != 0 {
		t.Errorf("Repeat should extend the hold: %v", got)
	}
	if got := h.Expired(t0.Add(200 * time.Millisecond)); len(got) != 1 || got[0] != core.KeyRight {
		t.Errorf("Expected right released, got %v", got)
	}

	h.Press(core.KeyLeft, t0)
	if released := h.Press(core.KeyRight, t0); released != core.KeyLeft {
		t.Errorf("Opposite key should be released, got %v", released)
	}
	if released := h.Press(core.KeyInteract, t0); released != core.KeyNone {
		t.Errorf("Interact is not tracked, got %v", released)
	}
}

func TestHoldTrackerDefaultBridgesRepeatDelay(t *testing.T) {
	h := NewHoldTracker(0)
	t0 := time.Now()

	// First auto-repeat typically arrives 250-500 ms after the press.
	h.Press(core.KeyDown, t0)
	if got := h.Expired(t0.Add(450 * time.Millisecond)); len(got) != 0 {
		t.Errorf("Key released before auto-repeat started: %v", got)
	}
	h.Press(core.KeyDown, t0.Add(480*time.Millisecond))
	if got := h.Expired(t0.Add(900 * time.Millisecond)); len(got) != 0 {
		t.Errorf("Repeat should keep the key held: %v", got)
	}
	if got := h.Expired(t0.Add(1100 * time.Millisecond)); len(got) != 1 {
		t.Errorf("Expected release after repeats stop, got %v", got)
	}
}

// --- Game model ---

func TestModelStartsPlaying(t *testing.T) {
	m := newTestModel(stubGenerator{level: corridor(t)}, nil)
	if m.Phase() != conquest.PhaseGenerating {
		t.Fatalf("Expected generating, got %v", m.Phase())
	}
	if !strings.Contains(m.View(), "AI Level Designer is Building Your Game...") {
		t.Error("Generating view missing")
	}

	m = generate(t, m)
	if m.Phase() != conquest.PhasePlaying {
		t.Fatalf("Expected playing, got %v", m.Phase())
	}
	if !m.clock.Running() {
		t.Error("Clock should run while playing")
	}
	if !strings.Contains(m.View(), "Corridor") {
		t.Error("Playing view should show the title")
	}
}

func TestModelIgnoresStaleGeneration(t *testing.T) {
	m := newTestModel(stubGenerator{level: corridor(t)}, nil)
	stale := levelMsg{attempt: m.attempt - 1, level: corridor(t)}

	m = update(t, m, stale)
	if m.Phase() != conquest.PhaseGenerating {
		t.Errorf("Stale result should be ignored, got %v", m.Phase())
	}
}

func TestModelInteractionFlow(t *testing.T) {
	m := generate(t, newTestModel(stubGenerator{level: corridor(t)}, nil))

	m = update(t, m, keyRunes("e"))
	m = tick(t, m)
	if m.Phase() != conquest.PhaseInteraction {
		t.Fatalf("Expected interaction, got %v", m.Phase())
	}
	if !strings.Contains(m.View(), "Capital of France?") {
		t.Error("Prompt not shown")
	}

	// Game keys are typed into the answer box
	m = update(t, m, keyRunes("wrong"))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Phase() != conquest.PhaseFeedback || !strings.Contains(m.View(), "Try Again!") {
		t.Fatalf("Expected failure feedback, got %v", m.Phase())
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Phase() != conquest.PhasePlaying {
		t.Fatalf("Expected playing after dismiss, got %v", m.Phase())
	}

	m = update(t, m, keyRunes("e"))
	m = tick(t, m)
	if got := m.input.Value(); got != "" {
		t.Errorf("Answer box should be cleared, got %q", got)
	}
	m = update(t, m, keyRunes(" paris "))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !strings.Contains(m.View(), "Success!") {
		t.Error("Expected success feedback")
	}
	if score := m.engine.Score(); score != 10 {
		t.Errorf("Expected score 10, got %d", score)
	}
}

func TestModelCompletionSavesRun(t *testing.T) {
	store := openStore(t)
	m := generate(t, newTestModel(stubGenerator{level: corridor(t)}, store))

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	for i := 0; i < 200 && m.clock.Running(); i++ {
		m = tick(t, m)
	}

	if m.Phase() != conquest.PhaseCompleted {
		t.Fatalf("Expected completed, got %v", m.Phase())
	}
	if !strings.Contains(m.View(), "Conquest Complete!") {
		t.Error("Completed view missing")
	}

	runs, err := store.RunsByUser("ada", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Outcome != storage.OutcomeCompleted || runs[0].Backend != "stub" {
		t.Errorf("Unexpected runs %+v", runs)
	}
}

func TestModelBackSavesAbandonedRun(t *testing.T) {
	store := openStore(t)
	m := generate(t, newTestModel(stubGenerator{level: corridor(t)}, store))
	epoch := m.clock.epoch

	m = update(t, m, keyRunes("b"))
	if !m.BackToMenu() {
		t.Fatal("Expected back to menu")
	}
	if m.clock.Running() {
		t.Error("Clock should stop on teardown")
	}
	if _, cmd := m.Update(TickMsg{Epoch: epoch}); cmd != nil {
		t.Error("Stale frame should not reschedule")
	}

	runs, _ := store.RunsByUser("ada", 10)
	if len(runs) != 1 || runs[0].Outcome != storage.OutcomeAbandoned {
		t.Errorf("Expected one abandoned run, got %+v", runs)
	}
}

func TestSessionContextCancelsGeneration(t *testing.T) {
	parent, disconnect := context.WithCancel(context.Background())
	m := NewConquestModel(Chapter{Name: "test", Content: "text"}, GameOptions{
		Generator: blockingGenerator{},
		Context:   parent,
	}, 80, 24)

	pending := m.generateCmd()
	disconnect()

	done := make(chan tea.Msg, 1)
	go func() { done <- pending() }()
	select {
	case msg := <-done:
		m = update(t, m, msg)
	case <-time.After(2 * time.Second):
		t.Fatal("Generation kept running after the session ended")
	}

	if m.Phase() != conquest.PhaseError || !strings.Contains(m.View(), "cancelled") {
		t.Errorf("Expected a cancelled generation, got %v:\n%s", m.Phase(), m.View())
	}
}

func TestModelErrors(t *testing.T) {
	tests := []struct {
		name string
		gen  conquest.Generator
		want string
	}{
		{
			name: "credits",
			gen: stubGenerator{err: &conquest.GenerationError{
				InsufficientCredits: true, Message: "Insufficient tokens", Err: conquest.ErrInsufficientCredits,
			}},
			want: CreditsCallToAction,
		},
		{
			name: "generic",
			gen:  stubGenerator{err: &conquest.GenerationError{Message: "Level generation timed out."}},
			want: "Level generation timed out.",
		},
		{
			name: "malformed",
			gen:  stubGenerator{level: &conquest.Level{Grid: [][]conquest.Tile{{conquest.TileFloor}}}},
			want: "malformed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := generate(t, newTestModel(tt.gen, nil))
			if m.Phase() != conquest.PhaseError {
				t.Fatalf("Expected error phase, got %v", m.Phase())
			}
			view := m.View()
			if !strings.Contains(view, "Failed to Build Game") || !strings.Contains(view, tt.want) {
				t.Errorf("View missing %q:\n%s", tt.want, view)
			}
			if tt.name != "credits" && strings.Contains(view, CreditsCallToAction) {
				t.Error("Generic errors must not show the top-up message")
			}
		})
	}
}

func TestModelRestartAfterError(t *testing.T) {
	m := generate(t, newTestModel(stubGenerator{err: &conquest.GenerationError{Message: "boom"}}, nil))
	attempt := m.attempt

	m = update(t, m, keyRunes("r"))
	if m.Phase() != conquest.PhaseGenerating {
		t.Fatalf("Expected generating after restart, got %v", m.Phase())
	}
	if m.attempt != attempt+1 {
		t.Errorf("Expected new attempt, got %d", m.attempt)
	}
}

func TestModelRestartIgnoredWhilePlaying(t *testing.T) {
	m := generate(t, newTestModel(stubGenerator{level: corridor(t)}, nil))
	m = update(t, m, keyRunes("r"))
	if m.Phase() != conquest.PhasePlaying {
		t.Errorf("R should do nothing mid-level, got %v", m.Phase())
	}
}

// --- Menu and session ---

func TestMenuNavigation(t *testing.T) {
	chapters := []Chapter{{Name: "one", Content: "a"}, {Name: "two", Content: "b"}}
	m := NewMenuModel(chapters, nil, "ada", 42, 80, 24)

	if !strings.Contains(m.View(), "Tokens: 42") {
		t.Error("Menu should show the balance")
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(MenuModel)

	if m.Selected() == nil || m.Selected().Chapter.Name != "two" {
		t.Errorf("Expected chapter two selected, got %+v", m.Selected())
	}
}

func TestSessionFlow(t *testing.T) {
	store := openStore(t)
	cfg := SessionConfig{
		Game: GameOptions{
			Generator: stubGenerator{level: corridor(t)},
			Store:     store,
			Controls:  config.ControlsConfig{FPS: 60, HoldWindowMS: config.DefaultHoldWindowMS},
		},
		Chapters:      []Chapter{{Name: "one", Content: "text"}},
		InitialTokens: 100,
	}

	s := NewSessionModel(cfg, "grace", 80, 24)
	if balance, _ := store.Balance("grace"); balance != 100 {
		t.Errorf("Expected welcome balance 100, got %d", balance)
	}

	next, _ := s.Update(tea.KeyMsg{Type: tea.KeyTab})
	s = next.(SessionModel)
	if s.current != screenScores {
		t.Fatalf("Tab should open the scoreboard")
	}
	if !strings.Contains(s.View(), "HIGH SCORES") {
		t.Error("Scoreboard view missing")
	}

	next, _ = s.Update(tea.KeyMsg{Type: tea.KeyEsc})
	s = next.(SessionModel)
	if s.current != screenMenu {
		t.Fatalf("Esc should return to the menu")
	}

	next, _ = s.Update(tea.KeyMsg{Type: tea.KeyEnter})
	s = next.(SessionModel)
	if s.current != screenGame || s.game.opts.User != "grace" {
		t.Fatalf("Enter should start a game for grace")
	}
}

func TestLibraryChapterSkipsGenerator(t *testing.T) {
	level := corridor(t)
	m := NewConquestModel(Chapter{Name: "lib", Content: "x", Level: level}, GameOptions{
		Generator: stubGenerator{err: &conquest.GenerationError{Message: "should not run"}},
	}, 80, 24)

	m = generate(t, m)
	if m.Phase() != conquest.PhasePlaying {
		t.Errorf("Expected the curated level to load, got %v", m.Phase())
	}
}

func TestLoadChapters(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"b_cells.md":  "Cells are small.",
		"a-atoms.txt": "Atoms are smaller.",
		"notes.pdf":   "ignored",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	chapters, err := LoadChapters(dir)
	if err != nil {
		t.Fatalf("LoadChapters: %v", err)
	}
	if len(chapters) != 2 || chapters[0].Name != "a atoms" || chapters[1].Name != "b cells" {
		t.Errorf("Unexpected chapters %+v", chapters)
	}

	missing, err := LoadChapters(filepath.Join(dir, "nope"))
	if err != nil || missing != nil {
		t.Errorf("Missing dir should yield nothing, got %v, %v", missing, err)
	}
}
