package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/stubro/internal/config"
	"github.com/vovakirdan/stubro/internal/core"
	"github.com/vovakirdan/stubro/internal/games/conquest"
	"github.com/vovakirdan/stubro/internal/storage"
)

// CreditsCallToAction is shown when a level could not be built because the
// player ran out of tokens.
const CreditsCallToAction = "You're out of tokens! Run `stubro tokens grant` to top up."

// Chapter is the study text a level is built from.
type Chapter struct {
	Name    string
	Content string
	Level   *conquest.Level // pre-built level, played without generation
}

// GameOptions holds the collaborators of a game session.
type GameOptions struct {
	Generator conquest.Generator
	Store     *storage.Store // optional, runs are not saved when nil
	Logger    *log.Logger
	Engine    conquest.EngineConfig
	Controls  config.ControlsConfig
	User      string
	Seed      int64 // 0 picks a time-based seed per level

	// Context bounds every generation of the session. SSH sessions pass the
	// connection context so a disconnect cancels a pending level.
	Context context.Context
}

// levelMsg carries the outcome of a generation started for attempt.
type levelMsg struct {
	attempt int
	level   *conquest.Level
	err     error
}

// gameKeyMap lists the playing bindings for the help bar.
type gameKeyMap struct {
	Move     key.Binding
	Interact key.Binding
	Back     key.Binding
	Quit     key.Binding
}

func (k gameKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Move, k.Interact, k.Back, k.Quit}
}

func (k gameKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func defaultGameKeyMap() gameKeyMap {
	return gameKeyMap{
		Move:     key.NewBinding(key.WithKeys("w", "a", "s", "d"), key.WithHelp("wasd/arrows", "move")),
		Interact: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "interact")),
		Back:     key.NewBinding(key.WithKeys("b", "esc"), key.WithHelp("b", "back")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ConquestModel is the Bubble Tea model of one Chapter Conquest session:
// generation, play, questions and the end screens.
type ConquestModel struct {
	opts    GameOptions
	chapter Chapter

	engine    *conquest.Engine
	clock     *FrameClock
	hold      *HoldTracker
	keys      *KeyMapper
	lastPhase conquest.Phase

	screen  *core.Screen
	spinner spinner.Model
	input   textinput.Model
	help    help.Model
	helpMap gameKeyMap
	width   int
	height  int

	attempt  int
	seed     int64
	ctx      context.Context
	cancel   context.CancelFunc
	started  time.Time
	runSaved bool
	status   string

	quitting   bool
	backToMenu bool
	quitOnBack bool // no menu to return to
}

// NewConquestModel creates a session for the chapter. Generation starts
// when the program calls Init.
func NewConquestModel(chapter Chapter, opts GameOptions, width, height int) ConquestModel {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if chapter.Level != nil {
		opts.Generator = staticGenerator{level: chapter.Level}
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ti := textinput.New()
	ti.Placeholder = "Type your answer"
	ti.CharLimit = 120
	ti.Width = 40

	m := ConquestModel{
		opts:    opts,
		chapter: chapter,
		clock:   NewFrameClock(opts.Controls.FPS),
		hold:    NewHoldTracker(time.Duration(opts.Controls.HoldWindowMS) * time.Millisecond),
		keys:    NewKeyMapper(),
		screen:  core.NewScreen(width, max(height-1, 1)),
		spinner: sp,
		input:   ti,
		help:    help.New(),
		helpMap: defaultGameKeyMap(),
		width:   width,
		height:  height,
		seed:    opts.Seed,
	}
	m.help.Width = width
	m.begin()
	return m
}

// begin resets the session to a fresh pending generation.
func (m *ConquestModel) begin() {
	if m.seed == 0 || (m.attempt > 0 && m.opts.Seed == 0) {
		m.seed = time.Now().UnixNano()
	} else if m.attempt > 0 {
		m.seed++
	}
	m.attempt++
	m.engine = conquest.NewEngine(m.opts.Engine)
	m.lastPhase = m.engine.Phase()
	m.hold.Reset()
	m.ctx, m.cancel = context.WithCancel(m.opts.Context)
	m.runSaved = false
	m.status = ""
	m.input.Blur()
	m.input.SetValue("")
}

// backend returns the generator name.
func (m ConquestModel) backend() string {
	if m.opts.Generator == nil {
		return "none"
	}
	return m.opts.Generator.Name()
}

// Init starts the level generation.
func (m ConquestModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.generateCmd())
}

// generateCmd runs the generator off the UI goroutine.
func (m ConquestModel) generateCmd() tea.Cmd {
	ctx, gen, attempt, logger := m.ctx, m.opts.Generator, m.attempt, m.opts.Logger
	backend := m.backend()
	req := conquest.Request{Content: m.chapter.Content, User: m.opts.User, Seed: m.seed}
	chapter := m.chapter.Name

	return func() tea.Msg {
		start := time.Now()
		logger.Info("generating level", "backend", backend, "chapter", chapter, "seed", req.Seed)
		level, err := conquest.Generate(ctx, gen, req)
		if err != nil {
			logger.Warn("level generation failed", "backend", backend, "err", err)
		} else {
			logger.Info("level generated", "backend", backend, "title", level.Title,
				"elapsed", time.Since(start).Round(time.Millisecond))
		}
		return levelMsg{attempt: attempt, level: level, err: err}
	}
}

// Update handles messages and updates the model state.
func (m ConquestModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.screen.Resize(msg.Width, max(msg.Height-1, 1))
		m.help.Width = msg.Width
		return m, nil

	case levelMsg:
		return m.handleLevel(msg)

	case TickMsg:
		return m.handleTick(msg)

	case spinner.TickMsg:
		if m.engine.Phase() != conquest.PhaseGenerating {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.engine.Phase() == conquest.PhaseInteraction {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleLevel feeds a generation outcome into the engine.
func (m ConquestModel) handleLevel(msg levelMsg) (tea.Model, tea.Cmd) {
	if msg.attempt != m.attempt || m.engine.Phase() != conquest.PhaseGenerating {
		return m, nil
	}

	if err := m.engine.Start(msg.level, msg.err); err != nil {
		m.opts.Logger.Warn("level rejected", "err", err)
	}
	cmd := m.syncPhase()
	if m.engine.Phase() == conquest.PhasePlaying {
		m.started = time.Now()
		return m, tea.Batch(cmd, m.clock.Start())
	}
	return m, cmd
}

// handleTick runs one simulation step per accepted frame.
func (m ConquestModel) handleTick(msg TickMsg) (tea.Model, tea.Cmd) {
	if !m.clock.Accept(msg) {
		return m, nil
	}

	for _, k := range m.hold.Expired(msg.Time) {
		m.engine.Release(k)
	}
	m.engine.Tick()

	cmd := m.syncPhase()
	return m, tea.Batch(cmd, m.clock.Next())
}

// syncPhase reacts to engine phase changes.
func (m *ConquestModel) syncPhase() tea.Cmd {
	phase := m.engine.Phase()
	if phase == m.lastPhase {
		return nil
	}
	m.opts.Logger.Debug("phase changed", "from", m.lastPhase, "to", phase)
	m.lastPhase = phase

	switch phase {
	case conquest.PhasePlaying:
		m.input.Blur()
		m.input.SetValue("")
	case conquest.PhaseInteraction:
		m.engine.ReleaseAll()
		m.hold.Reset()
		m.input.SetValue("")
		return m.input.Focus()
	case conquest.PhaseFeedback:
		m.input.Blur()
	case conquest.PhaseCompleted:
		m.clock.Stop()
		m.engine.ReleaseAll()
		m.saveRun(storage.OutcomeCompleted)
	case conquest.PhaseError:
		m.clock.Stop()
	}
	return nil
}

// handleKey routes a key press by phase. Keys the game uses are consumed;
// the rest fall through to the global bindings.
func (m ConquestModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	switch m.engine.Phase() {
	case conquest.PhaseInteraction:
		if msg.Type == tea.KeyEnter {
			answer := m.input.Value()
			fb, err := m.engine.Submit(answer)
			if err != nil {
				return m, nil
			}
			m.opts.Logger.Debug("answer submitted", "correct", fb.Correct)
			return m, m.syncPhase()
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case conquest.PhaseFeedback:
		if m.keys.MapGlobal(msg) == GlobalConfirm || m.keys.MapKey(msg) == core.KeyInteract || msg.Type == tea.KeyEsc {
			if err := m.engine.Dismiss(); err == nil {
				return m, m.syncPhase()
			}
			return m, nil
		}

	case conquest.PhasePlaying:
		if k := m.keys.MapKey(msg); k != core.KeyNone {
			if k != core.KeyInteract {
				if released := m.hold.Press(k, time.Now()); released != core.KeyNone {
					m.engine.Release(released)
				}
			}
			m.engine.Press(k)
			return m, nil
		}
	}

	switch m.keys.MapGlobal(msg) {
	case GlobalQuit:
		return m.quit()
	case GlobalBack:
		m.leave()
		m.backToMenu = true
		if m.quitOnBack {
			return m, tea.Quit
		}
		return m, nil
	case GlobalScreenshot:
		m.saveScreenshot()
	case GlobalRestart:
		if m.engine.Phase().Terminal() {
			return m.restart()
		}
	}
	return m, nil
}

func (m ConquestModel) quit() (tea.Model, tea.Cmd) {
	m.leave()
	m.quitting = true
	return m, tea.Quit
}

// restart tears the session down and generates a new level.
func (m ConquestModel) restart() (tea.Model, tea.Cmd) {
	m.leave()
	m.begin()
	return m, tea.Batch(m.spinner.Tick, m.generateCmd())
}

// leave stops the frame clock, cancels a pending generation and records an
// unfinished level as abandoned.
func (m *ConquestModel) leave() {
	m.clock.Stop()
	m.cancel()
	m.engine.ReleaseAll()
	m.hold.Reset()

	switch m.engine.Phase() {
	case conquest.PhasePlaying, conquest.PhaseInteraction, conquest.PhaseFeedback:
		m.saveRun(storage.OutcomeAbandoned)
	}
}

// saveRun records the session once.
func (m *ConquestModel) saveRun(outcome string) {
	snap := m.engine.Snapshot()
	if m.runSaved || m.opts.Store == nil || snap.Level == nil {
		return
	}
	m.runSaved = true

	id, err := m.opts.Store.SaveRun(storage.Run{
		User:     m.opts.User,
		Title:    snap.Level.Title,
		Backend:  m.backend(),
		Score:    snap.Score,
		Solved:   snap.SolvedCount(),
		Total:    len(snap.Level.Interactions),
		Outcome:  outcome,
		Duration: time.Since(m.started).Round(time.Second),
	})
	if err != nil {
		m.opts.Logger.Error("could not save run", "err", err)
		return
	}
	m.opts.Logger.Info("run saved", "id", id, "outcome", outcome, "score", snap.Score)
}

// saveScreenshot saves the current level view to a file.
func (m *ConquestModel) saveScreenshot() {
	dir := config.UserPath("screenshots")
	if dir == "" {
		return
	}
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	conquest.Render(m.engine.Snapshot(), m.engine.Config(), m.screen)
	filename := fmt.Sprintf("conquest_%s.txt", time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		m.opts.Logger.Warn("screenshot failed", "err", err)
		return
	}
	m.status = "Screenshot saved to " + path
}

// View renders the current state to a string for display.
func (m ConquestModel) View() string {
	if m.quitting || m.backToMenu {
		return ""
	}

	snap := m.engine.Snapshot()
	switch snap.Phase {
	case conquest.PhaseGenerating:
		return m.viewGenerating()
	case conquest.PhaseInteraction:
		return m.viewInteraction(snap)
	case conquest.PhaseFeedback:
		return m.viewFeedback(snap)
	case conquest.PhaseCompleted:
		return m.viewCompleted(snap)
	case conquest.PhaseError:
		return m.viewError(snap)
	default:
		return m.viewPlaying(snap)
	}
}

func (m ConquestModel) viewGenerating() string {
	var b strings.Builder
	b.WriteString(m.spinner.View() + " " + titleStyle.Render("AI Level Designer is Building Your Game..."))
	b.WriteString("\n\n")
	b.WriteString(subtleStyle.Render(fmt.Sprintf("Chapter: %s   Generator: %s", m.chapter.Name, m.backend())))
	b.WriteString("\n\n")
	b.WriteString(subtleStyle.Render("B: back  Q: quit"))
	return centered(m.width, m.height, b.String())
}

func (m ConquestModel) viewPlaying(snap conquest.Snapshot) string {
	conquest.Render(snap, m.engine.Config(), m.screen)
	footer := m.help.View(m.helpMap)
	if m.status != "" {
		footer = m.status
	}
	return RenderScreen(m.screen) + "\n" + subtleStyle.Render(footer)
}

func (m ConquestModel) viewInteraction(snap conquest.Snapshot) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Question %d", snap.Active.ID)))
	b.WriteString("\n\n")
	b.WriteString(snap.Active.Prompt)
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(subtleStyle.Render("Enter: submit"))
	return centered(m.width, m.height, modalStyle.Render(b.String()))
}

func (m ConquestModel) viewFeedback(snap conquest.Snapshot) string {
	var b strings.Builder
	if snap.Feedback.Correct {
		b.WriteString(successStyle.Render("Success!"))
	} else {
		b.WriteString(failureStyle.Render("Try Again!"))
	}
	b.WriteString("\n\n")
	b.WriteString(snap.Feedback.Message)
	b.WriteString("\n\n")
	b.WriteString(subtleStyle.Render(fmt.Sprintf("Score: %d   Enter: continue", snap.Score)))
	return centered(m.width, m.height, modalStyle.Render(b.String()))
}

func (m ConquestModel) viewCompleted(snap conquest.Snapshot) string {
	total := 0
	if snap.Level != nil {
		total = len(snap.Level.Interactions)
	}

	var b strings.Builder
	b.WriteString(successStyle.Render("Conquest Complete!"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Final score: %d\n", snap.Score))
	b.WriteString(fmt.Sprintf("Questions solved: %d/%d", snap.SolvedCount(), total))
	b.WriteString("\n\n")
	b.WriteString(subtleStyle.Render("R: play a new game  B: back  Q: quit"))
	return centered(m.width, m.height, modalStyle.Render(b.String()))
}

func (m ConquestModel) viewError(snap conquest.Snapshot) string {
	var b strings.Builder
	b.WriteString(failureStyle.Render("Failed to Build Game"))
	b.WriteString("\n\n")
	if m.engine.InsufficientCredits() {
		b.WriteString(warnStyle.Render(CreditsCallToAction))
	} else {
		b.WriteString(errorMessage(snap.Err))
	}
	b.WriteString("\n\n")
	b.WriteString(subtleStyle.Render("R: try again  B: back  Q: quit"))
	return centered(m.width, m.height, modalStyle.Render(b.String()))
}

// errorMessage returns the user-facing text of a session error.
func errorMessage(err error) string {
	switch {
	case err == nil:
		return "An unknown error occurred while building your game."
	case errors.Is(err, conquest.ErrMissingContent):
		return "This chapter has no text to build a level from."
	default:
		var genErr *conquest.GenerationError
		if errors.As(err, &genErr) {
			return genErr.Error()
		}
		return err.Error()
	}
}

// Phase returns the engine phase.
func (m ConquestModel) Phase() conquest.Phase {
	return m.engine.Phase()
}

// IsQuitting returns true if user requested to quit entirely.
func (m ConquestModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m ConquestModel) BackToMenu() bool {
	return m.backToMenu
}

// Run plays one chapter in the terminal.
func Run(chapter Chapter, opts GameOptions, cfg core.RuntimeConfig, programOpts ...tea.ProgramOption) error {
	ctx, cancel := context.WithCancel(parentContext(opts.Context))
	defer cancel()
	opts.Context = ctx

	model := NewConquestModel(chapter, opts, cfg.ScreenW, cfg.ScreenH)
	model.quitOnBack = true

	programOpts = append([]tea.ProgramOption{tea.WithAltScreen()}, programOpts...)
	p := tea.NewProgram(model, programOpts...)

	_, err := p.Run()
	return err
}

func parentContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
