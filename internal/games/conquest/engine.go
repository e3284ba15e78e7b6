package conquest

import (
	"errors"
	"sort"
	"strings"

	"github.com/vovakirdan/stubro/internal/core"
)

// EngineConfig holds the fixed simulation constants of a level session.
type EngineConfig struct {
	TileSize        float64 // Size of one tile in position units
	PlayerSizeRatio float64 // Player collision square relative to tile size
	PlayerSpeed     float64 // Position units per tick per held direction
	RewardPoints    int     // Score for each interaction solved for the first time
}

// DefaultEngineConfig returns the standard Chapter Conquest constants.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		TileSize:        40,
		PlayerSizeRatio: 0.8,
		PlayerSpeed:     2,
		RewardPoints:    10,
	}
}

// withDefaults fills zero fields with the standard constants.
func (c EngineConfig) withDefaults() EngineConfig {
	d := DefaultEngineConfig()
	if c.TileSize <= 0 {
		c.TileSize = d.TileSize
	}
	if c.PlayerSizeRatio <= 0 || c.PlayerSizeRatio > 1 {
		c.PlayerSizeRatio = d.PlayerSizeRatio
	}
	if c.PlayerSpeed <= 0 {
		c.PlayerSpeed = d.PlayerSpeed
	}
	if c.RewardPoints <= 0 {
		c.RewardPoints = d.RewardPoints
	}
	return c
}

// Engine is one level session. All methods must be called from a single
// goroutine: the tick loop is the only writer of simulation state, and key
// callbacks only touch the input state.
type Engine struct {
	cfg       EngineConfig
	state     State
	level     *Level
	pos       core.Vec
	score     int
	completed map[int]bool
	input     core.InputState
	tick      uint64
}

// NewEngine creates a fresh session waiting for its level.
func NewEngine(cfg EngineConfig) *Engine {
	return &Engine{
		cfg:       cfg.withDefaults(),
		state:     Generating{},
		completed: make(map[int]bool),
		input:     core.NewInputState(),
	}
}

// Config returns the simulation constants in use.
func (e *Engine) Config() EngineConfig {
	return e.cfg
}

// Phase returns the current phase.
func (e *Engine) Phase() Phase {
	return e.state.Phase()
}

// State returns the current tagged state.
func (e *Engine) State() State {
	return e.state
}

// Load starts play on a generated level. An invalid level moves the session
// to the error phase and the validation failure is returned wrapped in a
// GenerationError.
func (e *Engine) Load(level *Level) error {
	if _, ok := e.state.(Generating); !ok {
		return illegal("load level", e.Phase())
	}

	if err := level.Validate(); err != nil {
		genErr := &GenerationError{
			Message: "The generated level is malformed: " + err.Error(),
			Err:     err,
		}
		e.state = Failed{Err: genErr}
		return genErr
	}

	e.level = level
	e.pos = level.PlayerStart.Scale(e.cfg.TileSize)
	e.state = Playing{}
	return nil
}

// Fail ends a pending generation with an error.
func (e *Engine) Fail(err error) error {
	if _, ok := e.state.(Generating); !ok {
		return illegal("fail generation", e.Phase())
	}
	if err == nil {
		err = &GenerationError{}
	}
	e.state = Failed{Err: err}
	return nil
}

// Press records a key-down event.
func (e *Engine) Press(k core.Key) {
	e.input.Press(k)
}

// Release records a key-up event.
func (e *Engine) Release(k core.Key) {
	e.input.Release(k)
}

// ReleaseAll drops every held key, e.g. when input focus is lost.
func (e *Engine) ReleaseAll() {
	e.input.ReleaseAll()
}

// Tick advances the simulation by one display refresh. It does nothing
// outside the playing phase.
func (e *Engine) Tick() {
	if _, ok := e.state.(Playing); !ok {
		return
	}
	e.tick++

	// One press opens at most one interaction.
	if e.input.Consume(core.KeyInteract) {
		if it, found := e.findInteraction(); found {
			e.state = Interacting{Interaction: it}
			return
		}
	}

	candidate := e.pos.Add(e.velocity())
	res := e.resolveMove(candidate)
	if !res.Rejected {
		e.pos = candidate
	}
	if res.Exit {
		e.state = Completed{}
	}
}

// velocity sums a fixed step for every held direction. Diagonals are not
// normalized.
func (e *Engine) velocity() core.Vec {
	var v core.Vec
	step := e.cfg.PlayerSpeed
	if e.input.Held(core.KeyUp) {
		v.Y -= step
	}
	if e.input.Held(core.KeyDown) {
		v.Y += step
	}
	if e.input.Held(core.KeyLeft) {
		v.X -= step
	}
	if e.input.Held(core.KeyRight) {
		v.X += step
	}
	return v
}

// Submit evaluates an answer for the active interaction.
func (e *Engine) Submit(answer string) (Feedback, error) {
	active, ok := e.state.(Interacting)
	if !ok {
		return Feedback{}, illegal("submit answer", e.Phase())
	}

	it := active.Interaction
	fb := Feedback{Correct: answersMatch(answer, it.CorrectAnswer)}
	if fb.Correct {
		if !e.completed[it.ID] {
			e.score += e.cfg.RewardPoints
			e.completed[it.ID] = true
		}
		fb.Message = it.SuccessMessage
	} else {
		fb.Message = it.FailureMessage
	}

	e.state = ShowingFeedback{Interaction: it, Answer: answer, Feedback: fb}
	return fb, nil
}

// answersMatch compares answers ignoring case and surrounding whitespace.
func answersMatch(given, correct string) bool {
	return strings.ToLower(strings.TrimSpace(given)) == strings.ToLower(strings.TrimSpace(correct))
}

// Dismiss closes the feedback and resumes play.
func (e *Engine) Dismiss() error {
	if _, ok := e.state.(ShowingFeedback); !ok {
		return illegal("dismiss feedback", e.Phase())
	}
	e.state = Playing{}
	return nil
}

// Score returns the current score.
func (e *Engine) Score() int {
	return e.score
}

// Position returns the player's continuous position.
func (e *Engine) Position() core.Vec {
	return e.pos
}

// IsCompleted reports whether the interaction id has been solved.
func (e *Engine) IsCompleted(id int) bool {
	return e.completed[id]
}

// Err returns the error that ended the session, if any.
func (e *Engine) Err() error {
	if f, ok := e.state.(Failed); ok {
		return f.Err
	}
	return nil
}

// InsufficientCredits reports whether the session failed for lack of tokens.
func (e *Engine) InsufficientCredits() bool {
	var genErr *GenerationError
	if errors.As(e.Err(), &genErr) {
		return genErr.InsufficientCredits
	}
	return errors.Is(e.Err(), ErrInsufficientCredits)
}

// Snapshot is the render output of one frame.
type Snapshot struct {
	Phase     Phase
	Tick      uint64
	Level     *Level // nil until a level is loaded
	Position  core.Vec
	Score     int
	Active    *Interaction // set in interaction and feedback phases
	Feedback  *Feedback    // set in feedback phase
	Completed []int        // solved interaction ids, ascending
	Err       error
}

// Snapshot captures the current state for the display layer.
func (e *Engine) Snapshot() Snapshot {
	snap := Snapshot{
		Phase:    e.Phase(),
		Tick:     e.tick,
		Level:    e.level,
		Position: e.pos,
		Score:    e.score,
		Err:      e.Err(),
	}

	switch s := e.state.(type) {
	case Interacting:
		it := s.Interaction
		snap.Active = &it
	case ShowingFeedback:
		it := s.Interaction
		fb := s.Feedback
		snap.Active = &it
		snap.Feedback = &fb
	}

	snap.Completed = make([]int, 0, len(e.completed))
	for id := range e.completed {
		snap.Completed = append(snap.Completed, id)
	}
	sort.Ints(snap.Completed)

	return snap
}

// SolvedCount returns how many interactions are solved.
func (s Snapshot) SolvedCount() int {
	return len(s.Completed)
}

// IsSolved reports whether the interaction id is in the completed set.
func (s Snapshot) IsSolved(id int) bool {
	i := sort.SearchInts(s.Completed, id)
	return i < len(s.Completed) && s.Completed[i] == id
}
