package conquest

// Phase names the state of a level session.
type Phase int

const (
	PhaseGenerating Phase = iota
	PhasePlaying
	PhaseInteraction
	PhaseFeedback
	PhaseCompleted
	PhaseError
)

// String returns a human-readable name for the phase.
func (p Phase) String() string {
	switch p {
	case PhaseGenerating:
		return "generating"
	case PhasePlaying:
		return "playing"
	case PhaseInteraction:
		return "interaction"
	case PhaseFeedback:
		return "feedback"
	case PhaseCompleted:
		return "completed"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further ticks are processed in this phase.
func (p Phase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseError
}

// State is the session state together with the data that only exists in
// that state. The concrete types below are the only implementations.
type State interface {
	Phase() Phase
	isState()
}

// Feedback is the outcome of an answered interaction.
type Feedback struct {
	Correct bool
	Message string
}

// Generating waits for the level generator.
type Generating struct{}

// Playing runs the simulation.
type Playing struct{}

// Interacting shows the prompt of the active interaction.
type Interacting struct {
	Interaction Interaction
}

// ShowingFeedback shows the result of the submitted answer.
type ShowingFeedback struct {
	Interaction Interaction
	Answer      string
	Feedback    Feedback
}

// Completed is reached when the player touches an exit.
type Completed struct{}

// Failed holds the error that ended the session.
type Failed struct {
	Err error
}

func (Generating) Phase() Phase      { return PhaseGenerating }
func (Playing) Phase() Phase         { return PhasePlaying }
func (Interacting) Phase() Phase     { return PhaseInteraction }
func (ShowingFeedback) Phase() Phase { return PhaseFeedback }
func (Completed) Phase() Phase       { return PhaseCompleted }
func (Failed) Phase() Phase          { return PhaseError }

func (Generating) isState()      {}
func (Playing) isState()         {}
func (Interacting) isState()     {}
func (ShowingFeedback) isState() {}
func (Completed) isState()       {}
func (Failed) isState()          {}
