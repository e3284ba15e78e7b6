// Package generator provides the level generator backends of Chapter
// Conquest. Backends register with the registry in init().
package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/stubro/internal/config"
	"github.com/vovakirdan/stubro/internal/games/conquest"
	"github.com/vovakirdan/stubro/internal/games/conquest/levels/formats"
	"github.com/vovakirdan/stubro/internal/gemini"
	"github.com/vovakirdan/stubro/internal/registry"
)

func init() {
	registry.Register(registry.Info{
		ID:          "gemini",
		Title:       "AI Level Designer",
		Description: "Builds a custom level from your chapter with Google Gemini",
		Online:      true,
	}, func(deps registry.Deps) (conquest.Generator, error) {
		return NewGemini(deps.Config.Gemini, deps.APIKey, deps.Logger), nil
	})
}

func orDiscard(logger *log.Logger) *log.Logger {
	if logger == nil {
		return log.New(io.Discard)
	}
	return logger
}

// maxContentRunes bounds the study text sent to the model.
const maxContentRunes = 12000

// Gemini builds levels with the Gemini API.
type Gemini struct {
	client  *gemini.Client
	timeout time.Duration
	logger  *log.Logger
}

// NewGemini creates the AI level designer backend. A missing API key is
// reported when Generate is called.
func NewGemini(cfg config.GeminiConfig, apiKey string, logger *log.Logger) *Gemini {
	return &Gemini{
		client: gemini.NewClient(gemini.Config{
			APIKey:      apiKey,
			Model:       cfg.Model,
			Endpoint:    cfg.Endpoint,
			Temperature: cfg.Temperature,
			MaxRetries:  cfg.MaxRetries,
		}),
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		logger:  orDiscard(logger),
	}
}

// Name returns the backend ID.
func (g *Gemini) Name() string { return "gemini" }

// Generate asks the model for a level about the study content.
func (g *Gemini) Generate(ctx context.Context, req conquest.Request) (*conquest.Level, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := g.client.GenerateJSON(ctx, levelPrompt(req.Content), levelSchema)
	if err != nil {
		g.logger.Warn("gemini request failed", "model", g.client.Model(), "err", err)
		return nil, describeGeminiError(err)
	}

	level, err := formats.ParseJSON([]byte(text))
	if err != nil {
		return nil, &conquest.GenerationError{
			Message: "The AI Level Designer returned a level we could not read.",
			Err:     err,
		}
	}

	g.logger.Debug("gemini level received", "title", level.Title, "elapsed", time.Since(start).Round(time.Millisecond))
	return level, nil
}

// describeGeminiError turns client failures into user-facing messages.
func describeGeminiError(err error) error {
	var httpErr *gemini.HTTPError
	var blocked *gemini.BlockedError

	switch {
	case errors.Is(err, gemini.ErrNoAPIKey):
		return &conquest.GenerationError{Message: "Gemini AI service not configured.", Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &conquest.GenerationError{Message: "Level generation timed out.", Err: err}
	case errors.As(err, &httpErr) && httpErr.IsAuth():
		return &conquest.GenerationError{Message: "The Gemini API key was rejected.", Err: err}
	case errors.As(err, &httpErr) && httpErr.IsRateLimited():
		return &conquest.GenerationError{Message: "The AI service is busy right now. Please try again in a minute.", Err: err}
	case errors.As(err, &blocked):
		return &conquest.GenerationError{Message: "The AI Level Designer could not build a level from this text.", Err: err}
	default:
		return err
	}
}

func levelPrompt(content string) string {
	runes := []rune(strings.TrimSpace(content))
	if len(runes) > maxContentRunes {
		runes = runes[:maxContentRunes]
	}

	return fmt.Sprintf(`You are the AI Level Designer of "Chapter Conquest", a top-down maze game for students.
Design one level that tests understanding of the chapter below.

Rules:
- The grid is between 10 and 15 columns wide and between 8 and 12 rows tall; every row has the same length.
- Surround the level with "wall" tiles and build corridors and rooms inside.
- Place exactly one "exit" tile, reachable from player_start.
- player_start is a "floor" tile inside the grid; x is the column and y is the row, both zero-based.
- Create 3 to 5 interactions. Each sits on its own "interaction" tile reachable from the start.
- Each prompt is a short question answered with one or two words; correct_answer is that answer.
- success_message praises and explains in one sentence; failure_message gives a hint without the answer.

---CHAPTER TEXT---
%s
---END TEXT---`, string(runes))
}

var point = &gemini.Schema{
	Type: gemini.TypeObject,
	Properties: map[string]*gemini.Schema{
		"x": {Type: gemini.TypeInteger},
		"y": {Type: gemini.TypeInteger},
	},
	Required: []string{"x", "y"},
}

var levelSchema = &gemini.Schema{
	Type: gemini.TypeObject,
	Properties: map[string]*gemini.Schema{
		"title": {Type: gemini.TypeString, Description: "A fun title for the level."},
		"goal":  {Type: gemini.TypeString, Description: "One sentence telling the player what to do."},
		"grid": {
			Type:        gemini.TypeArray,
			Description: "Rows of tiles, top to bottom.",
			Items: &gemini.Schema{
				Type: gemini.TypeArray,
				Items: &gemini.Schema{
					Type: gemini.TypeObject,
					Properties: map[string]*gemini.Schema{
						"type": {Type: gemini.TypeString, Enum: []string{"floor", "wall", "exit", "interaction"}},
					},
					Required: []string{"type"},
				},
			},
		},
		"player_start": point,
		"interactions": {
			Type: gemini.TypeArray,
			Items: &gemini.Schema{
				Type: gemini.TypeObject,
				Properties: map[string]*gemini.Schema{
					"id":              {Type: gemini.TypeInteger},
					"position":        point,
					"prompt":          {Type: gemini.TypeString},
					"correct_answer":  {Type: gemini.TypeString},
					"success_message": {Type: gemini.TypeString},
					"failure_message": {Type: gemini.TypeString},
				},
				Required: []string{"id", "position", "prompt", "correct_answer", "success_message", "failure_message"},
			},
		},
	},
	Required: []string{"title", "goal", "grid", "player_start", "interactions"},
}
