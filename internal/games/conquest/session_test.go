package conquest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/vovakirdan/stubro/internal/core"
)

type stubGenerator struct {
	calls int
	level *Level
	err   error
}

func (g *stubGenerator) Name() string { return "stub" }

func (g *stubGenerator) Generate(ctx context.Context, req Request) (*Level, error) {
	g.calls++
	return g.level, g.err
}

func TestGenerateMissingContent(t *testing.T) {
	gen := &stubGenerator{}
	for _, content := range []string{"", "   \n\t"} {
		_, err := Generate(context.Background(), gen, Request{Content: content})
		if !errors.Is(err, ErrMissingContent) {
			t.Errorf("content %q: expected ErrMissingContent, got %v", content, err)
		}
	}
	if gen.calls != 0 {
		t.Errorf("Generator must not be called without content, got %d calls", gen.calls)
	}
}

func TestGenerateNormalizesErrors(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		credits     bool
		wantMessage string
	}{
		{"credits", ErrInsufficientCredits, true, "Insufficient tokens"},
		{"deadline", context.DeadlineExceeded, false, "took too long"},
		{"generic", errors.New("boom"), false, "boom"},
		{"typed", &GenerationError{Message: "Gemini AI service not configured."}, false, "not configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &stubGenerator{err: tt.err}
			_, err := Generate(context.Background(), gen, Request{Content: "Photosynthesis"})

			var genErr *GenerationError
			if !errors.As(err, &genErr) {
				t.Fatalf("Expected GenerationError, got %v", err)
			}
			if genErr.InsufficientCredits != tt.credits {
				t.Errorf("InsufficientCredits = %v, want %v", genErr.InsufficientCredits, tt.credits)
			}
			if !strings.Contains(genErr.Error(), tt.wantMessage) {
				t.Errorf("Message %q does not mention %q", genErr.Error(), tt.wantMessage)
			}
			if gen.calls != 1 {
				t.Errorf("Expected exactly one attempt, got %d", gen.calls)
			}
		})
	}
}

func TestGenerateRejectsMalformedLevel(t *testing.T) {
	gen := &stubGenerator{level: &Level{
		Grid:        [][]Tile{{TileFloor, TileFloor}},
		PlayerStart: core.P(0, 0),
	}}

	_, err := Generate(context.Background(), gen, Request{Content: "Cells"})
	var vErr ValidationError
	if !errors.As(err, &vErr) || vErr.Code != "NO_EXIT" {
		t.Errorf("Expected NO_EXIT validation failure, got %v", err)
	}
}

func TestGenerateThenLoad(t *testing.T) {
	grid, _ := GridFromRows([]string{"....E"})
	gen := &stubGenerator{level: &Level{Title: "Line", Grid: grid}}

	level, err := Generate(context.Background(), gen, Request{Content: "Lines"})
	e := NewEngine(DefaultEngineConfig())
	if err := e.Start(level, err); err != nil {
		t.Fatal(err)
	}
	if e.Phase() != PhasePlaying {
		t.Errorf("Expected playing, got %v", e.Phase())
	}
}

func TestGenerationErrorDefaultMessage(t *testing.T) {
	err := &GenerationError{}
	if err.Error() != "An unknown error occurred while building your game." {
		t.Errorf("Unexpected default message %q", err.Error())
	}
}
