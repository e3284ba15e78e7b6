package registry

import (
	"context"
	"testing"

	"github.com/vovakirdan/stubro/internal/games/conquest"
)

type fakeGenerator struct{ name string }

func (f fakeGenerator) Name() string { return f.name }

func (f fakeGenerator) Generate(ctx context.Context, req conquest.Request) (*conquest.Level, error) {
	return nil, nil
}

func TestRegisterAndCreate(t *testing.T) {
	Register(Info{ID: "zz-test", Title: "Test"}, func(deps Deps) (conquest.Generator, error) {
		if deps.Logger == nil {
			t.Error("Create should always supply a logger")
		}
		return fakeGenerator{name: "zz-test"}, nil
	})

	if !Exists("zz-test") {
		t.Fatal("Registered backend not found")
	}

	if info, ok := Get("zz-test"); !ok || info.Title != "Test" {
		t.Errorf("Get returned %+v, %v", info, ok)
	}

	gen, err := Create("zz-test", Deps{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if gen.Name() != "zz-test" {
		t.Errorf("Unexpected generator %q", gen.Name())
	}

	list := List()
	if list[len(list)-1].ID != "zz-test" {
		t.Errorf("List should be sorted by ID, got %+v", list)
	}
}

func TestCreateUnknown(t *testing.T) {
	if _, err := Create("does-not-exist", Deps{}); err == nil {
		t.Error("Expected error for unknown backend")
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	f := func(deps Deps) (conquest.Generator, error) { return fakeGenerator{}, nil }
	Register(Info{ID: "zz-dup"}, f)

	defer func() {
		if recover() == nil {
			t.Error("Expected panic on duplicate registration")
		}
	}()
	Register(Info{ID: "zz-dup"}, f)
}
