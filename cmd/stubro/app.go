package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/stubro/internal/config"
	"github.com/vovakirdan/stubro/internal/core"
	"github.com/vovakirdan/stubro/internal/games/conquest"
	"github.com/vovakirdan/stubro/internal/generator"
	"github.com/vovakirdan/stubro/internal/platform/tui"
	"github.com/vovakirdan/stubro/internal/registry"
	"github.com/vovakirdan/stubro/internal/secrets"
	"github.com/vovakirdan/stubro/internal/storage"
)

// apiKeyEnv is the environment variable holding the Gemini API key.
const apiKeyEnv = "GEMINI_API_KEY"

// Generator flags shared by play, menu, serve and generate.
var (
	flagGenerator  string
	flagDifficulty string
	flagAPIKey     string
	flagContentDir string
)

// app holds what most commands need.
type app struct {
	cfg      config.ConquestConfig
	logger   *log.Logger
	store    *storage.Store // nil when the database is unavailable
	user     string
	closeLog func()
}

// setup loads config, logging and storage. A broken database is reported
// and the command continues without it.
func setup(interactive bool) (*app, error) {
	logger, closeLog, err := newLogger(interactive)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		closeLog()
		return nil, err
	}
	if flagFPS > 0 {
		cfg.Controls.FPS = flagFPS
	}

	a := &app{cfg: cfg, logger: logger, user: currentUser(), closeLog: closeLog}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open database", "path", flagDBPath, "err", err)
		if interactive {
			fmt.Fprintf(os.Stderr, "Warning: could not open database: %v\n", err)
		}
		return a, nil
	}
	a.store = store

	if _, created, err := store.EnsureAccount(a.user, cfg.Tokens.Initial); err != nil {
		logger.Warn("could not open token account", "user", a.user, "err", err)
	} else if created {
		logger.Info("token account created", "user", a.user, "balance", cfg.Tokens.Initial)
	}
	return a, nil
}

// Close releases the store and the log file.
func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
	a.closeLog()
}

// currentUser returns the player name from --user or the environment.
func currentUser() string {
	if u := strings.TrimSpace(flagUser); u != "" {
		return u
	}
	for _, env := range []string{"USER", "USERNAME"} {
		if u := strings.TrimSpace(os.Getenv(env)); u != "" {
			return u
		}
	}
	return "player"
}

// keyStore returns the API key store with its file fallback.
func keyStore() *secrets.KeyringStore {
	return secrets.NewKeyringStore(secrets.ServiceName, config.UserPath("secrets.json"))
}

// buildGenerator creates the selected backend. Online backends are charged
// against the token balance when a database is available.
func (a *app) buildGenerator() (conquest.Generator, error) {
	backend := flagGenerator
	if backend == "" {
		backend = a.cfg.Generator.Backend
	}
	info, ok := registry.Get(backend)
	if !ok {
		return nil, fmt.Errorf("unknown generator %q (run 'stubro generators')", backend)
	}

	gcfg := a.cfg.Generator
	if flagDifficulty != "" {
		preset, err := config.ParseDifficulty(flagDifficulty)
		if err != nil {
			return nil, err
		}
		config.ApplyProceduralPreset(&gcfg.Procedural, preset)
	}
	if gcfg.Library.Dir == "" {
		gcfg.Library.Dir = config.UserPath("levels")
	}

	var apiKey string
	if info.Online {
		var source string
		apiKey, source = secrets.ResolveAPIKey(flagAPIKey, apiKeyEnv, keyStore())
		a.logger.Debug("api key resolved", "source", source)
	}

	gen, err := registry.Create(backend, registry.Deps{Config: gcfg, Logger: a.logger, APIKey: apiKey})
	if err != nil {
		return nil, err
	}

	if info.Online && a.store != nil && a.cfg.Tokens.LevelCost > 0 {
		gen = generator.NewMetered(gen, a.store, a.user, a.cfg.Tokens.LevelCost, a.logger)
	}
	return gen, nil
}

// libraryChapters lists the curated levels as playable chapters.
func (a *app) libraryChapters() []tui.Chapter {
	dir := a.cfg.Generator.Library.Dir
	if dir == "" {
		dir = config.UserPath("levels")
	}
	lib, err := generator.NewLibrary(dir, a.logger)
	if err != nil {
		a.logger.Warn("could not load level library", "err", err)
		return nil
	}
	return tui.LibraryChapters(lib.Entries())
}

// gameOptions assembles the collaborators of a game session.
func (a *app) gameOptions(gen conquest.Generator) tui.GameOptions {
	e := a.cfg.Engine
	return tui.GameOptions{
		Generator: gen,
		Store:     a.store,
		Logger:    a.logger,
		Engine: conquest.EngineConfig{
			TileSize:        e.TileSize,
			PlayerSizeRatio: e.PlayerSizeRatio,
			PlayerSpeed:     e.PlayerSpeed,
			RewardPoints:    e.RewardPoints,
		},
		Controls: a.cfg.Controls,
		User:     a.user,
		Seed:     flagSeed,
	}
}

// runtimeConfig sizes the screen from the terminal.
func (a *app) runtimeConfig() core.RuntimeConfig {
	width, height := 80, 24 // Defaults
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width, height = w, h
	}
	return core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: a.cfg.Controls.FPS,
		Seed:     flagSeed,
	}
}

// addGeneratorFlags registers the generator selection flags on cmd.
func addGeneratorFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&flagGenerator, "generator", "", "Level generator: gemini, library, procedural (default: from config)")
	flags.StringVar(&flagDifficulty, "difficulty", "", "Procedural difficulty preset: easy, normal, hard")
	flags.StringVar(&flagAPIKey, "api-key", "", "Gemini API key (default: $GEMINI_API_KEY, then keyring)")
}

// fatal prints an error and exits.
func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
