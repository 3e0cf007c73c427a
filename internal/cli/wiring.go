// wiring.go assembles the chat client and its collaborators from config.
package cli

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/berth-dev/chatdock/internal/chatbot"
	"github.com/berth-dev/chatdock/internal/config"
	"github.com/berth-dev/chatdock/internal/log"
	"github.com/berth-dev/chatdock/internal/render"
	"github.com/berth-dev/chatdock/internal/session"
)

// env holds everything a command needs to talk to the backend.
type env struct {
	dir    string
	cfg    *config.Config
	store  chatbot.SessionStore
	db     *session.Store // nil when sessions are not persisted
	events *log.Logger
	logger *zap.Logger
}

// openEnv loads config for the current directory and opens storage.
// Callers must Close the result.
func openEnv() (*env, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}
	if scopeFlag != "" {
		cfg.Scope = scopeFlag
	}
	if apiURLFlag != "" {
		cfg.APIURL = apiURLFlag
	}

	events, err := log.NewLogger(dir)
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(filepath.Join(dir, ".chatdock", "debug.log"))
	if err != nil {
		return nil, err
	}

	e := &env{dir: dir, cfg: cfg, events: events, logger: logger}

	if !cfg.PersistSession {
		e.store = session.NewMemoryStore()
		return e, nil
	}

	db, err := session.NewStore(cfg.StoragePath(dir))
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("opening session store: %w", err)
	}
	e.db = db
	e.store = db
	return e, nil
}

// newLogger returns a development logger writing to path when --debug is
// set, and a no-op logger otherwise. The TUI owns the terminal, so debug
// output never goes to stderr.
func newLogger(path string) (*zap.Logger, error) {
	if !debug {
		return zap.NewNop(), nil
	}
	zcfg := zap.NewDevelopmentConfig()
	zcfg.OutputPaths = []string{path}
	zcfg.ErrorOutputPaths = []string{path}
	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// Close releases storage and flushes the logger.
func (e *env) Close() {
	if e.db != nil {
		_ = e.db.Close()
	}
	_ = e.logger.Sync()
}

// requireDB returns the session database or an error when persistence is off.
func (e *env) requireDB() (*session.Store, error) {
	if e.db == nil {
		return nil, fmt.Errorf("session persistence is disabled (persist_session: false)")
	}
	return e.db, nil
}

// newClient creates a chat client rendering into view with f.
func (e *env) newClient(view chatbot.View, f render.Formatter) *chatbot.Client {
	opts := chatbot.Options{
		APIURL:     e.cfg.APIURL,
		Greeting:   e.cfg.Greeting,
		Scope:      e.cfg.Scope,
		Formatter:  f,
		HTTPClient: &http.Client{Timeout: e.cfg.RequestTimeout()},
		Events:     e.events,
		Logger:     e.logger,
	}
	if e.db != nil {
		opts.Transcript = e.db
	}
	return chatbot.New(opts, view, e.store)
}
