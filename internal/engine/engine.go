// Package engine is the sketch session driven by the browser front end. Commands and
// queries exchange JSON strings.
package engine

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/VorpalBlade/smartmirror/internal/document"
	"github.com/VorpalBlade/smartmirror/internal/mirror"
	"github.com/VorpalBlade/smartmirror/internal/sketch"
)

var ErrNoSketch = errors.New("no sketch loaded")

// Engine owns the sketch being edited and the current selection.
type Engine struct {
	store *sketch.Store
	opts  mirror.Options

	// Selection state (backend owns this)
	selection []string

	last *mirror.Result
}

// NewEngine creates a new engine instance.
func NewEngine(opts mirror.Options) *Engine {
	return &Engine{opts: opts}
}

// --- Commands (frontend → backend) ---

// LoadSketch replaces the sketch with the one in jsonData and clears the selection.
func (e *Engine) LoadSketch(jsonData string) error {
	var sk document.Sketch
	if err := json.Unmarshal([]byte(jsonData), &sk); err != nil {
		return err
	}
	st, err := sketch.NewStore(&sk)
	if err != nil {
		return err
	}

	e.store = st
	e.selection = nil
	e.last = nil
	return nil
}

// LoadSampleSketch loads the built-in sample sketch and selects its default selection.
func (e *Engine) LoadSampleSketch() {
	st, err := sketch.NewStore(document.NewSampleSketch())
	if err != nil {
		panic(err)
	}
	e.store = st
	e.selection = append([]string(nil), document.SampleSelection...)
	e.last = nil
}

// SetSelection sets the selected display tokens, in selection order.
func (e *Engine) SetSelection(tokens []string) {
	e.selection = append([]string(nil), tokens...)
}

// Mirror mirrors the current selection. The selection is cleared on success.
func (e *Engine) Mirror(ctx context.Context) (*mirror.Result, error) {
	if e.store == nil {
		return nil, ErrNoSketch
	}
	res, err := mirror.Apply(ctx, e.store, e.selection, e.opts)
	if err != nil {
		return nil, err
	}
	e.selection = nil
	e.last = res
	return res, nil
}

// --- Queries (frontend ← backend) ---

// GetSketch returns the current sketch as JSON, or "null" without one.
func (e *Engine) GetSketch() string {
	if e.store == nil {
		return "null"
	}
	return mustJSON(e.store.Sketch())
}

func (e *Engine) GetSelection() string {
	return mustJSON(e.selection)
}

// GetLastResult returns the result of the most recent mirror as JSON.
func (e *Engine) GetLastResult() string {
	return mustJSON(e.last)
}

// GetHistory returns the committed transactions as JSON.
func (e *Engine) GetHistory() string {
	if e.store == nil {
		return "[]"
	}
	return mustJSON(e.store.History())
}

// SmartMirror mirrors selection in a one-off copy of the sketch in sketchJSON and returns
// the resulting sketch as JSON.
func SmartMirror(ctx context.Context, sketchJSON string, selection []string, opts mirror.Options) (string, error) {
	e := NewEngine(opts)
	if err := e.LoadSketch(sketchJSON); err != nil {
		return "", err
	}
	e.SetSelection(selection)
	if _, err := e.Mirror(ctx); err != nil {
		return "", err
	}
	return e.GetSketch(), nil
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(data)
}
