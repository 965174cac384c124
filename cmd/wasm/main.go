//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"errors"
	"syscall/js"

	"github.com/VorpalBlade/smartmirror/internal/engine"
	"github.com/VorpalBlade/smartmirror/internal/mirror"
)

var eng *engine.Engine

func main() {
	eng = engine.NewEngine(mirror.Options{})

	// Create the engine API object
	mirrorEngine := js.Global().Get("Object").New()

	// --- Commands (frontend → backend) ---
	mirrorEngine.Set("loadSketch", js.FuncOf(loadSketch))
	mirrorEngine.Set("loadSampleSketch", js.FuncOf(loadSampleSketch))
	mirrorEngine.Set("setSelection", js.FuncOf(setSelection))
	mirrorEngine.Set("mirror", js.FuncOf(mirrorSelection))

	// --- Queries (frontend ← backend) ---
	mirrorEngine.Set("getSketch", js.FuncOf(getSketch))
	mirrorEngine.Set("getSelection", js.FuncOf(getSelection))
	mirrorEngine.Set("getLastResult", js.FuncOf(getLastResult))
	mirrorEngine.Set("getHistory", js.FuncOf(getHistory))

	// Register on global scope
	js.Global().Set("mirrorEngine", mirrorEngine)
	js.Global().Set("smartMirror", js.FuncOf(smartMirror))

	// Signal that WASM is ready
	js.Global().Set("smartMirrorWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

// errorValue hides internal mirror failures behind the generic message; other errors
// (bad JSON, no sketch loaded) are reported as is.
func errorValue(err error) js.Value {
	msg := err.Error()
	var ie *mirror.InternalError
	if mirror.IsUsageError(err) || errors.As(err, &ie) {
		msg = mirror.Describe(err)
	}
	return js.ValueOf(map[string]interface{}{"error": msg})
}

// --- Command Handlers ---

func loadSketch(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing sketch JSON"})
	}
	if err := eng.LoadSketch(args[0].String()); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func loadSampleSketch(this js.Value, args []js.Value) interface{} {
	eng.LoadSampleSketch()
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func setSelection(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].Type() != js.TypeObject {
		eng.SetSelection(nil)
		return nil
	}

	arr := args[0]
	length := arr.Length()
	tokens := make([]string, length)
	for i := 0; i < length; i++ {
		tokens[i] = arr.Index(i).String()
	}
	eng.SetSelection(tokens)
	return nil
}

func mirrorSelection(this js.Value, args []js.Value) interface{} {
	if _, err := eng.Mirror(context.Background()); err != nil {
		return errorValue(err)
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

// smartMirror(sketchJSON, selectionJSON) mirrors without touching the engine's sketch.
func smartMirror(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf(map[string]interface{}{"error": "expected sketch and selection JSON"})
	}
	var selection []string
	if err := json.Unmarshal([]byte(args[1].String()), &selection); err != nil {
		return js.ValueOf(map[string]interface{}{"error": "invalid selection JSON"})
	}

	out, err := engine.SmartMirror(context.Background(), args[0].String(), selection, mirror.Options{})
	if err != nil {
		return errorValue(err)
	}
	return js.ValueOf(map[string]interface{}{"sketch": out})
}

// --- Query Handlers ---

func getSketch(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetSketch())
}

func getSelection(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetSelection())
}

func getLastResult(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetLastResult())
}

func getHistory(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetHistory())
}
