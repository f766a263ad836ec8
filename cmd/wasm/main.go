//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"syscall/js"

	"github.com/inamate/sketch/internal/codec"
	"github.com/inamate/sketch/internal/engine"
	"github.com/inamate/sketch/internal/media"
)

var (
	ed   *engine.Editor
	host = &jsSurface{}
)

// jsSurface forwards editor requests to callbacks the page registers with
// setSurface. Missing callbacks are ignored.
type jsSurface struct {
	obj js.Value
}

func (s *jsSurface) call(name string, args ...interface{}) {
	if s.obj.IsUndefined() || s.obj.IsNull() {
		return
	}
	if fn := s.obj.Get(name); fn.Type() == js.TypeFunction {
		fn.Invoke(args...)
	}
}

func (s *jsSurface) SetCursor(c engine.Cursor)        { s.call("setCursor", string(c)) }
func (s *jsSurface) SetSelectionEnabled(enabled bool) { s.call("setSelectionEnabled", enabled) }
func (s *jsSurface) RequestRender()                   { s.call("requestRender") }

func main() {
	opts := engine.DefaultOptions()
	opts.Surface = host
	opts.Codec = codec.New(codec.Options{})
	opts.Images = media.NewDecoder(media.DefaultMaxSide)
	ed = engine.NewEditor(opts)
	ed.Viewport().OnPan(func(ev engine.PanEvent) {
		host.call("onPan", string(ev.Type), ev.DX, ev.DY, ev.Cancelled)
	})

	// Create the engine API object
	sketch := js.Global().Get("Object").New()

	// --- Commands (frontend → backend) ---
	sketch.Set("setSurface", js.FuncOf(setSurface))
	sketch.Set("loadSampleDocument", js.FuncOf(loadSampleDocument))
	sketch.Set("pointerDown", js.FuncOf(pointer(ed.PointerDown)))
	sketch.Set("pointerMove", js.FuncOf(pointer(ed.PointerMove)))
	sketch.Set("pointerUp", js.FuncOf(pointer(ed.PointerUp)))
	sketch.Set("cancelGesture", js.FuncOf(cancelGesture))
	sketch.Set("setSelection", js.FuncOf(setSelection))
	sketch.Set("command", js.FuncOf(command))
	sketch.Set("setZoom", js.FuncOf(setZoom))
	sketch.Set("resize", js.FuncOf(resize))
	sketch.Set("importScene", js.FuncOf(importScene))
	sketch.Set("exportScene", js.FuncOf(exportScene))
	sketch.Set("addImage", js.FuncOf(addImage))
	sketch.Set("tick", js.FuncOf(tick))

	// --- Queries (frontend ← backend) ---
	sketch.Set("render", js.FuncOf(render))
	sketch.Set("hitTest", js.FuncOf(hitTest))
	sketch.Set("getSelectionBounds", js.FuncOf(getSelectionBounds))
	sketch.Set("getState", js.FuncOf(getState))

	// Register on global scope
	js.Global().Set("sketchEngine", sketch)

	// Signal that WASM is ready
	js.Global().Set("sketchWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func errorResult(err error) interface{} {
	return js.ValueOf(map[string]interface{}{"error": err.Error()})
}

func okResult() interface{} {
	return js.ValueOf(map[string]interface{}{"ok": true})
}

// --- Command Handlers ---

func setSurface(this js.Value, args []js.Value) interface{} {
	if len(args) > 0 {
		host.obj = args[0]
	}
	return nil
}

func loadSampleDocument(this js.Value, args []js.Value) interface{} {
	sceneID := "scene_sample"
	if len(args) > 0 && args[0].Type() == js.TypeString {
		sceneID = args[0].String()
	}
	ed.LoadSampleDocument(sceneID)
	return okResult()
}

// pointer adapts a pointer handler to (x, y, pointerType, shift, alt).
func pointer(fn func(engine.PointerEvent)) func(js.Value, []js.Value) interface{} {
	return func(this js.Value, args []js.Value) interface{} {
		if len(args) < 2 {
			return nil
		}
		ev := engine.PointerEvent{X: args[0].Float(), Y: args[1].Float()}
		if len(args) > 2 && args[2].Type() == js.TypeString {
			ev.PointerType = engine.PointerType(args[2].String())
		}
		if len(args) > 3 {
			ev.Shift = args[3].Truthy()
		}
		if len(args) > 4 {
			ev.Alt = args[4].Truthy()
		}
		fn(ev)
		return nil
	}
}

func cancelGesture(this js.Value, args []js.Value) interface{} {
	ed.CancelGesture()
	return nil
}

func setSelection(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].Type() != js.TypeObject {
		ed.ClearSelection()
		return nil
	}
	arr := args[0]
	ids := make([]string, arr.Length())
	for i := range ids {
		ids[i] = arr.Index(i).String()
	}
	ed.Select(ids...)
	return nil
}

// command runs a named editor command: command(name, arg).
func command(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	arg := ""
	if len(args) > 1 && args[1].Type() == js.TypeString {
		arg = args[1].String()
	}
	var err error
	switch args[0].String() {
	case "undo":
		ed.Undo()
	case "redo":
		ed.Redo()
	case "delete":
		err = ed.Delete()
	case "duplicate":
		ed.Duplicate()
	case "selectAll":
		ed.SelectAll()
	case "align":
		ed.Align(engine.Alignment(arg))
	case "distribute":
		ed.Distribute(engine.Distribution(arg))
	case "enablePan":
		ed.EnablePan()
	case "disablePan":
		ed.DisablePan()
	case "enableDraw":
		ed.EnableDraw()
	case "disableDraw":
		ed.DisableDraw()
	case "zoomIn":
		ed.Viewport().ZoomIn()
	case "zoomOut":
		ed.Viewport().ZoomOut()
	case "resetZoom":
		ed.Viewport().ResetZoom()
	}
	if err != nil {
		return errorResult(err)
	}
	return okResult()
}

func setZoom(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	ed.Viewport().SetZoom(args[0].Float() / 100)
	return nil
}

func resize(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	ed.Viewport().Resize(args[0].Float(), args[1].Float())
	return nil
}

// promise runs fn off the JS event loop and settles a Promise with its result.
func promise(fn func() (interface{}, error)) interface{} {
	handler := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		resolve, reject := args[0], args[1]
		go func() {
			v, err := fn()
			if err != nil {
				reject.Invoke(js.Global().Get("Error").New(err.Error()))
				return
			}
			resolve.Invoke(v)
		}()
		return nil
	})
	return js.Global().Get("Promise").New(handler)
}

func bytesFrom(v js.Value) []byte {
	data := make([]byte, v.Get("length").Int())
	js.CopyBytesToGo(data, v)
	return data
}

// importScene(bytes: Uint8Array, merge: boolean): Promise<void>
func importScene(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult(engine.ErrNoCodec)
	}
	data := bytesFrom(args[0])
	mode := engine.ImportReplace
	if len(args) > 1 && args[1].Truthy() {
		mode = engine.ImportMerge
	}
	return promise(func() (interface{}, error) {
		return nil, ed.Import(context.Background(), data, mode)
	})
}

// exportScene(): Promise<Uint8Array>
func exportScene(this js.Value, args []js.Value) interface{} {
	return promise(func() (interface{}, error) {
		data, err := ed.Export(context.Background())
		if err != nil {
			return nil, err
		}
		out := js.Global().Get("Uint8Array").New(len(data))
		js.CopyBytesToJS(out, data)
		return out, nil
	})
}

// addImage(bytes: Uint8Array, x, y) adds a pending image at the screen point.
func addImage(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return nil
	}
	p := ed.Viewport().Viewport().ScreenToScene(engine.Point{X: args[1].Float(), Y: args[2].Float()})
	id, err := ed.AddImage(context.Background(), bytesFrom(args[0]), p)
	if err != nil {
		return errorResult(err)
	}
	return js.ValueOf(id)
}

func tick(this js.Value, args []js.Value) interface{} {
	if err := ed.Tick(); err != nil {
		return errorResult(err)
	}
	return okResult()
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(ed.Render())
}

func hitTest(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("")
	}
	p := ed.Viewport().Viewport().ScreenToScene(engine.Point{X: args[0].Float(), Y: args[1].Float()})
	return js.ValueOf(ed.HitTest(p.X, p.Y))
}

func getSelectionBounds(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(engine.RectToJSON(ed.SelectionBounds()))
}

func getState(this js.Value, args []js.Value) interface{} {
	data, err := json.Marshal(ed.State())
	if err != nil {
		return js.ValueOf("{}")
	}
	return js.ValueOf(string(data))
}
