package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/n3vedit/internal/config"
	"github.com/Faultbox/n3vedit/internal/editor"
	"github.com/Faultbox/n3vedit/internal/engine/debug"
	"github.com/Faultbox/n3vedit/internal/engine/input"
	"github.com/Faultbox/n3vedit/internal/engine/renderer"
	"github.com/Faultbox/n3vedit/internal/engine/window"
	"github.com/Faultbox/n3vedit/internal/export"
	"github.com/Faultbox/n3vedit/internal/logger"
)

// idleDelay throttles the loop while nothing needs redrawing.
const idleDelay = 10 * time.Millisecond

// fileRequest is a dialog result handed back to the main thread.
type fileRequest struct {
	cmd  input.Command
	path string
}

// App is the editor window and its event loop.
type App struct {
	cfg *config.Config
	log *zap.Logger

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	session  *editor.Session
	shots    *debug.ScreenshotCapture

	pending    chan fileRequest
	dialogOpen bool
	running    bool
}

// NewApp creates the window, GL renderer and editing session.
func NewApp(cfg *config.Config) (*App, error) {
	a := &App{
		cfg:     cfg,
		log:     logger.Named("app"),
		pending: make(chan fileRequest, 1),
	}

	var err error
	a.window, err = window.New(window.Config{
		Title:  cfg.Window.Title,
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
		VSync:  cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	dw, dh := a.window.DrawableSize()
	a.renderer, err = renderer.New(renderer.Config{Width: dw, Height: dh})
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	a.input = input.New()
	a.session = editor.NewSession(editor.SessionConfigFrom(cfg))
	a.session.SetViewport(a.window.Size())
	a.shots = debug.NewScreenshotCapture("screenshots", "meshedit")

	a.log.Info("editor initialized")
	return a, nil
}

// Open loads path into the session, reporting failures in a message box.
func (a *App) Open(path string) {
	if err := a.session.LoadFile(path); err != nil {
		a.reportError("Open failed", err)
		return
	}
	a.updateTitle()
}

// Run processes input and redraws on demand until the window closes.
func (a *App) Run() error {
	a.running = true
	a.log.Info("starting event loop")

	for a.running {
		if a.input.Update() {
			a.running = false
			break
		}

		for _, ev := range a.input.Events() {
			a.handle(ev)
		}

		select {
		case req := <-a.pending:
			a.dialogOpen = false
			a.complete(req)
		default:
		}

		if !a.session.TakeRedraw() {
			time.Sleep(idleDelay)
			continue
		}
		a.renderer.Draw(a.session)
		a.window.SwapBuffers()
	}
	return nil
}

// Close cleans up editor resources.
func (a *App) Close() {
	a.log.Info("closing editor")
	a.session.Release()
	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
}

func (a *App) handle(ev input.Event) {
	switch ev.Command {
	case input.CommandQuit:
		a.running = false
	case input.CommandOpen, input.CommandSave, input.CommandExport:
		a.requestFile(ev.Command)
	case input.CommandScreenshot:
		a.screenshot()
	case input.CommandNone:
		if ev.Editor.Type == editor.EventResize {
			a.renderer.Resize(a.window.DrawableSize())
		}
		editor.Dispatch(a.session, ev.Editor)
	}
}

// requestFile shows a file dialog off the main thread. The result is
// applied by Run so every session and GL call stays on the main thread.
func (a *App) requestFile(cmd input.Command) {
	if a.dialogOpen {
		return
	}
	if cmd != input.CommandOpen && a.session.Mesh().VertexCount() == 0 {
		a.reportError("Nothing to save", errors.New("no mesh is loaded"))
		return
	}
	a.dialogOpen = true

	startDir := a.cfg.Mesh.DefaultDir
	if p := a.session.Path(); p != "" {
		startDir = filepath.Dir(p)
	}

	go func() {
		b := dialog.File().SetStartDir(startDir)
		var path string
		var err error
		switch cmd {
		case input.CommandOpen:
			path, err = b.Filter("N3 VMesh", "n3vmesh").Filter("All Files", "*").Title("Open VMesh").Load()
		case input.CommandSave:
			path, err = b.Filter("N3 VMesh", "n3vmesh").Title("Save VMesh").Save()
		case input.CommandExport:
			path, err = b.Filter("glTF", "gltf", "glb").Title("Export glTF").Save()
		}
		if err != nil {
			if !errors.Is(err, dialog.ErrCancelled) {
				a.log.Warn("file dialog failed", zap.Error(err))
			}
			path = ""
		}
		a.pending <- fileRequest{cmd: cmd, path: path}
	}()
}

func (a *App) complete(req fileRequest) {
	if req.path == "" {
		return
	}

	switch req.cmd {
	case input.CommandOpen:
		a.Open(req.path)
	case input.CommandSave:
		if err := a.session.Save(req.path); err != nil {
			a.reportError("Save failed", err)
		}
	case input.CommandExport:
		a.exportTo(req.path)
	}
}

func (a *App) exportTo(path string) {
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".gltf" && ext != ".glb" {
		path += ".glb"
	}
	opts := export.Options{
		Name:        strings.TrimSuffix(filepath.Base(a.session.Path()), filepath.Ext(a.session.Path())),
		Translation: a.session.Selection().WorldTranslation,
	}
	if err := export.WriteFile(path, a.session.Mesh(), opts); err != nil {
		a.reportError("Export failed", err)
		return
	}
	a.log.Info("mesh exported", zap.String("path", path))
}

func (a *App) screenshot() {
	a.renderer.Draw(a.session)
	pixels, w, h := a.renderer.ReadPixels()
	path, err := a.shots.CaptureFromPixels(pixels, w, h)
	if err != nil {
		a.reportError("Screenshot failed", err)
		return
	}
	a.log.Info("screenshot saved", zap.String("path", path))
	a.window.SwapBuffers()
}

func (a *App) updateTitle() {
	title := a.cfg.Window.Title
	if p := a.session.Path(); p != "" {
		title = fmt.Sprintf("%s - %s", title, filepath.Base(p))
	}
	a.window.SetTitle(title)
}

func (a *App) reportError(title string, err error) {
	a.log.Error(title, zap.Error(err))
	dialog.Message("%v", err).Title(title).Error()
}
