// Package renderer draws the edited mesh, the ground grid and the selection
// box with OpenGL 4.1 core.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/n3vedit/internal/editor"
	"github.com/Faultbox/n3vedit/internal/engine/debug"
	"github.com/Faultbox/n3vedit/internal/engine/shader"
	"github.com/Faultbox/n3vedit/internal/logger"
	"github.com/Faultbox/n3vedit/pkg/formats"
	"github.com/Faultbox/n3vedit/pkg/math"
)

// ClearGray is the background level for every channel.
const ClearGray = 61.0 / 255

// selectionPadding grows the selection box so it does not z-fight the mesh.
const selectionPadding = 0.01

// Scene is what the renderer reads each frame. *editor.Session satisfies it.
type Scene interface {
	ViewMatrix() math.Mat4
	ProjectionMatrix() math.Mat4
	WorldMatrix() math.Mat4
	RenderMode() editor.RenderMode
	WireframeActive() bool
	SelectionBounds() (math.Bounds, bool)
	Mesh() *formats.VMesh
	MeshVersion() uint64
}

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config Config
	log    *zap.Logger

	meshProgram *shader.Program
	lineProgram *shader.Program

	mesh      meshBuffers
	grid      *lineBuffer
	selection *lineBuffer
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config: cfg,
		log:    logger.Named("renderer"),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.ClearColor(ClearGray, ClearGray, ClearGray, 1.0)

	var err error
	r.meshProgram, err = shader.Compile(meshVertexShader, meshFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("mesh shader: %w", err)
	}
	r.lineProgram, err = shader.Compile(lineVertexShader, lineFragmentShader)
	if err != nil {
		r.meshProgram.Delete()
		return nil, fmt.Errorf("line shader: %w", err)
	}

	r.grid = newLineBuffer(gl.STATIC_DRAW)
	r.grid.set(debug.GenerateGridLines(debug.DefaultGridSize, debug.DefaultGridSubdivisions, debug.DefaultGridMajorInterval))
	r.selection = newLineBuffer(gl.DYNAMIC_DRAW)

	r.Resize(cfg.Width, cfg.Height)
	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	r.mesh.release()
	if r.grid != nil {
		r.grid.release()
	}
	if r.selection != nil {
		r.selection.release()
	}
	if r.meshProgram != nil {
		r.meshProgram.Delete()
	}
	if r.lineProgram != nil {
		r.lineProgram.Delete()
	}
}

// Resize sets the GL viewport in drawable pixels.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Sync rebuilds the mesh buffers when the scene mesh version changed.
func (r *Renderer) Sync(scene Scene) {
	v := scene.MeshVersion()
	if v == r.mesh.version {
		return
	}
	m := scene.Mesh()
	r.mesh.upload(m, v)
	r.log.Debug("mesh uploaded",
		zap.Uint64("version", v),
		zap.Int("vertices", m.VertexCount()),
		zap.Int("indices", m.IndexCount()),
	)
	if m.IndexCount() > 0 && r.mesh.plan.Kind == DrawArrays {
		r.log.Warn("indices exceed vertex count, drawing unindexed")
	}
}

// Draw renders one frame of scene.
func (r *Renderer) Draw(scene Scene) {
	r.Sync(scene)

	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	view := scene.ViewMatrix()
	proj := scene.ProjectionMatrix()

	r.lineProgram.Use()
	r.lineProgram.SetMat4("uView", view)
	r.lineProgram.SetMat4("uProj", proj)
	r.grid.draw()

	if b, ok := scene.SelectionBounds(); ok {
		r.selection.set(debug.BoundsWireframe(b, selectionPadding, debug.SelectionColor))
		r.selection.draw()
	}

	r.meshProgram.Use()
	r.meshProgram.SetMat4("uWorld", scene.WorldMatrix())
	r.meshProgram.SetMat4("uView", view)
	r.meshProgram.SetMat4("uProj", proj)
	r.meshProgram.SetInt("uMode", int32(scene.RenderMode()))

	if scene.WireframeActive() {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	}
	r.mesh.draw()
	gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
}

// ReadPixels returns the back buffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	if len(pixels) == 0 {
		return pixels, w, h
	}
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(&pixels[0]))
	return pixels, w, h
}
