package editor

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/n3vedit/internal/config"
	"github.com/Faultbox/n3vedit/internal/engine/camera"
	"github.com/Faultbox/n3vedit/internal/engine/picking"
	"github.com/Faultbox/n3vedit/internal/logger"
	"github.com/Faultbox/n3vedit/pkg/formats"
	"github.com/Faultbox/n3vedit/pkg/math"
)

// RenderMode tells the renderer how to shade the mesh.
type RenderMode int32

const (
	RenderNatural   RenderMode = 0 // vertex colors
	RenderWireframe RenderMode = 1 // wireframe emphasis
	RenderSelected  RenderMode = 2 // selection emphasis, always wireframe
)

// Camera target height limits and step, matching the original slider range.
const (
	TargetYLimit = 10.0
	TargetYStep  = 0.1
)

// SessionConfig configures a Session.
type SessionConfig struct {
	Lens         camera.Lens
	ZoomSpeed    float32
	RotateSpeedX float32
	RotateSpeedY float32

	Decode formats.VMeshOptions

	// BakeTranslationOnSave writes positions moved by the world translation.
	BakeTranslationOnSave bool
	NudgeStep             float32

	// Logger defaults to the global logger named "session".
	Logger *zap.Logger
}

// DefaultSessionConfig returns the settings used when no config file exists.
func DefaultSessionConfig() SessionConfig {
	return SessionConfigFrom(config.Default())
}

// SessionConfigFrom maps the editor configuration onto session settings.
func SessionConfigFrom(cfg *config.Config) SessionConfig {
	return SessionConfig{
		Lens: camera.Lens{
			FovY: cfg.Camera.FovRadians(),
			Near: cfg.Camera.Near,
			Far:  cfg.Camera.Far,
		},
		ZoomSpeed:             cfg.Camera.ZoomSpeed,
		RotateSpeedX:          cfg.Camera.RotateSpeedX,
		RotateSpeedY:          cfg.Camera.RotateSpeedY,
		Decode:                formats.VMeshOptions{AllowMissingIndices: cfg.Mesh.AllowMissingIndices},
		BakeTranslationOnSave: cfg.Mesh.BakeTranslationOnSave,
		NudgeStep:             cfg.Mesh.NudgeStep,
	}
}

// Session owns the mesh, camera and selection of one editor window. All
// methods must be called from the thread that owns the window.
type Session struct {
	cfg SessionConfig
	log *zap.Logger

	mesh    formats.VMesh
	version uint64
	path    string

	cam *camera.OrbitCamera
	sel SelectionState

	width, height int
	wireframe     bool

	pressed      [ButtonSecondary + 1]bool
	lastX, lastY float32

	redraw bool
}

var _ InputHandler = (*Session)(nil)

// NewSession creates an empty session.
func NewSession(cfg SessionConfig) *Session {
	log := cfg.Logger
	if log == nil {
		log = logger.Named("session")
	}

	cam := camera.NewOrbitCamera()
	cam.Lens = cfg.Lens
	cam.ZoomSpeed = cfg.ZoomSpeed
	cam.RotateSpeedX = cfg.RotateSpeedX
	cam.RotateSpeedY = cfg.RotateSpeedY

	s := &Session{
		cfg:    cfg,
		log:    log,
		cam:    cam,
		width:  1,
		height: 1,
		redraw: true,
	}
	s.mesh.Release()
	return s
}

// Load replaces the mesh with the contents of r. The translation and
// selection are reset and the camera is framed on the new mesh. On failure
// the session is left with an empty mesh.
func (s *Session) Load(r io.Reader) error {
	s.sel.Reset()
	s.version++
	s.requestRedraw()

	if err := s.mesh.Load(r, s.cfg.Decode); err != nil {
		s.path = ""
		s.log.Warn("mesh load failed", zap.Error(err))
		return err
	}

	s.cam.AutoFrame(s.mesh.Center(), s.mesh.Radius(), s.cfg.Lens.FovY)
	s.log.Info("mesh loaded",
		zap.String("name", s.mesh.Name),
		zap.Int("vertices", s.mesh.VertexCount()),
		zap.Int("indices", s.mesh.IndexCount()),
		zap.Float32("radius", s.mesh.Radius()),
		zap.Float32("camera_radius", s.cam.Radius),
	)
	if !s.mesh.IndicesInRange() {
		s.log.Warn("mesh has indices past the vertex count", zap.Int("vertices", s.mesh.VertexCount()))
	}
	return nil
}

// LoadFile loads the VMesh at path.
func (s *Session) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	if err := s.Load(bufio.NewReader(f)); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	s.path = path
	return nil
}

// Release drops the mesh and resets the selection.
func (s *Session) Release() {
	s.mesh.Release()
	s.sel.Reset()
	s.path = ""
	s.version++
	s.requestRedraw()
}

// Save writes the mesh to path, creating the directory if needed. The
// in-memory mesh is never modified.
func (s *Session) Save(path string) error {
	if s.mesh.VertexCount() == 0 {
		return formats.ErrVMeshEmpty
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: %w", formats.ErrVMeshCreate, err)
	}

	out := &s.mesh
	if s.cfg.BakeTranslationOnSave && s.sel.WorldTranslation != (math.Vec3{}) {
		out = s.mesh.Translated(s.sel.WorldTranslation)
	}

	nameHint := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if err := formats.SaveVMesh(path, out, nameHint); err != nil {
		s.log.Warn("mesh save failed", zap.String("path", path), zap.Error(err))
		return err
	}

	s.path = path
	s.log.Info("mesh saved",
		zap.String("path", path),
		zap.Int("vertices", out.VertexCount()),
		zap.Bool("baked", out != &s.mesh),
	)
	return nil
}

// Path returns the file the mesh was last loaded from or saved to.
func (s *Session) Path() string { return s.path }

// ray builds the pick ray through a pointer position.
func (s *Session) ray(x, y float32) (picking.Ray, bool) {
	return picking.ScreenToRay(x, y, float32(s.width), float32(s.height),
		s.cam.ViewMatrix(), s.ProjectionMatrix(), s.cam.Eye())
}

func (s *Session) target() meshTarget {
	return meshTarget{
		bounds:      s.mesh.Bounds,
		radius:      s.mesh.Radius(),
		translation: s.sel.WorldTranslation,
		empty:       s.mesh.VertexCount() == 0,
	}
}

// PickRay tests ray against the translated bounding sphere. A hit selects
// the mesh; a miss clears selection and dragging.
func (s *Session) PickRay(ray picking.Ray) bool {
	s.requestRedraw()

	hit, ok := picking.Pick(ray, []picking.Target{s.target()})
	if !ok {
		s.sel.Clear()
		s.log.Debug("pick missed")
		return false
	}

	s.sel.Select()
	s.log.Debug("pick hit", zap.Float32("t", hit.T))
	return true
}

// Pick casts a ray through the pointer position and picks with it.
func (s *Session) Pick(x, y float32) bool {
	ray, ok := s.ray(x, y)
	if !ok {
		s.sel.Clear()
		s.requestRedraw()
		return false
	}
	return s.PickRay(ray)
}

// anchor is the point the drag plane passes through.
func (s *Session) anchor() math.Vec3 {
	return s.mesh.Center().Add(s.sel.WorldTranslation)
}

// CaptureDepth starts dragging the selected mesh from the pointer position.
func (s *Session) CaptureDepth(x, y float32) bool {
	ray, ok := s.ray(x, y)
	if !ok {
		return false
	}
	if !s.sel.CaptureDepth(ray, s.anchor()) {
		return false
	}
	s.log.Debug("drag started", zap.Float32("depth", s.sel.InitialDepth))
	return true
}

// Drag moves the mesh so it stays under the pointer at the captured depth.
func (s *Session) Drag(x, y float32) bool {
	ray, ok := s.ray(x, y)
	if !ok {
		return false
	}
	delta, moved := s.sel.Drag(ray)
	if !moved {
		return false
	}
	if delta != (math.Vec3{}) {
		s.requestRedraw()
	}
	return true
}

// Nudge adds a fixed step per axis unit to the world translation.
func (s *Session) Nudge(dx, dy float32) {
	step := s.cfg.NudgeStep
	s.sel.WorldTranslation = s.sel.WorldTranslation.Add(math.Vec3{X: dx * step, Y: dy * step})
	s.requestRedraw()
}

// SetWorldTranslation replaces the accumulated translation.
func (s *Session) SetWorldTranslation(t math.Vec3) {
	s.sel.WorldTranslation = t
	s.requestRedraw()
}

// FrameMesh points the camera at the translated mesh.
func (s *Session) FrameMesh() {
	if s.mesh.VertexCount() == 0 {
		return
	}
	s.cam.AutoFrame(s.anchor(), s.mesh.Radius(), s.cfg.Lens.FovY)
	s.requestRedraw()
}

// SetCameraTargetY moves the orbit point, clamped to +-TargetYLimit.
func (s *Session) SetCameraTargetY(y float32) {
	if y > TargetYLimit {
		y = TargetYLimit
	} else if y < -TargetYLimit {
		y = -TargetYLimit
	}
	s.cam.SetTargetY(y)
	s.requestRedraw()
}

// CameraTargetY returns the orbit point height.
func (s *Session) CameraTargetY() float32 { return s.cam.TargetY() }

// SetWireframe toggles wireframe emphasis for the unselected mesh.
func (s *Session) SetWireframe(on bool) {
	s.wireframe = on
	s.requestRedraw()
}

// Wireframe reports the wireframe toggle.
func (s *Session) Wireframe() bool { return s.wireframe }

// OnPointerDown handles a button press. The primary button picks and, on a
// hit, starts dragging. Any other button cancels a drag.
func (s *Session) OnPointerDown(x, y float32, button Button, _ Modifiers) {
	s.lastX, s.lastY = x, y
	if button <= ButtonNone || button > ButtonSecondary {
		return
	}
	s.pressed[button] = true

	if button != ButtonPrimary {
		s.sel.StopDrag()
		return
	}
	if s.Pick(x, y) {
		s.CaptureDepth(x, y)
	}
}

// OnPointerMove drags the mesh while the primary button holds a drag, and
// otherwise drives the camera from the held buttons.
func (s *Session) OnPointerMove(x, y float32, mods Modifiers) {
	dx, dy := x-s.lastX, y-s.lastY
	s.lastX, s.lastY = x, y

	switch {
	case s.pressed[ButtonPrimary] && s.sel.Selected && s.sel.Dragging:
		s.Drag(x, y)
	case s.pressed[ButtonMiddle] && mods.Has(ModShift):
		s.cam.Pan(dx, dy)
		s.requestRedraw()
	case s.pressed[ButtonMiddle]:
		s.cam.Rotate(dx, dy)
		s.requestRedraw()
	case s.pressed[ButtonSecondary]:
		s.cam.Pan(dx, dy)
		s.requestRedraw()
	}
}

// OnPointerUp handles a button release. Releasing the primary button ends
// a drag; the selection stays.
func (s *Session) OnPointerUp(x, y float32, button Button, _ Modifiers) {
	s.lastX, s.lastY = x, y
	if button <= ButtonNone || button > ButtonSecondary {
		return
	}
	s.pressed[button] = false
	if button == ButtonPrimary {
		s.sel.StopDrag()
	}
}

// OnWheel zooms; positive delta moves closer.
func (s *Session) OnWheel(delta float32) {
	s.cam.Zoom(delta)
	s.requestRedraw()
}

// OnKey applies a key action.
func (s *Session) OnKey(key Key, _ Modifiers) {
	switch key {
	case KeyToggleWireframe:
		s.SetWireframe(!s.wireframe)
	case KeyNudgeLeft:
		s.Nudge(-1, 0)
	case KeyNudgeRight:
		s.Nudge(1, 0)
	case KeyNudgeUp:
		s.Nudge(0, 1)
	case KeyNudgeDown:
		s.Nudge(0, -1)
	case KeyTargetUp:
		s.SetCameraTargetY(s.cam.TargetY() + TargetYStep)
	case KeyTargetDown:
		s.SetCameraTargetY(s.cam.TargetY() - TargetYStep)
	case KeyFrameMesh:
		s.FrameMesh()
	case KeyDeselect:
		s.sel.Clear()
		s.requestRedraw()
	}
}

// SetViewport records the drawable size used for rays and projection.
func (s *Session) SetViewport(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	s.width, s.height = width, height
	s.requestRedraw()
}

// Viewport returns the drawable size.
func (s *Session) Viewport() (width, height int) { return s.width, s.height }

// ViewMatrix returns the camera view matrix.
func (s *Session) ViewMatrix() math.Mat4 { return s.cam.ViewMatrix() }

// ProjectionMatrix returns the perspective matrix for the viewport.
func (s *Session) ProjectionMatrix() math.Mat4 {
	return s.cam.ProjectionMatrix(float32(s.width) / float32(s.height))
}

// WorldMatrix returns the mesh world transform.
func (s *Session) WorldMatrix() math.Mat4 { return math.Translate(s.sel.WorldTranslation) }

// RenderMode returns how the mesh should be shaded this frame.
func (s *Session) RenderMode() RenderMode {
	switch {
	case s.sel.Selected:
		return RenderSelected
	case s.wireframe:
		return RenderWireframe
	default:
		return RenderNatural
	}
}

// WireframeActive reports whether the renderer should rasterize lines.
func (s *Session) WireframeActive() bool { return s.RenderMode() != RenderNatural }

// SelectionBounds returns the translated box of the selected mesh.
func (s *Session) SelectionBounds() (math.Bounds, bool) {
	if !s.sel.Selected || s.mesh.VertexCount() == 0 {
		return math.Bounds{}, false
	}
	return s.mesh.Bounds.Translate(s.sel.WorldTranslation), true
}

// Mesh returns the current mesh. Callers must not modify it.
func (s *Session) Mesh() *formats.VMesh { return &s.mesh }

// MeshVersion changes every time the mesh is replaced or released. GPU
// buffers built for an older version must be rebuilt.
func (s *Session) MeshVersion() uint64 { return s.version }

// Selection returns a copy of the selection state.
func (s *Session) Selection() SelectionState { return s.sel }

// Camera returns the session camera.
func (s *Session) Camera() *camera.OrbitCamera { return s.cam }

func (s *Session) requestRedraw() { s.redraw = true }

// TakeRedraw reports whether a redraw was requested since the last call,
// clearing the request.
func (s *Session) TakeRedraw() bool {
	r := s.redraw
	s.redraw = false
	return r
}
