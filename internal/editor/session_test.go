package editor

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/chewxy/math32"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/n3vedit/internal/config"
	"github.com/Faultbox/n3vedit/internal/engine/camera"
	"github.com/Faultbox/n3vedit/internal/engine/picking"
	"github.com/Faultbox/n3vedit/pkg/formats"
	"github.com/Faultbox/n3vedit/pkg/math"
)

// encodeTestMesh returns VMesh bytes for a box spanning min..max.
func encodeTestMesh(t *testing.T, min, max math.Vec3) []byte {
	t.Helper()

	mesh := &formats.VMesh{}
	for _, x := range []float32{min.X, max.X} {
		for _, y := range []float32{min.Y, max.Y} {
			for _, z := range []float32{min.Z, max.Z} {
				mesh.Vertices = append(mesh.Vertices, formats.VMeshVertex{Position: [3]float32{x, y, z}})
			}
		}
	}
	mesh.Indices = []uint16{0, 1, 2, 2, 3, 0}

	buf := new(bytes.Buffer)
	if err := formats.EncodeVMesh(buf, mesh); err != nil {
		t.Fatalf("EncodeVMesh failed: %v", err)
	}
	return buf.Bytes()
}

var unitCube = [2]math.Vec3{{X: -1, Y: -1, Z: -1}, {X: 1, Y: 1, Z: 1}}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession(DefaultSessionConfig())
	s.SetViewport(800, 600)
	if err := s.Load(bytes.NewReader(encodeTestMesh(t, unitCube[0], unitCube[1]))); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	s.TakeRedraw()
	return s
}

func TestNewSession(t *testing.T) {
	s := NewSession(DefaultSessionConfig())

	if !s.TakeRedraw() {
		t.Error("a new session should request its first frame")
	}
	if s.TakeRedraw() {
		t.Error("TakeRedraw should clear the request")
	}
	if s.RenderMode() != RenderNatural {
		t.Errorf("expected natural render mode, got %d", s.RenderMode())
	}
	if s.Mesh().VertexCount() != 0 || s.MeshVersion() != 0 {
		t.Error("expected an empty unversioned mesh")
	}
	if !s.Mesh().Bounds.IsEmpty() {
		t.Error("expected sentinel bounds before any load")
	}
	if eye := s.Camera().Eye(); !eye.ApproxEqual(math.Vec3{Z: -10}, 1e-5) {
		t.Errorf("expected initial eye (0,0,-10), got %v", eye)
	}
}

func TestSessionLoad_FramesMesh(t *testing.T) {
	s := NewSession(DefaultSessionConfig())
	s.SetWorldTranslation(math.Vec3{X: 4})
	s.sel.Selected = true

	data := encodeTestMesh(t, math.Vec3{X: 10, Y: 0, Z: 0}, math.Vec3{X: 30, Y: 20, Z: 40})
	if err := s.Load(bytes.NewReader(data)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if s.MeshVersion() != 1 {
		t.Errorf("expected mesh version 1, got %d", s.MeshVersion())
	}
	if s.Selection() != (SelectionState{}) {
		t.Errorf("load should reset selection, got %+v", s.Selection())
	}

	cam := s.Camera()
	if cam.Target != (math.Vec3{X: 20, Y: 10, Z: 20}) {
		t.Errorf("expected target at mesh center, got %v", cam.Target)
	}
	radius := math.Vec3{X: 20, Y: 20, Z: 40}.Length() / 2
	want := radius / math32.Tan(math32.Pi/8) * camera.FrameMargin
	if math32.Abs(cam.Radius-want) > 1e-3 {
		t.Errorf("expected camera radius %v, got %v", want, cam.Radius)
	}
	if !s.TakeRedraw() {
		t.Error("load should request a redraw")
	}
}

func TestSessionLoad_FailureLeavesEmptyMesh(t *testing.T) {
	s := newTestSession(t)
	before := s.MeshVersion()

	data := encodeTestMesh(t, unitCube[0], unitCube[1])
	err := s.Load(bytes.NewReader(data[:len(data)-3]))
	if !errors.Is(err, formats.ErrTruncatedVMeshData) {
		t.Fatalf("expected ErrTruncatedVMeshData, got %v", err)
	}
	if s.Mesh().VertexCount() != 0 || s.Mesh().IndexCount() != 0 {
		t.Error("failed load must leave the mesh empty")
	}
	if s.MeshVersion() == before {
		t.Error("failed load must still invalidate GPU buffers")
	}
}

func TestSessionLoad_Lenient(t *testing.T) {
	data := encodeTestMesh(t, unitCube[0], unitCube[1])
	mesh, err := formats.ParseVMesh(data)
	if err != nil {
		t.Fatalf("ParseVMesh failed: %v", err)
	}
	mesh.Indices = nil
	buf := new(bytes.Buffer)
	formats.EncodeVMesh(buf, mesh)
	noIndices := buf.Bytes()[:buf.Len()-4]

	strict := NewSession(DefaultSessionConfig())
	if err := strict.Load(bytes.NewReader(noIndices)); err == nil {
		t.Error("strict session should reject a missing index section")
	}

	cfg := config.Default()
	cfg.Mesh.AllowMissingIndices = true
	lenient := NewSession(SessionConfigFrom(cfg))
	if err := lenient.Load(bytes.NewReader(noIndices)); err != nil {
		t.Fatalf("lenient load failed: %v", err)
	}
	if lenient.Mesh().VertexCount() != 8 || lenient.Mesh().IndexCount() != 0 {
		t.Errorf("expected 8/0, got %d/%d", lenient.Mesh().VertexCount(), lenient.Mesh().IndexCount())
	}
}

func TestSessionPick_EmptyMesh(t *testing.T) {
	s := NewSession(DefaultSessionConfig())
	s.sel.Selected = true
	s.sel.Dragging = true

	ray := picking.Ray{Origin: math.Vec3{Z: -100}, Direction: math.Vec3{Z: 1}}
	if s.PickRay(ray) {
		t.Fatal("pick on an empty mesh must miss")
	}
	if s.sel.Selected || s.sel.Dragging {
		t.Errorf("miss must clear selection, got %+v", s.sel)
	}
	if s.Pick(400, 300) {
		t.Error("pointer pick on an empty mesh must miss")
	}
}

func TestSessionPickRay_Radius5(t *testing.T) {
	s := NewSession(DefaultSessionConfig())
	// Half diagonal of a cube with side 10/sqrt(3) is 5.
	h := 5 / math32.Sqrt(3)
	if err := s.Load(bytes.NewReader(encodeTestMesh(t, math.Vec3{X: -h, Y: -h, Z: -h}, math.Vec3{X: h, Y: h, Z: h}))); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if r := s.Mesh().Radius(); math32.Abs(r-5) > 1e-5 {
		t.Fatalf("expected radius 5, got %v", r)
	}

	forward := math.Vec3{Z: 1}
	if !s.PickRay(picking.Ray{Origin: math.Vec3{Z: -100}, Direction: forward}) {
		t.Error("ray through the center must hit")
	}
	if !s.Selection().Selected {
		t.Error("hit must select")
	}
	if !s.PickRay(picking.Ray{Origin: math.Vec3{Z: -100}, Direction: forward}) || !s.Selection().Selected {
		t.Error("picking again must keep the selection")
	}
	if s.PickRay(picking.Ray{Origin: math.Vec3{X: 100, Z: -100}, Direction: forward}) {
		t.Error("offset ray must miss")
	}
	if s.Selection().Selected {
		t.Error("miss must deselect")
	}
}

func TestSessionPick_FollowsTranslation(t *testing.T) {
	s := newTestSession(t)
	s.SetWorldTranslation(math.Vec3{X: 50})

	ray := picking.Ray{Origin: math.Vec3{Z: -100}, Direction: math.Vec3{Z: 1}}
	if s.PickRay(ray) {
		t.Error("mesh moved away, pick should miss")
	}
	ray.Origin.X = 50
	if !s.PickRay(ray) {
		t.Error("pick at the translated center should hit")
	}
}

func TestSessionPointerFlow(t *testing.T) {
	s := newTestSession(t)

	// idle -> selected+dragging
	s.OnPointerDown(400, 300, ButtonPrimary, 0)
	sel := s.Selection()
	if !sel.Selected || !sel.Dragging {
		t.Fatalf("center press should select and drag, got %+v", sel)
	}
	if s.RenderMode() != RenderSelected {
		t.Errorf("expected selected render mode, got %d", s.RenderMode())
	}

	s.OnPointerMove(430, 280, 0)
	moved := s.Selection().WorldTranslation
	if moved == (math.Vec3{}) {
		t.Fatal("drag did not move the mesh")
	}
	// The mesh center stays under the pointer at the captured depth.
	ray, _ := s.ray(430, 280)
	under := ray.At(s.Selection().InitialDepth)
	if !s.anchor().ApproxEqual(under, 1e-4) {
		t.Errorf("anchor %v is not under the pointer %v", s.anchor(), under)
	}
	// The drag plane faces the ray, so depth along the forward axis is kept.
	if math32.Abs(moved.Dot(s.Camera().Forward())) > 1e-2 {
		t.Errorf("drag moved along the view axis: %v", moved)
	}

	s.OnPointerMove(430, 280, 0)
	if s.Selection().WorldTranslation != moved {
		t.Error("zero pointer movement changed the translation")
	}

	// selected+dragging -> selected
	s.OnPointerUp(430, 280, ButtonPrimary, 0)
	sel = s.Selection()
	if !sel.Selected || sel.Dragging {
		t.Fatalf("release should keep selection only, got %+v", sel)
	}
	s.OnPointerMove(500, 500, 0)
	if s.Selection().WorldTranslation != moved {
		t.Error("mesh moved after release")
	}

	// selected -> idle
	s.OnPointerDown(0, 0, ButtonPrimary, 0)
	s.OnPointerUp(0, 0, ButtonPrimary, 0)
	if s.Selection().Selected {
		t.Error("corner press should miss and deselect")
	}
	if s.Selection().WorldTranslation != moved {
		t.Error("deselecting must keep the translation")
	}
}

func TestSessionPointer_OtherButtonCancelsDrag(t *testing.T) {
	for _, button := range []Button{ButtonMiddle, ButtonSecondary} {
		s := newTestSession(t)
		s.OnPointerDown(400, 300, ButtonPrimary, 0)
		s.OnPointerDown(400, 300, button, 0)

		sel := s.Selection()
		if sel.Dragging {
			t.Errorf("button %d should cancel dragging", button)
		}
		if !sel.Selected {
			t.Errorf("button %d must not change the selection", button)
		}

		before := sel.WorldTranslation
		s.OnPointerMove(450, 320, 0)
		if s.Selection().WorldTranslation != before {
			t.Errorf("button %d: mesh moved after cancel", button)
		}
	}
}

func TestSessionPointer_CameraControls(t *testing.T) {
	tests := []struct {
		name   string
		button Button
		mods   Modifiers
		check  func(t *testing.T, before, after camera.OrbitCamera)
	}{
		{
			name:   "middle rotates",
			button: ButtonMiddle,
			check: func(t *testing.T, before, after camera.OrbitCamera) {
				if math32.Abs(after.Yaw-before.Yaw-0.2) > 1e-6 || math32.Abs(after.Pitch-before.Pitch-0.1) > 1e-6 {
					t.Errorf("expected yaw +0.2 pitch +0.1, got %v %v", after.Yaw-before.Yaw, after.Pitch-before.Pitch)
				}
				if after.Target != before.Target {
					t.Error("rotate must not move the target")
				}
			},
		},
		{
			name:   "shift middle pans",
			button: ButtonMiddle,
			mods:   ModShift,
			check: func(t *testing.T, before, after camera.OrbitCamera) {
				if after.Target == before.Target {
					t.Error("pan did not move the target")
				}
				if after.Yaw != before.Yaw || after.Pitch != before.Pitch {
					t.Error("pan must not rotate")
				}
			},
		},
		{
			name:   "secondary pans",
			button: ButtonSecondary,
			check: func(t *testing.T, before, after camera.OrbitCamera) {
				if after.Target == before.Target {
					t.Error("pan did not move the target")
				}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestSession(t)
			before := *s.Camera()

			s.OnPointerDown(100, 100, tc.button, tc.mods)
			s.OnPointerMove(120, 110, tc.mods)
			if !s.TakeRedraw() {
				t.Error("camera move should request a redraw")
			}
			s.OnPointerUp(120, 110, tc.button, tc.mods)

			tc.check(t, before, *s.Camera())
		})
	}
}

func TestSessionPointer_HoverDoesNothing(t *testing.T) {
	s := newTestSession(t)
	before := *s.Camera()

	s.OnPointerMove(10, 10, 0)
	s.OnPointerMove(200, 300, ModShift)
	if *s.Camera() != before {
		t.Error("moving without buttons must not touch the camera")
	}
	if s.TakeRedraw() {
		t.Error("hover must not request a redraw")
	}
}

func TestSessionWheel(t *testing.T) {
	s := newTestSession(t)
	r := s.Camera().Radius

	s.OnWheel(10)
	if got := s.Camera().Radius; math32.Abs(got-(r-1)) > 1e-5 {
		t.Errorf("expected radius %v, got %v", r-1, got)
	}
	if !s.TakeRedraw() {
		t.Error("zoom should request a redraw")
	}
}

func TestSessionKeys(t *testing.T) {
	s := newTestSession(t)

	s.OnKey(KeyToggleWireframe, 0)
	if !s.Wireframe() || s.RenderMode() != RenderWireframe {
		t.Errorf("expected wireframe mode, got %d", s.RenderMode())
	}
	s.sel.Selected = true
	if s.RenderMode() != RenderSelected {
		t.Error("selection overrides wireframe mode")
	}
	if !s.WireframeActive() {
		t.Error("selection mode is drawn as wireframe")
	}
	s.sel.Selected = false
	s.OnKey(KeyToggleWireframe, 0)
	if s.RenderMode() != RenderNatural || s.WireframeActive() {
		t.Error("second toggle should restore natural mode")
	}

	s.OnKey(KeyNudgeRight, 0)
	s.OnKey(KeyNudgeRight, 0)
	s.OnKey(KeyNudgeDown, 0)
	if got := s.Selection().WorldTranslation; got != (math.Vec3{X: 1, Y: -0.5}) {
		t.Errorf("expected translation (1,-0.5,0), got %v", got)
	}
	s.OnKey(KeyNudgeLeft, 0)
	s.OnKey(KeyNudgeUp, 0)
	if got := s.Selection().WorldTranslation; got != (math.Vec3{X: 0.5}) {
		t.Errorf("expected translation (0.5,0,0), got %v", got)
	}

	s.OnKey(KeyTargetUp, 0)
	if math32.Abs(s.CameraTargetY()-TargetYStep) > 1e-6 {
		t.Errorf("expected target Y %v, got %v", TargetYStep, s.CameraTargetY())
	}
	for i := 0; i < 200; i++ {
		s.OnKey(KeyTargetDown, 0)
	}
	if s.CameraTargetY() != -TargetYLimit {
		t.Errorf("expected target Y clamped at %v, got %v", -TargetYLimit, s.CameraTargetY())
	}

	s.OnKey(KeyFrameMesh, 0)
	if s.Camera().Target != (math.Vec3{X: 0.5}) {
		t.Errorf("frame should center on the translated mesh, got %v", s.Camera().Target)
	}

	s.sel.Selected = true
	s.OnKey(KeyDeselect, 0)
	if s.Selection().Selected {
		t.Error("deselect key should clear selection")
	}
}

func TestSessionMatrices(t *testing.T) {
	s := newTestSession(t)
	s.SetWorldTranslation(math.Vec3{X: 1, Y: 2, Z: 3})

	world := s.WorldMatrix()
	if p := world.TransformPoint(math.Vec3{}); p != (math.Vec3{X: 1, Y: 2, Z: 3}) {
		t.Errorf("world matrix should translate, got %v", p)
	}

	want := s.Camera().Lens.Projection(800.0 / 600.0)
	if s.ProjectionMatrix() != want {
		t.Error("projection should use the viewport aspect")
	}
	if s.ViewMatrix() != s.Camera().ViewMatrix() {
		t.Error("view matrix should come from the camera")
	}

	s.SetViewport(0, -5)
	if w, h := s.Viewport(); w != 1 || h != 1 {
		t.Errorf("viewport should clamp to 1x1, got %dx%d", w, h)
	}
}

func TestSessionSelectionBounds(t *testing.T) {
	s := newTestSession(t)
	if _, ok := s.SelectionBounds(); ok {
		t.Error("no bounds without a selection")
	}

	s.SetWorldTranslation(math.Vec3{Y: 5})
	s.sel.Selected = true
	b, ok := s.SelectionBounds()
	if !ok {
		t.Fatal("expected selection bounds")
	}
	if b.Min != (math.Vec3{X: -1, Y: 4, Z: -1}) || b.Max != (math.Vec3{X: 1, Y: 6, Z: 1}) {
		t.Errorf("unexpected bounds %+v", b)
	}
}

func TestSessionSave(t *testing.T) {
	s := newTestSession(t)
	s.SetWorldTranslation(math.Vec3{X: 3})
	path := filepath.Join(t.TempDir(), "Object", "sub", "box.n3vmesh")

	if err := s.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if s.Path() != path {
		t.Errorf("expected path %s, got %s", path, s.Path())
	}

	saved, err := formats.ParseVMeshFile(path, formats.VMeshOptions{})
	if err != nil {
		t.Fatalf("ParseVMeshFile failed: %v", err)
	}
	if saved.Name != formats.VMeshSavedName {
		t.Errorf("expected name %q, got %q", formats.VMeshSavedName, saved.Name)
	}
	if saved.Center() != (math.Vec3{}) {
		t.Errorf("translation must not be baked by default, got center %v", saved.Center())
	}
}

func TestSessionSave_Bake(t *testing.T) {
	cfg := DefaultSessionConfig()
	cfg.BakeTranslationOnSave = true
	s := NewSession(cfg)
	if err := s.Load(bytes.NewReader(encodeTestMesh(t, unitCube[0], unitCube[1]))); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	s.SetWorldTranslation(math.Vec3{X: 3, Z: -2})

	path := filepath.Join(t.TempDir(), "baked.n3vmesh")
	if err := s.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	saved, err := formats.ParseVMeshFile(path, formats.VMeshOptions{})
	if err != nil {
		t.Fatalf("ParseVMeshFile failed: %v", err)
	}
	if saved.Center() != (math.Vec3{X: 3, Z: -2}) {
		t.Errorf("expected baked center (3,0,-2), got %v", saved.Center())
	}
	if s.Mesh().Center() != (math.Vec3{}) {
		t.Error("baking must not modify the in-memory mesh")
	}
}

func TestSessionSave_Empty(t *testing.T) {
	s := NewSession(DefaultSessionConfig())
	dir := filepath.Join(t.TempDir(), "never")

	if err := s.Save(filepath.Join(dir, "x.n3vmesh")); !errors.Is(err, formats.ErrVMeshEmpty) {
		t.Errorf("expected ErrVMeshEmpty, got %v", err)
	}
}

func TestSessionLoadFile(t *testing.T) {
	s := newTestSession(t)
	path := filepath.Join(t.TempDir(), "box.n3vmesh")
	if err := s.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	other := NewSession(DefaultSessionConfig())
	if err := other.LoadFile(path); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if other.Mesh().VertexCount() != 8 || other.Path() != path {
		t.Errorf("unexpected state after LoadFile: %d vertices, path %q", other.Mesh().VertexCount(), other.Path())
	}

	if err := other.LoadFile(filepath.Join(t.TempDir(), "missing.n3vmesh")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSessionRelease(t *testing.T) {
	s := newTestSession(t)
	s.sel.Selected = true
	v := s.MeshVersion()

	s.Release()
	if s.Mesh().VertexCount() != 0 || s.Selection().Selected {
		t.Error("release should empty the mesh and clear selection")
	}
	if s.MeshVersion() == v {
		t.Error("release must bump the mesh version")
	}
}

func TestSessionLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	cfg := DefaultSessionConfig()
	cfg.Logger = zap.New(core)
	s := NewSession(cfg)

	if err := s.Load(bytes.NewReader(encodeTestMesh(t, unitCube[0], unitCube[1]))); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	loaded := logs.FilterMessage("mesh loaded").All()
	if len(loaded) != 1 {
		t.Fatalf("expected one load entry, got %d", len(loaded))
	}
	if got := loaded[0].ContextMap()["vertices"]; got != int64(8) {
		t.Errorf("expected vertices=8 in log, got %v", got)
	}

	s.Load(bytes.NewReader([]byte{1, 2}))
	if logs.FilterMessage("mesh load failed").Len() != 1 {
		t.Error("expected a warning for the failed load")
	}
}

type recordingHandler struct{ calls []string }

func (r *recordingHandler) record(name string) { r.calls = append(r.calls, name) }

func (r *recordingHandler) OnPointerDown(float32, float32, Button, Modifiers) { r.record("down") }
func (r *recordingHandler) OnPointerMove(float32, float32, Modifiers)         { r.record("move") }
func (r *recordingHandler) OnPointerUp(float32, float32, Button, Modifiers)   { r.record("up") }
func (r *recordingHandler) OnWheel(float32)                                   { r.record("wheel") }
func (r *recordingHandler) OnKey(Key, Modifiers)                              { r.record("key") }
func (r *recordingHandler) SetViewport(int, int)                              { r.record("resize") }

func TestDispatch(t *testing.T) {
	h := &recordingHandler{}
	events := []Event{
		{Type: EventPointerDown},
		{Type: EventPointerMove},
		{Type: EventPointerUp},
		{Type: EventWheel},
		{Type: EventKey},
		{Type: EventResize},
		{Type: EventNone},
	}
	for _, ev := range events {
		Dispatch(h, ev)
	}

	want := []string{"down", "move", "up", "wheel", "key", "resize"}
	if len(h.calls) != len(want) {
		t.Fatalf("expected %v, got %v", want, h.calls)
	}
	for i := range want {
		if h.calls[i] != want[i] {
			t.Errorf("call %d: expected %s, got %s", i, want[i], h.calls[i])
		}
	}
}

func TestModifiersHas(t *testing.T) {
	mods := ModShift | ModCtrl
	if !mods.Has(ModShift) || !mods.Has(ModCtrl) || !mods.Has(ModShift|ModCtrl) {
		t.Error("expected both modifiers")
	}
	if Modifiers(0).Has(ModShift) {
		t.Error("empty set has no shift")
	}
}
