package main

import (
	"fmt"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/nevk-scene/internal/config"
	"github.com/Faultbox/nevk-scene/internal/engine/capture"
	"github.com/Faultbox/nevk-scene/internal/engine/gpubuf"
	"github.com/Faultbox/nevk-scene/internal/engine/input"
	"github.com/Faultbox/nevk-scene/internal/engine/renderer"
	"github.com/Faultbox/nevk-scene/internal/engine/scene"
	"github.com/Faultbox/nevk-scene/internal/engine/window"
	"github.com/Faultbox/nevk-scene/internal/logger"
	"github.com/Faultbox/nevk-scene/internal/scenefile"
)

const (
	orbitSpeed = 0.01 // radians per pixel
	zoomStep   = 0.1
	titleEvery = 500 * time.Millisecond
)

// viewer owns the window, the scene and its GPU mirror.
type viewer struct {
	cfg    *config.Config
	path   string
	win    *window.Window
	input  *input.Input
	device *gpubuf.GLDevice
	mirror *gpubuf.Mirror
	render *renderer.Renderer
	shots  *capture.Capture
	scene  *scene.Scene
	desc   *scenefile.Description
	table  *scenefile.Table
	paused bool
	log    *zap.Logger

	last renderer.FrameStats

	// per title refresh
	frames    int
	uploaded  int
	lastTitle time.Time
}

func newViewer(cfg *config.Config, path string) (*viewer, error) {
	desc, err := scenefile.Load(path)
	if err != nil {
		return nil, err
	}

	win, err := window.New(window.Config{
		Title:      "nevk-scene",
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return nil, err
	}

	s := scene.New(cfg.ToScene())
	table, err := scenefile.Build(desc, s)
	if err != nil {
		win.Close()
		return nil, fmt.Errorf("building %s: %w", path, err)
	}
	if desc.Camera == nil {
		if lo, hi, ok := desc.Bounds(); ok {
			s.Camera().FitToBounds(lo, hi)
		}
	}

	shots, err := capture.New(cfg.Capture.Dir, "sceneview", cfg.Capture.Format)
	if err != nil {
		win.Close()
		return nil, err
	}

	device := gpubuf.NewGLDevice()
	r, err := renderer.New(device)
	if err != nil {
		device.Destroy()
		win.Close()
		return nil, err
	}
	v := &viewer{
		cfg:       cfg,
		path:      path,
		win:       win,
		input:     input.New(),
		device:    device,
		mirror:    gpubuf.NewMirror(device),
		render:    r,
		shots:     shots,
		scene:     s,
		desc:      desc,
		table:     table,
		log:       logger.Named("viewer"),
		lastTitle: time.Now(),
	}
	v.resize(win.DrawableSize())
	return v, nil
}

// Close releases GPU resources and the window.
func (v *viewer) Close() {
	v.render.Close()
	v.device.Destroy()
	v.win.Close()
}

// Run drives frames until the window is closed.
func (v *viewer) Run() error {
	var frameBudget time.Duration
	if v.cfg.Window.FPSLimit > 0 {
		frameBudget = time.Second / time.Duration(v.cfg.Window.FPSLimit)
	}

	for {
		start := time.Now()
		if v.input.Update() {
			return nil
		}
		v.handleInput()

		if err := v.frame(); err != nil {
			return err
		}

		v.draw()
		if v.input.IsKeyPressed(sdl.SCANCODE_F12) {
			v.captureFrame()
		}
		v.win.SwapBuffers()
		v.updateTitle()

		if elapsed := time.Since(start); elapsed < frameBudget {
			time.Sleep(frameBudget - elapsed)
		}
	}
}

func (v *viewer) handleInput() {
	cam := v.scene.Camera()
	for _, e := range v.input.Events() {
		switch e.Type {
		case input.EventWindowResize:
			v.resize(v.win.DrawableSize())
		case input.EventDrag:
			cam.Orbit(-float32(e.DX)*orbitSpeed, float32(e.DY)*orbitSpeed)
		case input.EventWheel:
			cam.Zoom(float32(e.Wheel) * zoomStep)
		case input.EventKeyDown:
			v.handleKey(e.Key)
		}
	}
}

func (v *viewer) handleKey(key sdl.Scancode) {
	switch key {
	case sdl.SCANCODE_SPACE:
		v.paused = !v.paused
	case sdl.SCANCODE_O:
		v.scene.OpaqueMode = !v.scene.OpaqueMode
	case sdl.SCANCODE_T:
		v.scene.TransparentMode = !v.scene.TransparentMode
	case sdl.SCANCODE_N:
		if v.scene.DebugView == scene.DebugViewNormals {
			v.scene.DebugView = scene.DebugViewNone
		} else {
			v.scene.DebugView = scene.DebugViewNormals
		}
	case sdl.SCANCODE_R:
		if lo, hi, ok := v.desc.Bounds(); ok {
			v.scene.Camera().FitToBounds(lo, hi)
		}
	default:
		return
	}
	v.log.Debug("toggled",
		zap.Bool("paused", v.paused),
		zap.Bool("opaque", v.scene.OpaqueMode),
		zap.Bool("transparent", v.scene.TransparentMode),
		zap.Int("debug_view", int(v.scene.DebugView)),
	)
}

// frame runs one update frame and mirrors the result.
func (v *viewer) frame() error {
	s := v.scene
	if err := s.BeginFrame(); err != nil {
		return err
	}
	if !v.paused {
		if err := scenefile.Animate(v.desc, v.table, s, s.FrameNumber()); err != nil {
			return err
		}
	}
	if err := s.EndFrame(); err != nil {
		return err
	}

	plan, st := v.mirror.Sync(s)
	v.uploaded += st.Bytes
	if v.cfg.Upload.LogPlans && !plan.Empty() {
		v.log.Debug("upload",
			zap.Uint64("frame", s.FrameNumber()),
			zap.Stringer("instances", plan.Instances.Kind),
			zap.Int("instance_ranges", len(plan.Instances.Ranges)),
			zap.Int("bytes", st.Bytes),
		)
	}
	return nil
}

func (v *viewer) draw() {
	v.last = v.render.Render(v.scene)
	v.frames++
}

// captureFrame reads back the back buffer and writes it to disk.
func (v *viewer) captureFrame() {
	w, h := v.win.DrawableSize()
	pixels := make([]byte, w*h*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))

	path, err := v.shots.SavePixels(pixels, w, h)
	if err != nil {
		v.log.Error("capture failed", zap.Error(err))
		return
	}
	v.log.Info("frame captured", zap.String("path", path))
}

func (v *viewer) updateTitle() {
	elapsed := time.Since(v.lastTitle)
	if elapsed < titleEvery {
		return
	}
	fps := float64(v.frames) / elapsed.Seconds()
	kbps := float64(v.uploaded) / 1024 / elapsed.Seconds()
	name := v.desc.Name
	if name == "" {
		name = v.path
	}
	v.win.SetTitle(fmt.Sprintf("nevk-scene - %s | %d opaque, %d transparent, %d tris | %.0f fps | %.1f KB/s uploaded",
		name, v.last.Opaque, v.last.Transparent, v.last.Triangles, fps, kbps))

	v.frames = 0
	v.uploaded = 0
	v.lastTitle = time.Now()
}

func (v *viewer) resize(width, height int) {
	v.scene.UpdateCameraParams(width, height)
	v.render.Resize(width, height)
}
