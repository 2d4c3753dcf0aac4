//go:build !nogl

package opengl

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/PrincetonUniversity/carflock"
	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// Run runs an interactive simulation in an OpenGL window.
// It must be called from the main thread and returns when the window is closed.
func Run(r *carflock.Run, conf *Config) error {
	if conf.StepsPerSecond <= 0 {
		return fmt.Errorf("opengl: steps per second must be positive, got %d", conf.StepsPerSecond)
	}

	// init GLFW and OpenGL
	if err := glfw.Init(); err != nil {
		return err
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.Samples, 4)
	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	// create OpenGL window with the aspect ratio of the viewport
	const (
		title = "Carflock"
		width = 800
	)
	vp := newViewport(conf)
	height := int(width * (vp[1].Y - vp[0].Y) / (vp[1].X - vp[0].X))
	height = min(max(height, 100), 1000)
	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		return err
	}
	win.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		return err
	}

	// set background color and enable alpha blending
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	win.SwapBuffers()

	// initialize OpenGL objects
	d, err := newDisplay()
	if err != nil {
		return err
	}
	defer d.delete()

	w := r.World()
	ctl := newControls(conf)
	redraw := func() {
		d.draw(w, vp, ctl.forces)
		win.SwapBuffers()
	}

	// handle scrolling zoom
	win.SetScrollCallback(func(win *glfw.Window, xo, yo float64) {
		x, y := relCursor(win)
		vp.zoom(x, y, float32(yo))
		redraw()
	})

	// clicking moves the goal
	win.SetMouseButtonCallback(func(win *glfw.Window, b glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if b == glfw.MouseButtonLeft && action == glfw.Press {
			w.SetGoal(carflock.Goal{Pos: vp.world(relCursor(win)), Active: true})
			redraw()
		}
	})

	win.SetKeyCallback(func(win *glfw.Window, key glfw.Key, _ int, action glfw.Action, mod glfw.ModifierKey) {
		if key == glfw.KeyRight && (action == glfw.Press || action == glfw.Repeat) {
			ctl.stepOnce()
		}
		if action != glfw.Press {
			return
		}
		switch key {
		case glfw.KeyEscape:
			ctl.quit = true
		case glfw.KeySpace:
			ctl.togglePause()
		case glfw.KeyF:
			ctl.forces = !ctl.forces
			redraw()
		case glfw.KeyR:
			vp = newViewport(conf)
			redraw()
		}
	})

	period := time.Second / time.Duration(conf.StepsPerSecond)
	next := time.Now()
	var warned bool
	for !(ctl.quit || win.ShouldClose()) {
		now := time.Now()
		if ctl.due(now, next) {
			if r.Next() && conf.Sound != nil {
				c := w.Collisions()
				conf.Sound.Collisions(c[len(c)-1])
			}
			if took := time.Since(now); took > period && !warned && conf.Log != nil {
				conf.Log.Printf("cannot simulate %d steps per second in real time (a step took %s)", conf.StepsPerSecond, took)
				warned = true
			}
			next = now.Add(period)
		}
		redraw()
		glfw.PollEvents()
	}
	return nil
}

// relCursor returns the cursor position relative to the window, y pointing up.
func relCursor(win *glfw.Window) (x, y float32) {
	xc, yc := win.GetCursorPos()
	xs, ys := win.GetSize()
	return float32(xc) / float32(xs), (float32(ys) - float32(yc)) / float32(ys)
}

// display contains all the OpenGL objects required to display the simulation.
type display struct {
	vao  uint32 // vertex array object
	buf  uint32 // vertex buffer, triangles then lines
	prog uint32
	uni  struct {
		vp int32 // viewport
	}
	scene scene
	verts []vertex // scene.tris then scene.lines
}

// draw rebuilds the scene from w and draws it on screen.
func (d *display) draw(w *carflock.World, vp viewport, forces bool) {
	d.scene.build(w, forces)
	d.verts = append(append(d.verts[:0], d.scene.tris...), d.scene.lines...)
	v := d.verts

	gl.UseProgram(d.prog)
	gl.Uniform2fv(d.uni.vp, 2, &vp[0].X)

	gl.Clear(gl.COLOR_BUFFER_BIT)
	if len(v) == 0 {
		return
	}
	gl.BindVertexArray(d.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.buf)
	gl.BufferData(gl.ARRAY_BUFFER, len(v)*int(unsafe.Sizeof(vertex{})), gl.Ptr(v), gl.STREAM_DRAW)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(d.scene.tris)))
	gl.DrawArrays(gl.LINES, int32(len(d.scene.tris)), int32(len(d.scene.lines)))
}

// newDisplay compiles shaders and initializes a display.
func newDisplay() (*display, error) {
	d := new(display)

	// compile and link shaders
	var err error
	d.prog, err = makeProg([]shader{
		{"Vertex", "scene.vert", gl.CreateShader(gl.VERTEX_SHADER)},
		{"Fragment", "scene.frag", gl.CreateShader(gl.FRAGMENT_SHADER)},
	})
	if err != nil {
		return nil, err
	}

	// uniform location cannot be specified in the shaders in OpenGL 3.3 core
	d.uni.vp = gl.GetUniformLocation(d.prog, gl.Str("vp\x00"))

	gl.GenVertexArrays(1, &d.vao)
	gl.BindVertexArray(d.vao)

	gl.GenBuffers(1, &d.buf)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.buf)

	// attribute locations are specified in the shaders with layout(location=n)
	const n = int32(unsafe.Sizeof(vertex{}))
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, n, unsafe.Offsetof(vertex{}.X))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 4, gl.FLOAT, false, n, unsafe.Offsetof(vertex{}.R))

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	return d, nil
}

// delete releases the OpenGL objects of the display.
func (d *display) delete() {
	gl.DeleteBuffers(1, &d.buf)
	gl.DeleteVertexArrays(1, &d.vao)
	gl.DeleteProgram(d.prog)
}

// A shader wraps an OpenGL shader.
type shader struct {
	name   string
	path   string
	shader uint32
}

// makeProg builds OpenGL programs.
func makeProg(shaders []shader) (uint32, error) {
	var fail bool
	for _, s := range shaders {
		src := shaderSources[s.path] + "\x00"
		str, free := gl.Strs(src)
		gl.ShaderSource(s.shader, 1, str, nil)
		free()
		gl.CompileShader(s.shader)
		var status int32
		gl.GetShaderiv(s.shader, gl.COMPILE_STATUS, &status)
		if status != gl.TRUE {
			var n int32
			gl.GetShaderiv(s.shader, gl.INFO_LOG_LENGTH, &n)
			log := make([]uint8, n+1)
			gl.GetShaderInfoLog(s.shader, n, &n, &log[0])
			fmt.Printf("### %s shader compilation error: %s ###\n\n%s\n\n", s.name, s.path, gl.GoStr(&log[0]))
			fail = true
			gl.DeleteShader(s.shader)
		}
	}
	if fail {
		return 0, fmt.Errorf("carflock: GLSL errors")
	}
	prog := gl.CreateProgram()
	for _, s := range shaders {
		gl.AttachShader(prog, s.shader)
	}
	gl.LinkProgram(prog)
	for _, s := range shaders {
		gl.DeleteShader(s.shader)
	}

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status != gl.TRUE {
		return 0, fmt.Errorf("carflock: GLSL link error")
	}
	return prog, nil
}
