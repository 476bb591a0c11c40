package main

import (
	"flag"
	"fmt"
	"log"
	stdmath "math"
	"os"
	"runtime"

	"pbr-engine/core"
	"pbr-engine/internal/opengl"
	"pbr-engine/math"
	"pbr-engine/scene"
)

func init() {
	// GLFW and OpenGL require the main thread.
	runtime.LockOSThread()
}

var (
	panoramaPath = flag.String("panorama", "", "equirectangular panorama image (png/jpeg/bmp/tiff); procedural sky if empty")
	gridSize     = flag.Int("grid", 7, "spheres per side of the material grid")
	windowWidth  = flag.Int("width", 1280, "window width")
	windowHeight = flag.Int("height", 720, "window height")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		log.Fatalf("demo: %v", err)
	}
}

func run() error {
	cfg := core.DefaultWindowConfig()
	cfg.Width = *windowWidth
	cfg.Height = *windowHeight
	cfg.Title = "pbr-engine demo"

	window, err := core.NewWindow(cfg)
	if err != nil {
		return err
	}
	defer window.Destroy()

	renderer, err := opengl.NewRenderer()
	if err != nil {
		return err
	}
	defer renderer.Destroy()

	env, err := opengl.NewEnvironment(opengl.DefaultEnvironmentConfig())
	if err != nil {
		return err
	}
	defer env.Destroy()

	panorama, err := loadPanorama(*panoramaPath)
	if err != nil {
		return err
	}
	if err := env.SetPanorama(panorama); err != nil {
		return err
	}
	if err := env.BakeCubemap(); err != nil {
		return err
	}
	if err := env.BakeIrradiance(); err != nil {
		return err
	}
	handles, err := env.Handles()
	if err != nil {
		return err
	}
	fmt.Printf("environment %s: cubemap %d, irradiance %d\n", env.State(), handles.Cubemap, handles.Irradiance)

	sphereMesh := scene.CreateSphere(0.45, 32, 16)
	cubeMesh := scene.CreateCube()
	skybox := scene.NewObject(cubeMesh, scene.NewSkyboxMaterial())

	spheres := buildSphereGrid(sphereMesh, *gridSize)
	pillars := buildPillars(sphereMesh)

	camera := scene.NewOrbitCamera(math.Vec3Zero, 12, 45*stdmath.Pi/180,
		float32(cfg.Width)/float32(cfg.Height))

	var lastX, lastY float64
	dragging := false
	window.SetScrollCallback(func(_, yoff float64) {
		camera.Zoom(float32(-yoff) * 0.5)
	})

	fbW, fbH := window.GetFramebufferSize()
	renderer.SetViewport(fbW, fbH)

	for !window.ShouldClose() {
		window.PollEvents()
		if window.IsKeyPressed(core.KeyEscape) {
			break
		}

		if window.IsMouseButtonPressed(core.MouseButtonLeft) {
			x, y := window.GetCursorPos()
			if dragging {
				camera.Orbit(float32(x-lastX)*0.005, float32(y-lastY)*0.005)
			}
			lastX, lastY = x, y
			dragging = true
		} else {
			dragging = false
		}

		w, h := window.GetFramebufferSize()
		if w != fbW || h != fbH {
			fbW, fbH = w, h
			renderer.SetViewport(w, h)
			camera.UpdateAspectRatio(float32(w), float32(h))
		}

		renderer.BeginFrame(core.Color{R: 0.05, G: 0.05, B: 0.08, A: 1})

		frame := scene.NewRenderScene()
		if err := frame.SetCamera(camera.ViewMatrix(), camera.ProjectionMatrix(), camera.Position); err != nil {
			return err
		}
		if err := frame.SetLight(math.Vec3{X: 10, Y: 10, Z: 3}, math.Vec3{X: 1500, Y: 1500, Z: 1500}); err != nil {
			return err
		}
		if err := frame.SetEnvironment(handles); err != nil {
			return err
		}

		// Skybox first: the xyww trick keeps it behind everything at equal
		// fill cost regardless of draw position, but submitting it up front
		// matches the stable insertion order the queue guarantees.
		if err := frame.Submit(skybox); err != nil {
			return err
		}
		for _, s := range spheres {
			if err := frame.Submit(s); err != nil {
				return err
			}
		}
		if err := frame.Submit(pillars); err != nil {
			return err
		}

		if err := frame.Commit(renderer); err != nil {
			return err
		}
		window.SwapBuffers()
	}
	return nil
}

// buildSphereGrid lays out an n-by-n grid of spheres sweeping metallic
// bottom to top and roughness left to right.
func buildSphereGrid(mesh *scene.Mesh, n int) []*scene.Object {
	spacing := float32(1.2)
	offset := spacing * float32(n-1) / 2

	objects := make([]*scene.Object, 0, n*n)
	for row := 0; row < n; row++ {
		metallic := float32(row) / float32(n-1)
		for col := 0; col < n; col++ {
			roughness := float32(col)/float32(n-1)*0.95 + 0.05

			mat := scene.NewPBRMaterial()
			mat.PBR.Albedo = core.Color{R: 0.8, G: 0.2, B: 0.2, A: 1}
			mat.PBR.Metallic = metallic
			mat.PBR.Roughness = roughness

			obj := scene.NewObject(mesh, mat)
			obj.SetTransform(math.Mat4Translation(math.Vec3{
				X: float32(col)*spacing - offset,
				Y: float32(row)*spacing - offset,
				Z: 0,
			}))
			objects = append(objects, obj)
		}
	}
	return objects
}

// buildPillars returns one instanced object: three Phong-shaded ellipsoid
// pillars behind the grid sharing a single draw call.
func buildPillars(mesh *scene.Mesh) *scene.Object {
	mat := scene.NewPhongMaterial(
		core.Color{R: 0.3, G: 0.35, B: 0.4, A: 1},
		core.Color{R: 0.3, G: 0.35, B: 0.4, A: 1},
		core.Color{R: 1, G: 1, B: 1, A: 1},
		64,
	)
	obj := scene.NewObject(mesh, mat)

	shape := math.Mat4Scale(math.Vec3{X: 0.4, Y: 3, Z: 0.4})
	obj.SetTransform(shape.Mul(math.Mat4Translation(math.Vec3{X: -4, Y: 0, Z: -4})))
	obj.AddInstance(shape.Mul(math.Mat4Translation(math.Vec3{X: 0, Y: 0, Z: -5})))
	obj.AddInstance(shape.Mul(math.Mat4Translation(math.Vec3{X: 4, Y: 0, Z: -4})))
	return obj
}

// loadPanorama reads the given image, or synthesizes a vertical sky
// gradient when no path is given.
func loadPanorama(path string) (*scene.Texture, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("panorama %s: %w", path, err)
		}
		return scene.LoadTexture(path)
	}
	return gradientPanorama(512, 256), nil
}

func gradientPanorama(w, h int) *scene.Texture {
	horizon := [3]float32{0.85, 0.65, 0.45}
	zenith := [3]float32{0.25, 0.45, 0.85}

	pixels := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		t := float32(y) / float32(h-1) // 0 at zenith row
		for x := 0; x < w; x++ {
			i := (y*w + x) * 4
			for c := 0; c < 3; c++ {
				v := zenith[c]*(1-t) + horizon[c]*t
				pixels[i+c] = byte(v * 255)
			}
			pixels[i+3] = 255
		}
	}
	return &scene.Texture{Name: "procedural-sky", Width: w, Height: h, Pixels: pixels}
}
