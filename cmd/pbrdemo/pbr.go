package main

import (
	"fmt"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/urfave/cli"

	"pbr-engine/core"
	"pbr-engine/gfx"
	"pbr-engine/light"
	"pbr-engine/material"
	"pbr-engine/renderer"
	"pbr-engine/scene"
)

const (
	lightDistance = 3.5
	lightHeight   = 1.0
)

var pbrLights = []light.Light{
	{Type: light.Point, Position: mgl32.Vec3{lightDistance, lightHeight, 0}, Color: core.RGBA8{R: 255, A: 255}, Enabled: true},
	{Type: light.Point, Position: mgl32.Vec3{0, lightHeight, lightDistance}, Color: core.RGBA8{G: 255, A: 255}, Enabled: true},
	{Type: light.Point, Position: mgl32.Vec3{-lightDistance, lightHeight, 0}, Color: core.RGBA8{B: 255, A: 255}, Enabled: true},
	{Type: light.Directional, Position: mgl32.Vec3{0, lightHeight * 2, -lightDistance}, Color: core.RGBA8{R: 255, B: 255, A: 255}, Enabled: true},
}

var renderModes = []string{"shaded", "albedo", "normals", "metalness", "roughness", "occlusion", "direct light"}

// loadPBRTextures loads the five standard maps named after the model. Any
// missing map is replaced by a 1x1 texture with a neutral value.
func loadPBRTextures(dev gfx.Device, assets, model string) (material.SourceTextures, error) {
	base := model[:len(model)-len(filepath.Ext(model))]
	path := func(suffix string) string {
		return filepath.Join(assets, base+"_"+suffix+".png")
	}

	var src material.SourceTextures
	var err error
	load := func(dst **gfx.Texture, suffix string, fallback core.RGBA8) {
		if err != nil {
			return
		}
		*dst, err = scene.LoadTextureOr(dev, path(suffix), fallback)
	}
	load(&src.Albedo, "albedo", core.White)
	load(&src.Normal, "normals", core.RGBA8{R: 128, G: 128, B: 255, A: 255})
	load(&src.Metalness, "metalness", core.White)
	load(&src.Roughness, "roughness", core.White)
	load(&src.Occlusion, "ao", core.White)
	if err != nil {
		releaseSources(src)
		return material.SourceTextures{}, err
	}
	return src, nil
}

func releaseSources(src material.SourceTextures) {
	for _, t := range []*gfx.Texture{src.Albedo, src.Normal, src.Metalness, src.Roughness, src.Occlusion} {
		if t != nil {
			t.Release()
		}
	}
}

// RunPBR implements the pbr command.
func RunPBR(ctx *cli.Context) error {
	setupLogging(ctx)

	win, dev, err := openWindow(ctx, "pbr-engine - pbr material")
	if err != nil {
		return err
	}
	defer win.Destroy()
	defer dev.Destroy()

	assets := ctx.String("assets")
	modelFile := ctx.String("model")

	mesh, err := scene.LoadModel(filepath.Join(assets, modelFile))
	if err != nil {
		logger.Warningf("%v, using a sphere", err)
		mesh = scene.CreateSphere(1, 32, 32)
	}
	if err = mesh.Upload(dev); err != nil {
		return err
	}
	defer mesh.Release(dev)
	logger.Infof("model %s: %d vertices, %d triangles", mesh.Name, len(mesh.Data.Vertices), mesh.Data.TriangleCount())

	src, err := loadPBRTextures(dev, assets, modelFile)
	if err != nil {
		return err
	}
	env, _, err := bakeEnvironment(ctx, dev)
	if err != nil {
		releaseSources(src)
		return err
	}
	shader, err := loadShader(dev, "pbr")
	if err != nil {
		releaseSources(src)
		env.Release()
		return err
	}

	mat, err := material.AssemblePBR(shader, material.PBRParams{Albedo: core.White, Metalness: 1, Roughness: 1}, src, env)
	// The material holds its own references from here on.
	releaseSources(src)
	env.Release()
	shader.Release()
	if err != nil {
		return err
	}
	defer mat.Unload()

	lights := light.NewRegistry(light.MaxLights)
	for _, l := range pbrLights {
		if _, err := lights.Register(l); err != nil {
			logger.Warning(err)
		}
	}
	if err := lights.PushAll(mat.Shader); err != nil {
		return err
	}

	camera := scene.NewOrbitCamera(mgl32.Vec3{4, 4, 4}, mgl32.Vec3{0, 0.5, 0}, 45, win.Aspect())
	driver := renderer.NewDriver(dev, camera, win)
	model := renderer.NewModel(mesh.Name, mesh.GPU, mat)
	bounds := mesh.Data.Bounds()
	model.Bounds = &bounds
	driver.Add(model, mgl32.Vec3{})

	var (
		keys = keyEdge{}
		mode int
		last = win.Time()
	)
	lightKeys := []int{core.Key1, core.Key2, core.Key3, core.Key4}
	background := core.RGBA8{R: 245, G: 245, B: 245, A: 255}.Normalize()

	for !win.ShouldClose() {
		now := win.Time()
		camera.Update(float32(now - last))
		last = now

		for i, key := range lightKeys {
			if !keys.pressed(win, key) {
				continue
			}
			if l := lights.Light(light.ID(i)); l != nil {
				l.Enabled = !l.Enabled
				if err := lights.Push(light.ID(i), mat.Shader); err != nil {
					return err
				}
			}
		}
		modeChanged := true
		switch {
		case keys.pressed(win, core.KeyRight):
			mode = (mode + 1) % len(renderModes)
		case keys.pressed(win, core.KeyLeft):
			mode = (mode + len(renderModes) - 1) % len(renderModes)
		case keys.pressed(win, core.Key0):
			mode = 0
		default:
			modeChanged = false
		}
		if modeChanged {
			mat.Shader.SetLoc(gfx.LocRenderMode, gfx.Int(mode))
			win.SetTitle(fmt.Sprintf("pbr-engine - pbr material [%s]", renderModes[mode]))
		}

		dev.Clear(background)
		if err := driver.Frame(); err != nil {
			return err
		}
		win.SwapBuffers()
		win.PollEvents()
	}
	return nil
}
