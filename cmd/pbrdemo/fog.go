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

// RunFog implements the fog command.
func RunFog(ctx *cli.Context) error {
	setupLogging(ctx)

	win, dev, err := openWindow(ctx, "pbr-engine - fog")
	if err != nil {
		return err
	}
	defer win.Destroy()
	defer dev.Destroy()

	shader, err := loadShader(dev, "fog")
	if err != nil {
		return err
	}
	defer shader.Release()

	checker, err := scene.LoadTexture(dev, filepath.Join(ctx.String("assets"), "texel_checker.png"))
	if err != nil {
		logger.Warningf("%v, using a generated checkerboard", err)
		checker, err = scene.UploadImage(dev, scene.CheckerImage(256, 32, core.White, core.RGBA8{R: 64, G: 64, B: 64, A: 255}))
		if err != nil {
			return err
		}
	}
	defer checker.Release()

	meshes := []*scene.Mesh{
		scene.CreateTorus(0.4, 1.0, 16, 32),
		scene.CreateCube(1, 1, 1),
		scene.CreateSphere(0.5, 32, 32),
	}
	models := make([]*renderer.Model, len(meshes))
	for i, mesh := range meshes {
		if err := mesh.Upload(dev); err != nil {
			return err
		}
		defer mesh.Release(dev)

		mat, err := material.New(shader)
		if err != nil {
			return err
		}
		defer mat.Unload()
		mat.SetTexture(material.MapAlbedo, checker)
		models[i] = renderer.NewModel(mesh.Name, mesh.GPU, mat)
		bounds := mesh.Data.Bounds()
		models[i].Bounds = &bounds
	}
	spin := mgl32.HomogRotate3DX(-0.025).Mul4(mgl32.HomogRotate3DZ(0.012))
	models[0].Spin = &spin

	lights := light.NewRegistry(light.MaxLights)
	if _, err := lights.Register(light.Light{
		Type:     light.Point,
		Position: mgl32.Vec3{0, 2, 6},
		Color:    core.White,
		Enabled:  true,
	}); err != nil {
		return err
	}
	if err := lights.PushAll(shader); err != nil {
		return err
	}

	camera := scene.NewOrbitCamera(mgl32.Vec3{2, 2, 6}, mgl32.Vec3{0, 0.5, 0}, 45, win.Aspect())
	driver := renderer.NewDriver(dev, camera, win)
	density := driver.AddParam(&renderer.Param{
		Name:        "fogDensity",
		Value:       0.15,
		Step:        0.001,
		Min:         0,
		Max:         1,
		IncreaseKey: core.KeyUp,
		DecreaseKey: core.KeyDown,
	})
	ambient := gfx.Vec4{0.2, 0.2, 0.2, 1}
	driver.OnShader(func(s *gfx.Shader) {
		s.SetNamed("ambient", ambient)
	})

	driver.Add(models[0], mgl32.Vec3{})
	driver.Add(models[1], mgl32.Vec3{-2.6, 0, 0})
	driver.Add(models[2], mgl32.Vec3{2.6, 0, 0})
	for i := -20; i < 20; i += 2 {
		driver.Add(models[0], mgl32.Vec3{float32(i), 0, 2})
	}

	background := core.RGBA8{R: 128, G: 128, B: 128, A: 255}.Normalize()
	last := win.Time()
	shown := float32(-1)
	culled := -1
	for !win.ShouldClose() {
		now := win.Time()
		camera.Update(float32(now - last))
		last = now

		dev.Clear(background)
		if err := driver.Frame(); err != nil {
			return err
		}
		if driver.Culled() != culled {
			culled = driver.Culled()
			logger.Debugf("culled %d instances", culled)
		}
		if density.Value != shown {
			shown = density.Value
			win.SetTitle(fmt.Sprintf("pbr-engine - fog [density %.2f, up/down to change]", shown))
		}
		win.SwapBuffers()
		win.PollEvents()
	}
	return nil
}
