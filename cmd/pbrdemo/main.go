package main

import (
	"os"

	"github.com/urfave/cli"

	"pbr-engine/ibl"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "pbrdemo"
	app.Usage = "physically based rendering with image based lighting"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}

	windowFlags := []cli.Flag{
		cli.IntFlag{
			Name:  "width",
			Value: 800,
			Usage: "window width",
		},
		cli.IntFlag{
			Name:  "height",
			Value: 450,
			Usage: "window height",
		},
		cli.StringFlag{
			Name:  "assets, a",
			Value: "resources",
			Usage: "asset directory",
		},
	}
	bakeFlags := []cli.Flag{
		cli.StringFlag{
			Name:  "hdr",
			Value: "dresden_square.hdr",
			Usage: "equirectangular HDR panorama, relative to the asset directory",
		},
		cli.IntFlag{
			Name:  "cubemap-size",
			Value: ibl.DefaultCubemapSize,
			Usage: "environment cubemap face size",
		},
		cli.IntFlag{
			Name:  "irradiance-size",
			Value: ibl.DefaultIrradianceSize,
			Usage: "irradiance cubemap face size",
		},
		cli.IntFlag{
			Name:  "prefilter-size",
			Value: ibl.DefaultPrefilterSize,
			Usage: "prefiltered cubemap base face size",
		},
		cli.IntFlag{
			Name:  "brdf-size",
			Value: ibl.DefaultBRDFSize,
			Usage: "BRDF lookup table size",
		},
		cli.IntFlag{
			Name:  "samples",
			Value: 1024,
			Usage: "GGX samples per texel for the prefilter and BRDF passes",
		},
	}

	app.Commands = []cli.Command{
		{
			Name:  "pbr",
			Usage: "render a model with a PBR material lit by four lights and a baked environment",
			Description: `
Load a model and its albedo, normal, metalness, roughness and occlusion maps,
bake the irradiance, prefiltered specular and BRDF textures from an HDR
panorama and draw the model under an orbiting camera.

Missing assets fall back to a sphere and constant textures.`,
			Flags: append(append([]cli.Flag{
				cli.StringFlag{
					Name:  "model, m",
					Value: "trooper.obj",
					Usage: "OBJ or glTF model, relative to the asset directory",
				},
			}, windowFlags...), bakeFlags...),
			Action: RunPBR,
		},
		{
			Name:   "fog",
			Usage:  "render three shapes with exponential fog; up/down change the density",
			Flags:  windowFlags,
			Action: RunFog,
		},
		{
			Name:  "bake",
			Usage: "bake the IBL textures headlessly and report their sizes",
			Flags: append([]cli.Flag{
				cli.StringFlag{
					Name:  "assets, a",
					Value: "resources",
					Usage: "asset directory",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "",
					Usage: "write the BRDF lookup table to this PNG file",
				},
			}, bakeFlags...),
			Action: RunBake,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}
