package main

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"pbr-engine/gfx"
	"pbr-engine/ibl"
	"pbr-engine/internal/soft"
)

// RunBake implements the bake command. It runs on the software device so it
// needs no window or GPU.
func RunBake(ctx *cli.Context) error {
	setupLogging(ctx)

	dev := soft.New(1, 1)
	start := time.Now()
	env, stats, err := bakeEnvironment(ctx, dev)
	if err != nil {
		return err
	}
	defer env.Release()

	logger.Noticef("bake completed in %s\n%s", time.Since(start), statsTable(stats))

	if out := ctx.String("out"); out != "" {
		if err := writeLUT(env.BRDF, out); err != nil {
			return err
		}
		logger.Noticef("wrote BRDF lookup table to %s", out)
	}
	return nil
}

func statsTable(stats []ibl.PassStat) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Stage", "Size", "Format", "Mips", "Passes", "Time"})

	var total time.Duration
	passes := 0
	for _, s := range stats {
		table.Append([]string{
			s.Name,
			fmt.Sprintf("%dx%d", s.Size, s.Size),
			s.Format.String(),
			fmt.Sprint(s.Mips),
			fmt.Sprint(s.Passes),
			s.Duration.Round(time.Millisecond).String(),
		})
		total += s.Duration
		passes += s.Passes
	}
	table.SetFooter([]string{"Total", " ", " ", " ", fmt.Sprint(passes), total.Round(time.Millisecond).String()})
	table.Render()
	return buf.String()
}

// writeLUT stores the red and green channels of the lookup table as an
// 8-bit PNG. Row 0 of the image is roughness 1.
func writeLUT(lut *gfx.Texture, path string) error {
	px, err := lut.Read(0, 0)
	if err != nil {
		return err
	}
	w, h := lut.Width(), lut.Height()
	ch := lut.Format().Channels()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * ch
			img.SetNRGBA(x, h-1-y, color.NRGBA{R: to8(px[i]), G: to8(px[i+1]), A: 255})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func to8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
