// Package assets renders the application window icon from an inline
// vector source rather than an embedded SVG file: the icon source is
// kept as a Go string constant, rasterized with oksvg + rasterx.
package assets

import (
	"image"
	"image/draw"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// iconSVG is a simple glyph-and-frame mark: a rounded terminal window
// with a ">_" prompt, rendered at whatever size GLFW requests.
const iconSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 64 64">
  <rect x="4" y="4" width="56" height="56" rx="10" fill="#1a1a1a" stroke="#55575a" stroke-width="2"/>
  <path d="M16 24 L26 32 L16 40" fill="none" stroke="#8ae234" stroke-width="4" stroke-linecap="round" stroke-linejoin="round"/>
  <line x1="30" y1="40" x2="48" y2="40" stroke="#8ae234" stroke-width="4" stroke-linecap="round"/>
</svg>`

// RenderIconSizes renders the icon at the common GLFW window-icon
// sizes.
func RenderIconSizes() []image.Image {
	sizes := []int{16, 32, 48, 64, 128, 256}
	icons := make([]image.Image, 0, len(sizes))
	for _, size := range sizes {
		if img := renderSVGToSize(iconSVG, size); img != nil {
			icons = append(icons, img)
		}
	}
	return icons
}

// RenderIcon renders the icon at a single requested size.
func RenderIcon(size int) image.Image {
	return renderSVGToSize(iconSVG, size)
}

func renderSVGToSize(svgData string, size int) image.Image {
	icon, err := oksvg.ReadIconStream(strings.NewReader(svgData))
	if err != nil {
		return nil
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	rgba := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, rgba, rgba.Bounds())
	rasterizer := rasterx.NewDasher(size, size, scanner)
	icon.Draw(rasterizer, 1.0)
	return rgba
}

// CopyImage duplicates an image into a fresh RGBA buffer, for callers
// that need a copy GLFW's SetIcon can retain independently of the
// source slice's lifetime.
func CopyImage(src image.Image) *image.RGBA {
	bounds := src.Bounds()
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, src, bounds.Min, draw.Src)
	return dst
}
