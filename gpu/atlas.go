package gpu

import (
	"image"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// glyphKey identifies an atlas entry: the scalar plus the rendering
// variant it was rasterized under, per §3's "Atlas" lifecycle note.
type glyphKey struct {
	R      rune
	Size   float32
	Bold   bool
	Italic bool
}

// Glyph is a packed atlas entry: normalized UV rectangle plus the
// pixel metrics the renderer needs to place the quad.
type Glyph struct {
	U0, V0, U1, V1 float32
	PixelWidth     int
	PixelHeight    int
	BearingY       int // ascent-relative baseline offset
}

type shelfRow struct {
	y, height, nextX int
}

// Atlas is a lazy, shelf-packed glyph cache. Entries are immutable
// once packed; the whole atlas is rebuilt only when the font size
// changes (NewAtlas is called again), matching §4.5/§9.
type Atlas struct {
	texture  uint32
	size     int
	fontSize float32

	primary  font.Face
	fallback font.Face

	shelves []shelfRow
	entries map[glyphKey]Glyph
	pixels  []byte // size*size single-channel alpha, CPU-side mirror
}

const initialAtlasSize = 512

// NewAtlas creates an atlas for the given point size. The primary face
// must load; a missing fallback degrades the chain to replacement
// glyphs for runes it would have covered.
func NewAtlas(fontSize float32) (*Atlas, error) {
	primary, err := LoadPrimaryFace(fontSize)
	if err != nil {
		return nil, err
	}
	fallback := LoadFallbackFace(fontSize)

	a := &Atlas{
		size:     initialAtlasSize,
		fontSize: fontSize,
		primary:  primary,
		fallback: fallback,
		entries:  make(map[glyphKey]Glyph),
		pixels:   make([]byte, initialAtlasSize*initialAtlasSize),
	}

	gl.GenTextures(1, &a.texture)
	a.uploadWhole()
	return a, nil
}

func (a *Atlas) uploadWhole() {
	gl.BindTexture(gl.TEXTURE_2D, a.texture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RED, int32(a.size), int32(a.size), 0,
		gl.RED, gl.UNSIGNED_BYTE, gl.Ptr(a.pixels))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

func (a *Atlas) uploadRect(x, y, w, h int) {
	sub := make([]byte, w*h)
	for row := 0; row < h; row++ {
		copy(sub[row*w:(row+1)*w], a.pixels[(y+row)*a.size+x:(y+row)*a.size+x+w])
	}
	gl.BindTexture(gl.TEXTURE_2D, a.texture)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, int32(x), int32(y), int32(w), int32(h),
		gl.RED, gl.UNSIGNED_BYTE, gl.Ptr(sub))
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// Texture returns the GL texture name backing the atlas.
func (a *Atlas) Texture() uint32 { return a.texture }

// CellMetrics reports the fixed cell width/height in pixels, derived
// from the primary face: cell height from ascent+descent, cell width
// from 'M' advance.
func (a *Atlas) CellMetrics() (cellW, cellH int) {
	metrics := a.primary.Metrics()
	advance, _ := a.primary.GlyphAdvance('M')
	return advance.Ceil(), (metrics.Ascent + metrics.Descent).Ceil()
}

// Glyph returns the packed entry for (r, bold, italic), rasterizing
// and packing it on first reference. The fallback chain is the
// primary face, then the CJK fallback, then ReplacementGlyph rendered
// from whichever face has it.
func (a *Atlas) Glyph(r rune, bold, italic bool) Glyph {
	key := glyphKey{R: r, Size: a.fontSize, Bold: bold, Italic: italic}
	if g, ok := a.entries[key]; ok {
		return g
	}

	face := a.faceFor(r)
	if face == nil {
		if r != ReplacementGlyph {
			g := a.Glyph(ReplacementGlyph, bold, italic)
			a.entries[key] = g
			return g
		}
		// Neither face has even the replacement glyph: pack an empty cell.
		g := a.pack(r, key, nil, image.Rectangle{})
		return g
	}

	bounds, advance, ok := glyphBounds(face, r)
	if !ok {
		return a.Glyph(ReplacementGlyph, bold, italic)
	}
	_ = advance

	dst := image.NewAlpha(bounds)
	drawer := &font.Drawer{Dst: alphaAsRGBA(dst), Src: image.White, Face: face}
	drawer.Dot = fixed.P(-bounds.Min.X, -bounds.Min.Y)
	drawer.DrawString(string(r))

	g := a.pack(r, key, dst.Pix, bounds)
	return g
}

func (a *Atlas) faceFor(r rune) font.Face {
	if a.primary != nil {
		if _, ok := a.primary.GlyphAdvance(r); ok {
			return a.primary
		}
	}
	if a.fallback != nil {
		if _, ok := a.fallback.GlyphAdvance(r); ok {
			return a.fallback
		}
	}
	return nil
}

func glyphBounds(face font.Face, r rune) (image.Rectangle, fixed.Int26_6, bool) {
	advance, ok := face.GlyphAdvance(r)
	if !ok {
		return image.Rectangle{}, 0, false
	}
	metrics := face.Metrics()
	w := advance.Ceil()
	if w <= 0 {
		w = metrics.Height.Ceil()
	}
	h := (metrics.Ascent + metrics.Descent).Ceil()
	return image.Rect(0, -metrics.Ascent.Ceil(), w, metrics.Descent.Ceil()), advance, true
}

// alphaAsRGBA wraps an Alpha image so font.Drawer (which writes via
// the generic draw.Image interface) can target it directly.
func alphaAsRGBA(a *image.Alpha) draw.Image { return a }

// pack finds room for a w×h glyph bitmap, growing the atlas by
// doubling if no shelf has room, then blits and uploads it.
func (a *Atlas) pack(r rune, key glyphKey, alphaPix []byte, bounds image.Rectangle) Glyph {
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		g := Glyph{}
		a.entries[key] = g
		return g
	}

	x, y := a.reserve(w, h)
	for row := 0; row < h; row++ {
		copy(a.pixels[(y+row)*a.size+x:(y+row)*a.size+x+w], alphaPix[row*w:(row+1)*w])
	}
	a.uploadRect(x, y, w, h)

	g := Glyph{
		U0: float32(x) / float32(a.size), V0: float32(y) / float32(a.size),
		U1: float32(x+w) / float32(a.size), V1: float32(y+h) / float32(a.size),
		PixelWidth: w, PixelHeight: h, BearingY: -bounds.Min.Y,
	}
	a.entries[key] = g
	return g
}

// reserve finds (or makes) shelf space for a w×h glyph, growing the
// atlas by doubling when nothing fits.
func (a *Atlas) reserve(w, h int) (int, int) {
	for i := range a.shelves {
		s := &a.shelves[i]
		if h <= s.height && s.nextX+w <= a.size {
			x := s.nextX
			s.nextX += w
			return x, s.y
		}
	}

	y := 0
	if n := len(a.shelves); n > 0 {
		last := a.shelves[n-1]
		y = last.y + last.height
	}
	if y+h > a.size || w > a.size {
		a.grow()
		return a.reserve(w, h)
	}
	a.shelves = append(a.shelves, shelfRow{y: y, height: h, nextX: w})
	return 0, y
}

// grow doubles the atlas, rebinding existing pixel data at the same
// coordinates (UVs are recomputed below, since the normalization
// denominator changed) and re-uploading as a fresh texture.
func (a *Atlas) grow() {
	oldSize, oldPixels := a.size, a.pixels
	a.size *= 2
	a.pixels = make([]byte, a.size*a.size)
	for row := 0; row < oldSize; row++ {
		copy(a.pixels[row*a.size:row*a.size+oldSize], oldPixels[row*oldSize:(row+1)*oldSize])
	}
	a.uploadWhole()

	for key, g := range a.entries {
		x0 := int(g.U0 * float32(oldSize))
		y0 := int(g.V0 * float32(oldSize))
		a.entries[key] = Glyph{
			U0: float32(x0) / float32(a.size), V0: float32(y0) / float32(a.size),
			U1: float32(x0+g.PixelWidth) / float32(a.size), V1: float32(y0+g.PixelHeight) / float32(a.size),
			PixelWidth: g.PixelWidth, PixelHeight: g.PixelHeight, BearingY: g.BearingY,
		}
	}
}

// Destroy releases the GL texture.
func (a *Atlas) Destroy() {
	gl.DeleteTextures(1, &a.texture)
}
