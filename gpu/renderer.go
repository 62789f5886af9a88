package gpu

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/corvidterm/corvid/internal/term"
)

// Renderer owns the GPU device resources (shaders, VAOs/VBOs, atlas)
// and draws a render-command draw list in the two passes §4.5
// requires. It holds no grid or parser reference — the UI activity
// calls render.Generate and hands the result here.
type Renderer struct {
	atlas *Atlas

	cellW, cellH int
	screenW      int
	screenH      int

	quadProgram uint32
	quadVAO     uint32
	quadVBO     uint32
	colorLoc    int32
	quadProjLoc int32

	glyphProgram uint32
	glyphVAO     uint32
	glyphVBO     uint32
	textColorLoc int32
	glyphProjLoc int32
	texLoc       int32
}

// NewRenderer compiles the shader programs, allocates the dynamic
// vertex buffers, and builds the glyph atlas at fontSize points.
func NewRenderer(fontSize float32) (*Renderer, error) {
	r := &Renderer{}

	var err error
	r.quadProgram, err = createProgram(quadVertexShader, quadFragmentShader)
	if err != nil {
		return nil, err
	}
	r.colorLoc = gl.GetUniformLocation(r.quadProgram, gl.Str("color\x00"))
	r.quadProjLoc = gl.GetUniformLocation(r.quadProgram, gl.Str("projection\x00"))

	r.glyphProgram, err = createProgram(glyphVertexShader, glyphFragmentShader)
	if err != nil {
		return nil, err
	}
	r.textColorLoc = gl.GetUniformLocation(r.glyphProgram, gl.Str("textColor\x00"))
	r.glyphProjLoc = gl.GetUniformLocation(r.glyphProgram, gl.Str("projection\x00"))
	r.texLoc = gl.GetUniformLocation(r.glyphProgram, gl.Str("text\x00"))

	gl.GenVertexArrays(1, &r.quadVAO)
	gl.GenBuffers(1, &r.quadVBO)
	gl.BindVertexArray(r.quadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, 6*2*4, nil, gl.DYNAMIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, 2*4, 0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	gl.GenVertexArrays(1, &r.glyphVAO)
	gl.GenBuffers(1, &r.glyphVBO)
	gl.BindVertexArray(r.glyphVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.glyphVBO)
	gl.BufferData(gl.ARRAY_BUFFER, 6*4*4, nil, gl.DYNAMIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 4, gl.FLOAT, false, 4*4, 0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	atlas, err := NewAtlas(fontSize)
	if err != nil {
		return nil, err
	}
	r.atlas = atlas
	r.cellW, r.cellH = atlas.CellMetrics()

	return r, nil
}

// CellSize reports the fixed pixel dimensions of one grid cell.
func (r *Renderer) CellSize() (int, int) { return r.cellW, r.cellH }

// Resize updates the pixel dimensions used to build the per-frame
// projection. The atlas is retained, per §4.5's resize contract.
func (r *Renderer) Resize(widthPx, heightPx int) {
	r.screenW, r.screenH = widthPx, heightPx
}

// CalculateGridSize reports how many cell columns/rows fit the
// current surface, per §6's Surface contract.
func (r *Renderer) CalculateGridSize() (cols, rows int) {
	if r.cellW == 0 || r.cellH == 0 {
		return 0, 0
	}
	return r.screenW / r.cellW, r.screenH / r.cellH
}

// Render draws one frame: pass 1 paints background quads wherever a
// command's bg differs from the screen default, pass 2 draws glyph
// quads (plus underline/strikethrough accents) for non-space chars.
func (r *Renderer) Render(cmds []term.RenderCommand, screenBg term.RGB24) {
	proj := orthoMatrix(0, float32(r.screenW), float32(r.screenH), 0, -1, 1)

	gl.ClearColor(toFloat(screenBg.R), toFloat(screenBg.G), toFloat(screenBg.B), 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	r.renderBackgrounds(cmds, screenBg, proj)
	r.renderGlyphs(cmds, proj)
}

func toFloat(c uint8) float32 { return float32(c) / 255 }

func rgbaOf(c term.RGB24) [4]float32 {
	return [4]float32{toFloat(c.R), toFloat(c.G), toFloat(c.B), 1}
}

func (r *Renderer) renderBackgrounds(cmds []term.RenderCommand, screenBg term.RGB24, proj [16]float32) {
	gl.UseProgram(r.quadProgram)
	gl.UniformMatrix4fv(r.quadProjLoc, 1, false, &proj[0])

	for _, cmd := range cmds {
		if cmd.Bg == screenBg {
			continue
		}
		width := float32(r.cellW)
		if cmd.Flags&term.FlagWide != 0 {
			width *= 2
		}
		r.drawRect(float32(cmd.Col*r.cellW), float32(cmd.Row*r.cellH), width, float32(r.cellH), rgbaOf(cmd.Bg))
	}
}

func (r *Renderer) renderGlyphs(cmds []term.RenderCommand, proj [16]float32) {
	gl.UseProgram(r.glyphProgram)
	gl.UniformMatrix4fv(r.glyphProjLoc, 1, false, &proj[0])
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.atlas.Texture())
	gl.Uniform1i(r.texLoc, 0)

	for _, cmd := range cmds {
		x := float32(cmd.Col * r.cellW)
		y := float32(cmd.Row * r.cellH)

		if cmd.Char != ' ' && cmd.Char != 0 {
			g := r.atlas.Glyph(cmd.Char, cmd.Flags&term.FlagBold != 0, cmd.Flags&term.FlagItalic != 0)
			if g.PixelWidth > 0 {
				r.drawGlyphQuad(x, y+float32(g.BearingY), g, rgbaOf(cmd.Fg))
			}
		}

		if cmd.Flags&term.FlagUnderline != 0 {
			width := float32(r.cellW)
			if cmd.Flags&term.FlagWide != 0 {
				width *= 2
			}
			r.drawAccentQuad(x, y+float32(r.cellH)-1, width, 1, rgbaOf(cmd.Fg), proj)
		}
		if cmd.Flags&term.FlagStrikethrough != 0 {
			width := float32(r.cellW)
			if cmd.Flags&term.FlagWide != 0 {
				width *= 2
			}
			r.drawAccentQuad(x, y+float32(r.cellH)/2, width, 1, rgbaOf(cmd.Fg), proj)
		}
	}
}

// drawAccentQuad draws an underline/strikethrough bar with the quad
// program (it needs no texture), restoring the glyph program after.
func (r *Renderer) drawAccentQuad(x, y, w, h float32, clr [4]float32, proj [16]float32) {
	gl.UseProgram(r.quadProgram)
	gl.UniformMatrix4fv(r.quadProjLoc, 1, false, &proj[0])
	r.drawRect(x, y, w, h, clr)
	gl.UseProgram(r.glyphProgram)
}

func (r *Renderer) drawRect(x, y, w, h float32, clr [4]float32) {
	vertices := []float32{
		x, y,
		x + w, y,
		x, y + h,
		x + w, y,
		x + w, y + h,
		x, y + h,
	}
	gl.BindVertexArray(r.quadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.quadVBO)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(vertices)*4, gl.Ptr(vertices))
	gl.Uniform4fv(r.colorLoc, 1, &clr[0])
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
}

func (r *Renderer) drawGlyphQuad(x, y float32, g Glyph, clr [4]float32) {
	w, h := float32(g.PixelWidth), float32(g.PixelHeight)
	vertices := []float32{
		x, y, g.U0, g.V0,
		x + w, y, g.U1, g.V0,
		x, y + h, g.U0, g.V1,
		x + w, y, g.U1, g.V0,
		x + w, y + h, g.U1, g.V1,
		x, y + h, g.U0, g.V1,
	}
	gl.BindVertexArray(r.glyphVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.glyphVBO)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(vertices)*4, gl.Ptr(vertices))
	gl.Uniform4fv(r.textColorLoc, 1, &clr[0])
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
}

// Destroy releases all GPU resources, including the atlas.
func (r *Renderer) Destroy() {
	r.atlas.Destroy()
	gl.DeleteProgram(r.quadProgram)
	gl.DeleteProgram(r.glyphProgram)
	gl.DeleteVertexArrays(1, &r.quadVAO)
	gl.DeleteBuffers(1, &r.quadVBO)
	gl.DeleteVertexArrays(1, &r.glyphVAO)
	gl.DeleteBuffers(1, &r.glyphVBO)
}
