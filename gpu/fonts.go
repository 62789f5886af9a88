package gpu

import (
	"fmt"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

// ReplacementGlyph is the box-drawing glyph (U+25A1, WHITE SQUARE)
// substituted when a rune is found in neither chain face, per §4.5.
const ReplacementGlyph = rune(0x25A1)

// primaryFontPaths and fallbackFontPaths are searched in order for the
// first file that exists. No font binaries are embedded in this tree,
// so loading falls back to common distro-installed monospace/CJK font
// files instead of fabricating embedded assets.
var primaryFontPaths = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSansMono.ttf",
	"/usr/share/fonts/truetype/jetbrains-mono/JetBrainsMono-Regular.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationMono-Regular.ttf",
	"/System/Library/Fonts/Menlo.ttc",
}

var fallbackFontPaths = []string{
	"/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc",
	"/usr/share/fonts/truetype/noto/NotoSansCJK-Regular.ttc",
	"/usr/share/fonts/noto-cjk/NotoSansCJK-Regular.ttc",
}

// loadFace reads the first existing path in candidates and parses it
// into a fixed-size font.Face at the given point size.
func loadFace(candidates []string, size float32) (font.Face, error) {
	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		parsed, err := opentype.Parse(data)
		if err != nil {
			continue
		}
		face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
			Size:    float64(size),
			DPI:     96,
			Hinting: font.HintingFull,
		})
		if err != nil {
			continue
		}
		return face, nil
	}
	return nil, fmt.Errorf("gpu: no font found among %d candidate paths", len(candidates))
}

// LoadPrimaryFace loads the monospace face consulted first in the
// fallback chain, per §4.5.
func LoadPrimaryFace(size float32) (font.Face, error) {
	return loadFace(primaryFontPaths, size)
}

// LoadFallbackFace loads the CJK fallback face, if one is installed.
// A missing fallback is not an error at this layer: the chain simply
// degrades to replacement glyphs for runes the primary face lacks.
func LoadFallbackFace(size float32) font.Face {
	face, err := loadFace(fallbackFontPaths, size)
	if err != nil {
		return nil
	}
	return face
}
