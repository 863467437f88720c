// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package term

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/gogpu/term/screen"
)

// RGB is a resolved 24-bit color, the output of palette resolution.
type RGB struct {
	R, G, B uint8
}

// Hex returns the color as "#rrggbb".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// xParseColor returns the color in the X11 "rgb:rrrr/gggg/bbbb" form
// used by OSC color reports.
func (c RGB) xParseColor() string {
	return fmt.Sprintf("rgb:%02x%02x/%02x%02x/%02x%02x", c.R, c.R, c.G, c.G, c.B, c.B)
}

// Palette holds the 256-color table plus the special colors the
// renderer needs. Entries are mutable at runtime through OSC 4/10/11
// and reset through OSC 104/110/111.
type Palette struct {
	Colors [256]RGB

	Foreground RGB
	Background RGB

	CursorFG RGB
	CursorBG RGB

	SelectionFG RGB
	SelectionBG RGB
}

// ansi16 is the default palette for the 16 ANSI colors: the normal
// eight followed by their bright variants.
var ansi16 = [16]RGB{
	{0x00, 0x00, 0x00},
	{0xcc, 0x55, 0x55},
	{0x55, 0xcc, 0x55},
	{0xcd, 0xcd, 0x55},
	{0x54, 0x55, 0xcb},
	{0xcc, 0x55, 0xcc},
	{0x7a, 0xca, 0xca},
	{0xcc, 0xcc, 0xcc},
	{0x55, 0x55, 0x55},
	{0xff, 0x55, 0x55},
	{0x55, 0xff, 0x55},
	{0xff, 0xff, 0x55},
	{0x55, 0x55, 0xff},
	{0xff, 0x55, 0xff},
	{0x55, 0xff, 0xff},
	{0xff, 0xff, 0xff},
}

// NewPalette returns the default palette: ANSI 16, the 6x6x6 color
// cube, and the 24-step grey ramp.
func NewPalette() *Palette {
	p := &Palette{}
	copy(p.Colors[:16], ansi16[:])

	ramp6 := [6]uint8{0x00, 0x33, 0x66, 0x99, 0xCC, 0xFF}
	for i := 0; i < 216; i++ {
		p.Colors[16+i] = RGB{
			R: ramp6[i/36%6],
			G: ramp6[i/6%6],
			B: ramp6[i%6],
		}
	}

	greys := [24]uint8{
		0x08, 0x12, 0x1c, 0x26, 0x30, 0x3a, 0x44, 0x4e,
		0x58, 0x62, 0x6c, 0x76, 0x80, 0x8a, 0x94, 0x9e,
		0xa8, 0xb2, 0xbc, 0xc6, 0xd0, 0xda, 0xe4, 0xee,
	}
	for i, g := range greys {
		p.Colors[232+i] = RGB{g, g, g}
	}

	p.Foreground = p.Colors[249]
	p.Background = p.Colors[0]
	p.CursorFG = p.Colors[0]
	p.CursorBG = RGB{0x52, 0xad, 0x70}
	p.SelectionFG = p.Colors[0]
	p.SelectionBG = RGB{0xff, 0xfa, 0xcd}
	return p
}

// boldBrighten is the L* lift applied to bold foregrounds that have no
// bright palette variant.
const boldBrighten = 0.12

// ResolveFG resolves a cell foreground color. A bold pen maps the
// normal ANSI colors 0-7 to their bright variants 8-15; truecolor and
// the default foreground are brightened instead, and high palette
// indices are left alone.
func (p *Palette) ResolveFG(c screen.Color, bold bool) RGB {
	switch c.Mode {
	case screen.ColorPalette:
		idx := c.Index
		if bold && idx < 8 {
			idx += 8
		}
		return p.Colors[idx]
	case screen.ColorRGB:
		rgb := RGB{c.R, c.G, c.B}
		if bold {
			rgb = Brighten(rgb, boldBrighten)
		}
		return rgb
	default:
		if bold {
			return Brighten(p.Foreground, boldBrighten)
		}
		return p.Foreground
	}
}

// ResolveBG resolves a cell background color.
func (p *Palette) ResolveBG(c screen.Color) RGB {
	switch c.Mode {
	case screen.ColorPalette:
		return p.Colors[c.Index]
	case screen.ColorRGB:
		return RGB{c.R, c.G, c.B}
	default:
		return p.Background
	}
}

// Brighten lifts a color's perceptual lightness. Bold foregrounds that
// have no bright palette variant pass through it before rendering.
func Brighten(c RGB, amount float64) RGB {
	base := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	l, a, b := base.Lab()
	out := colorful.Lab(min(l+amount, 1.0), a, b).Clamped()
	r8, g8, b8 := out.RGB255()
	return RGB{r8, g8, b8}
}

// ParseColorSpec parses an X11 color specification as accepted by
// OSC 4/10/11: "#rgb"/"#rrggbb"/"#rrrrggggbbbb", "rgb:RR/GG/BB" with
// 1-4 hex digits per channel, or a CSS-style "rgb(r,g,b)".
func ParseColorSpec(spec string) (RGB, error) {
	spec = strings.TrimSpace(spec)
	switch {
	case strings.HasPrefix(spec, "rgb:"):
		return parseXRGB(spec[len("rgb:"):])
	case strings.HasPrefix(spec, "#"):
		return parseHash(spec[1:])
	case strings.HasPrefix(spec, "rgb(") && strings.HasSuffix(spec, ")"):
		return parseCSSRGB(spec[len("rgb(") : len(spec)-1])
	}
	// go-colorful knows the "#rrggbb" form only; anything left over is
	// handed to it so plain hex without '#' still errors consistently.
	c, err := colorful.Hex(spec)
	if err != nil {
		return RGB{}, fmt.Errorf("term: bad color spec %q", spec)
	}
	r, g, b := c.RGB255()
	return RGB{r, g, b}, nil
}

// parseXRGB parses "RR/GG/BB" where each channel is 1 to 4 hex digits
// scaled to 8 bits.
func parseXRGB(s string) (RGB, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return RGB{}, fmt.Errorf("term: bad rgb: spec %q", s)
	}
	var ch [3]uint8
	for i, part := range parts {
		if len(part) < 1 || len(part) > 4 {
			return RGB{}, fmt.Errorf("term: bad rgb: channel %q", part)
		}
		v, err := strconv.ParseUint(part, 16, 16)
		if err != nil {
			return RGB{}, fmt.Errorf("term: bad rgb: channel %q", part)
		}
		// Scale the channel to 8 bits with rounding: a 1-digit channel
		// maps 0xf to 0xff, a 4-digit channel maps 0x1000 to 0x10.
		maxVal := uint64(1)<<(4*len(part)) - 1
		ch[i] = uint8((v*255 + maxVal/2) / maxVal)
	}
	return RGB{ch[0], ch[1], ch[2]}, nil
}

func parseHash(s string) (RGB, error) {
	if len(s)%3 != 0 || len(s) == 0 || len(s) > 12 {
		return RGB{}, fmt.Errorf("term: bad hex color %q", s)
	}
	n := len(s) / 3
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseUint(s[i*n:(i+1)*n], 16, 16)
		if err != nil {
			return RGB{}, fmt.Errorf("term: bad hex color %q", s)
		}
		maxVal := uint64(1)<<(4*n) - 1
		ch[i] = uint8((v*255 + maxVal/2) / maxVal)
	}
	return RGB{ch[0], ch[1], ch[2]}, nil
}

func parseCSSRGB(s string) (RGB, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return RGB{}, fmt.Errorf("term: bad rgb() spec %q", s)
	}
	var ch [3]uint8
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || v < 0 || v > 255 {
			return RGB{}, fmt.Errorf("term: bad rgb() channel %q", part)
		}
		ch[i] = uint8(v)
	}
	return RGB{ch[0], ch[1], ch[2]}, nil
}
