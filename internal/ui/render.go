package ui

import (
	"fmt"
	"math"
	"os"
	"strings"
	"sync"

	"github.com/olivier-w/cymascope/internal/chladni"
)

type colorProfile uint8

const (
	colorNone colorProfile = iota
	colorANSI16
	colorANSI256
	colorTrueColor
)

type layer uint8

const (
	layerFG layer = iota
	layerBG
)

var (
	profileOnce sync.Once
	profile     colorProfile
	seqCache    sync.Map
)

func currentColorProfile() colorProfile {
	profileOnce.Do(func() {
		if _, disabled := os.LookupEnv("NO_COLOR"); disabled {
			profile = colorNone
			return
		}
		term := strings.ToLower(os.Getenv("TERM"))
		colorTerm := strings.ToLower(os.Getenv("COLORTERM"))
		switch {
		case strings.Contains(colorTerm, "truecolor"), strings.Contains(colorTerm, "24bit"):
			profile = colorTrueColor
		case strings.Contains(term, "256color"):
			profile = colorANSI256
		case term == "", term == "dumb":
			profile = colorNone
		default:
			profile = colorANSI16
		}
	})
	return profile
}

// ansiState skips escape sequences for colours already in effect.
type ansiState struct {
	profile colorProfile
	fg, bg  uint32
}

const noColor = ^uint32(0)

func newANSIState(p colorProfile) ansiState {
	return ansiState{profile: p, fg: noColor, bg: noColor}
}

func (s *ansiState) set(sb *strings.Builder, l layer, c chladni.RGB) {
	if s.profile == colorNone {
		return
	}
	key := uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
	cur := &s.fg
	if l == layerBG {
		cur = &s.bg
	}
	if key == *cur {
		return
	}
	sb.WriteString(colorSequence(s.profile, l, c))
	*cur = key
}

func (s *ansiState) reset(sb *strings.Builder) {
	if s.profile == colorNone || (s.fg == noColor && s.bg == noColor) {
		return
	}
	sb.WriteString("\x1b[0m")
	s.fg, s.bg = noColor, noColor
}

var ansi16Palette = []chladni.RGB{
	{R: 0, G: 0, B: 0},
	{R: 205, G: 49, B: 49},
	{R: 13, G: 188, B: 121},
	{R: 229, G: 229, B: 16},
	{R: 36, G: 114, B: 200},
	{R: 188, G: 63, B: 188},
	{R: 17, G: 168, B: 205},
	{R: 229, G: 229, B: 229},
}

func colorSequence(p colorProfile, l layer, c chladni.RGB) string {
	key := uint32(l)<<26 | uint32(p)<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
	if seq, ok := seqCache.Load(key); ok {
		return seq.(string)
	}

	base := 38
	if l == layerBG {
		base = 48
	}
	var seq string
	switch p {
	case colorTrueColor:
		seq = fmt.Sprintf("\x1b[%d;2;%d;%d;%dm", base, c.R, c.G, c.B)
	case colorANSI256:
		r := int(c.R) * 5 / 255
		g := int(c.G) * 5 / 255
		b := int(c.B) * 5 / 255
		seq = fmt.Sprintf("\x1b[%d;5;%dm", base, 16+36*r+6*g+b)
	case colorANSI16:
		best := 0
		bestDist := math.MaxFloat64
		for i, q := range ansi16Palette {
			dr := float64(c.R) - float64(q.R)
			dg := float64(c.G) - float64(q.G)
			db := float64(c.B) - float64(q.B)
			if d := dr*dr + dg*dg + db*db; d < bestDist {
				bestDist = d
				best = i
			}
		}
		seq = fmt.Sprintf("\x1b[%dm", base-8+best)
	}

	seqCache.Store(key, seq)
	return seq
}

// densityRamp stands in for colour on terminals without it.
const densityRamp = " .:-=+*#%@"

// renderFrame draws two frame rows per terminal line using upper half
// blocks: the foreground paints the top pixel, the background the bottom.
func renderFrame(f *chladni.Frame, p colorProfile, indent string) string {
	if f == nil || f.W == 0 || f.H == 0 {
		return ""
	}

	var sb strings.Builder
	sb.Grow((f.H + 1) / 2 * (len(indent) + f.W*24))
	st := newANSIState(p)
	for y := 0; y < f.H; y += 2 {
		sb.WriteString(indent)
		for x := range f.W {
			top := y*f.W + x
			if p == colorNone {
				v := f.Intensity[top]
				if y+1 < f.H {
					v = (v + f.Intensity[top+f.W]) / 2
				}
				sb.WriteByte(densityRamp[int(math.Round(v*float64(len(densityRamp)-1)))])
				continue
			}
			st.set(&sb, layerFG, f.Pix[top])
			if y+1 < f.H {
				st.set(&sb, layerBG, f.Pix[top+f.W])
			}
			sb.WriteString("▀")
		}
		st.reset(&sb)
		if y+2 < f.H {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// frameSide picks the square frame edge, in pixels, that fits a terminal
// area of cols x rows cells.
func frameSide(cols, rows int) int {
	return max(0, min(cols, 2*rows))
}
