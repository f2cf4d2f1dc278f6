package ui

import (
	"strings"
	"testing"

	"github.com/olivier-w/cymascope/internal/chladni"
)

func uniformFrame(w, h int, c chladni.RGB, intensity float64) *chladni.Frame {
	f := chladni.NewFrame(w, h)
	for i := range f.Pix {
		f.Pix[i] = c
		f.Intensity[i] = intensity
	}
	return f
}

func TestRenderFrameDensityWithoutColor(t *testing.T) {
	f := uniformFrame(3, 4, chladni.RGB{}, 1)
	got := renderFrame(f, colorNone, "")
	if got != "@@@\n@@@" {
		t.Fatalf("unexpected render %q", got)
	}

	// Each character averages the two rows it covers.
	for x := range 3 {
		f.Intensity[x] = 0
	}
	lines := strings.Split(renderFrame(f, colorNone, "> "), "\n")
	if lines[0] != "> +++" || lines[1] != "> @@@" {
		t.Fatalf("unexpected lines %q", lines)
	}
}

func TestRenderFrameOddHeightUsesTopRow(t *testing.T) {
	f := uniformFrame(2, 3, chladni.RGB{}, 0)
	f.Intensity[4] = 1
	f.Intensity[5] = 1
	lines := strings.Split(renderFrame(f, colorNone, ""), "\n")
	if len(lines) != 2 || lines[1] != "@@" {
		t.Fatalf("unexpected lines %q", lines)
	}
}

func TestRenderFrameHalfBlocks(t *testing.T) {
	f := uniformFrame(4, 2, chladni.RGB{R: 10, G: 20, B: 30}, 0.5)
	got := renderFrame(f, colorTrueColor, "")

	if n := strings.Count(got, "▀"); n != 4 {
		t.Fatalf("expected 4 half blocks, got %d", n)
	}
	if n := strings.Count(got, "\x1b[38;2;10;20;30m"); n != 1 {
		t.Fatalf("expected the foreground to be set once, got %d", n)
	}
	if n := strings.Count(got, "\x1b[48;2;10;20;30m"); n != 1 {
		t.Fatalf("expected the background to be set once, got %d", n)
	}
	if !strings.HasSuffix(got, "\x1b[0m") {
		t.Fatalf("expected reset at end of line, got %q", got)
	}
}

func TestRenderFrameEmpty(t *testing.T) {
	if got := renderFrame(chladni.NewFrame(0, 0), colorTrueColor, "  "); got != "" {
		t.Fatalf("expected empty render, got %q", got)
	}
	if got := renderFrame(nil, colorNone, ""); got != "" {
		t.Fatalf("expected empty render for nil frame, got %q", got)
	}
}

func TestColorSequenceProfiles(t *testing.T) {
	red := chladni.RGB{R: 255}
	tests := []struct {
		profile colorProfile
		layer   layer
		want    string
	}{
		{colorTrueColor, layerFG, "\x1b[38;2;255;0;0m"},
		{colorTrueColor, layerBG, "\x1b[48;2;255;0;0m"},
		{colorANSI256, layerFG, "\x1b[38;5;196m"},
		{colorANSI256, layerBG, "\x1b[48;5;196m"},
		{colorANSI16, layerFG, "\x1b[31m"},
		{colorANSI16, layerBG, "\x1b[41m"},
		{colorNone, layerFG, ""},
	}
	for _, tt := range tests {
		if got := colorSequence(tt.profile, tt.layer, red); got != tt.want {
			t.Fatalf("profile %d layer %d: got %q, want %q", tt.profile, tt.layer, got, tt.want)
		}
	}
}

func TestFrameSide(t *testing.T) {
	tests := []struct {
		cols, rows, want int
	}{
		{80, 30, 60},
		{50, 30, 50},
		{10, -3, 0},
		{-4, 10, 0},
	}
	for _, tt := range tests {
		if got := frameSide(tt.cols, tt.rows); got != tt.want {
			t.Fatalf("frameSide(%d, %d) = %d, want %d", tt.cols, tt.rows, got, tt.want)
		}
	}
}
