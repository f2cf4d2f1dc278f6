package ui

import (
	"fmt"
	"strings"

	"github.com/olivier-w/cymascope/internal/util"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(m.headerLine())
	b.WriteString("\n\n")

	if frame := renderFrame(m.driver.Frame(), m.profile, "  "); frame != "" {
		b.WriteString(frame)
		b.WriteString("\n")
	}
	b.WriteString("\n  ")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	if m.showTuner {
		b.WriteString("  ")
		b.WriteString(m.tunerLine())
		b.WriteString("\n")
	}
	switch {
	case m.editingRef:
		b.WriteString("  ")
		b.WriteString(m.refInput.View())
		b.WriteString("  ")
		b.WriteString(helpStyle.Render("enter apply  esc cancel"))
		b.WriteString("\n")
	case m.notice != "":
		b.WriteString("  ")
		b.WriteString(helpStyle.Render(m.notice))
		b.WriteString("\n")
	default:
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(indentBlock(m.help.View(m.keys), "  "))
	b.WriteString("\n")
	return b.String()
}

func (m Model) headerLine() string {
	s := headerStyle.Render("cymascope")
	if label := m.metadata.Label(); label != "" {
		s += "  " + titleStyle.Render(label)
	}
	if m.queue != nil && m.queue.Len() > 1 {
		s += "  " + artistStyle.Render(fmt.Sprintf("%d/%d", m.queue.CurrentIndex()+1, m.queue.Len()))
	}
	if t, ok := m.audio.(track); ok && t.Duration() > 0 {
		elapsed, total := t.Position(), t.Duration()
		bar := renderProgressBar(elapsed.Seconds(), total.Seconds(), 24)
		s += "  " + artistStyle.Render(util.FormatDuration(elapsed)+" "+bar+" "+util.FormatDuration(total))
	}
	return s
}

func (m Model) statusLine() string {
	var parts []string
	parts = append(parts, m.stateLabel())

	if m.reading.Acquired && m.reading.Peak.Frequency > 0 {
		peak := "peak " + util.FormatHz(m.reading.Peak.Frequency)
		if m.reading.HasNote {
			peak += " " + m.reading.Note.String()
		}
		parts = append(parts, peak)
	}

	parts = append(parts,
		fmt.Sprintf("sens %.2f", m.driver.Sensitivity()),
		fmt.Sprintf("scale %.0f", m.driver.Scale()),
		string(m.driver.Ramp()),
		fmt.Sprintf("%d modes", len(m.driver.Modes())),
	)
	if m.driver.TestMode() {
		parts = append(parts, "pattern "+m.driver.TestPattern().String())
	}
	if icon := m.repeat.Icon(); icon != "" {
		parts = append(parts, icon)
	}
	return statusStyle.Render(strings.Join(parts, "  "))
}

func (m Model) stateLabel() string {
	switch {
	case m.opening:
		return "… opening"
	case m.audio != nil && m.audio.Paused():
		return "❚❚ paused"
	case m.audio != nil:
		return "▶ live"
	case m.driver.TestMode():
		return "◇ test"
	default:
		return "■ idle"
	}
}

func (m Model) tunerLine() string {
	ref := m.driver.Reference()
	cents, ok := m.tuner.cents(ref)
	if !ok {
		return statusStyle.Render(fmt.Sprintf("%-4s %s  A4 = %s", "--", renderCentsNeedle(0, 21), util.FormatHz(ref)))
	}

	style := offPitchStyle
	if inTune(cents) {
		style = noteStyle
	}
	note := style.Render(fmt.Sprintf("%-4s", m.tuner.note.String()))
	return note + " " + statusStyle.Render(fmt.Sprintf("%s %5s  %s  A4 = %s",
		renderCentsNeedle(cents, 21), formatCents(cents), util.FormatHz(m.tuner.freq), util.FormatHz(ref)))
}

func indentBlock(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		if lines[i] != "" {
			lines[i] = prefix + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}
