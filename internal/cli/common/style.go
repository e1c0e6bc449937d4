package common

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

type Tone uint8

const (
	TonePlain Tone = iota
	ToneOK
	ToneWarn
	ToneError
	ToneMuted
)

// Styler renders text for one writer. A disabled styler returns text unchanged.
type Styler struct {
	enabled  bool
	renderer *lipgloss.Renderer
}

func NewStyler(writer io.Writer, flags *GlobalFlags) Styler {
	if !UseColor(writer, flags) {
		return Styler{}
	}
	return Styler{enabled: true, renderer: lipgloss.NewRenderer(writer)}
}

func (s Styler) Enabled() bool {
	return s.enabled
}

func (s Styler) Heading(text string) string {
	if !s.enabled {
		return text
	}
	return s.renderer.NewStyle().Bold(true).Underline(true).Render(text)
}

func (s Styler) Tone(tone Tone, text string) string {
	if !s.enabled {
		return text
	}

	style := s.renderer.NewStyle()
	switch tone {
	case ToneOK:
		style = style.Foreground(lipgloss.Color("2"))
	case ToneWarn:
		style = style.Foreground(lipgloss.Color("3"))
	case ToneError:
		style = style.Foreground(lipgloss.Color("1")).Bold(true)
	case ToneMuted:
		style = style.Faint(true)
	default:
		return text
	}
	return style.Render(text)
}
