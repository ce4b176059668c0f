package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/samber/lo"
)

// Standard ANSI 16-colour palette with fixed hex values, so the scrubber
// looks the same whatever the terminal's own scheme is
var (
	DOSBlack     = tcell.NewHexColor(0x000000)
	DOSRed       = tcell.NewHexColor(0x800000)
	DOSGreen     = tcell.NewHexColor(0x008000)
	DOSBlue      = tcell.NewHexColor(0x000080)
	DOSCyan      = tcell.NewHexColor(0x008080)
	DOSLightGray = tcell.NewHexColor(0xC0C0C0)

	DOSDarkGray   = tcell.NewHexColor(0x808080)
	DOSLightRed   = tcell.NewHexColor(0xFF0000)
	DOSLightGreen = tcell.NewHexColor(0x00FF00)
	DOSYellow     = tcell.NewHexColor(0xFFFF00)
	DOSLightCyan  = tcell.NewHexColor(0x00FFFF)
	DOSWhite      = tcell.NewHexColor(0xFFFFFF)
)

// Theme is the colour scheme of the scrubber
type Theme struct {
	Name       string
	Background tcell.Color
	Foreground tcell.Color
	Border     tcell.Color
	Title      tcell.Color
	Header     tcell.Color // column headings and detail labels
	Draw       tcell.Color // opcode cell of drawing instructions
	SelectedBg tcell.Color
	SelectedFg tcell.Color
	Halted     tcell.Color
	Fault      tcell.Color
}

// TelixTheme is the classic DOS terminal look
var TelixTheme = Theme{
	Name:       "telix",
	Background: DOSBlue,
	Foreground: DOSLightGray,
	Border:     DOSWhite,
	Title:      DOSYellow,
	Header:     DOSYellow,
	Draw:       DOSLightCyan,
	SelectedBg: DOSCyan,
	SelectedFg: DOSWhite,
	Halted:     DOSLightGreen,
	Fault:      DOSLightRed,
}

// PlainTheme keeps the terminal background
var PlainTheme = Theme{
	Name:       "plain",
	Background: tcell.ColorDefault,
	Foreground: DOSLightGray,
	Border:     DOSDarkGray,
	Title:      DOSWhite,
	Header:     DOSYellow,
	Draw:       DOSLightCyan,
	SelectedBg: DOSDarkGray,
	SelectedFg: DOSWhite,
	Halted:     DOSGreen,
	Fault:      DOSRed,
}

var themes = []Theme{TelixTheme, PlainTheme}

// ThemeNames lists the built-in themes
func ThemeNames() []string {
	return lo.Map(themes, func(t Theme, _ int) string { return t.Name })
}

// ThemeByName finds a built-in theme
func ThemeByName(name string) (Theme, error) {
	t, ok := lo.Find(themes, func(t Theme) bool { return t.Name == name })
	if !ok {
		return Theme{}, fmt.Errorf("unknown theme %q", name)
	}
	return t, nil
}

// tag returns the tview colour tag for c
func tag(c tcell.Color) string {
	if c == tcell.ColorDefault {
		return "[-]"
	}
	return fmt.Sprintf("[#%06x]", c.Hex())
}
