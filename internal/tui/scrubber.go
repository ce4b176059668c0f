// Package tui provides the terminal timeline scrubber. It replays a snapshot
// sequence that has already been emitted and never re-enters the VM.
package tui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"codonvm/internal/trace"
	"codonvm/internal/vm"
)

// Scrubber is a table of snapshots with a detail pane for the selected one
type Scrubber struct {
	app    *tview.Application
	table  *tview.Table
	detail *tview.TextView
	status *tview.TextView
	root   *tview.Flex

	theme    Theme
	title    string
	states   []vm.State
	fault    error
	selected int
}

// NewScrubber builds the views for states. fault is the error that ended the
// run, if any, and is shown in the status line.
func NewScrubber(title string, states []vm.State, fault error, theme Theme) *Scrubber {
	s := &Scrubber{
		app:    tview.NewApplication(),
		theme:  theme,
		title:  title,
		states: states,
		fault:  fault,
	}

	s.table = tview.NewTable().
		SetBorders(false).
		SetSelectable(true, false).
		SetFixed(1, 0).
		SetSelectedStyle(tcell.StyleDefault.Background(theme.SelectedBg).Foreground(theme.SelectedFg))
	s.table.SetBackgroundColor(theme.Background)
	s.table.SetBorder(true).
		SetBorderColor(theme.Border).
		SetTitleColor(theme.Title).
		SetTitle(" " + title + " ")

	s.detail = tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false)
	s.detail.SetBackgroundColor(theme.Background)
	s.detail.SetTextColor(theme.Foreground)
	s.detail.SetBorder(true).
		SetBorderColor(theme.Border).
		SetTitleColor(theme.Title).
		SetTitle(" Snapshot ")

	s.status = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft).
		SetWrap(false)
	s.status.SetBackgroundColor(theme.Background)
	s.status.SetTextColor(theme.Foreground)

	s.fillTable()
	s.table.SetSelectionChangedFunc(func(row, _ int) {
		s.show(row - 1)
	})
	s.table.SetInputCapture(s.handleKey)

	body := tview.NewFlex().
		AddItem(s.table, 0, 3, true).
		AddItem(s.detail, 0, 2, false)
	s.root = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(body, 0, 1, true).
		AddItem(s.status, 1, 0, false)

	s.app.SetRoot(s.root, true).SetFocus(s.table)
	if len(states) > 0 {
		s.Select(0)
	} else {
		s.show(-1)
	}
	return s
}

func (s *Scrubber) fillTable() {
	for col, name := range trace.Columns {
		s.table.SetCell(0, col, tview.NewTableCell(name).
			SetTextColor(s.theme.Header).
			SetSelectable(false))
	}
	for i, st := range s.states {
		for col, text := range trace.Row(i, st) {
			cell := tview.NewTableCell(text).SetTextColor(s.theme.Foreground)
			if col == 3 && st.LastOpcode.IsDraw() {
				cell.SetTextColor(s.theme.Draw)
			}
			s.table.SetCell(i+1, col, cell)
		}
	}
}

// Select moves the cursor to snapshot i, clamped to the sequence
func (s *Scrubber) Select(i int) {
	if len(s.states) == 0 {
		return
	}
	if i < 0 {
		i = 0
	}
	if i >= len(s.states) {
		i = len(s.states) - 1
	}
	s.table.Select(i+1, 0)
	s.show(i)
}

// Selected returns the index of the selected snapshot
func (s *Scrubber) Selected() int {
	return s.selected
}

func (s *Scrubber) show(i int) {
	if i < 0 || i >= len(s.states) {
		s.detail.SetText("no snapshots")
		s.status.SetText(s.statusLine())
		return
	}
	s.selected = i
	s.detail.SetText(Detail(s.states[i], s.theme))
	s.status.SetText(s.statusLine())
}

func (s *Scrubber) statusLine() string {
	var b strings.Builder
	fmt.Fprintf(&b, " %d/%d", s.selected+1, len(s.states))
	if s.fault != nil {
		fmt.Fprintf(&b, " | %s%s[-]", tag(s.theme.Fault), tview.Escape(s.fault.Error()))
	} else {
		fmt.Fprintf(&b, " | %shalted[-]", tag(s.theme.Halted))
	}
	b.WriteString(" | j/k move  g/G ends  q quit")
	return b.String()
}

// handleKey adds vi-style movement on top of the table's arrow keys
func (s *Scrubber) handleKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyEscape:
		s.app.Stop()
		return nil
	case tcell.KeyHome:
		s.Select(0)
		return nil
	case tcell.KeyEnd:
		s.Select(len(s.states) - 1)
		return nil
	case tcell.KeyRune:
		switch event.Rune() {
		case 'q':
			s.app.Stop()
			return nil
		case 'j':
			s.Select(s.selected + 1)
			return nil
		case 'k':
			s.Select(s.selected - 1)
			return nil
		case 'g':
			s.Select(0)
			return nil
		case 'G':
			s.Select(len(s.states) - 1)
			return nil
		}
	}
	return event
}

// Run blocks until the user quits
func (s *Scrubber) Run() error {
	return s.app.Run()
}

// Detail describes every register of one snapshot, with tview colour tags
func Detail(st vm.State, theme Theme) string {
	var b strings.Builder
	label := func(name string) {
		fmt.Fprintf(&b, "%s%-12s[-] ", tag(theme.Header), name)
	}

	opcode := "-"
	if st.Executed() {
		opcode = st.LastOpcode.String()
	}
	label("ip")
	fmt.Fprintf(&b, "%d\n", st.IP)
	label("codon")
	fmt.Fprintf(&b, "%s %s\n", st.LastCodon, opcode)
	label("instructions")
	fmt.Fprintf(&b, "%d\n", st.InstructionCount)
	label("position")
	fmt.Fprintf(&b, "(%.2f, %.2f)\n", st.Position.X, st.Position.Y)
	label("rotation")
	fmt.Fprintf(&b, "%.2f\n", st.Rotation)
	label("scale")
	fmt.Fprintf(&b, "%.3f\n", st.Scale)
	label("color")
	fmt.Fprintf(&b, "%s\n", tview.Escape(st.Color.String()))
	label("stack")
	fmt.Fprintf(&b, "%s\n", tview.Escape(trace.FormatStack(st.Stack)))
	label("saved")
	fmt.Fprintf(&b, "%d", len(st.StateStack))
	for i, saved := range st.StateStack {
		fmt.Fprintf(&b, "\n  #%d (%.2f, %.2f) rot %.2f scale %.3f", i, saved.Position.X, saved.Position.Y, saved.Rotation, saved.Scale)
	}
	return b.String()
}
