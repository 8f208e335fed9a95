package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Screen layout. Everything that is not the message view is chrome: top
// border, header, separator, input separator, input line, bottom border and
// status line.
const (
	ChromeRows   = 7
	MinCols      = 40
	MinRows      = 12
	FallbackCols = 80
	FallbackRows = 24
)

const (
	seqSyncBegin = "\x1b[?2026h"
	seqSyncEnd   = "\x1b[?2026l"
	seqReset     = "\x1b[0m"
)

// Geometry applies the fallback for an unknown size and the minimum clamp.
func Geometry(cols, rows int) (int, int) {
	if cols <= 0 || rows <= 0 {
		cols, rows = FallbackCols, FallbackRows
	}
	return max(cols, MinCols), max(rows, MinRows)
}

// MessageHeight is the number of rows left for messages.
func MessageHeight(rows int) int {
	return rows - ChromeRows
}

// Painter formats frames. It holds no screen state: every call works on the
// snapshot it is given.
type Painter struct {
	// Sync wraps frames in synchronized output mode.
	Sync bool

	r      *lipgloss.Renderer
	themes *ThemeSwitch
	user   string
	quiet  bool
}

func NewPainter(r *lipgloss.Renderer, themes *ThemeSwitch, user string, quiet bool) *Painter {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	return &Painter{Sync: true, r: r, themes: themes, user: user, quiet: quiet}
}

type segment struct {
	text  string
	style lipgloss.Style
}

// fit renders segments left to right until width cells are used and returns
// the styled text and the number of cells written.
func fit(segs []segment, width int) (string, int) {
	var sb strings.Builder
	used := 0
	for _, s := range segs {
		if used >= width {
			break
		}
		t := s.text
		if len(t) > width-used {
			t = t[:width-used]
		}
		if t == "" {
			continue
		}
		sb.WriteString(s.style.Render(t))
		used += len(t)
	}
	return sb.String(), used
}

// Sanitize replaces anything outside printable ASCII so server text can
// neither break the layout nor smuggle escape sequences.
func Sanitize(s string) string {
	clean := true
	for i := 0; i < len(s); i++ {
		if s[i] < 32 || s[i] > 126 {
			clean = false
			break
		}
	}
	if clean {
		return s
	}
	b := []byte(s)
	for i, c := range b {
		if c < 32 || c > 126 {
			b[i] = '?'
		}
	}
	return string(b)
}

// Rows formats the full screen as rows of styled text, top to bottom.
func (p *Painter) Rows(cols, rows int, v View, input string) []string {
	th := p.themes.Active()
	pal := th.Palette()
	border := p.r.NewStyle().Foreground(pal.Border)
	text := p.r.NewStyle().Foreground(pal.Text)
	inner := cols - 2
	rule := border.Render("+" + strings.Repeat("-", inner) + "+")

	out := make([]string, 0, rows)
	out = append(out, rule)
	out = append(out, p.boxed(border, []segment{{th.Header(p.user), text.Bold(true)}}, inner))
	out = append(out, rule)

	msgH := MessageHeight(rows)
	for i := 0; i < msgH; i++ {
		var segs []segment
		if i < len(v.Lines) {
			segs = p.lineSegments(th, v.Lines[i])
		}
		out = append(out, p.boxed(border, segs, inner))
	}

	out = append(out, rule)
	prompt := th.Prompt()
	avail := max(inner-len(prompt), 0)
	shown := input
	if len(shown) > avail {
		shown = shown[len(shown)-avail:]
	}
	out = append(out, p.boxed(border, []segment{{prompt, text}, {shown, text}}, inner))
	out = append(out, rule)

	status := fmt.Sprintf(" Messages: %d | Scroll: %d | Mode: %s | !help for commands", v.Total, v.Scroll, th.Name())
	if len(status) > cols {
		status = status[:cols]
	}
	out = append(out, p.r.NewStyle().Foreground(pal.Dim).Render(status))
	return out
}

func (p *Painter) boxed(border lipgloss.Style, segs []segment, inner int) string {
	body, used := fit(segs, inner)
	return border.Render("|") + body + strings.Repeat(" ", inner-used) + border.Render("|")
}

func (p *Painter) lineSegments(th Theme, l DisplayLine) []segment {
	pal := th.Palette()
	st := func(c lipgloss.TerminalColor) lipgloss.Style { return p.r.NewStyle().Foreground(c) }
	stamp := "[" + Sanitize(l.Time) + "]"
	author := Sanitize(l.Author)
	body := Sanitize(l.Body)

	switch l.Kind {
	case LineMessage:
		segs := []segment{
			{stamp, st(pal.Dim)},
			{" " + author, st(pal.Name)},
			{": ", st(pal.Text)},
		}
		return append(segs, p.mentions(th.Filter(body), st(pal.Text), st(pal.Alert).Bold(true))...)
	case LineSystem:
		return []segment{
			{"[", st(pal.System)},
			{Sanitize(l.Time), st(pal.Dim)},
			{"] " + author + ": " + body, st(pal.System)},
		}
	case LineDisconnect:
		return []segment{{stamp + " " + author + ": " + body, st(pal.Alert)}}
	case LineError:
		return []segment{{stamp + " " + author + ": " + body, st(pal.Alert).Bold(true)}}
	default:
		return []segment{{stamp + " " + author + ": " + body, st(pal.Text)}}
	}
}

// mentions splits body around "@user" so the mention can be highlighted.
func (p *Painter) mentions(body string, plain, hl lipgloss.Style) []segment {
	if p.quiet || p.user == "" {
		return []segment{{body, plain}}
	}
	tag := "@" + p.user
	var segs []segment
	for {
		i := strings.Index(body, tag)
		if i < 0 {
			break
		}
		if i > 0 {
			segs = append(segs, segment{body[:i], plain})
		}
		segs = append(segs, segment{tag, hl})
		body = body[i+len(tag):]
	}
	if body != "" {
		segs = append(segs, segment{body, plain})
	}
	return segs
}

// Frame renders the chat screen as one write, cursor parked after the input.
func (p *Painter) Frame(cols, rows int, v View, input string) string {
	lines := p.Rows(cols, rows, v, input)
	var sb strings.Builder
	p.syncBegin(&sb)
	for i, l := range lines {
		fmt.Fprintf(&sb, "\x1b[%d;1H%s\x1b[K", i+1, l)
	}
	sb.WriteString(seqReset)

	prompt := p.themes.Active().Prompt()
	shown := min(len(input), max(cols-2-len(prompt), 0))
	col := min(2+len(prompt)+shown, cols-1)
	fmt.Fprintf(&sb, "\x1b[%d;%dH", rows-2, col)
	p.syncEnd(&sb)
	return sb.String()
}

var haloRing = []string{
	"            _______________            ",
	"        .-'                 '-.        ",
	"      .'                       '.      ",
	"     /    INSTALLATION  04      \\     ",
	"    |                             |    ",
	"     \\                           /     ",
	"      '.                       .'      ",
	"        '-._________________.-'        ",
}

type placement struct {
	row, col int
	text     string
}

// menu lays out the start menu around the screen center.
func (p *Painter) menu(cols, rows int) []placement {
	th := p.themes.Active()
	pal := th.Palette()
	accent := p.r.NewStyle().Foreground(pal.Border)
	hint := p.r.NewStyle().Foreground(pal.System)
	dim := p.r.NewStyle().Foreground(pal.Dim)

	center := cols / 2
	row := max((rows-12)/2, 2)
	var out []placement
	at := func(col int, s lipgloss.Style, text string) {
		out = append(out, placement{row: row, col: max(col, 1), text: s.Render(text)})
		row++
	}
	centered := func(s lipgloss.Style, text string) { at(center-len(text)/2, s, text) }

	at(center-21, accent, "+==========================================+")
	at(center-21, accent, "|                                          |")
	at(center-21, accent, "|     HALO COMMUNICATIONS TERMINAL         |")
	at(center-21, accent, "|                                          |")
	at(center-21, accent, "+==========================================+")
	row++
	centered(accent, ">>> "+th.Title()+" <<<")
	row++
	at(center-21, accent, "==========================================")
	row++
	centered(accent, th.Motto())
	row++
	centered(hint, "Press ENTER to continue")
	row++
	centered(dim, "Connected as: "+Sanitize(p.user))
	row++
	centered(dim, "Press ESC to switch mode | Q to quit")
	row++
	for _, l := range haloRing {
		at(center-20, accent, l)
	}
	return out
}

// Menu renders the start menu screen.
func (p *Painter) Menu(cols, rows int) string {
	var sb strings.Builder
	p.syncBegin(&sb)
	sb.WriteString("\x1b[2J\x1b[H")
	for _, pl := range p.menu(cols, rows) {
		if pl.row > rows {
			break
		}
		fmt.Fprintf(&sb, "\x1b[%d;%dH%s", pl.row, pl.col, pl.text)
	}
	sb.WriteString(seqReset)
	p.syncEnd(&sb)
	return sb.String()
}

func (p *Painter) syncBegin(sb *strings.Builder) {
	if p.Sync {
		sb.WriteString(seqSyncBegin)
	}
}

func (p *Painter) syncEnd(sb *strings.Builder) {
	if p.Sync {
		sb.WriteString(seqSyncEnd)
	}
}
