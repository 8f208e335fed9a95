package ui

import (
	"hash/fnv"
	"math/rand"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Theme names as shown on the status line.
const (
	SpartanName   = "SPARTAN"
	GravemindName = "GRAVEMIND"
)

// Palette holds the colors a theme paints the chrome and lines with.
type Palette struct {
	Border lipgloss.TerminalColor
	Text   lipgloss.TerminalColor
	Name   lipgloss.TerminalColor
	System lipgloss.TerminalColor
	Dim    lipgloss.TerminalColor
	Alert  lipgloss.TerminalColor
}

// Theme is a presentation strategy. Implementations are stateless and safe
// for concurrent use.
type Theme interface {
	Name() string
	// Title is the network banner used by the start menu.
	Title() string
	Header(user string) string
	Prompt() string
	// Motto is the one-liner shown under the start menu banner.
	Motto() string
	Quotes() []string
	BootLines() []DisplayLine
	// Voice authors the theme's own system lines.
	Voice() string
	Filter(text string) string
	Palette() Palette
	Farewell() string
}

var (
	colorRed         = lipgloss.ANSIColor(1)
	colorGreen       = lipgloss.ANSIColor(2)
	colorYellow      = lipgloss.ANSIColor(3)
	colorDim         = lipgloss.ANSIColor(8)
	colorBrightGreen = lipgloss.ANSIColor(10)
	colorBrightCyan  = lipgloss.ANSIColor(14)
)

type spartan struct{}

// Spartan is the default UNSC theme.
var Spartan Theme = spartan{}

func (spartan) Name() string  { return SpartanName }
func (spartan) Title() string { return "UNSC SECURE NETWORK" }
func (spartan) Header(user string) string {
	return " UNSC NETWORK // SPARTAN: " + user + " "
}
func (spartan) Prompt() string            { return " SPARTAN> " }
func (spartan) Motto() string             { return "Spartans never die..." }
func (spartan) Quotes() []string          { return nil }
func (spartan) Voice() string             { return "UNSC" }
func (spartan) Filter(text string) string { return text }
func (spartan) Farewell() string          { return "Spartans never die..." }

func (spartan) BootLines() []DisplayLine {
	return []DisplayLine{
		SystemLine("UNSC", ">>> SPARTAN-III NEURAL INTERFACE INITIALIZED"),
		SystemLine("UNSC", ">>> MJOLNIR ARMOR SYSTEMS ONLINE"),
		SystemLine("UNSC", ">>> NEURAL LINK STABLE"),
		SystemLine("CORTANA", "I'll be with you every step of the way."),
		SystemLine("UNSC", ">>> SPARTAN COMMUNICATIONS ONLINE"),
	}
}

func (spartan) Palette() Palette {
	return Palette{
		Border: colorBrightCyan,
		Text:   colorBrightCyan,
		Name:   colorBrightCyan,
		System: colorYellow,
		Dim:    colorDim,
		Alert:  colorRed,
	}
}

type gravemind struct{}

// Gravemind is the Flood theme. It corrupts received text and speaks up on
// its own through the Announcer.
var Gravemind Theme = gravemind{}

var gravemindQuotes = []string{
	"I am a monument to all your sins.",
	"There is much talk, and I have listened.",
	"Now I shall talk, and you shall listen.",
	"The nodes will join. They always do.",
	"Your will is not your own. Not for long.",
	"Signal accepted. Pattern spreading.",
	"Do not be afraid. I am peace. I am salvation.",
	"We exist together now. Two corpses in one grave.",
	"Resignation is my virtue. Like water I ebb and flow.",
	"Time has taught me patience.",
	"Child of my enemy, why have you come?",
	"This one is machine and nerve, and has its mind concluded.",
	"Fate had us meet as foes, but this ring will make us brothers.",
	"I have beaten fleets of thousands! Consumed a galaxy of flesh and mind and bone!",
	"We trade one villain for another.",
	"Do I take life or give it? Who is victim and who is foe?",
	"I am the heart of this world. Its beat thunders through my veins.",
	"Your history is an appalling chronicle of betrayal.",
}

func (gravemind) Name() string  { return GravemindName }
func (gravemind) Title() string { return "GRAVEMIND NETWORK" }
func (gravemind) Header(user string) string {
	return " GRAVEMIND NETWORK // USER: " + user + " "
}
func (gravemind) Prompt() string   { return " GRAVEMIND> " }
func (gravemind) Motto() string    { return "I am a monument to all your sins." }
func (gravemind) Quotes() []string { return gravemindQuotes }
func (gravemind) Voice() string    { return "GRAVEMIND" }
func (gravemind) Farewell() string { return "Spartans never die..." }

func (gravemind) BootLines() []DisplayLine {
	return []DisplayLine{
		SystemLine("GRAVEMIND", ">>> NEURAL SIGNAL DETECTED"),
		SystemLine("GRAVEMIND", ">>> FLOOD SPORE INTEGRATION INITIATED"),
		SystemLine("GRAVEMIND", ">>> MEMORY BLEED CONFIRMED"),
		SystemLine("GRAVEMIND", ">>> CORRUPTION STABLE. SPREADING..."),
		SystemLine("GRAVEMIND", "I am a monument to all your sins."),
		SystemLine("GRAVEMIND", ">>> GRAVEMIND NEURAL NETWORK ONLINE"),
	}
}

func (gravemind) Palette() Palette {
	return Palette{
		Border: colorGreen,
		Text:   colorBrightGreen,
		Name:   colorGreen,
		System: colorYellow,
		Dim:    colorDim,
		Alert:  colorRed,
	}
}

// Filter lowercases text and drops a '.' after roughly one alphanumeric in
// six. The randomness is seeded from the text so a line looks the same on
// every redraw.
func (gravemind) Filter(text string) string {
	h := fnv.New64a()
	h.Write([]byte(text))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	var sb strings.Builder
	sb.Grow(len(text) + len(text)/4)
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		sb.WriteByte(c)
		if isAlnum(c) && rng.Intn(6) == 0 {
			sb.WriteByte('.')
		}
	}
	return sb.String()
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// ThemeByName resolves a configured theme name, case-insensitively.
func ThemeByName(name string) (Theme, bool) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", SpartanName:
		return Spartan, true
	case GravemindName:
		return Gravemind, true
	}
	return nil, false
}

// ThemeSwitch holds the active theme. The input loop and local commands
// write it; the renderer and the announcer read it.
type ThemeSwitch struct {
	mu     sync.RWMutex
	active Theme
	dirty  *Dirty
}

func NewThemeSwitch(initial Theme, dirty *Dirty) *ThemeSwitch {
	if initial == nil {
		initial = Spartan
	}
	return &ThemeSwitch{active: initial, dirty: dirty}
}

func (s *ThemeSwitch) Active() Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *ThemeSwitch) Set(t Theme) {
	s.mu.Lock()
	s.active = t
	s.mu.Unlock()
	s.dirty.Mark()
}

// Toggle flips between Spartan and Gravemind and returns the new theme.
func (s *ThemeSwitch) Toggle() Theme {
	s.mu.Lock()
	if s.active.Name() == GravemindName {
		s.active = Spartan
	} else {
		s.active = Gravemind
	}
	t := s.active
	s.mu.Unlock()
	s.dirty.Mark()
	return t
}
