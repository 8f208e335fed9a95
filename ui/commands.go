package ui

// HelpText lists the local commands.
const HelpText = "Commands: !help !gravemind !spartan !disconnect"

// Commands is the table of local, never-transmitted commands. Lookup is an
// exact, case-sensitive match on the whole input.
type Commands struct {
	themes *ThemeSwitch
	sink   Sink
	stop   func()
	table  map[string]func()
}

// NewCommands builds the table. sink receives feedback lines; stop ends the
// session voluntarily, so LOGOUT is still sent.
func NewCommands(themes *ThemeSwitch, sink Sink, stop func()) *Commands {
	c := &Commands{themes: themes, sink: sink, stop: stop}
	c.table = map[string]func(){
		"!help":       c.help,
		"!disconnect": c.disconnect,
		"!disconect":  c.disconnect,
		"!gravemind":  func() { c.switchTo(Gravemind) },
		"!spartan":    func() { c.switchTo(Spartan) },
	}
	return c
}

// IsCommand reports whether text names a local command.
func (c *Commands) IsCommand(text string) bool {
	_, ok := c.table[text]
	return ok
}

// Dispatch runs the command named by text and reports whether there was one.
func (c *Commands) Dispatch(text string) bool {
	fn, ok := c.table[text]
	if !ok {
		return false
	}
	fn()
	return true
}

func (c *Commands) help() {
	c.sink.Deliver(SystemLine("HELP", HelpText))
}

func (c *Commands) disconnect() {
	if c.stop != nil {
		c.stop()
	}
}

func (c *Commands) switchTo(t Theme) {
	c.themes.Set(t)
	switch t.Name() {
	case GravemindName:
		c.sink.Deliver(SystemLine(t.Voice(), "Switching to Gravemind interface..."))
	default:
		c.sink.Deliver(SystemLine(t.Voice(), "Switching to Spartan interface..."))
	}
}
