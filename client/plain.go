package client

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/svanichkin/mycord/logs"
	"github.com/svanichkin/mycord/ui"
)

// maxLine bounds one stdin line; longer input is rejected by validation
// rather than split.
const maxLine = 1 << 20

// Printer is the line mode sink: every classified line is written straight
// to out.
type Printer struct {
	mu    sync.Mutex
	out   io.Writer
	user  string
	quiet bool

	gray, red, name, alert lipgloss.Style
}

func NewPrinter(out io.Writer, r *lipgloss.Renderer, user string, quiet bool) *Printer {
	if r == nil {
		r = lipgloss.NewRenderer(out)
	}
	return &Printer{
		out:   out,
		user:  user,
		quiet: quiet,
		gray:  r.NewStyle().Foreground(lipgloss.ANSIColor(8)),
		red:   r.NewStyle().Foreground(lipgloss.ANSIColor(1)),
		name:  r.NewStyle().Bold(true),
		alert: r.NewStyle().Foreground(lipgloss.ANSIColor(1)).Bold(true),
	}
}

func (p *Printer) Deliver(l ui.DisplayLine) {
	body := ui.Sanitize(l.Body)
	var s string
	switch l.Kind {
	case ui.LineMessage:
		s = "[" + ui.Sanitize(l.Time) + "] " + p.name.Render(ui.Sanitize(l.Author)) + ": " + p.mentions(body)
	case ui.LineDisconnect:
		s = p.red.Render("[DISCONNECT] " + body)
	case ui.LineError:
		s = p.red.Render("[ERROR] " + body)
	default:
		s = p.gray.Render("[SYSTEM] " + body)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, s)
}

// mentions rings the bell and highlights every "@user".
func (p *Printer) mentions(body string) string {
	if p.quiet || p.user == "" {
		return body
	}
	tag := "@" + p.user
	if !strings.Contains(body, tag) {
		return body
	}
	return strings.ReplaceAll(body, tag, "\a"+p.alert.Render(tag))
}

// LineMode reads outgoing messages from a line oriented stdin.
type LineMode struct {
	In       io.Reader
	Err      io.Writer
	Outbox   ui.Outbox
	Commands *ui.Commands
}

// Run forwards lines until stdin ends, the session stops or ctx is done.
// End of input is a voluntary exit.
func (m *LineMode) Run(ctx context.Context) error {
	lines := make(chan string)
	var scanErr error
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(m.In)
		sc.Buffer(make([]byte, 0, 4096), maxLine)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-m.Outbox.Done():
				return
			}
		}
		scanErr = sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-m.Outbox.Done():
			return nil
		case text, ok := <-lines:
			if !ok {
				m.Outbox.Stop()
				if scanErr != nil {
					return fmt.Errorf("read stdin: %w", scanErr)
				}
				return nil
			}
			m.handle(text)
		}
	}
}

func (m *LineMode) handle(text string) {
	if m.Commands.Dispatch(text) {
		return
	}
	if err := ui.ValidateOutgoing(text); err != nil {
		fmt.Fprintf(m.Err, "Error: %v\n", err)
		return
	}
	if err := m.Outbox.SendText(text); err != nil {
		logs.LogV("[lines] send failed", zap.Error(err))
		fmt.Fprintf(m.Err, "Write error: %v\n", err)
		m.Outbox.Stop()
	}
}
