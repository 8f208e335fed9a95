// Package client runs one chat session from dial to farewell.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/svanichkin/mycord/conf"
	"github.com/svanichkin/mycord/device"
	"github.com/svanichkin/mycord/logs"
	"github.com/svanichkin/mycord/network"
	"github.com/svanichkin/mycord/network/tcp"
	"github.com/svanichkin/mycord/ui"
)

// Terminal is the full screen console the TUI draws on.
type Terminal interface {
	ui.Terminal
	Close() error
}

// Client wires one session. The zero values of the hooks use the real
// network and console.
type Client struct {
	Options *conf.Options
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer

	Dial         func(ctx context.Context, t network.Target) (net.Conn, error)
	OpenTerminal func() (Terminal, error)
}

// Run sets up logging and signal handling, then runs the session.
func Run(ctx context.Context, opts *conf.Options) error {
	_, closeLog, err := logs.Init(opts.Config.LogFile, opts.Verbose)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &Client{Options: opts, Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
	return c.Run(ctx)
}

func (c *Client) dial(ctx context.Context, t network.Target) (net.Conn, error) {
	if c.Dial != nil {
		return c.Dial(ctx, t)
	}
	d := &network.Dialer{Proxy: c.Options.Config.Proxy}
	return d.Dial(ctx, t)
}

func (c *Client) openTerminal() (Terminal, error) {
	if c.OpenTerminal != nil {
		return c.OpenTerminal()
	}
	return device.Open()
}

// Run connects, logs in and runs the foreground loop until the session ends.
// Errors are returned only for failures before the session exists.
func (c *Client) Run(ctx context.Context) error {
	o := c.Options
	theme, ok := ui.ThemeByName(o.Config.Theme)
	if !ok {
		return fmt.Errorf("unknown theme %q", o.Config.Theme)
	}

	if o.Config.TUI {
		fmt.Fprintln(c.Stdout, "Starting TUI mode...")
	}
	fmt.Fprintf(c.Stdout, "Connecting to %s...\n", o.Target)
	conn, err := c.dial(ctx, o.Target)
	if err != nil {
		return fmt.Errorf("connect %s: %w", o.Target, err)
	}
	sess := tcp.NewSession(conn, o.Username)
	if err := sess.Login(); err != nil {
		_ = sess.Shutdown()
		return fmt.Errorf("login: %w", err)
	}
	fmt.Fprintf(c.Stdout, "User: %s\nConnected to %s!\n", o.Username, o.Target)
	zap.L().Info("connected", zap.Stringer("target", o.Target), zap.String("user", o.Username))

	if o.Config.TUI {
		c.runTUI(ctx, sess, theme)
	} else {
		c.runLines(ctx, sess)
	}
	zap.L().Info("session ended", append(sess.Stats().Fields(), zap.String("reason", sess.EndReason()))...)
	return nil
}

func (c *Client) runLines(ctx context.Context, sess *tcp.Session) {
	o := c.Options
	printer := NewPrinter(c.Stdout, lipgloss.NewRenderer(c.Stdout), o.Username, o.Config.Quiet)
	themes := ui.NewThemeSwitch(ui.Spartan, nil)
	lines := &LineMode{
		In:       c.Stdin,
		Err:      c.Stderr,
		Outbox:   sess,
		Commands: ui.NewCommands(themes, printer, sess.Stop),
	}
	fmt.Fprintln(c.Stdout, "Type '!disconnect' to disconnect")

	c.supervise(ctx, sess, lines.Run, func(ctx context.Context) error {
		return tcp.NewReceiver(sess, printer, ui.StampLayout).Run(ctx)
	})
	c.farewell(ui.Spartan, "")
}

func (c *Client) runTUI(ctx context.Context, sess *tcp.Session, theme ui.Theme) {
	o := c.Options
	term, err := c.openTerminal()
	if err != nil {
		fmt.Fprintf(c.Stderr, "Error: %v\n", err)
		sess.Stop()
		c.teardown(sess)
		return
	}

	dirty := &ui.Dirty{}
	buf := ui.NewDisplayBuffer(ui.DefaultCapacity, dirty)
	themes := ui.NewThemeSwitch(theme, dirty)
	menu := ui.NewMenuGate(o.Config.StartMenu)
	painter := ui.NewPainter(lipgloss.NewRenderer(c.Stdout), themes, o.Username, o.Config.Quiet)
	painter.Sync = device.SupportsSyncOutput()
	tui := ui.NewTUI(ui.TUIOptions{
		Term:     term,
		Outbox:   sess,
		Buffer:   buf,
		Dirty:    dirty,
		Themes:   themes,
		Menu:     menu,
		Painter:  painter,
		Commands: ui.NewCommands(themes, buf, sess.Stop),
	})
	if !menu.Active() {
		tui.Boot()
	}
	announcer := ui.NewAnnouncer(sess, themes, menu, buf, o.Config.Announce.Min, o.Config.Announce.Max)

	c.supervise(ctx, sess, tui.Run,
		func(ctx context.Context) error {
			return tcp.NewReceiver(sess, buf, ui.ClockLayout).Run(ctx)
		},
		announcer.Run,
	)
	_ = term.Close()

	// the alt screen swallowed the last lines, so repeat why it ended
	c.farewell(themes.Active(), sess.EndReason())
}

// supervise runs the background loops next to the foreground one and tears
// the session down once the foreground returns or the session stops.
func (c *Client) supervise(ctx context.Context, sess *tcp.Session, fg func(context.Context) error, bg ...func(context.Context) error) {
	g, gctx := errgroup.WithContext(ctx)
	for _, fn := range bg {
		fn := fn
		g.Go(func() error { return fn(gctx) })
	}
	// signals only cancel ctx; this turns that into a stop
	g.Go(func() error {
		select {
		case <-gctx.Done():
			sess.Stop()
		case <-sess.Done():
		}
		return nil
	})

	if err := fg(gctx); err != nil {
		zap.L().Warn("input loop", zap.Error(err))
	}
	sess.Stop()
	c.teardown(sess)
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		zap.L().Warn("session loop", zap.Error(err))
	}
}

func (c *Client) teardown(sess *tcp.Session) {
	if err := sess.Logout(); err != nil {
		logs.LogV("[client] logout", zap.Error(err))
	}
	if err := sess.Shutdown(); err != nil {
		logs.LogV("[client] shutdown", zap.Error(err))
	}
}

func (c *Client) farewell(th ui.Theme, reason string) {
	r := lipgloss.NewRenderer(c.Stdout)
	if reason != "" {
		fmt.Fprintf(c.Stdout, "Disconnected: %s\n", ui.Sanitize(reason))
	}
	fmt.Fprintf(c.Stdout, "\n%s\n", r.NewStyle().Foreground(th.Palette().Border).Render(th.Farewell()))
}
