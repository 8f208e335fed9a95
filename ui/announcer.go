package ui

import (
	"context"
	"math/rand"
	"time"

	"github.com/svanichkin/mycord/logs"
	"go.uber.org/zap"
)

// Default announcer cadence.
const (
	DefaultAnnounceMin = 5 * time.Second
	DefaultAnnounceMax = 9 * time.Second
)

// Lifecycle is the part of a session the UI loops watch and end.
type Lifecycle interface {
	Running() bool
	Done() <-chan struct{}
	Stop()
}

// Announcer posts an ambient quote from the active theme every few seconds.
// It only speaks while the trigger theme is active and the start menu is
// gone, and it never touches input or the socket.
type Announcer struct {
	life    Lifecycle
	themes  *ThemeSwitch
	menu    *MenuGate
	sink    Sink
	min     time.Duration
	max     time.Duration
	trigger string
	rng     *rand.Rand
}

func NewAnnouncer(life Lifecycle, themes *ThemeSwitch, menu *MenuGate, sink Sink, minWait, maxWait time.Duration) *Announcer {
	if minWait <= 0 {
		minWait = DefaultAnnounceMin
	}
	if maxWait < minWait {
		maxWait = max(DefaultAnnounceMax, minWait)
	}
	return &Announcer{
		life:    life,
		themes:  themes,
		menu:    menu,
		sink:    sink,
		min:     minWait,
		max:     maxWait,
		trigger: GravemindName,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (a *Announcer) interval() time.Duration {
	span := int64(a.max - a.min)
	if span <= 0 {
		return a.min
	}
	return a.min + time.Duration(a.rng.Int63n(span+1))
}

// Run loops until ctx is cancelled or the session stops.
func (a *Announcer) Run(ctx context.Context) error {
	defer logs.LogV("[announce] stopped")
	for {
		t := time.NewTimer(a.interval())
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-a.life.Done():
			t.Stop()
			return nil
		case <-t.C:
		}
		if !a.life.Running() {
			return nil
		}
		a.Tick()
	}
}

// Tick appends one quote if the trigger theme is active and reports whether
// it did.
func (a *Announcer) Tick() bool {
	th := a.themes.Active()
	if th.Name() != a.trigger || a.menu.Active() {
		return false
	}
	quotes := th.Quotes()
	if len(quotes) == 0 {
		return false
	}
	q := quotes[a.rng.Intn(len(quotes))]
	a.sink.Deliver(SystemLine(th.Voice(), q))
	logs.LogV("[announce] quote", zap.Int("len", len(q)))
	return true
}
