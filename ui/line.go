package ui

import "time"

// LineKind selects how a DisplayLine is styled.
type LineKind int

const (
	LineSystem LineKind = iota
	LineMessage
	LineDisconnect
	LineOther
	LineError
)

// Time label layouts used by the two presentation modes.
const (
	ClockLayout = "15:04:05"
	StampLayout = "2006-01-02 15:04:05"
)

// DisplayLine is one render-ready entry of the message view. It is never
// modified after creation.
type DisplayLine struct {
	Time   string
	Author string
	Body   string
	Kind   LineKind
}

// Sink receives classified lines, either for the scrollback view or for direct
// line-oriented output.
type Sink interface {
	Deliver(line DisplayLine)
}

// SystemLine builds a local system line labelled with the current time.
func SystemLine(author, body string) DisplayLine {
	return DisplayLine{Time: time.Now().Format(ClockLayout), Author: author, Body: body, Kind: LineSystem}
}

// ErrorLine builds a local error line.
func ErrorLine(body string) DisplayLine {
	return DisplayLine{Time: time.Now().Format(ClockLayout), Author: "ERROR", Body: body, Kind: LineError}
}
