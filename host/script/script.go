// SPDX-License-Identifier: Unlicense OR MIT

/*
Package script is a Surface Host that replays recorded events.

A script has one event per line:

	# comment
	available 1 100x200
	resized 1 150x250
	updated 1
	destroyed 1
*/
package script

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/surfacepoc/texturebridge/bridge"
)

// Kind is a host event kind.
type Kind uint8

const (
	Available Kind = iota
	Resized
	Updated
	Destroyed
)

var kindNames = [...]string{
	Available: "available",
	Resized:   "resized",
	Updated:   "updated",
	Destroyed: "destroyed",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Event is a single host event.
type Event struct {
	Kind Kind
	ID   bridge.SurfaceID
	// Dims is set for Available and Resized.
	Dims bridge.Dimensions
	// Line is the script line the event was read from.
	Line int
}

func (e Event) String() string {
	switch e.Kind {
	case Available, Resized:
		return fmt.Sprintf("%v %d %v", e.Kind, e.ID, e.Dims)
	default:
		return fmt.Sprintf("%v %d", e.Kind, e.ID)
	}
}

// SyntaxError reports a malformed script line.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("script:%d: %s", e.Line, e.Msg)
}

// Parse reads a script.
func Parse(r io.Reader) ([]Event, error) {
	var events []Event
	s := bufio.NewScanner(r)
	line := 0
	for s.Scan() {
		line++
		text := s.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		e, err := parseEvent(fields)
		if err != nil {
			return nil, &SyntaxError{Line: line, Msg: err.Error()}
		}
		e.Line = line
		events = append(events, e)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func parseEvent(fields []string) (Event, error) {
	var e Event
	kind := -1
	for k, name := range kindNames {
		if fields[0] == name {
			kind = k
		}
	}
	if kind == -1 {
		return e, fmt.Errorf("unknown event %q", fields[0])
	}
	e.Kind = Kind(kind)
	nargs := 1
	if e.Kind == Available || e.Kind == Resized {
		nargs = 2
	}
	if len(fields)-1 != nargs {
		return e, fmt.Errorf("%s takes %d arguments, got %d", e.Kind, nargs, len(fields)-1)
	}
	id, err := strconv.ParseUint(fields[1], 0, 64)
	if err != nil {
		return e, fmt.Errorf("invalid surface %q", fields[1])
	}
	e.ID = bridge.SurfaceID(id)
	if nargs == 2 {
		e.Dims, err = ParseDimensions(fields[2])
		if err != nil {
			return e, err
		}
	}
	return e, nil
}

// ParseDimensions parses "<width>x<height>".
func ParseDimensions(s string) (bridge.Dimensions, error) {
	w, h, ok := strings.Cut(s, "x")
	if !ok {
		return bridge.Dimensions{}, fmt.Errorf("invalid dimensions %q", s)
	}
	width, err := strconv.ParseUint(w, 10, 32)
	if err != nil {
		return bridge.Dimensions{}, fmt.Errorf("invalid width in %q", s)
	}
	height, err := strconv.ParseUint(h, 10, 32)
	if err != nil {
		return bridge.Dimensions{}, fmt.Errorf("invalid height in %q", s)
	}
	return bridge.Dimensions{Width: uint32(width), Height: uint32(height)}, nil
}

// Outcome is the result of delivering one event.
type Outcome struct {
	Event Event
	// Err is the handler error. Destroyed never fails.
	Err error
	// Release is the result of a Destroyed event.
	Release bool
	// After is the lifecycle after the event.
	After bridge.Lifecycle
	Bound bool
}

// Replay delivers events to b in order, like a host callback thread.
func Replay(b *bridge.Bridge, events []Event) []Outcome {
	outs := make([]Outcome, 0, len(events))
	for _, e := range events {
		o := Outcome{Event: e}
		switch e.Kind {
		case Available:
			o.Err = b.Available(e.ID, e.Dims)
		case Resized:
			o.Err = b.Resized(e.ID, e.Dims)
		case Updated:
			o.Err = b.Updated(e.ID)
		case Destroyed:
			o.Release = b.Destroyed(e.ID)
		}
		o.After = b.Lifecycle()
		o.Bound = b.Bound()
		outs = append(outs, o)
	}
	return outs
}

// Format writes one line per outcome.
func Format(w io.Writer, outs []Outcome) error {
	for _, o := range outs {
		var state string
		switch l := o.After.(type) {
		case bridge.Available:
			state = fmt.Sprintf("Available(%d, %v)", l.ID, l.Dims)
		case bridge.Destroyed:
			state = fmt.Sprintf("Destroyed(%d)", l.Last)
		default:
			state = l.State().String()
		}
		result := "ok"
		switch {
		case o.Err != nil:
			result = o.Err.Error()
		case o.Event.Kind == Destroyed:
			result = "release=" + strconv.FormatBool(o.Release)
		}
		if _, err := fmt.Fprintf(w, "%-24s -> %-28s bound=%-5v %s\n", o.Event, state, o.Bound, result); err != nil {
			return err
		}
	}
	return nil
}
