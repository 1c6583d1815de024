// SPDX-License-Identifier: Unlicense OR MIT

package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
)

// Priority is a platform log priority, numbered as in android/log.h.
type Priority int

const (
	PriorityVerbose Priority = 2
	PriorityDebug   Priority = 3
	PriorityInfo    Priority = 4
	PriorityWarn    Priority = 5
	PriorityError   Priority = 6
)

// PriorityOf maps a slog level to the nearest priority at or below it.
func PriorityOf(l slog.Level) Priority {
	switch {
	case l >= slog.LevelError:
		return PriorityError
	case l >= slog.LevelWarn:
		return PriorityWarn
	case l >= slog.LevelInfo:
		return PriorityInfo
	case l >= slog.LevelDebug:
		return PriorityDebug
	default:
		return PriorityVerbose
	}
}

// Handler is a slog.Handler that formats records as text and writes each
// one as a single line with the priority of its level.
type Handler struct {
	out  *output
	text slog.Handler
}

type output struct {
	mu    sync.Mutex
	buf   bytes.Buffer
	write func(Priority, string)
}

// NewHandler returns a Handler calling write for every record. The time
// attribute is dropped; platform logs stamp lines themselves.
func NewHandler(write func(Priority, string), opts *slog.HandlerOptions) *Handler {
	var o slog.HandlerOptions
	if opts != nil {
		o = *opts
	}
	replace := o.ReplaceAttr
	o.ReplaceAttr = func(groups []string, a slog.Attr) slog.Attr {
		if len(groups) == 0 && a.Key == slog.TimeKey {
			return slog.Attr{}
		}
		if replace != nil {
			return replace(groups, a)
		}
		return a
	}
	out := &output{write: write}
	return &Handler{out: out, text: slog.NewTextHandler(&out.buf, &o)}
}

func (h *Handler) Enabled(ctx context.Context, l slog.Level) bool {
	return h.text.Enabled(ctx, l)
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	h.out.mu.Lock()
	defer h.out.mu.Unlock()
	h.out.buf.Reset()
	if err := h.text.Handle(ctx, r); err != nil {
		return err
	}
	h.out.write(PriorityOf(r.Level), strings.TrimSuffix(h.out.buf.String(), "\n"))
	return nil
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{out: h.out, text: h.text.WithAttrs(attrs)}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{out: h.out, text: h.text.WithGroup(name)}
}
