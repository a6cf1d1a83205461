package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/muesli/termenv"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/ui/output"
	"go.trai.ch/kiln/internal/ui/style"
)

// PrettyHandler is a slog.Handler producing coloured, human-readable lines.
// Stage and item attributes prefix the message; the run id is left to JSON output.
type PrettyHandler struct {
	out   *termenv.Output
	level slog.Leveler
	attrs []slog.Attr
	group string
}

// NewPrettyHandler creates a new PrettyHandler writing to w.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if w == nil {
		w = os.Stderr
	}

	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}

	return &PrettyHandler{
		out:   output.New(w),
		level: level,
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats and writes the record.
//
//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	var symbol string
	var color termenv.Color

	switch {
	case r.Level >= slog.LevelError:
		symbol = style.Cross + " "
		color = termenv.RGBColor(string(style.Red))
	case r.Level >= slog.LevelWarn:
		symbol = style.Warning + " "
		color = termenv.RGBColor(string(style.Yellow))
	default:
		color = termenv.RGBColor(string(style.Ash))
	}

	var stage, item string
	attrParts := make([]string, 0, len(h.attrs)+r.NumAttrs())
	collect := func(attr slog.Attr) bool {
		switch attr.Key {
		case domain.AttrRunID:
			// JSON output only.
		case domain.AttrStage:
			stage = attr.Value.String()
		case domain.AttrItem:
			item = attr.Value.String()
		default:
			attrParts = append(attrParts, formatAttr(h.group, attr))
		}
		return true
	}
	for _, attr := range h.attrs {
		collect(attr)
	}
	r.Attrs(collect)

	msg := symbol + prefix(stage, item) + r.Message
	if len(attrParts) > 0 {
		msg += " " + strings.Join(attrParts, " ")
	}

	styled := h.out.String(msg).Foreground(color)
	_, err := h.out.WriteString(styled.String() + "\n")
	return err
}

// WithAttrs returns a new Handler with the given attributes appended.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	copy(newAttrs[len(h.attrs):], attrs)

	return &PrettyHandler{
		out:   h.out,
		level: h.level,
		attrs: newAttrs,
		group: h.group,
	}
}

// WithGroup returns a new Handler with the given group name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	return &PrettyHandler{
		out:   h.out,
		level: h.level,
		attrs: h.attrs,
		group: name,
	}
}

// prefix renders the stage and item a record belongs to, e.g. "[lipsync] de_001: ".
func prefix(stage, item string) string {
	var b strings.Builder
	if stage != "" {
		b.WriteString("[" + stage + "] ")
	}
	if item != "" {
		b.WriteString(item + ": ")
	}
	return b.String()
}

// formatAttr renders attr as key=value without the kiln namespace.
func formatAttr(group string, attr slog.Attr) string {
	key := strings.TrimPrefix(attr.Key, domain.AttrNamespace)
	if group != "" {
		key = group + "." + key
	}
	return key + "=" + attr.Value.String()
}
