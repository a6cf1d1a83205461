// Package telemetry implements ports.Tracer on OpenTelemetry and feeds finished spans to the
// progress renderer.
package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
)

var _ sdktrace.SpanProcessor = (*Bridge)(nil)

// Bridge implements sdktrace.SpanProcessor to bridge stage and item spans to a Renderer.
// A stage span carries kiln.stage and kiln.total; an item span carries kiln.stage and kiln.item.
// Other spans are ignored.
type Bridge struct {
	renderer ports.Renderer
}

// NewBridge returns a new Bridge.
func NewBridge(renderer ports.Renderer) *Bridge {
	return &Bridge{
		renderer: renderer,
	}
}

type spanKind uint8

const (
	kindOther spanKind = iota
	kindStage
	kindItem
)

type spanInfo struct {
	kind  spanKind
	stage string
	item  string
	total int
}

func classify(attrs []attribute.KeyValue) spanInfo {
	var info spanInfo
	var hasTotal bool
	for _, kv := range attrs {
		switch string(kv.Key) {
		case domain.AttrStage:
			info.stage = kv.Value.AsString()
		case domain.AttrItem:
			info.item = kv.Value.AsString()
		case domain.AttrTotal:
			info.total = int(kv.Value.AsInt64())
			hasTotal = true
		}
	}

	switch {
	case info.stage == "":
		info.kind = kindOther
	case info.item != "":
		info.kind = kindItem
	case hasTotal:
		info.kind = kindStage
	}
	return info
}

// OnStart is called when a span starts.
func (b *Bridge) OnStart(_ context.Context, s sdktrace.ReadWriteSpan) {
	if b.renderer == nil || !s.SpanContext().IsValid() {
		return
	}

	info := classify(s.Attributes())
	if info.kind == kindStage {
		b.renderer.OnStageStart(info.stage, info.total, s.StartTime())
	}
}

// OnEnd is called when a span ends.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	if b.renderer == nil || !s.SpanContext().IsValid() {
		return
	}

	var err error
	if s.Status().Code == codes.Error {
		desc := s.Status().Description
		if desc == "" {
			desc = "failed"
		}
		err = errors.New(desc)
	}

	info := classify(s.Attributes())
	switch info.kind {
	case kindStage:
		b.renderer.OnStageComplete(info.stage, s.EndTime(), err)
	case kindItem:
		b.renderer.OnItemComplete(info.stage, info.item, s.EndTime(), err)
	case kindOther:
	}
}

// ForceFlush does nothing.
func (b *Bridge) ForceFlush(_ context.Context) error {
	return nil
}

// Shutdown does nothing.
func (b *Bridge) Shutdown(_ context.Context) error {
	return nil
}
