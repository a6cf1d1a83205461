package domain

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// Attachment types with a meaning for the pipeline.
const (
	AttachmentPoint       = "point"
	AttachmentBoundingBox = "boundingbox"
)

// Skeleton is the subset of an exported skeleton definition the pipeline reads.
type Skeleton struct {
	Animations map[string]json.RawMessage `json:"animations"`
	Skins      []Skin                     `json:"skins"`
}

// Skin is a named visual variant of a rig.
type Skin struct {
	Name        string                           `json:"name"`
	Attachments map[string]map[string]Attachment `json:"attachments"`
}

// Attachment is one entry below a skin slot.
type Attachment struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// NamedAttachment is an attachment together with its key and slot.
type NamedAttachment struct {
	Slot string
	Key  string
	Attachment
}

// DisplayName is the attachment's explicit name, falling back to its key.
func (a NamedAttachment) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	return a.Key
}

// ParseSkeleton decodes an exported skeleton definition.
func ParseSkeleton(data []byte) (*Skeleton, error) {
	var skel Skeleton
	if err := json.Unmarshal(data, &skel); err != nil {
		return nil, zerr.Wrap(err, ErrMalformedSource.Error())
	}
	return &skel, nil
}

// AttachmentsOfType returns the attachments of the given type, ordered by slot then key.
func (s Skin) AttachmentsOfType(kind string) []NamedAttachment {
	var out []NamedAttachment
	for _, slot := range slices.Sorted(maps.Keys(s.Attachments)) {
		entries := s.Attachments[slot]
		for _, key := range slices.Sorted(maps.Keys(entries)) {
			if entries[key].Type == kind {
				out = append(out, NamedAttachment{Slot: slot, Key: key, Attachment: entries[key]})
			}
		}
	}
	return out
}

// HookKind classifies a bounding-box attachment by its naming convention.
type HookKind uint8

const (
	// HookScript expects a script named after the attachment.
	HookScript HookKind = iota
	// HookDialogue references a dialogue ("dlg:<name>").
	HookDialogue
	// HookAnimation references an animation ("anim:<name>").
	HookAnimation
	// HookReserved is a navigation mesh and carries no hook.
	HookReserved
)

const (
	dialogueHookPrefix  = "dlg:"
	animationHookPrefix = "anim:"
)

var reservedHookNames = map[string]bool{
	"walkable_area":     true,
	"non_walkable_area": true,
}

// ClassifyHook returns the kind of hook a bounding box named name declares and its target.
func ClassifyHook(name string) (HookKind, string) {
	switch {
	case reservedHookNames[name]:
		return HookReserved, name
	case strings.HasPrefix(name, dialogueHookPrefix):
		return HookDialogue, strings.TrimPrefix(name, dialogueHookPrefix)
	case strings.HasPrefix(name, animationHookPrefix):
		return HookAnimation, strings.TrimPrefix(name, animationHookPrefix)
	default:
		return HookScript, name
	}
}

// ScriptStub is the content of an automatically created script for name.
func ScriptStub(name string) string {
	return `print("` + name + `")`
}
