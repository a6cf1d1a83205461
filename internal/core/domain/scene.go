package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/zerr"
)

// SceneHashField is the key of the self-hash embedded in every scene file.
const SceneHashField = "hash"

// Scene is a decoded scene file. Unknown fields are preserved verbatim.
type Scene struct {
	fields map[string]any
}

// ParseScene decodes a scene file. Numbers keep their original text.
func ParseScene(data []byte) (*Scene, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, zerr.Wrap(err, ErrMalformedSource.Error())
	}
	if fields == nil {
		return nil, zerr.With(ErrMalformedSource, "reason", "scene is not a JSON object")
	}
	if items, ok := fields["items"]; ok {
		if _, isList := items.([]any); !isList {
			return nil, zerr.With(ErrMalformedSource, "reason", "items is not a list")
		}
	}
	return &Scene{fields: fields}, nil
}

// StoredHash returns the hash currently embedded in the scene.
// Non-string values are rendered with their JSON text, so "0" and 0 compare equal.
func (s *Scene) StoredHash() string {
	switch v := s.fields[SceneHashField].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// ComputeHash digests the scene with its hash field cleared.
// Keys are encoded in sorted order, so the digest depends on content only.
func (s *Scene) ComputeHash() (string, error) {
	clone := make(map[string]any, len(s.fields))
	for k, v := range s.fields {
		clone[k] = v
	}
	clone[SceneHashField] = ""

	data, err := json.Marshal(clone)
	if err != nil {
		return "", zerr.Wrap(err, ErrMalformedSource.Error())
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(data)), nil
}

// Rehash recomputes the self-hash. It reports whether the stored hash was stale,
// in which case the new hash is embedded and the scene must be written back.
func (s *Scene) Rehash() (bool, error) {
	hash, err := s.ComputeHash()
	if err != nil {
		return false, err
	}
	if s.StoredHash() == hash {
		return false, nil
	}
	s.fields[SceneHashField] = hash
	return true, nil
}

// Marshal encodes the scene with four-space indentation.
func (s *Scene) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(s.fields, "", "    ")
	if err != nil {
		return nil, zerr.Wrap(err, ErrMalformedSource.Error())
	}
	return append(data, '\n'), nil
}

func (s *Scene) items() []map[string]any {
	raw, _ := s.fields["items"].([]any)
	items := make([]map[string]any, 0, len(raw))
	for _, it := range raw {
		if m, ok := it.(map[string]any); ok {
			items = append(items, m)
		}
	}
	return items
}

// ItemIDs returns the ids of the scene items that declare one, in file order.
func (s *Scene) ItemIDs() []string {
	var ids []string
	for _, it := range s.items() {
		if id, ok := it["id"].(string); ok && id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// ItemNames returns the name of every item (its id, else its spine), in file order.
// The result is never nil, also for a scene without items.
func (s *Scene) ItemNames() []string {
	items := s.items()
	names := make([]string, 0, len(items))
	for _, it := range items {
		if id, ok := it["id"].(string); ok && id != "" {
			names = append(names, id)
			continue
		}
		if spine, ok := it["spine"].(string); ok && spine != "" {
			names = append(names, spine)
		}
	}
	return names
}
