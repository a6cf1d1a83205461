package domain

import (
	"bytes"
	"encoding/json"
	"strings"

	"go.trai.ch/zerr"
)

// SayAnimationPrefix prefixes the animation generated for a cue.
const SayAnimationPrefix = "say_"

// MouthCues is the phoneme timing produced by the lip-sync analyzer.
type MouthCues struct {
	MouthCues []MouthCue `json:"mouthCues"`
}

// MouthCue is one timed mouth shape.
type MouthCue struct {
	Start json.Number `json:"start"`
	End   json.Number `json:"end"`
	Value string      `json:"value"`
}

// ParseMouthCues decodes lip-sync output.
func ParseMouthCues(data []byte) (*MouthCues, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var cues MouthCues
	if err := dec.Decode(&cues); err != nil {
		return nil, zerr.Wrap(err, ErrMalformedSource.Error())
	}
	return &cues, nil
}

// Character is an exported character skeleton opened for modification.
// Fields the pipeline does not touch are preserved.
type Character struct {
	fields map[string]any
}

// ParseCharacter decodes an exported character skeleton.
func ParseCharacter(data []byte) (*Character, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, zerr.Wrap(err, ErrMalformedSource.Error())
	}
	if fields == nil {
		return nil, zerr.With(ErrMalformedSource, "reason", "character is not a JSON object")
	}
	return &Character{fields: fields}, nil
}

// SkinNames returns the names of the character's skins in file order.
func (c *Character) SkinNames() []string {
	raw, _ := c.fields["skins"].([]any)
	names := make([]string, 0, len(raw))
	for _, s := range raw {
		skin, ok := s.(map[string]any)
		if !ok {
			continue
		}
		if name, ok := skin["name"].(string); ok {
			names = append(names, name)
		}
	}
	return names
}

// SetSayAnimation creates or replaces the say_<cue> animation. Each skin gets one
// "<skin>-mouth" slot whose attachment keyframes follow the mouth cues.
func (c *Character) SetSayAnimation(cueID string, cues *MouthCues) {
	animations, ok := c.fields["animations"].(map[string]any)
	if !ok {
		animations = make(map[string]any)
		c.fields["animations"] = animations
	}

	slots := make(map[string]any)
	for _, skin := range c.SkinNames() {
		frames := make([]any, 0, len(cues.MouthCues))
		for _, cue := range cues.MouthCues {
			frames = append(frames, map[string]any{
				"time": cue.Start,
				"name": skin + "/mouth-" + strings.ToLower(cue.Value),
			})
		}
		slots[skin+"-mouth"] = map[string]any{"attachment": frames}
	}
	animations[SayAnimationPrefix+cueID] = map[string]any{"slots": slots}
}

// Marshal encodes the character with four-space indentation.
func (c *Character) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(c.fields, "", "    ")
	if err != nil {
		return nil, zerr.Wrap(err, ErrMalformedSource.Error())
	}
	return data, nil
}
