package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"go.trai.ch/zerr"
)

// DialogueFile is a decoded dialogue tree file.
type DialogueFile struct {
	Dialogs      []Dialog            `json:"dialogs"`
	Localization map[string][]string `json:"localization"`
	Locales      []string            `json:"locales"`
	Characters   []DialogueCharacter `json:"characters"`
	Variables    map[string]any      `json:"variables"`
}

// Dialog is one named dialogue tree.
type Dialog struct {
	Name  string         `json:"name"`
	Nodes []DialogueNode `json:"nodes"`
}

// DialogueNode is one node of a dialogue tree.
type DialogueNode struct {
	ID        json.Number `json:"id"`
	Character string      `json:"character"`
}

// DialogueCharacter declares a speaking character and its properties.
type DialogueCharacter struct {
	CanonicalName string         `json:"canonicalName"`
	Properties    map[string]any `json:"properties"`
}

// ParseDialogueFile decodes a dialogue file. Numbers keep their original text.
func ParseDialogueFile(data []byte) (*DialogueFile, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var df DialogueFile
	if err := dec.Decode(&df); err != nil {
		return nil, zerr.Wrap(err, ErrMalformedSource.Error())
	}
	return &df, nil
}

// HasText reports whether the localization entry for id holds at least one line.
func (df *DialogueFile) HasText(id string) bool {
	return len(df.Localization[id]) > 0
}

// Text returns the first-locale text of a localization id.
func (df *DialogueFile) Text(id string) string {
	lines := df.Localization[id]
	if len(lines) == 0 {
		return ""
	}
	return lines[0]
}

// CharacterOf returns the character speaking the node with the given localization id.
func (df *DialogueFile) CharacterOf(id string) string {
	for _, d := range df.Dialogs {
		for _, n := range d.Nodes {
			if n.ID.String() == id {
				return n.Character
			}
		}
	}
	return ""
}

// CharacterProperty returns a character's property as a string, matching names case-insensitively.
func (df *DialogueFile) CharacterProperty(character, prop string) (string, bool) {
	for _, c := range df.Characters {
		if !strings.EqualFold(c.CanonicalName, character) {
			continue
		}
		v, ok := c.Properties[prop]
		if !ok {
			return "", false
		}
		return fmt.Sprint(v), true
	}
	return "", false
}

// Cue is one localized dialogue line with its audio.
type Cue struct {
	// ID is "<locale>_<NNN>", the stem of the audio and lip-sync files.
	ID string
	// Character is the character the cue animates, after alias mapping.
	Character string
	// Locale is the locale code of the cue.
	Locale string
}

// CueID builds the cue id of a node id in a locale. Node ids are zero-padded to three digits.
func CueID(locale, nodeID string) string {
	if n := len(nodeID); n < 3 {
		nodeID = strings.Repeat("0", 3-n) + nodeID
	}
	return locale + "_" + nodeID
}

// Cues enumerates the speaking nodes with text, once per locale.
// Aliases map dialogue character names to rig names. When character is
// non-empty only cues whose mapped character equals it are returned.
func (df *DialogueFile) Cues(aliases map[string]string, character string) []Cue {
	var cues []Cue
	for _, d := range df.Dialogs {
		for _, n := range d.Nodes {
			if n.Character == "" {
				continue
			}
			name := n.Character
			if alias, ok := aliases[name]; ok {
				name = alias
			}
			if character != "" && name != character {
				continue
			}
			id := n.ID.String()
			if !df.HasText(id) {
				continue
			}
			for _, locale := range df.Locales {
				cues = append(cues, Cue{ID: CueID(locale, id), Character: name, Locale: locale})
			}
		}
	}
	return cues
}
