package domain

import (
	"maps"
	"slices"
)

// BuiltinSource marks index entries that exist without any source file.
const BuiltinSource = "internal"

// Sources is the set of places a name was observed in.
type Sources map[string]struct{}

// Sorted returns the sources in lexical order.
func (s Sources) Sorted() []string {
	return slices.Sorted(maps.Keys(s))
}

// Category maps a domain name to the sources it was found in.
type Category map[string]Sources

// Add records that name was observed in source.
func (c Category) Add(name, source string) {
	if name == "" {
		return
	}
	set, ok := c[name]
	if !ok {
		set = make(Sources)
		c[name] = set
	}
	set[source] = struct{}{}
}

// Has reports whether name was observed anywhere.
func (c Category) Has(name string) bool {
	_, ok := c[name]
	return ok
}

// Names returns the recorded names in lexical order.
func (c Category) Names() []string {
	return slices.Sorted(maps.Keys(c))
}

// Index aggregates the vocabulary discovered while stages run.
// It only grows: entries from deleted sources stay until the process restarts.
type Index struct {
	SpineObjects Category
	Animations   Category
	Skins        Category
	Points       Category
	Dialogues    Category
	Scenes       Category
	Audio        Category
	Locales      Category

	// Variables holds dialogue variables and their initial values.
	Variables map[string]any
	// CharacterProps holds flattened character properties. A bare character name maps to EmptyTable.
	CharacterProps map[string]any
	// SceneItems holds, per scene, the item names in file order.
	SceneItems map[string][]string
}

// EmptyTable is the character property value rendered as an empty table.
const EmptyTable = "{}"

// NewIndex returns an index seeded with the built-in spine objects.
func NewIndex() *Index {
	idx := &Index{
		SpineObjects:   make(Category),
		Animations:     make(Category),
		Skins:          make(Category),
		Points:         make(Category),
		Dialogues:      make(Category),
		Scenes:         make(Category),
		Audio:          make(Category),
		Locales:        make(Category),
		Variables:      make(map[string]any),
		CharacterProps: make(map[string]any),
		SceneItems:     make(map[string][]string),
	}
	idx.SpineObjects.Add("Player", BuiltinSource)
	idx.SpineObjects.Add("Background", BuiltinSource)
	return idx
}

// AddSkeleton records the animations, skins and point attachments of an exported skeleton.
func (idx *Index) AddSkeleton(skel *Skeleton, source string) {
	for name := range skel.Animations {
		idx.Animations.Add(name, source)
	}
	for _, skin := range skel.Skins {
		idx.Skins.Add(skin.Name, source)
		for _, att := range skin.AttachmentsOfType(AttachmentPoint) {
			idx.Points.Add(att.Key, source)
		}
	}
}

// AddDialogueFile records the dialogue names, character properties, variables and locales of a dialogue file.
func (idx *Index) AddDialogueFile(df *DialogueFile, source string) {
	for _, d := range df.Dialogs {
		idx.Dialogues.Add(d.Name, source)
	}
	for _, c := range df.Characters {
		if c.CanonicalName == "" {
			continue
		}
		idx.CharacterProps[c.CanonicalName] = EmptyTable
		for prop, value := range c.Properties {
			idx.CharacterProps[c.CanonicalName+"."+prop] = value
		}
	}
	maps.Copy(idx.Variables, df.Variables)
	for _, locale := range df.Locales {
		idx.Locales.Add(locale, source)
	}
}

// AddScene records a scene, its item ids as spine objects and its item names.
func (idx *Index) AddScene(name string, scene *Scene, source string) {
	idx.Scenes.Add(name, source)
	if scene == nil {
		return
	}
	for _, id := range scene.ItemIDs() {
		idx.SpineObjects.Add(id, source)
	}
	idx.SceneItems[name] = scene.ItemNames()
}
