package bindings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
)

// Header is the first line of every generated binding file.
const Header = "-- Code generated by kiln. DO NOT EDIT."

// DefaultDoc documents a function the template leaves undocumented.
const DefaultDoc = "Undocumented."

// backgroundItem is present in every scene without being listed in its items.
const backgroundItem = "background"

type alias struct {
	name     string
	category domain.Category
}

func aliases(idx *domain.Index) []alias {
	return []alias{
		{"LuaSpineObject", idx.SpineObjects},
		{"LuaSpineAnimation", idx.Animations},
		{"LuaSpineSkin", idx.Skins},
		{"LuaSpinePoint", idx.Points},
		{"LuaDialog", idx.Dialogues},
		{"LuaScene", idx.Scenes},
		{"LuaAudio", idx.Audio},
		{"LuaLanguage", idx.Locales},
	}
}

// Render produces the binding file for idx and the template functions.
// The output only depends on its inputs: all maps are rendered in sorted key order.
func Render(idx *domain.Index, funcs []Function) []byte {
	var b bytes.Buffer
	b.WriteString(Header + "\n")

	for _, a := range aliases(idx) {
		fmt.Fprintf(&b, "\n---@alias %s\n", a.name)
		for _, name := range a.category.Names() {
			fmt.Fprintf(&b, "---| '\"%s\"' # Found in %s\n", name, strings.Join(a.category[name].Sorted(), ", "))
		}
	}

	for _, fn := range funcs {
		b.WriteString("\n")
		renderFunction(&b, fn)
	}

	b.WriteString("\ninventory_items = {}\n")

	for _, name := range slices.Sorted(maps.Keys(idx.Variables)) {
		fmt.Fprintf(&b, "%s = %s\n", name, luaValue(idx.Variables[name]))
	}

	b.WriteString("\ncharacters = {}\n")
	for _, prop := range slices.Sorted(maps.Keys(idx.CharacterProps)) {
		fmt.Fprintf(&b, "characters.%s = %s\n", prop, luaValue(idx.CharacterProps[prop]))
	}

	b.WriteString("\nscenes = {}\n")
	for _, scene := range idx.Scenes.Names() {
		renderScene(&b, scene, idx.SceneItems[scene])
	}

	b.WriteString("\nconfig = {}\n")
	b.WriteString("\ngame = {}\n")
	b.WriteString("game[\"old_scene\"] = \"\"\n")
	b.WriteString("game[\"scene\"] = \"\"\n")
	b.WriteString("game[\"interruptible\"] = true\n")

	return b.Bytes()
}

func renderFunction(b *bytes.Buffer, fn Function) {
	docs := fn.Docs
	if len(docs) == 0 {
		docs = []string{DefaultDoc}
	}
	fmt.Fprintf(b, "--- %s\n", docs[0])
	for _, line := range docs[1:] {
		fmt.Fprintf(b, "-- %s\n", line)
	}

	names := make([]string, 0, len(fn.Params))
	for _, p := range fn.Params {
		fmt.Fprintf(b, "---@param %s %s\n", p.Name, p.Type)
		names = append(names, strings.TrimSuffix(p.Name, "?"))
	}
	if fn.Returns != "" {
		fmt.Fprintf(b, "---@return %s\n", fn.Returns)
	}

	fmt.Fprintf(b, "function %s(%s)\nend\n", fn.Name, strings.Join(names, ", "))
}

func renderScene(b *bytes.Buffer, scene string, items []string) {
	prefix := "scenes." + scene
	fmt.Fprintf(b, "%s = {}\n", prefix)
	fmt.Fprintf(b, "%s.items = {}\n", prefix)
	fmt.Fprintf(b, "%s.bottom_border = 0\n", prefix)
	fmt.Fprintf(b, "%s.hash = 0\n", prefix)
	fmt.Fprintf(b, "%s.left_border = 0\n", prefix)
	fmt.Fprintf(b, "%s.right_border = 0\n", prefix)
	fmt.Fprintf(b, "%s.top_border = 0\n", prefix)
	fmt.Fprintf(b, "%s.zBufferMap = nil\n", prefix)

	// Scenes that failed to parse have no item list at all.
	if items == nil {
		return
	}
	for _, name := range append(slices.Clone(items), backgroundItem) {
		item := prefix + ".items." + name
		fmt.Fprintf(b, "%s = {}\n", item)
		fmt.Fprintf(b, "%s.x = 0\n", item)
		fmt.Fprintf(b, "%s.y = 0\n", item)
		fmt.Fprintf(b, "%s.layer = 0\n", item)
		fmt.Fprintf(b, "%s.scale = 1\n", item)
		fmt.Fprintf(b, "%s.skin = 0\n", item)
		fmt.Fprintf(b, "%s.spine = %s\n", item, strconv.Quote(name))
		fmt.Fprintf(b, "%s.animation = \"idle\"\n", item)
		fmt.Fprintf(b, "%s.loop_animation = false\n", item)
		fmt.Fprintf(b, "%s.visible = true\n", item)
		fmt.Fprintf(b, "%s.abs_position = false\n", item)
		fmt.Fprintf(b, "%s.cross_scene = false\n", item)
	}
}

// luaValue renders a dialogue variable or character property as a Lua literal.
// Booleans, numbers and empty tables are bare; everything else becomes a string.
func luaValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "nil"
	case bool:
		return strconv.FormatBool(val)
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case string:
		if val == domain.EmptyTable {
			return val
		}
		return strconv.Quote(val)
	case map[string]any, []any:
		return domain.EmptyTable
	default:
		return strconv.Quote(fmt.Sprint(val))
	}
}
