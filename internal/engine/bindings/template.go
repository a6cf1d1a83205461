// Package bindings generates the Lua definition file that exposes the asset vocabulary and the
// engine's script functions to editor tooling.
package bindings

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"
)

// Function is one engine function declared in the binding template.
type Function struct {
	Name    string
	Docs    []string
	Params  []Param
	Returns string
}

// Param is one parameter of a Function with its Lua type.
type Param struct {
	Name string
	Type string
}

const (
	declMarker    = "set_function"
	docMarker     = "///"
	returnsMarker = "returns:"
)

var functionName = regexp.MustCompile(`set_function\(\s*"([^"]+)"`)

// ParseTemplate extracts the declared functions of a binding template in file order.
//
// A line containing set_function declares a function; its parameters are read from the lambda
// on the following line and its docs from the /// lines directly above it.
func ParseTemplate(src []byte) []Function {
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(src))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}

	var funcs []Function
	for i, line := range lines {
		if !strings.Contains(line, declMarker) {
			continue
		}
		m := functionName.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		fn := Function{Name: m[1]}
		fn.Docs, fn.Returns = parseDocs(lines, i)
		if i+1 < len(lines) {
			fn.Params = parseParams(lines[i+1])
		}
		funcs = append(funcs, fn)
	}
	return funcs
}

// parseDocs collects the contiguous doc comment above lines[decl]. The returns line is split off.
func parseDocs(lines []string, decl int) (docs []string, returns string) {
	for i := decl - 1; i >= 0 && strings.Contains(lines[i], docMarker); i-- {
		text := strings.TrimSpace(strings.ReplaceAll(lines[i], docMarker, ""))
		if _, after, ok := strings.Cut(text, returnsMarker); ok {
			returns = strings.TrimSpace(after)
			continue
		}
		docs = append(docs, text)
	}

	for l, r := 0, len(docs)-1; l < r; l, r = l+1, r-1 {
		docs[l], docs[r] = docs[r], docs[l]
	}
	return docs, returns
}

// parseParams reads the parameter list of a C++ lambda such as
// `[this](const std::string &scene, std::optional<sol::function> done) {`.
func parseParams(line string) []Param {
	open := strings.Index(line, "](")
	if open < 0 {
		return nil
	}
	list := line[open+2:]
	closeIdx := strings.LastIndex(list, ")")
	if closeIdx < 0 {
		return nil
	}
	list = list[:closeIdx]

	var params []Param
	for _, raw := range splitTopLevel(list) {
		raw = strings.TrimSpace(strings.ReplaceAll(raw, "&", " "))
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "const "))
		if raw == "" {
			continue
		}

		sep := strings.LastIndexAny(raw, " \t*")
		if sep < 0 {
			continue
		}
		cppType := strings.TrimSpace(raw[:sep])
		name := strings.TrimSpace(raw[sep+1:])

		luaType, optional := luaTypeOf(cppType)
		if optional {
			name += "?"
		}
		params = append(params, Param{Name: name, Type: luaType})
	}
	return params
}

// splitTopLevel splits s at commas outside of template brackets.
func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

var cppToLua = map[string]string{
	"std::string":                "string",
	"std::string_view":           "string",
	"int":                        "number",
	"float":                      "number",
	"double":                     "number",
	"bool":                       "boolean",
	"sol::function":              "function",
	"std::vector<LuaSpineSkin>":  "LuaSpineSkin[]",
	"std::optional<std::string>": "string?",
}

const optionalFunction = "std::optional<sol::function>"

// luaTypeOf maps a C++ parameter type to its Lua annotation. Optional callbacks are reported
// separately because Lua marks them on the parameter name.
func luaTypeOf(cppType string) (luaType string, optional bool) {
	cppType = strings.Join(strings.Fields(cppType), " ")
	if cppType == optionalFunction {
		return "function", true
	}
	if t, ok := cppToLua[cppType]; ok {
		return t, false
	}
	return cppType, false
}
