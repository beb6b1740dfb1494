package resolve

import "strings"

// Tables are the lookup sets the resolver is built with. They are never
// modified after construction.
type Tables struct {
	// Builtins are type names that are never resolved, keyed lower-case.
	Builtins map[string]struct{}
	// TagTypos maps misspelled docblock tags to the intended tag.
	TagTypos map[string]string
	// TypeTypos maps invalid docblock type names (lower-case) to valid ones.
	TypeTypos map[string]string
}

// DefaultTables returns fresh copies of the built-in tables.
func DefaultTables() Tables {
	builtins := []string{
		"string", "integer", "int", "boolean", "bool", "float", "double",
		"object", "mixed", "array", "resource", "void", "null", "callback",
		"false", "true", "self", "callable", "iterable", "never",
	}
	t := Tables{
		Builtins: make(map[string]struct{}, len(builtins)),
		TagTypos: map[string]string{
			"returns":    "return",
			"throw":      "throws",
			"params":     "param",
			"param[in]":  "param",
			"param[out]": "param",
		},
		TypeTypos: map[string]string{
			"numeric":        "int|string|float",
			"numeric-string": "string",
			"numberic":       "int|string|float",
			"number":         "int|string|float",
			"amount":         "int|string|float",
			"strung":         "string",
			"assoc":          "array",
			"assoc-array":    "array",
			"hash":           "array",
			"date":           `\DateTime`,
		},
	}
	for _, b := range builtins {
		t.Builtins[b] = struct{}{}
	}
	return t
}

// IsBuiltin matches exactly, ignoring case.
func (t Tables) IsBuiltin(name string) bool {
	_, ok := t.Builtins[strings.ToLower(name)]
	return ok
}

// TypeTypo returns the replacement for a misspelled type.
func (t Tables) TypeTypo(name string) (string, bool) {
	fix, ok := t.TypeTypos[strings.ToLower(name)]
	return fix, ok
}

// TagTypo returns the intended tag for a misspelled one.
func (t Tables) TagTypo(tag string) (string, bool) {
	fix, ok := t.TagTypos[tag]
	return fix, ok
}
