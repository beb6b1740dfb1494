package diag

import (
	"fmt"
	"strings"
)

// Kind classifies a diagnostic. The set is closed; severities are assigned
// per kind through Levels.
type Kind uint8

const (
	// Неизвестный вид - только как нулевое значение
	UnknownKind Kind = iota

	// Разрешение имён типов
	UnableToResolveType
	UnableToResolveTypeInComment
	UnableToResolveUse
	UseOfUnqualifiedType
	UseOfUnqualifiedTypeInComment

	// Импорты
	DuplicateAlias
	MalformedUse
	MultiStatementUse
	MissingNamespace
	UnusedUse
	DisorganizedUses

	// Аннотации и фронтенд
	CommonTypos
	ParseError

	kindCount
)

var (
	kindKeys = [kindCount]string{
		UnknownKind:                   "unknown",
		UnableToResolveType:           "unableToResolveType",
		UnableToResolveTypeInComment:  "unableToResolveTypeInComment",
		UnableToResolveUse:            "unableToResolveUse",
		UseOfUnqualifiedType:          "useOfUnqualifiedType",
		UseOfUnqualifiedTypeInComment: "useOfUnqualifiedTypeInComment",
		DuplicateAlias:                "duplicateAlias",
		MalformedUse:                  "malformedUse",
		MultiStatementUse:             "multiStatementUse",
		MissingNamespace:              "missingNamespace",
		UnusedUse:                     "unusedUse",
		DisorganizedUses:              "disorganizedUses",
		CommonTypos:                   "commonTypos",
		ParseError:                    "parseError",
	}

	kindTitles = [kindCount]string{
		UnknownKind:                   "Unknown diagnostic",
		UnableToResolveType:           "Type cannot be resolved",
		UnableToResolveTypeInComment:  "Type in comment cannot be resolved",
		UnableToResolveUse:            "Imported name cannot be resolved",
		UseOfUnqualifiedType:          "Partially qualified type name",
		UseOfUnqualifiedTypeInComment: "Partially qualified type name in comment",
		DuplicateAlias:                "Alias declared twice",
		MalformedUse:                  "Malformed use statement",
		MultiStatementUse:             "Several imports in one use statement",
		MissingNamespace:              "File declares no namespace",
		UnusedUse:                     "Unused import",
		DisorganizedUses:              "Imports are not in canonical order",
		CommonTypos:                   "Common typo in annotation",
		ParseError:                    "Syntax error",
	}
)

// Kinds returns every reportable kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount-1)
	for k := UnknownKind + 1; k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool { return k > UnknownKind && k < kindCount }

// Key is the stable camelCase name used in configuration files and
// machine-readable output.
func (k Kind) Key() string {
	if k >= kindCount {
		return kindKeys[UnknownKind]
	}
	return kindKeys[k]
}

// ID returns a short code like "BF0003".
func (k Kind) ID() string {
	if !k.Valid() {
		return "BF0000"
	}
	return fmt.Sprintf("BF%04d", int(k))
}

func (k Kind) Title() string {
	if k >= kindCount {
		return kindTitles[UnknownKind]
	}
	return kindTitles[k]
}

func (k Kind) String() string {
	return k.Key()
}

// ParseKind maps a configuration key back to its kind. Keys are matched
// case-insensitively so `UnusedUse` and `unusedUse` are the same.
func ParseKind(key string) (Kind, bool) {
	key = strings.TrimSpace(key)
	for k := UnknownKind + 1; k < kindCount; k++ {
		if strings.EqualFold(kindKeys[k], key) {
			return k, true
		}
	}
	return UnknownKind, false
}
