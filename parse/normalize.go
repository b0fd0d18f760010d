/*
normalize.go - Employee code normalization

PURPOSE:
  Employee codes arrive typed on mixed keyboards: the same employee shows up
  as "Д1", "д1" or "D1" depending on the operator's layout. Identity is the
  code, so every code is normalized to a canonical uppercase Latin+digits
  form before it touches the store.

  Normalization is a total function: it upper-cases each rune and maps
  Cyrillic letters through the code table; anything unmapped passes through
  unchanged. The table's outputs are Latin letters, which are never table
  keys, so normalize(normalize(x)) == normalize(x) for any input.

  The table is injected configuration (one deployment's code book may differ
  from another's); DefaultCodeTable covers the production set.
*/
package parse

import (
	"strings"
	"unicode"
)

// CodeTable maps uppercase foreign-alphabet letters to their Latin
// equivalents in the canonical code book.
type CodeTable map[rune]rune

// DefaultCodeTable maps the Cyrillic letters that appear in operator-typed
// employee codes to their canonical Latin letters.
func DefaultCodeTable() CodeTable {
	return CodeTable{
		'А': 'A', 'Б': 'B', 'В': 'V', 'Г': 'G', 'Д': 'D',
		'Е': 'E', 'З': 'Z', 'И': 'I', 'К': 'K', 'Л': 'L',
		'М': 'M', 'Н': 'N', 'О': 'O', 'П': 'P', 'Р': 'R',
		'С': 'S', 'Т': 'T', 'У': 'U', 'Ф': 'F', 'Х': 'H',
	}
}

// Normalizer canonicalizes employee codes against an immutable table.
type Normalizer struct {
	table CodeTable
}

func NewNormalizer(table CodeTable) *Normalizer {
	return &Normalizer{table: table}
}

// NormalizeCode upper-cases the input and maps each rune through the code
// table. Total, deterministic and idempotent over any string.
func (n *Normalizer) NormalizeCode(s string) string {
	return strings.Map(func(r rune) rune {
		r = unicode.ToUpper(r)
		if latin, ok := n.table[r]; ok {
			return latin
		}
		return r
	}, strings.TrimSpace(s))
}
