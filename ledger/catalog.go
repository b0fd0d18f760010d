/*
catalog.go - Injected club and channel enumerations

PURPOSE:
  The set of clubs and payment channels is deployment configuration, not
  code. The Catalog is built once at startup and injected wherever club or
  channel identifiers cross the boundary, so tests can substitute alternate
  sets without touching shared process state.

  Aliases are matched case-insensitively with ё folded to е, because the
  identifiers arrive as free text typed by operators.
*/
package ledger

import (
	"fmt"
	"sort"
	"strings"
)

// Catalog resolves operator-typed club and channel identifiers to their
// canonical forms. Immutable after construction.
type Catalog struct {
	clubs    map[string]string // folded alias -> canonical name
	channels map[string]Channel
}

// NewCatalog builds a catalog. clubAliases maps alias to canonical club
// name; channelAliases maps alias to channel. Canonical names are also
// registered as aliases for themselves.
func NewCatalog(clubAliases map[string]string, channelAliases map[string]Channel) *Catalog {
	c := &Catalog{
		clubs:    make(map[string]string),
		channels: make(map[string]Channel),
	}
	for alias, canonical := range clubAliases {
		c.clubs[fold(alias)] = canonical
		c.clubs[fold(canonical)] = canonical
	}
	for alias, ch := range channelAliases {
		c.channels[fold(alias)] = ch
		c.channels[fold(string(ch))] = ch
	}
	return c
}

// DefaultCatalog mirrors the production deployment: two clubs, the
// cash/non-cash channels with their Russian operator aliases.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		map[string]string{
			"москвич": "Москвич",
			"анора":   "Анора",
			"anora":   "Анора",
		},
		map[string]Channel{
			"нал":      ChannelCash,
			"безнал":   ChannelNonCash,
			"non-cash": ChannelNonCash,
		},
	)
}

// ResolveClub maps an operator-typed club identifier to its canonical name.
func (c *Catalog) ResolveClub(s string) (string, error) {
	if canonical, ok := c.clubs[fold(s)]; ok {
		return canonical, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownClub, s)
}

// ResolveChannel maps an operator-typed channel identifier to a Channel.
func (c *Catalog) ResolveChannel(s string) (Channel, error) {
	if ch, ok := c.channels[fold(s)]; ok {
		return ch, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownChannel, s)
}

// Clubs returns the canonical club names, sorted.
func (c *Catalog) Clubs() []string {
	seen := make(map[string]bool)
	var out []string
	for _, canonical := range c.clubs {
		if !seen[canonical] {
			seen[canonical] = true
			out = append(out, canonical)
		}
	}
	sort.Strings(out)
	return out
}

func fold(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	return strings.NewReplacer("ё", "е").Replace(s)
}
