package sessions

import (
	"sort"

	"thunderhug/api/internal/remoteconfig"
)

// Theme is one named track proposals may belong to.
type Theme struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Catalog is a read-only view over the remote config index resolving theme
// slugs, names and descriptions.
type Catalog struct {
	index *remoteconfig.Index
}

func NewCatalog(index *remoteconfig.Index) *Catalog {
	return &Catalog{index: index}
}

// Themes lists every indexed theme in slug order. Empty when nothing has
// synced yet.
func (c *Catalog) Themes() []Theme {
	names := c.index.ByType("theme")

	themes := make([]Theme, 0, len(names))
	for _, slug := range sortedKeys(names) {
		description, _ := c.index.Get(slug + ":description")
		themes = append(themes, Theme{
			Slug:        slug,
			Name:        names[slug],
			Description: description,
		})
	}
	return themes
}

// Theme resolves a slug to its full descriptor. A key indexed without a
// theme entry (banner copy, policy text) is not a theme.
func (c *Catalog) Theme(slug string) (Theme, error) {
	details, ok := c.index.Key(slug)
	if !ok || details["theme"] == "" {
		return Theme{}, domainError(KindNotFound, "theme "+slug+" not found")
	}
	return Theme{
		Slug:        slug,
		Name:        details["theme"],
		Description: details["description"],
	}, nil
}

// Slugs lists every theme slug in sorted order.
func (c *Catalog) Slugs() []string {
	return sortedKeys(c.index.ByType("theme"))
}

// SlugForName maps a theme display name back to its slug. Names are not
// guaranteed unique; the first match in index order wins.
func (c *Catalog) SlugForName(name string) (string, bool) {
	match, ok := c.index.ReverseLookup(name)
	if !ok {
		return "", false
	}
	return match.Key, true
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
