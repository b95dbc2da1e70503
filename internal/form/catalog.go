package form

// Occurrence is one widget of a field on a page.
type Occurrence struct {
	Page int  `json:"page"` // zero-based
	Rect Rect `json:"rect"`
}

// FieldEntry is one (name, type) observation made while scanning a template.
type FieldEntry struct {
	Name string
	Type FieldType
}

// Catalog is the read-only description of a template's fields. It is a pure
// function of the template bytes.
type Catalog struct {
	Names     []string                `json:"names"`
	Types     map[string]FieldType    `json:"types"`
	Locations map[string][]Occurrence `json:"locations"`
	PageCount int                     `json:"page_count"`
}

// Type returns the canonical type of name.
func (c *Catalog) Type(name string) (FieldType, bool) {
	t, ok := c.Types[name]
	return t, ok
}

// Has reports whether the template has a field called name.
func (c *Catalog) Has(name string) bool {
	_, ok := c.Types[name]
	return ok
}

// Buttons returns the checkbox_or_radio field names in catalog order.
func (c *Catalog) Buttons() []string {
	var out []string
	for _, name := range c.Names {
		if c.Types[name] == TypeCheckboxOrRadio {
			out = append(out, name)
		}
	}
	return out
}

// LocationsOnPage returns the occurrences of name on the zero-based page.
func (c *Catalog) LocationsOnPage(name string, page int) []Occurrence {
	var out []Occurrence
	for _, occ := range c.Locations[name] {
		if occ.Page == page {
			out = append(out, occ)
		}
	}
	return out
}

// MergeEntries merges observations by name. The first occurrence fixes the
// display order; a later button observation upgrades a text entry, and
// nothing ever downgrades a button back to text.
func MergeEntries(entries []FieldEntry) ([]string, map[string]FieldType) {
	order := make([]string, 0, len(entries))
	types := make(map[string]FieldType, len(entries))
	for _, e := range entries {
		current, seen := types[e.Name]
		if !seen {
			types[e.Name] = e.Type
			order = append(order, e.Name)
			continue
		}
		if current != TypeCheckboxOrRadio && e.Type == TypeCheckboxOrRadio {
			types[e.Name] = TypeCheckboxOrRadio
		}
	}
	return order, types
}

// BuildCatalog scans the AcroForm tree and every page's widget annotations.
func BuildCatalog(d *Document) *Catalog {
	var entries []FieldEntry
	for n := range d.Fields() {
		name := n.Name()
		if name == "" {
			continue
		}
		entries = append(entries, FieldEntry{Name: name, Type: n.Type()})
	}

	locations := make(map[string][]Occurrence)
	for page, w := range d.Widgets() {
		name := w.ResolvedName()
		if name == "" {
			continue
		}
		entries = append(entries, FieldEntry{Name: name, Type: w.Type()})

		rect, ok := w.Rect()
		if !ok {
			continue
		}
		locations[name] = append(locations[name], Occurrence{Page: page, Rect: rect})
	}

	names, types := MergeEntries(entries)
	return &Catalog{
		Names:     names,
		Types:     types,
		Locations: locations,
		PageCount: d.PageCount(),
	}
}

// BuildCatalogFromBytes opens template and builds its catalog.
func BuildCatalogFromBytes(template []byte) (*Catalog, error) {
	d, err := OpenBytes(template)
	if err != nil {
		return nil, err
	}
	return BuildCatalog(d), nil
}
