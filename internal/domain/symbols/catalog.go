// Package symbols holds the symbol catalog: named categories, each a grid
// of rows that are exactly model.GridColumns cells wide.
package symbols

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/okian/gazeboard/internal/domain/model"
)

// Category is one named grid of symbols.
type Category struct {
	Name string     `yaml:"name" json:"name"`
	Rows model.Grid `yaml:"rows" json:"rows"`
}

// Catalog is an ordered, read-only set of categories.
type Catalog struct {
	categories []Category
	index      map[string]int
}

type catalogFile struct {
	Categories []Category `yaml:"categories"`
}

// New validates categories and builds a catalog preserving their order.
func New(categories ...Category) (*Catalog, error) {
	c := &Catalog{
		categories: make([]Category, 0, len(categories)),
		index:      make(map[string]int, len(categories)),
	}
	for _, cat := range categories {
		name := strings.TrimSpace(cat.Name)
		if _, dup := c.index[name]; dup {
			return nil, fmt.Errorf("%q: %w", name, ErrDuplicateCategory)
		}
		c.index[name] = len(c.categories)
		c.categories = append(c.categories, Category{Name: name, Rows: cat.Rows.Clone()})
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks that the catalog is non-empty and every row has exactly
// model.GridColumns cells.
func (c *Catalog) Validate() error {
	if len(c.categories) == 0 {
		return ErrEmptyCatalog
	}
	for _, cat := range c.categories {
		if cat.Name == "" {
			return ErrUnnamedCategory
		}
		if len(cat.Rows) == 0 {
			return fmt.Errorf("%q: %w", cat.Name, ErrEmptyCategory)
		}
		for i, row := range cat.Rows {
			if len(row) != model.GridColumns {
				return fmt.Errorf("%q row %d has %d cells: %w", cat.Name, i, len(row), ErrInvalidRow)
			}
		}
	}
	return nil
}

// Names lists category names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.categories))
	for i, cat := range c.categories {
		names[i] = cat.Name
	}
	return names
}

// Has reports whether name is a known category.
func (c *Catalog) Has(name string) bool {
	_, ok := c.index[name]
	return ok
}

// Grid returns a copy of the named category's grid.
func (c *Catalog) Grid(name string) (model.Grid, error) {
	i, ok := c.index[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownCategory)
	}
	return c.categories[i].Rows.Clone(), nil
}

// all returns a copy of every category.
func (c *Catalog) all() []Category {
	out := make([]Category, len(c.categories))
	for i, cat := range c.categories {
		out[i] = Category{Name: cat.Name, Rows: cat.Rows.Clone()}
	}
	return out
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return New(f.Categories...)
}

// LoadFile reads and parses a YAML catalog from path.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Marshal encodes the catalog as YAML.
func (c *Catalog) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(catalogFile{Categories: c.categories})
	if err != nil {
		return nil, fmt.Errorf("encode catalog: %w", err)
	}
	return data, nil
}

// WriteFile writes the catalog as YAML, creating parent directories.
func (c *Catalog) WriteFile(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create catalog dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	return nil
}
