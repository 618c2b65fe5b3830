// Package fruits holds the reference data for each fruit color.
package fruits

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/iump/fruittree-backend/pkg/enums"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Fruit is the display metadata for one color.
type Fruit struct {
	Color       enums.FruitColor `yaml:"color" json:"color"`
	Name        string           `yaml:"name" json:"name"`
	ColorKey    string           `yaml:"color_key" json:"color_key"`
	ModelPath   string           `yaml:"model_path" json:"model_path"`
	Description string           `yaml:"description" json:"description,omitempty"`
}

type catalogFile struct {
	Fruits []Fruit `yaml:"fruits"`
}

// Catalog maps every fruit color to its metadata. It is immutable once loaded.
type Catalog struct {
	byColor map[enums.FruitColor]Fruit
}

// Load reads the catalog at path, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Parse(defaultCatalog)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fruit catalog %s: %w", path, err)
	}
	return Parse(raw)
}

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded fruit catalog: %v", err))
	}
	return c
}

// Parse decodes catalog YAML. Every color must appear exactly once.
func Parse(raw []byte) (*Catalog, error) {
	var file catalogFile
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode fruit catalog: %w", err)
	}

	byColor := make(map[enums.FruitColor]Fruit, len(file.Fruits))
	for _, f := range file.Fruits {
		color, err := enums.ParseFruitColor(string(f.Color))
		if err != nil {
			return nil, err
		}
		if _, dup := byColor[color]; dup {
			return nil, fmt.Errorf("fruit color %q listed twice", color)
		}
		if strings.TrimSpace(f.Name) == "" {
			return nil, fmt.Errorf("fruit color %q has no name", color)
		}
		f.Color = color
		byColor[color] = f
	}
	for _, color := range enums.FruitColors() {
		if _, ok := byColor[color]; !ok {
			return nil, fmt.Errorf("fruit color %q missing from catalog", color)
		}
	}
	return &Catalog{byColor: byColor}, nil
}

// Lookup returns the metadata for color.
func (c *Catalog) Lookup(color enums.FruitColor) (Fruit, bool) {
	if c == nil {
		return Fruit{}, false
	}
	f, ok := c.byColor[color]
	return f, ok
}

// Has reports whether color has reference data.
func (c *Catalog) Has(color enums.FruitColor) bool {
	_, ok := c.Lookup(color)
	return ok
}

// List returns the fruits in color display order.
func (c *Catalog) List() []Fruit {
	if c == nil {
		return nil
	}
	out := make([]Fruit, 0, len(c.byColor))
	for _, color := range enums.FruitColors() {
		if f, ok := c.byColor[color]; ok {
			out = append(out, f)
		}
	}
	return out
}
