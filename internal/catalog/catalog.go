package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

var ErrCategoryNotFound = errors.New("product category not found")

type Category struct {
	ID          string    `yaml:"id" json:"id"`
	Title       string    `yaml:"title" json:"title"`
	Description string    `yaml:"description" json:"description"`
	Image       string    `yaml:"image" json:"image"`
	Tags        []string  `yaml:"tags" json:"tags"`
	Products    []Product `yaml:"products" json:"products"`
}

// Product is one catalog entry. CAS and Specifications are optional.
type Product struct {
	Name           string            `yaml:"name" json:"name"`
	Description    string            `yaml:"description" json:"description"`
	CAS            string            `yaml:"cas,omitempty" json:"cas,omitempty"`
	Applications   []string          `yaml:"applications" json:"applications"`
	Specifications map[string]string `yaml:"specifications,omitempty" json:"specifications,omitempty"`
}

// Catalog is read-only after Load and safe for concurrent use.
type Catalog struct {
	categories []Category
	byID       map[string]int
}

// Load parses the catalog compiled into the binary.
func Load() (*Catalog, error) {
	return Parse(embeddedCatalog)
}

func Parse(raw []byte) (*Catalog, error) {
	var doc struct {
		Categories []Category `yaml:"categories"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	c := &Catalog{
		categories: doc.Categories,
		byID:       make(map[string]int, len(doc.Categories)),
	}
	for i, category := range doc.Categories {
		id := strings.TrimSpace(category.ID)
		if id == "" {
			return nil, fmt.Errorf("catalog category %d has no id", i)
		}
		if _, dup := c.byID[id]; dup {
			return nil, fmt.Errorf("duplicate catalog category %q", id)
		}
		for j, product := range category.Products {
			if strings.TrimSpace(product.Name) == "" {
				return nil, fmt.Errorf("catalog category %q product %d has no name", id, j)
			}
		}
		c.byID[id] = i
	}
	return c, nil
}

// Categories returns the categories in catalog order.
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	copy(out, c.categories)
	return out
}

func (c *Catalog) Category(id string) (Category, error) {
	idx, ok := c.byID[id]
	if !ok {
		return Category{}, fmt.Errorf("%w: %q", ErrCategoryNotFound, id)
	}
	return c.categories[idx], nil
}
