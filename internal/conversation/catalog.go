package conversation

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed provinces.yaml
var defaultProvincesYAML []byte

type provinceEntry struct {
	Province string   `yaml:"province"`
	Cities   []string `yaml:"cities"`
}

// Catalog は固定の「استان → شهرها」表。並び順は YAML のまま。
type Catalog struct {
	provinces []string
	cities    map[string][]string
}

// DefaultCatalog は同梱の表を読む。壊れていたら起動時に気付けるよう panic。
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultProvincesYAML)
	if err != nil {
		panic(fmt.Sprintf("conversation: embedded catalog: %v", err))
	}
	return c
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var entries []provinceEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &Catalog{cities: make(map[string][]string, len(entries))}
	for _, e := range entries {
		p := strings.TrimSpace(e.Province)
		if p == "" {
			return nil, fmt.Errorf("parse catalog: empty province name")
		}
		if _, dup := c.cities[p]; dup {
			return nil, fmt.Errorf("parse catalog: duplicate province %q", p)
		}
		if len(e.Cities) == 0 {
			return nil, fmt.Errorf("parse catalog: province %q has no cities", p)
		}
		c.provinces = append(c.provinces, p)
		c.cities[p] = e.Cities
	}
	return c, nil
}

func (c *Catalog) Provinces() []string { return c.provinces }

func (c *Catalog) Cities(province string) []string { return c.cities[province] }

func (c *Catalog) HasProvince(province string) bool {
	_, ok := c.cities[province]
	return ok
}

// HasCity は province に属する city かどうか（未知の province は常に false）。
func (c *Catalog) HasCity(province, city string) bool {
	for _, x := range c.cities[province] {
		if x == city {
			return true
		}
	}
	return false
}
