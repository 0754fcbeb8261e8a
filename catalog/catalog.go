// Package catalog holds the presets of well-known clinical variables: their
// normal ranges, evidence-based anchors and default zone granularity.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"slices"

	"github.com/uyouii/clinical-tokenizer/binning"
	"github.com/uyouii/clinical-tokenizer/common"
	"github.com/uyouii/clinical-tokenizer/model"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var builtin []byte

// Granularity is the default bin count per zone category.
type Granularity struct {
	Normal int `yaml:"normal" json:"normal"`
	Low    int `yaml:"low" json:"low"`
	High   int `yaml:"high" json:"high"`
}

type Definition struct {
	ID                 string                 `yaml:"id" json:"id"`
	Name               string                 `yaml:"name" json:"name"`
	Domain             string                 `yaml:"domain" json:"domain"`
	Unit               string                 `yaml:"unit" json:"unit"`
	Direction          model.Direction        `yaml:"direction" json:"direction"`
	TypicalRange       model.DataRange        `yaml:"typical_range" json:"typical_range"`
	NormalRange        model.NormalRange      `yaml:"normal_range" json:"normal_range"`
	DefaultAnchors     []model.ClinicalAnchor `yaml:"default_anchors" json:"default_anchors"`
	DefaultGranularity Granularity            `yaml:"default_granularity" json:"default_granularity"`
	Rationale          string                 `yaml:"rationale" json:"rationale"`
	Citation           string                 `yaml:"citation" json:"citation"`
}

// Template is a disease panel: a named list of catalog variable ids.
type Template struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Guideline   string   `yaml:"guideline" json:"guideline"`
	Variables   []string `yaml:"variables" json:"variables"`
}

type Catalog struct {
	Variables []Definition `yaml:"variables"`
	Templates []Template   `yaml:"templates"`

	byID map[string]int
}

type Stats struct {
	Total    int            `json:"total"`
	ByDomain map[string]int `json:"by_domain"`
}

// Load parses the built-in catalog.
func Load() (*Catalog, error) {
	return Parse(builtin)
}

// LoadFile reads a user catalog written in the built-in format.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	c := &Catalog{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c.byID = make(map[string]int, len(c.Variables))
	for i, def := range c.Variables {
		if def.ID == "" {
			return nil, fmt.Errorf("variable %d has no id: %w", i+1, common.ErrorInvalidConfig)
		}
		if _, ok := c.byID[def.ID]; ok {
			return nil, fmt.Errorf("duplicate variable id %q: %w", def.ID, common.ErrorInvalidConfig)
		}
		c.byID[def.ID] = i
	}
	for _, tmpl := range c.Templates {
		for _, id := range tmpl.Variables {
			if _, ok := c.byID[id]; !ok {
				return nil, fmt.Errorf("template %s references %q: %w", tmpl.ID, id, common.ErrorUnknownVariable)
			}
		}
	}
	return c, nil
}

func (c *Catalog) Lookup(id string) (*Definition, error) {
	i, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%q: %w", id, common.ErrorUnknownVariable)
	}
	return &c.Variables[i], nil
}

func (c *Catalog) ByDomain(domain string) []Definition {
	res := []Definition{}
	for _, def := range c.Variables {
		if def.Domain == domain {
			res = append(res, def)
		}
	}
	return res
}

// Domains lists the domains present in the catalog, sorted.
func (c *Catalog) Domains() []string {
	res := []string{}
	for _, def := range c.Variables {
		if !slices.Contains(res, def.Domain) {
			res = append(res, def.Domain)
		}
	}
	slices.Sort(res)
	return res
}

func (c *Catalog) Stats() Stats {
	stats := Stats{Total: len(c.Variables), ByDomain: map[string]int{}}
	for _, def := range c.Variables {
		stats.ByDomain[def.Domain]++
	}
	return stats
}

func (c *Catalog) Template(id string) (*Template, error) {
	for i := range c.Templates {
		if c.Templates[i].ID == id {
			return &c.Templates[i], nil
		}
	}
	return nil, fmt.Errorf("template %q: %w", id, common.ErrorUnknownVariable)
}

// TemplateDefinitions resolves the variables of a template in template order.
func (c *Catalog) TemplateDefinitions(id string) ([]*Definition, error) {
	tmpl, err := c.Template(id)
	if err != nil {
		return nil, err
	}
	res := make([]*Definition, 0, len(tmpl.Variables))
	for _, varID := range tmpl.Variables {
		def, err := c.Lookup(varID)
		if err != nil {
			return nil, err
		}
		res = append(res, def)
	}
	return res, nil
}

// BinCount maps a zone kind to the default granularity of its category.
func (g Granularity) BinCount(kind model.ZoneKind) int {
	switch kind.Category() {
	case model.CategoryBelow:
		return g.Low
	case model.CategoryNormal:
		return g.Normal
	}
	return g.High
}

// VariableConfig resolves the definition into a binning configuration over
// dataRange, or over the typical range when dataRange is nil. Every zone gets
// a ZoneSpec carrying the default granularity of its category. A zero-width
// normal range cannot be binned and is reported as ErrorInvalidNormalRange.
func (d *Definition) VariableConfig(dataRange *model.DataRange) (*model.VariableConfig, error) {
	normal := d.NormalRange
	cfg := &model.VariableConfig{
		Name:        d.ID,
		Unit:        d.Unit,
		Domain:      d.Domain,
		Direction:   d.Direction,
		NormalRange: &normal,
		Anchors:     slices.Clone(d.DefaultAnchors),
	}
	if !normal.Valid() {
		return cfg, fmt.Errorf("%s normal range [%v, %v]: %w", d.ID, normal.Lower, normal.Upper, common.ErrorInvalidNormalRange)
	}

	r := d.TypicalRange
	if dataRange != nil {
		r = *dataRange
	}
	zones, err := binning.ClassifyZones(binning.CollectBoundaries(cfg, r), cfg)
	if err != nil {
		return cfg, err
	}
	for _, zone := range zones {
		bins := d.DefaultGranularity.BinCount(zone.Kind)
		if bins <= 0 {
			continue
		}
		cfg.ZoneSpecs = append(cfg.ZoneSpecs, model.ZoneSpec{
			Kind:  zone.Kind,
			Lower: zone.Lower,
			Upper: zone.Upper,
			Bins:  bins,
		})
	}
	return cfg, nil
}
