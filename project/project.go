// Package project groups several clinical variables so they can be binned
// and exported together.
package project

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uyouii/clinical-tokenizer/catalog"
	"github.com/uyouii/clinical-tokenizer/common"
	"github.com/uyouii/clinical-tokenizer/ecdf"
	"github.com/uyouii/clinical-tokenizer/model"
	"github.com/uyouii/clinical-tokenizer/validation"
)

const customDomain = "custom"

type Status string

const (
	StatusUsingDefaults      Status = "using_defaults"
	StatusCustomized         Status = "customized"
	StatusNeedsConfiguration Status = "needs_configuration"
)

type Variable struct {
	ID           string                `json:"id"`
	Domain       string                `json:"domain"`
	Status       Status                `json:"status"`
	Config       *model.VariableConfig `json:"config"`
	Distribution model.Distribution    `json:"-"`
	DataRange    *model.DataRange      `json:"data_range,omitempty"`
	Bins         []model.TokenBin      `json:"bins,omitempty"`
	Warnings     []validation.Message  `json:"warnings,omitempty"`

	// set for catalog variables still on their defaults, so zones can be
	// re-resolved over the observed data range
	definition *catalog.Definition
}

func (v *Variable) HasData() bool {
	return !v.Distribution.IsEmpty()
}

type Project struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	Variables   []*Variable `json:"variables"`
}

type Metadata struct {
	TotalVariables     int `json:"total_variables"`
	UsingDefaults      int `json:"using_defaults"`
	Customized         int `json:"customized"`
	NeedsConfiguration int `json:"needs_configuration"`
	WithData           int `json:"with_data"`
	Binned             int `json:"binned"`
}

func New(name, description string) *Project {
	now := time.Now().UTC()
	return &Project{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
		Variables:   []*Variable{},
	}
}

// FromTemplate creates a project holding every variable of a catalog template.
func FromTemplate(c *catalog.Catalog, templateID string) (*Project, error) {
	tmpl, err := c.Template(templateID)
	if err != nil {
		return nil, err
	}
	defs, err := c.TemplateDefinitions(templateID)
	if err != nil {
		return nil, err
	}
	p := New(tmpl.Name, tmpl.Description)
	for _, def := range defs {
		if _, err := p.AddFromCatalog(def); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// AddFromCatalog adds a variable on its catalog defaults. Definitions whose
// defaults cannot be binned as-is are added as needing configuration.
func (p *Project) AddFromCatalog(def *catalog.Definition) (*Variable, error) {
	if _, ok := p.Variable(def.ID); ok {
		return nil, fmt.Errorf("%s: %w", def.ID, ErrDuplicateVariable)
	}

	cfg, err := def.VariableConfig(nil)
	v := &Variable{
		ID:         def.ID,
		Domain:     def.Domain,
		Status:     StatusUsingDefaults,
		Config:     cfg,
		definition: def,
	}
	if err != nil {
		v.Status = StatusNeedsConfiguration
	}
	p.add(v)
	return v, nil
}

// AddCustom adds a hand-written variable configuration.
func (p *Project) AddCustom(cfg *model.VariableConfig) (*Variable, error) {
	if cfg == nil || strings.TrimSpace(cfg.Name) == "" {
		return nil, fmt.Errorf("custom variable needs a name: %w", common.ErrorInvalidConfig)
	}
	id := strings.ToLower(strings.TrimSpace(cfg.Name))
	if _, ok := p.Variable(id); ok {
		return nil, fmt.Errorf("%s: %w", id, ErrDuplicateVariable)
	}

	domain := cfg.Domain
	if domain == "" {
		domain = customDomain
	}
	v := &Variable{ID: id, Domain: domain, Config: cfg}
	v.Status = configStatus(cfg)
	p.add(v)
	return v, nil
}

// UpdateConfig replaces the configuration of a variable, which leaves its
// catalog defaults behind.
func (p *Project) UpdateConfig(id string, cfg *model.VariableConfig) error {
	v, ok := p.Variable(id)
	if !ok {
		return fmt.Errorf("%s: %w", id, common.ErrorUnknownVariable)
	}
	v.Config = cfg
	v.definition = nil
	v.Status = configStatus(cfg)
	v.Bins = nil
	p.touch()
	return nil
}

// SetData attaches the distribution a variable is binned against.
func (p *Project) SetData(id string, dist model.Distribution) error {
	v, ok := p.Variable(id)
	if !ok {
		return fmt.Errorf("%s: %w", id, common.ErrorUnknownVariable)
	}
	dataRange, err := ecdf.DataRangeOf(dist)
	if err != nil {
		return fmt.Errorf("%s: %w", id, err)
	}
	v.Distribution = dist
	v.DataRange = &dataRange
	v.Bins = nil
	p.touch()
	return nil
}

func (p *Project) Variable(id string) (*Variable, bool) {
	for _, v := range p.Variables {
		if v.ID == id {
			return v, true
		}
	}
	return nil, false
}

func (p *Project) Metadata() Metadata {
	m := Metadata{TotalVariables: len(p.Variables)}
	for _, v := range p.Variables {
		switch v.Status {
		case StatusUsingDefaults:
			m.UsingDefaults++
		case StatusCustomized:
			m.Customized++
		case StatusNeedsConfiguration:
			m.NeedsConfiguration++
		}
		if v.HasData() {
			m.WithData++
		}
		if len(v.Bins) > 0 {
			m.Binned++
		}
	}
	return m
}

func (p *Project) add(v *Variable) {
	p.Variables = append(p.Variables, v)
	p.touch()
}

func (p *Project) touch() {
	p.UpdatedAt = time.Now().UTC()
}

func configStatus(cfg *model.VariableConfig) Status {
	if cfg == nil || !validation.Configuration(cfg, nil, nil).Valid() || !cfg.NormalRange.Valid() {
		return StatusNeedsConfiguration
	}
	return StatusCustomized
}
