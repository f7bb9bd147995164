// Package keywords validates declarative test-case input against the keyword
// schema registry and renders validated sequences into interpreter scripts.
// Everything in this package is pure: no device or transport access happens
// before a sequence is fully validated.
package keywords

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed schemas.yaml
var manifest []byte

// ParamType enumerates the supported parameter types.
type ParamType string

const (
	TypeInt    ParamType = "int"
	TypeFloat  ParamType = "float"
	TypeBool   ParamType = "bool"
	TypeString ParamType = "string"
	TypeEnum   ParamType = "enum"
	TypeBytes  ParamType = "bytes"
)

// ParamSchema describes one keyword parameter.
type ParamSchema struct {
	Name        string    `yaml:"name"`
	Type        ParamType `yaml:"type"`
	Required    bool      `yaml:"required"`
	Default     *string   `yaml:"default,omitempty"`
	Options     []string  `yaml:"options,omitempty"` // enum values
	Description string    `yaml:"description,omitempty"`
}

// KeywordSchema describes one keyword: name, owning library and the ordered
// parameter list. Parameter order here fixes the rendering order in scripts.
type KeywordSchema struct {
	Name        string        `yaml:"name"`
	Library     string        `yaml:"library"`
	Description string        `yaml:"description,omitempty"`
	Priority    string        `yaml:"priority,omitempty"` // required / normal / optional
	Params      []ParamSchema `yaml:"params"`
}

// Registry holds the keyword schemas declared in the startup manifest.
type Registry struct {
	byName map[string]KeywordSchema
	order  []string
}

// LoadRegistry parses the embedded schema manifest.
func LoadRegistry() (*Registry, error) {
	var doc struct {
		Keywords []KeywordSchema `yaml:"keywords"`
	}
	if err := yaml.Unmarshal(manifest, &doc); err != nil {
		return nil, fmt.Errorf("parsing keyword manifest: %w", err)
	}

	r := &Registry{byName: make(map[string]KeywordSchema, len(doc.Keywords))}
	for _, kw := range doc.Keywords {
		if _, dup := r.byName[kw.Name]; dup {
			return nil, fmt.Errorf("duplicate keyword schema %q", kw.Name)
		}
		r.byName[kw.Name] = kw
		r.order = append(r.order, kw.Name)
	}
	return r, nil
}

// Lookup returns the schema for name.
func (r *Registry) Lookup(name string) (KeywordSchema, bool) {
	kw, ok := r.byName[name]
	return kw, ok
}

// All returns every schema in manifest order.
func (r *Registry) All() []KeywordSchema {
	out := make([]KeywordSchema, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}
