package config

import (
	"fmt"

	"github.com/kailas-cloud/casematch/internal/domain"
	"github.com/kailas-cloud/casematch/internal/domain/attribute"
	"github.com/kailas-cloud/casematch/internal/domain/weight"
)

// AttributeConfig declares one schema attribute and its default weight.
type AttributeConfig struct {
	Name    string   `yaml:"name"`
	Kind    string   `yaml:"kind"` // numeric, categorical, boolean
	Min     float64  `yaml:"min"`
	Max     float64  `yaml:"max"`
	Values  []string `yaml:"values"`
	Weight  *float64 `yaml:"weight"`  // default 1
	Enabled *bool    `yaml:"enabled"` // default true
}

// BuildSchema turns the attribute list into a validated schema.
func (c *Config) BuildSchema() (attribute.Schema, error) {
	attrs := make([]attribute.Attribute, 0, len(c.Attributes))
	for i, ac := range c.Attributes {
		a, err := ac.build()
		if err != nil {
			return attribute.Schema{}, fmt.Errorf("attributes[%d]: %w", i, err)
		}
		attrs = append(attrs, a)
	}
	return attribute.NewSchema(attrs)
}

// DefaultWeights returns the configured starting weights.
func (c *Config) DefaultWeights() (weight.Set, error) {
	m := make(map[string]weight.Weight, len(c.Attributes))
	for _, ac := range c.Attributes {
		w := weight.Weight{Value: 1, Enabled: true}
		if ac.Weight != nil {
			w.Value = *ac.Weight
		}
		if ac.Enabled != nil {
			w.Enabled = *ac.Enabled
		}
		m[ac.Name] = w
	}
	set, err := weight.NewSet(m)
	if err != nil {
		return weight.Set{}, fmt.Errorf("attributes: %w", err)
	}
	return set, nil
}

func (ac AttributeConfig) build() (attribute.Attribute, error) {
	kind, err := attribute.ParseKind(ac.Kind)
	if err != nil {
		return attribute.Attribute{}, err
	}
	switch kind {
	case attribute.Numeric:
		return attribute.NewNumeric(ac.Name, ac.Min, ac.Max)
	case attribute.Categorical:
		return attribute.NewCategorical(ac.Name, ac.Values)
	case attribute.Boolean:
		return attribute.NewBoolean(ac.Name)
	default:
		return attribute.Attribute{}, fmt.Errorf("%w: unknown kind %q", domain.ErrInvalidSchema, ac.Kind)
	}
}

func ptr[T any](v T) *T { return &v }

// DefaultAttributes is the spell schema used when no attributes are configured.
func DefaultAttributes() []AttributeConfig {
	return []AttributeConfig{
		{Name: "Level", Kind: "numeric", Min: 0, Max: 9, Weight: ptr(1.0)},
		{Name: "School", Kind: "categorical", Weight: ptr(1.0), Values: []string{
			"Abjuration", "Conjuration", "Divination", "Enchantment",
			"Evocation", "Illusion", "Necromancy", "Transmutation",
		}},
		{Name: "CastingTime", Kind: "categorical", Weight: ptr(0.7), Values: []string{
			"1 Action", "1 Bonus Action", "1 Reaction", "1 Minute", "10 Minutes",
			"1 Hour", "8 Hours", "12 Hours", "24 Hours", "Special",
		}},
		{Name: "Duration", Kind: "categorical", Weight: ptr(0.7), Values: []string{
			"Instantaneous", "1 Round", "6 Rounds", "1 Minute", "10 Minutes",
			"1 Hour", "2 Hours", "8 Hours", "24 Hours", "1 Day", "7 Days",
			"10 Days", "30 Days", "Until Dispelled", "Until Dispelled or Triggered", "Special",
		}},
		{Name: "Range", Kind: "categorical", Weight: ptr(0.6)},
		{Name: "Verbal", Kind: "boolean", Weight: ptr(0.3)},
		{Name: "Somatic", Kind: "boolean", Weight: ptr(0.3)},
		{Name: "Ritual", Kind: "boolean", Weight: ptr(0.5)},
		{Name: "Concentration", Kind: "boolean", Weight: ptr(0.5)},
		{Name: "Attack", Kind: "categorical", Weight: ptr(0.8), Values: []string{"Melee", "Ranged", ""}},
		{Name: "Save", Kind: "categorical", Weight: ptr(0.8), Values: []string{
			"STR Save", "DEX Save", "CON Save", "INT Save", "WIS Save", "CHA Save", "",
		}},
		{Name: "DamageEffect", Kind: "categorical", Weight: ptr(0.9)},
	}
}
