package query

import (
	"os"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Mapping binds one vocabulary term to a graph field condition.
type Mapping struct {
	Term  string `yaml:"term"`
	Field string `yaml:"field"`           // type | role | organization | name
	Match string `yaml:"match,omitempty"` // equals | contains; default contains
	Value string `yaml:"value"`
}

// Vocabulary is the pre-compiled term table the precise path uses to turn
// question words into graph conditions. It is loaded once at startup;
// lookups normalize case and unicode form so "Advocate" and "advocate"
// agree.
type Vocabulary struct {
	byTerm map[string]Mapping
}

var foldCaser = cases.Fold()

func normalizeTerm(term string) string {
	return foldCaser.String(norm.NFC.String(term))
}

// NewVocabulary builds a vocabulary from mappings. Later duplicates of a
// term win.
func NewVocabulary(mappings []Mapping) *Vocabulary {
	v := &Vocabulary{byTerm: make(map[string]Mapping, len(mappings))}
	for _, m := range mappings {
		if m.Match == "" {
			m.Match = "contains"
		}
		v.byTerm[normalizeTerm(m.Term)] = m
	}
	return v
}

// DefaultVocabulary covers the stakeholder domain terms the extraction
// schema produces.
func DefaultVocabulary() *Vocabulary {
	return NewVocabulary([]Mapping{
		{Term: "individual", Field: "type", Match: "equals", Value: "INDIVIDUAL"},
		{Term: "individuals", Field: "type", Match: "equals", Value: "INDIVIDUAL"},
		{Term: "person", Field: "type", Match: "equals", Value: "INDIVIDUAL"},
		{Term: "people", Field: "type", Match: "equals", Value: "INDIVIDUAL"},
		{Term: "organization", Field: "type", Match: "equals", Value: "ORGANIZATION"},
		{Term: "organizations", Field: "type", Match: "equals", Value: "ORGANIZATION"},
		{Term: "company", Field: "type", Match: "equals", Value: "ORGANIZATION"},
		{Term: "companies", Field: "type", Match: "equals", Value: "ORGANIZATION"},
		{Term: "committee", Field: "type", Match: "equals", Value: "COMMITTEE"},
		{Term: "committees", Field: "type", Match: "equals", Value: "COMMITTEE"},
		{Term: "group", Field: "type", Match: "equals", Value: "COMMITTEE"},
		{Term: "government", Field: "type", Match: "equals", Value: "GOVERNMENT"},
		{Term: "agency", Field: "type", Match: "equals", Value: "GOVERNMENT"},
		{Term: "agencies", Field: "type", Match: "equals", Value: "GOVERNMENT"},
		{Term: "advocate", Field: "role", Value: "advocate"},
		{Term: "advocates", Field: "role", Value: "advocate"},
		{Term: "coordinator", Field: "role", Value: "coordinator"},
		{Term: "coordinators", Field: "role", Value: "coordinator"},
		{Term: "chair", Field: "role", Value: "chair"},
		{Term: "director", Field: "role", Value: "director"},
		{Term: "manager", Field: "role", Value: "manager"},
	})
}

// LoadVocabulary reads mappings from a YAML file and merges them over the
// defaults, so deployments only list their additions.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "query: read vocabulary %s", path)
	}

	var file struct {
		Mappings []Mapping `yaml:"mappings"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, eris.Wrapf(err, "query: parse vocabulary %s", path)
	}

	v := DefaultVocabulary()
	for _, m := range file.Mappings {
		if m.Match == "" {
			m.Match = "contains"
		}
		v.byTerm[normalizeTerm(m.Term)] = m
	}
	return v, nil
}

// Lookup resolves a single term.
func (v *Vocabulary) Lookup(term string) (Mapping, bool) {
	m, ok := v.byTerm[normalizeTerm(term)]
	return m, ok
}
