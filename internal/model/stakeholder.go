package model

import "strings"

// StakeholderType enumerates the recognized stakeholder categories. Values
// outside the set normalize to StakeholderUnknown rather than failing.
type StakeholderType string

const (
	StakeholderIndividual   StakeholderType = "INDIVIDUAL"
	StakeholderOrganization StakeholderType = "ORGANIZATION"
	StakeholderCommittee    StakeholderType = "COMMITTEE"
	StakeholderGovernment   StakeholderType = "GOVERNMENT"
	StakeholderUnknown      StakeholderType = "UNKNOWN"
)

// stakeholderTypeAliases maps loose model outputs onto the canonical enum.
// Models frequently emit the original JSON-LD class names or lowercase
// variants; all of those collapse here.
var stakeholderTypeAliases = map[string]StakeholderType{
	"individual":                            StakeholderIndividual,
	"person":                                StakeholderIndividual,
	"stakeholder:individualstakeholder":     StakeholderIndividual,
	"organization":                          StakeholderOrganization,
	"organizational":                        StakeholderOrganization,
	"org":                                   StakeholderOrganization,
	"stakeholder:organizationalstakeholder": StakeholderOrganization,
	"committee":                             StakeholderCommittee,
	"group":                                 StakeholderCommittee,
	"stakeholder:groupstakeholder":          StakeholderCommittee,
	"government":                            StakeholderGovernment,
	"agency":                                StakeholderGovernment,
	"unknown":                               StakeholderUnknown,
}

// NormalizeStakeholderType maps a raw type string from a model response to
// the canonical enum, defaulting to StakeholderUnknown.
func NormalizeStakeholderType(raw string) StakeholderType {
	key := strings.ToLower(strings.TrimSpace(raw))
	if t, ok := stakeholderTypeAliases[key]; ok {
		return t
	}
	return StakeholderUnknown
}

// StakeholderRecord is a single extracted stakeholder. Confidence is always
// in [0,1] after validation; Strategy records which mechanism produced the
// value because confidences are not comparable across strategies.
type StakeholderRecord struct {
	ID            string          `json:"id,omitempty"`
	Name          string          `json:"name"`
	Type          StakeholderType `json:"type"`
	Role          string          `json:"role,omitempty"`
	Organization  string          `json:"organization,omitempty"`
	Contact       string          `json:"contact,omitempty"`
	Confidence    float64         `json:"confidence"`
	SourceExcerpt string          `json:"source_excerpt,omitempty"`
	Model         string          `json:"model"`
	Strategy      StrategyKind    `json:"strategy"`
	DocumentID    string          `json:"document_id,omitempty"`
}

// ClampConfidence forces c into [0,1].
func ClampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
