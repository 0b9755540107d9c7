package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStakeholderType(t *testing.T) {
	tests := []struct {
		raw  string
		want StakeholderType
	}{
		{"INDIVIDUAL", StakeholderIndividual},
		{"individual", StakeholderIndividual},
		{"  Person  ", StakeholderIndividual},
		{"stakeholder:IndividualStakeholder", StakeholderIndividual},
		{"org", StakeholderOrganization},
		{"Organizational", StakeholderOrganization},
		{"group", StakeholderCommittee},
		{"AGENCY", StakeholderGovernment},
		{"martian", StakeholderUnknown},
		{"", StakeholderUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeStakeholderType(tt.raw))
		})
	}
}

func TestClampConfidence(t *testing.T) {
	assert.Equal(t, 0.0, ClampConfidence(-0.5))
	assert.Equal(t, 1.0, ClampConfidence(1.5))
	assert.Equal(t, 0.42, ClampConfidence(0.42))
}
